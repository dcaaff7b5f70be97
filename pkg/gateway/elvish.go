package gateway

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/sys/unix"
	"src.elv.sh/pkg/eval"
	"src.elv.sh/pkg/parse"

	"github.com/elves/ctlserver/pkg/histstore"
	"github.com/elves/ctlserver/pkg/logutil"
	"github.com/elves/ctlserver/pkg/term"
)

var logger = logutil.GetLogger("[gateway] ")

// The descriptor that job control operates on.
const ttyFd = 0

// Config keeps the dependencies of an Elvish gateway.
type Config struct {
	// Used for all terminal-control operations. Defaults to a term.Headless
	// with no Notify callback.
	Terminal term.Terminal
	// If not nil, the code of every evaluation is recorded here.
	History histstore.Store
}

// Elvish is a Gateway backed by an Elvish interpreter. It overrides the exit
// and fg builtins of the interpreter: exit ends the session instead of the
// process, and fg goes through the configured Terminal.
//
// An Elvish must not be used for more than one evaluation at a time.
type Elvish struct {
	ev      *eval.Evaler
	term    term.Terminal
	history histstore.Store
	pgrp    int
	seq     int

	// State of the current evaluation.
	exitRequested bool
	exitCode      int
	handedOff     bool
}

var _ Gateway = (*Elvish)(nil)

// NewElvish creates a Gateway that evaluates code with ev.
func NewElvish(ev *eval.Evaler, cfg Config) *Elvish {
	g := &Elvish{ev: ev, term: cfg.Terminal, history: cfg.History, pgrp: unix.Getpgrp()}
	if g.term == nil {
		g.term = term.Headless{}
	}
	ev.ExtendBuiltin(eval.BuildNs().
		AddGoFn("exit", g.exit).
		AddGoFn("fg", g.fg))
	return g
}

// Eval implements Gateway.
func (g *Elvish) Eval(ctx context.Context, code string, files [3]*os.File) Result {
	g.seq++
	g.exitRequested, g.exitCode, g.handedOff = false, 0, false
	g.record(code)

	attr, err := g.term.GetAttr(ttyFd)
	if err != nil {
		logger.Println("get terminal attributes:", err)
		attr = nil
	}

	err = g.eval(ctx, parse.Source{Name: fmt.Sprintf("[run %d]", g.seq), Code: code}, files)

	if g.handedOff {
		if err := g.term.SetForeground(ttyFd, g.pgrp); err != nil {
			logger.Println("reclaim foreground:", err)
		}
	}
	if attr != nil {
		if err := g.term.SetAttr(ttyFd, attr); err != nil {
			logger.Println("restore terminal attributes:", err)
		}
	}

	res := g.result(ctx, err)
	res.Dir = getwd()
	return res
}

// SessionEnd is returned by Source when the script asks to end the session.
type SessionEnd struct{ Code int }

func (e SessionEnd) Error() string { return fmt.Sprintf("session ended with status %d", e.Code) }

// Source evaluates the script at path, for example an rc file. Unlike Eval, it
// returns the error as is. If the script calls exit, the error is a SessionEnd.
func (g *Elvish) Source(path string, files [3]*os.File) error {
	code, err := readFileUTF8(path)
	if err != nil {
		return err
	}
	g.exitRequested, g.exitCode = false, 0
	err = g.eval(context.Background(), parse.Source{Name: path, Code: code, IsFile: true}, files)
	if g.exitRequested {
		return SessionEnd{g.exitCode}
	}
	return err
}

func (g *Elvish) eval(ctx context.Context, src parse.Source, files [3]*os.File) error {
	ports, cleanup := eval.PortsFromFiles(files, g.ev.ValuePrefix())
	defer cleanup()
	return g.ev.Eval(src, eval.EvalCfg{Ports: ports, Interrupts: ctx})
}

func (g *Elvish) record(code string) {
	if g.history == nil || strings.TrimSpace(code) == "" {
		return
	}
	if _, err := g.history.AddCmd(code); err != nil {
		logger.Println("add history:", err)
	}
}

func (g *Elvish) result(ctx context.Context, err error) Result {
	if g.exitRequested {
		return Result{Done: true, Exit: g.exitCode, Terminate: true}
	}
	if err == nil {
		return Result{Done: true, Exit: StatusOK}
	}
	if parseErrs := parse.UnpackErrors(err); len(parseErrs) > 0 {
		msgs := make([]string, len(parseErrs))
		for i, e := range parseErrs {
			msgs[i] = e.Error()
		}
		return Result{Done: true, Exit: StatusIllegalCmd, Errors: msgs}
	}
	if compileErrs := eval.UnpackCompilationErrors(err); len(compileErrs) > 0 {
		msgs := make([]string, len(compileErrs))
		for i, e := range compileErrs {
			msgs[i] = e.Error()
		}
		return Result{Done: true, Exit: StatusIllegalCmd, Errors: msgs}
	}
	status := exitStatus(err)
	if ctx.Err() != nil {
		status = StatusCancelled
	}
	return Result{Done: true, Exit: status, Errors: []string{err.Error()}}
}

func exitStatus(err error) int {
	switch reason := eval.Reason(err).(type) {
	case eval.ExternalCmdExit:
		ws := reason.WaitStatus
		switch {
		case ws.Exited():
			return ws.ExitStatus()
		case ws.Signaled():
			return 128 + int(ws.Signal())
		case ws.Stopped():
			return 128 + int(ws.StopSignal())
		}
	case eval.PipelineError:
		for i := len(reason.Errors) - 1; i >= 0; i-- {
			if e := reason.Errors[i]; e != nil && e.Reason() != nil {
				return exitStatus(e)
			}
		}
	default:
		if errors.Is(reason, eval.ErrInterrupted) {
			return StatusCancelled
		}
	}
	return StatusCmdError
}

func getwd() string {
	dir, err := os.Getwd()
	if err != nil {
		logger.Println("getwd:", err)
		return os.Getenv("PWD")
	}
	return dir
}

var errSourceNotUTF8 = errors.New("source is not UTF-8")

func readFileUTF8(fname string) (string, error) {
	bytes, err := os.ReadFile(fname)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(bytes) {
		return "", errSourceNotUTF8
	}
	return string(bytes), nil
}
