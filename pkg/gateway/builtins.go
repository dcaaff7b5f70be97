package gateway

import (
	"errors"
	"strconv"
	"syscall"

	"src.elv.sh/pkg/eval"
	"src.elv.sh/pkg/eval/errs"
)

// Thrown by exit to unwind the evaluation. It never reaches the controller:
// Eval reports a requested exit as a successful Result with Terminate set.
var errExitRequested = errors.New("exit requested")

// Used by fg; can be overridden in tests.
var (
	getpgid = syscall.Getpgid
	kill    = syscall.Kill
	wait4   = syscall.Wait4
)

// ErrNotInSameProcessGroup is thrown when the process IDs passed to fg are not
// in the same process group.
var ErrNotInSameProcessGroup = errors.New("not in the same process group")

// Replaces the exit builtin. Instead of exiting the process, it asks the
// server to end the session once the result has been sent.
func (g *Elvish) exit(codes ...int) error {
	code := 0
	switch len(codes) {
	case 0:
	case 1:
		code = codes[0]
	default:
		return errs.ArityMismatch{What: "arguments", ValidLow: 0, ValidHigh: 1, Actual: len(codes)}
	}
	if code < 0 || code > 255 {
		return errs.OutOfRange{What: "exit code", ValidLow: "0", ValidHigh: "255",
			Actual: strconv.Itoa(code)}
	}
	g.exitRequested, g.exitCode = true, code
	return errExitRequested
}

// Replaces the fg builtin. The foreground is handed to the process group of
// pids through the Terminal, and reclaimed for the server's own process group
// when the evaluation finishes.
func (g *Elvish) fg(pids ...int) error {
	if len(pids) == 0 {
		return errs.ArityMismatch{What: "arguments", ValidLow: 1, ValidHigh: -1, Actual: 0}
	}
	var thepgid int
	for i, pid := range pids {
		pgid, err := getpgid(pid)
		if err != nil {
			return err
		}
		if i == 0 {
			thepgid = pgid
		} else if pgid != thepgid {
			return ErrNotInSameProcessGroup
		}
	}

	if err := g.term.SetForeground(ttyFd, thepgid); err != nil {
		return err
	}
	g.handedOff = true

	excs := make([]eval.Exception, len(pids))
	for i, pid := range pids {
		if err := kill(pid, syscall.SIGCONT); err != nil {
			excs[i] = eval.NewException(err, nil)
		}
	}
	for i, pid := range pids {
		if excs[i] != nil {
			continue
		}
		var ws syscall.WaitStatus
		_, err := wait4(pid, &ws, syscall.WUNTRACED, nil)
		if err != nil {
			excs[i] = eval.NewException(err, nil)
		} else if err := eval.NewExternalCmdExit("[pid "+strconv.Itoa(pid)+"]", ws, pid); err != nil {
			excs[i] = eval.NewException(err, nil)
		}
	}
	return eval.MakePipelineError(excs)
}
