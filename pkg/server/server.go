// Package server implements the request loop that lets a controller process
// drive an Elvish interpreter over a NUL-framed side channel.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/elves/ctlserver/pkg/gateway"
	"github.com/elves/ctlserver/pkg/logutil"
	"github.com/elves/ctlserver/pkg/redir"
	"github.com/elves/ctlserver/pkg/wire"
)

var logger = logutil.GetLogger("[server] ")

// Exit statuses of Serve.
const (
	StatusOK = 0
	// The input stream ended without an exit request.
	StatusStreamClosed = 127
	// A redirection could not be set up because the process ran out of file
	// descriptors.
	StatusResourceExhausted = 124
)

// Opts keeps options that can be passed to New.
type Opts struct {
	// If not nil, any value received from it while code is being evaluated
	// interrupts the evaluation. If nil, Serve listens to SIGINT and SIGQUIT.
	Signals <-chan os.Signal
}

// Server dispatches requests. It owns the redirection table; the table is
// passed explicitly to each evaluation and never shared otherwise.
type Server struct {
	host    [3]*os.File
	table   *redir.Table
	signals <-chan os.Signal

	// Serializes writes of responses and notifications.
	outMu sync.Mutex
	// Redirection errors not yet reported to the controller.
	pending []string
}

// New creates a Server whose host files are fds.
func New(fds [3]*os.File, opts Opts) (*Server, error) {
	table, err := redir.NewTable(fds)
	if err != nil {
		return nil, err
	}
	return &Server{host: fds, table: table, signals: opts.Signals}, nil
}

// Close releases the files opened for redirections.
func (s *Server) Close() error {
	return s.table.Close()
}

// NotifyPgid tells the controller that pgid would have become the foreground
// process group. It is suitable as the Notify callback of term.Headless.
func (s *Server) NotifyPgid(pgid int) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	logger.Println("foreground process group:", pgid)
	if err := wire.WritePgid(s.output(), wire.PgidNotification{Pgid: pgid}); err != nil {
		logger.Println("write pgid notification:", err)
	}
}

// Serve reads requests from r until the stream ends, an exit request is
// received or an evaluation asks to end the session, and returns the exit
// status of the server.
func (s *Server) Serve(r io.Reader, gw gateway.Gateway) int {
	if s.signals == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGQUIT)
		defer signal.Stop(ch)
		s.signals = ch
	}

	reader := wire.NewReader(r)
	for {
		req, err := reader.Next()
		if err != nil {
			if err != io.EOF {
				logger.Println("read request:", err)
			}
			logger.Println("input closed by peer")
			return StatusStreamClosed
		}

		tokens := wire.NewTokenizer(req)
		token := tokens.Next()
		switch wire.ParseMethod(token) {
		case wire.SetIO:
			paths := [3]string{tokens.Next(), tokens.Next(), tokens.Next()}
			logger.Printf("stdio %q", paths)
			if exhausted := s.setIO(paths); exhausted != nil {
				fmt.Fprintln(s.host[2], exhausted)
				return StatusResourceExhausted
			}
		case wire.Run:
			res := s.run(tokens.Rest(), gw)
			if res.Terminate {
				logger.Println("session ended by interpreter with status", res.Exit)
				return StatusOK
			}
		case wire.Exit:
			logger.Println("exit requested")
			return StatusOK
		default:
			fmt.Fprintf(s.host[2], "Unknown method: %s\n", token)
		}
	}
}

// Updates the redirection table. Errors from opening files are kept so that
// the next run can report them; running out of descriptors is returned. Errors
// kept from an earlier request are dropped, since the slots they describe have
// been replaced.
func (s *Server) setIO(paths [3]string) error {
	s.pending = nil
	s.outMu.Lock()
	errs := s.table.Set(paths)
	s.outMu.Unlock()
	for _, err := range errs {
		if redir.IsExhaustion(err) {
			return err
		}
		s.pending = append(s.pending, err.Error())
	}
	return nil
}

func (s *Server) run(code string, gw gateway.Gateway) gateway.Result {
	drain(s.signals)
	ctx, cancel := context.WithCancel(context.Background())
	watched := make(chan struct{})
	go func() {
		defer close(watched)
		select {
		case sig := <-s.signals:
			logger.Println("interrupting evaluation on", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	res := gw.Eval(ctx, code, s.table.Files())
	cancel()
	<-watched

	if len(s.pending) > 0 {
		res.Errors = append(s.pending, res.Errors...)
		s.pending = nil
	}
	s.outMu.Lock()
	err := wire.WriteResponse(s.output(), wire.Response{
		Done: res.Done, Exit: res.Exit, Dir: res.Dir, Errors: res.Errors})
	s.outMu.Unlock()
	if err != nil {
		logger.Println("write response:", err)
	}
	return res
}

// Returns the file responses and notifications are written to. That is the
// stdout slot, unless it is broken, in which case the controller would never
// hear back; the host stdout is used instead.
func (s *Server) output() *os.File {
	if state, _ := s.table.State(redir.Out); state == redir.Broken {
		return s.host[1]
	}
	return s.table.Files()[redir.Out]
}

func drain(ch <-chan os.Signal) {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
