// Package gateway hands command text to the interpreter and turns the outcome
// into a Result.
package gateway

import (
	"context"
	"os"
)

// Exit statuses produced by the gateway itself. Statuses of external commands
// are passed through.
const (
	StatusOK = 0
	// Any error that does not have a more specific status.
	StatusCmdError = 1
	// The code could not be parsed or compiled.
	StatusIllegalCmd = 123
	// The evaluation was cancelled.
	StatusCancelled = 130
)

// Result is the outcome of one evaluation.
type Result struct {
	Done   bool
	Exit   int
	Dir    string
	Errors []string
	// Whether the evaluated code asked to end the session.
	Terminate bool
}

// Gateway evaluates code.
type Gateway interface {
	// Eval evaluates code synchronously, using files as stdin, stdout and
	// stderr for exactly the duration of the call. Cancelling ctx interrupts
	// the evaluation.
	Eval(ctx context.Context, code string, files [3]*os.File) Result
}
