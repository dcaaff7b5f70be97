// Package prog supports building the server binary out of subprograms.
//
// Each subprogram registers its flags, then decides whether it should run.
// Subprograms that don't want to run return NextProgram, and the next one is
// tried.
package prog

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/elves/ctlserver/pkg/logutil"
)

// Program represents a subprogram.
type Program interface {
	// RegisterFlags registers the flags the subprogram understands.
	RegisterFlags(fs *FlagSet)
	// Run runs the subprogram. It returns NextProgram if it should not run.
	Run(fds [3]*os.File, args []string) error
}

// FlagSet wraps a flag.FlagSet and provides flags shared between subprograms.
type FlagSet struct {
	*flag.FlagSet
	json *bool
	log  *string
}

// JSON returns a pointer to the value of the -json flag, registering it on the
// first call.
func (fs *FlagSet) JSON() *bool {
	if fs.json == nil {
		fs.json = fs.Bool("json", false, "show output in JSON; useful with -buildinfo and -history")
	}
	return fs.json
}

// Log returns a pointer to the value of the -log flag, registering it on the
// first call.
func (fs *FlagSet) Log() *string {
	if fs.log == nil {
		fs.log = fs.String("log", "", "a file to write debug log to")
	}
	return fs.log
}

func usage(out io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(out, "Usage: elvish-server [flags]")
	fmt.Fprintln(out, "Supported flags:")
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// Run parses command-line flags and runs the first applicable subprogram. It
// returns the exit status of the program.
func Run(fds [3]*os.File, args []string, p Program) int {
	fs := &FlagSet{FlagSet: flag.NewFlagSet("elvish-server", flag.ContinueOnError)}
	// Error and usage will be printed explicitly.
	fs.SetOutput(io.Discard)

	var help bool
	fs.BoolVar(&help, "help", false, "show usage help and quit")
	logPath := fs.Log()
	p.RegisterFlags(fs)

	err := fs.Parse(args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			// -h is not defined, but the flag package treats it specially.
			fmt.Fprintln(fds[2], "flag provided but not defined: -h")
		} else {
			fmt.Fprintln(fds[2], err)
		}
		usage(fds[2], fs.FlagSet)
		return 2
	}

	if *logPath != "" {
		if err := logutil.SetOutputFile(*logPath); err != nil {
			fmt.Fprintln(fds[2], err)
		}
	}

	if help {
		usage(fds[1], fs.FlagSet)
		return 0
	}

	err = p.Run(fds, fs.Args())
	if err == nil {
		return 0
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(fds[2], msg)
	}
	var badUsage badUsageError
	var exit exitError
	switch {
	case errors.As(err, &badUsage):
		usage(fds[2], fs.FlagSet)
	case errors.As(err, &exit):
		return exit.exit
	}
	return 2
}

// Composite returns a Program made up from other programs. It runs the first
// program that does not return NextProgram.
func Composite(programs ...Program) Program {
	return composite(programs)
}

type composite []Program

func (cp composite) RegisterFlags(fs *FlagSet) {
	for _, p := range cp {
		p.RegisterFlags(fs)
	}
}

func (cp composite) Run(fds [3]*os.File, args []string) error {
	for _, p := range cp {
		err := p.Run(fds, args)
		if err != errNextProgram {
			return err
		}
	}
	// If we have reached here, all subprograms have returned NextProgram.
	return errNoSuitableSubprogram
}

var (
	errNextProgram          = errors.New("internal error: next program")
	errNoSuitableSubprogram = errors.New("internal error: no suitable subprogram")
)

// NextProgram returns a special error that may be returned by Program.Run
// that is part of a Composite program, indicating that the next program should
// be tried.
func NextProgram() error { return errNextProgram }

// BadUsage returns a special error that may be returned by Program.Run. It
// causes the main function to print out a message, the usage information and
// exit with 2.
func BadUsage(msg string) error { return badUsageError{msg} }

type badUsageError struct{ msg string }

func (e badUsageError) Error() string { return e.msg }

// Exit returns a special error that may be returned by Program.Run. It causes
// the main function to exit with the given code without printing any error
// messages. Exit(0) returns nil.
func Exit(exit int) error {
	if exit == 0 {
		return nil
	}
	return exitError{exit}
}

type exitError struct{ exit int }

func (e exitError) Error() string { return "" }
