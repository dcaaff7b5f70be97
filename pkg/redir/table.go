// Package redir keeps the standard descriptors that the next evaluation should
// use.
package redir

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/elves/ctlserver/pkg/logutil"
)

var logger = logutil.GetLogger("[redir] ")

// Indices of the three slots.
const (
	In = iota
	Out
	Err
)

var slotNames = [3]string{"stdin", "stdout", "stderr"}

// State is the state of a slot.
type State int

// Possible values of State.
const (
	// The slot uses the host descriptor.
	Inherit State = iota
	// The slot uses a file opened by the table.
	Opened
	// Opening the requested path failed. The slot holds a closed file, so any
	// use of it fails with an I/O error.
	Broken
)

func (s State) String() string {
	switch s {
	case Inherit:
		return "inherit"
	case Opened:
		return "opened"
	case Broken:
		return "broken"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var openFlags = [3]int{os.O_RDONLY, os.O_WRONLY | os.O_CREATE, os.O_WRONLY | os.O_CREATE}

type slot struct {
	state State
	path  string
	file  *os.File
}

// Table holds the three redirection slots. It owns every file it opens; host
// files are never closed. A Table is not safe for concurrent use.
type Table struct {
	host   [3]*os.File
	slots  [3]slot
	broken *os.File
}

// NewTable creates a Table where every slot inherits the corresponding host
// file.
func NewTable(host [3]*os.File) (*Table, error) {
	broken, err := closedFile()
	if err != nil {
		return nil, err
	}
	return &Table{host: host, broken: broken}, nil
}

// OpenError records a failure to open a redirection target.
type OpenError struct {
	Slot string
	Err  error
}

func (e *OpenError) Error() string {
	return "cannot redirect " + e.Slot + ": " + e.Err.Error()
}

func (e *OpenError) Unwrap() error { return e.Err }

// Set replaces all three slots. For each slot, the file opened by a previous
// call is closed first. An empty path makes the slot inherit the host file;
// otherwise the path is opened, read-only for stdin and write-only (created if
// needed) for stdout and stderr. A slot whose path cannot be opened becomes
// Broken. The returned errors describe the slots that became Broken.
func (t *Table) Set(paths [3]string) []error {
	var errs []error
	for i, path := range paths {
		t.release(i)
		if path == "" {
			continue
		}
		f, err := os.OpenFile(path, openFlags[i], 0644)
		if err != nil {
			logger.Printf("%s: %v", slotNames[i], err)
			t.slots[i] = slot{state: Broken, path: path}
			errs = append(errs, &OpenError{slotNames[i], err})
			continue
		}
		t.slots[i] = slot{state: Opened, path: path, file: f}
	}
	return errs
}

// Files returns the files that an evaluation should use.
func (t *Table) Files() [3]*os.File {
	var files [3]*os.File
	for i, s := range t.slots {
		switch s.state {
		case Opened:
			files[i] = s.file
		case Broken:
			files[i] = t.broken
		default:
			files[i] = t.host[i]
		}
	}
	return files
}

// State returns the state of slot i and the path requested for it.
func (t *Table) State(i int) (State, string) {
	return t.slots[i].state, t.slots[i].path
}

// Close closes all files owned by the table and resets every slot to Inherit.
func (t *Table) Close() error {
	var errs []error
	for i := range t.slots {
		if err := t.release(i); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *Table) release(i int) error {
	s := t.slots[i]
	t.slots[i] = slot{}
	// Only files opened by Set are owned.
	if s.state != Opened {
		return nil
	}
	err := s.file.Close()
	if err != nil {
		logger.Printf("closing %s (%s): %v", slotNames[i], s.path, err)
	}
	return err
}

// IsExhaustion reports whether err is caused by running out of file
// descriptors.
func IsExhaustion(err error) bool {
	return errors.Is(err, syscall.EMFILE) || errors.Is(err, syscall.ENFILE)
}

// Returns a file whose descriptor has already been closed.
func closedFile() (*os.File, error) {
	fd, err := unix.Open(os.DevNull, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", os.DevNull, err)
	}
	f := os.NewFile(uintptr(fd), "[broken redirection]")
	f.Close()
	return f, nil
}
