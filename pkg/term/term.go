// Package term abstracts the terminal-control operations used for job control.
//
// The server has no controlling terminal of its own, so the interpreter never
// talks to a TTY directly. It goes through a Terminal instead. Headless is the
// implementation used when serving a controller: it never fails and forwards
// foreground process group changes to the controller. Native performs the real
// ioctls and is useful when debugging the server from a terminal.
package term

import (
	"github.com/mattn/go-isatty"
)

// Attr holds terminal attributes. The zero value holds no attributes and is
// what Headless returns.
type Attr struct {
	termios *termios
}

// Terminal is the set of terminal-control operations used by job control.
type Terminal interface {
	// GetAttr returns the attributes of the terminal open on fd.
	GetAttr(fd int) (*Attr, error)
	// SetAttr restores attributes returned by GetAttr.
	SetAttr(fd int, a *Attr) error
	// SetForeground makes pgid the foreground process group of the terminal
	// open on fd.
	SetForeground(fd int, pgid int) error
}

// Headless is a Terminal that performs no terminal I/O. All its methods
// succeed; SetForeground calls Notify so that the controller, which owns the
// real terminal if there is one, can do the bookkeeping.
type Headless struct {
	Notify func(pgid int)
}

var _ Terminal = Headless{}

// GetAttr returns an empty Attr.
func (Headless) GetAttr(int) (*Attr, error) { return &Attr{}, nil }

// SetAttr does nothing.
func (Headless) SetAttr(int, *Attr) error { return nil }

// SetForeground calls h.Notify with pgid, if h.Notify is not nil.
func (h Headless) SetForeground(_ int, pgid int) error {
	if h.Notify != nil {
		h.Notify(pgid)
	}
	return nil
}

// IsTerminal reports whether fd refers to a terminal.
func IsTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
