//go:build linux || solaris || darwin || dragonfly || freebsd || netbsd || openbsd

package term

import (
	"errors"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

type termios = unix.Termios

var errNoAttr = errors.New("no terminal attributes to restore")

// Native is a Terminal backed by the terminal ioctls.
type Native struct{}

var _ Terminal = Native{}

// GetAttr reads the termios of fd.
func (Native) GetAttr(fd int) (*Attr, error) {
	t, err := unix.IoctlGetTermios(fd, getAttrIOCTL)
	if err != nil {
		return nil, err
	}
	return &Attr{t}, nil
}

// SetAttr writes the termios in a to fd, after draining pending output.
func (Native) SetAttr(fd int, a *Attr) error {
	if a == nil || a.termios == nil {
		return errNoAttr
	}
	return unix.IoctlSetTermios(fd, setAttrDrainIOCTL, a.termios)
}

// SetForeground calls tcsetpgrp(3) on fd. If the calling process is in the
// background, tcsetpgrp would stop it with SIGTTOU; the signal is ignored for
// the duration of the call.
func (Native) SetForeground(fd int, pgid int) error {
	signal.Ignore(syscall.SIGTTOU)
	defer signal.Reset(syscall.SIGTTOU)
	return unix.IoctlSetPointerInt(fd, unix.TIOCSPGRP, pgid)
}
