//go:build !(linux || solaris || darwin || dragonfly || freebsd || netbsd || openbsd)

package term

import "errors"

type termios struct{}

var errUnsupported = errors.New("terminal control not supported on this platform")

// Native is a Terminal backed by the terminal ioctls. It is not supported on
// this platform; all its methods fail.
type Native struct{}

var _ Terminal = Native{}

func (Native) GetAttr(int) (*Attr, error)   { return nil, errUnsupported }
func (Native) SetAttr(int, *Attr) error     { return errUnsupported }
func (Native) SetForeground(int, int) error { return errUnsupported }
