package wire

import (
	"io"
	"strconv"
)

// Response is the record sent back for each run request.
type Response struct {
	Done   bool
	Exit   int
	Dir    string
	Errors []string
}

// PgidNotification tells the controller which process group would have become
// the foreground process group of the terminal.
type PgidNotification struct {
	Pgid int
}

// AppendResponse appends the encoding of r, including the trailing newline, to
// b. The fields are always written in the order Done, Exit, Dir, Errors;
// Errors is omitted when empty.
func AppendResponse(b []byte, r Response) []byte {
	b = append(b, `{"Done": `...)
	b = strconv.AppendBool(b, r.Done)
	b = append(b, `, "Exit": `...)
	b = strconv.AppendInt(b, int64(r.Exit), 10)
	b = append(b, `, "Dir": `...)
	b = appendQuoted(b, r.Dir)
	if len(r.Errors) > 0 {
		b = append(b, `, "Errors": [`...)
		for i, e := range r.Errors {
			if i > 0 {
				b = append(b, ", "...)
			}
			b = appendQuoted(b, e)
		}
		b = append(b, ']')
	}
	return append(b, "}\n"...)
}

// AppendPgid appends the encoding of n, including the trailing newline, to b.
func AppendPgid(b []byte, n PgidNotification) []byte {
	b = append(b, `{"Pgid": `...)
	b = strconv.AppendInt(b, int64(n.Pgid), 10)
	return append(b, "}\n"...)
}

// WriteResponse writes the encoding of r to w with a single Write call.
func WriteResponse(w io.Writer, r Response) error {
	_, err := w.Write(AppendResponse(nil, r))
	return err
}

// WritePgid writes the encoding of n to w with a single Write call.
func WritePgid(w io.Writer, n PgidNotification) error {
	_, err := w.Write(AppendPgid(nil, n))
	return err
}

func appendQuoted(b []byte, s string) []byte {
	b = append(b, '"')
	b = AppendEscaped(b, s)
	return append(b, '"')
}

const hexDigits = "0123456789abcdef"

// Escape escapes s so that it can be put between double quotes in a record.
func Escape(s string) string {
	return string(AppendEscaped(nil, s))
}

// AppendEscaped appends the escaped form of s to b.
//
// Backslashes and double quotes are prefixed with a backslash; \b, \r, \n, \t
// and \f use their two-character forms; other bytes below 0x20 are written as
// \u00XX. All other bytes are copied unchanged, including bytes that are not
// valid UTF-8; a JSON decoder replaces those with U+FFFD, so such strings do not
// survive a round trip through encoding/json.
func AppendEscaped(b []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\b':
			b = append(b, `\b`...)
		case '\r':
			b = append(b, `\r`...)
		case '\n':
			b = append(b, `\n`...)
		case '\t':
			b = append(b, `\t`...)
		case '\f':
			b = append(b, `\f`...)
		case '\\', '"':
			b = append(b, '\\', c)
		default:
			if c < 0x20 {
				b = append(b, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
			} else {
				b = append(b, c)
			}
		}
	}
	return b
}
