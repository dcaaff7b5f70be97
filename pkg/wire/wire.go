// Package wire implements the side-channel protocol spoken between the server
// and its controller.
//
// Requests are NUL-terminated strings. The first whitespace-delimited token of
// a request is the method:
//
//	stdio <in> <out> <err>
//	run <code...>
//	exit
//
// Responses and notifications are single lines of JSON-compatible records,
// written with one Write call each.
package wire

// Method is the method of a request.
type Method int

// Possible values of Method.
const (
	Unknown Method = iota
	SetIO
	Run
	Exit
)

var methodNames = map[string]Method{
	"stdio": SetIO,
	"run":   Run,
	"exit":  Exit,
}

// ParseMethod maps a method token to a Method. Tokens that are not recognized,
// including the empty token, map to Unknown.
func ParseMethod(token string) Method {
	return methodNames[token]
}

func (m Method) String() string {
	switch m {
	case SetIO:
		return "stdio"
	case Run:
		return "run"
	case Exit:
		return "exit"
	default:
		return "unknown"
	}
}
