package wire

import (
	"bufio"
	"io"

	"github.com/elves/ctlserver/pkg/logutil"
)

var logger = logutil.GetLogger("[wire] ")

// Sentinel is the byte that terminates each request.
const Sentinel = 0

// Reader extracts requests from a byte stream.
type Reader struct {
	r *bufio.Reader
}

// NewReader creates a Reader reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{bufio.NewReader(r)}
}

// Next reads the next request, excluding its terminating NUL byte. It returns
// io.EOF when the stream ends. Data after the last NUL byte is discarded, since
// a request is only complete once its terminator has been seen.
func (r *Reader) Next() ([]byte, error) {
	req, err := r.r.ReadBytes(Sentinel)
	if err != nil {
		if len(req) > 0 {
			logger.Printf("discarding %d bytes of unterminated request", len(req))
		}
		return nil, err
	}
	return req[:len(req)-1], nil
}
