package wire

import "strings"

// Whitespace contains the bytes that separate tokens.
const Whitespace = " \t\n\r"

func isSpace(b byte) bool {
	return strings.IndexByte(Whitespace, b) >= 0
}

// Tokenizer splits a request into whitespace-delimited tokens.
type Tokenizer struct {
	buf []byte
	pos int
}

// NewTokenizer creates a Tokenizer positioned at the first token of req.
func NewTokenizer(req []byte) *Tokenizer {
	t := &Tokenizer{buf: req}
	t.skipSpace()
	return t
}

// Next consumes and returns the next token, and skips the whitespace following
// it. It returns "" when there are no more tokens.
func (t *Tokenizer) Next() string {
	start := t.pos
	for t.pos < len(t.buf) && !isSpace(t.buf[t.pos]) {
		t.pos++
	}
	token := string(t.buf[start:t.pos])
	t.skipSpace()
	return token
}

// Rest returns everything that has not been consumed yet, verbatim.
func (t *Tokenizer) Rest() string {
	return string(t.buf[t.pos:])
}

func (t *Tokenizer) skipSpace() {
	for t.pos < len(t.buf) && isSpace(t.buf[t.pos]) {
		t.pos++
	}
}
