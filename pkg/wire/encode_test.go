package wire

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var escapeTests = []struct {
	in, want string
}{
	{"", ""},
	{"/home/elf", "/home/elf"},
	{`a"b`, `a\"b`},
	{`a\b`, `a\\b`},
	{"\b\r\n\t\f", `\b\r\n\t\f`},
	{"\x00\x01\x1f", `\u0000\u0001\u001f`},
	{"\x1b[31m", `\u001b[31m`},
	{" ~\x7f", " ~\x7f"},
	{"/tmp/éléphant", "/tmp/éléphant"},
}

func TestEscape(t *testing.T) {
	for _, test := range escapeTests {
		if got := Escape(test.in); got != test.want {
			t.Errorf("Escape(%q) -> %q, want %q", test.in, got, test.want)
		}
	}
}

var responseTests = []struct {
	name string
	r    Response
	want string
}{
	{
		"no errors",
		Response{Done: true, Exit: 0, Dir: "/tmp"},
		`{"Done": true, "Exit": 0, "Dir": "/tmp"}` + "\n",
	},
	{
		"with errors",
		Response{Done: true, Exit: 123, Dir: "/", Errors: []string{"bad", `"quoted"`}},
		`{"Done": true, "Exit": 123, "Dir": "/", "Errors": ["bad", "\"quoted\""]}` + "\n",
	},
	{
		"not done",
		Response{Exit: 1, Dir: ""},
		`{"Done": false, "Exit": 1, "Dir": ""}` + "\n",
	},
}

func TestAppendResponse(t *testing.T) {
	for _, test := range responseTests {
		t.Run(test.name, func(t *testing.T) {
			if got := string(AppendResponse(nil, test.r)); got != test.want {
				t.Errorf("got %q, want %q", got, test.want)
			}
		})
	}
}

func TestAppendResponse_DecodesWithEncodingJSON(t *testing.T) {
	want := Response{
		Done:   true,
		Exit:   2,
		Dir:    "/tmp/we\"ird\\dir\nwith\x01controls\ttoo",
		Errors: []string{"line 1\nline 2", "\x7f\x1b"},
	}
	encoded := AppendResponse(nil, want)
	if bytes.Count(encoded, []byte("\n")) != 1 || encoded[len(encoded)-1] != '\n' {
		t.Errorf("encoding %q is not exactly one line", encoded)
	}
	var got Response
	if err := json.Unmarshal(encoded, &got); err != nil {
		t.Fatalf("json.Unmarshal -> %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded response (-want +got):\n%s", diff)
	}
}

func TestAppendEscaped_InvalidUTF8CopiedUnchanged(t *testing.T) {
	dir := "/tmp/\xff\xfe"
	if got := Escape(dir); got != dir {
		t.Errorf("Escape(%q) -> %q, want input unchanged", dir, got)
	}
	var got Response
	if err := json.Unmarshal(AppendResponse(nil, Response{Dir: dir}), &got); err != nil {
		t.Fatalf("json.Unmarshal -> %v", err)
	}
	if want := "/tmp/\ufffd\ufffd"; got.Dir != want {
		t.Errorf("decoded Dir %q, want %q", got.Dir, want)
	}
}

func TestWritePgid(t *testing.T) {
	var buf bytes.Buffer
	WritePgid(&buf, PgidNotification{Pgid: 4242})
	if got, want := buf.String(), `{"Pgid": 4242}`+"\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	var decoded PgidNotification
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil || decoded.Pgid != 4242 {
		t.Errorf("decoded %v, %v", decoded, err)
	}
}

type countingWriter struct {
	calls int
	bytes.Buffer
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.calls++
	return w.Buffer.Write(p)
}

func TestWriteResponse_UsesOneWrite(t *testing.T) {
	w := &countingWriter{}
	WriteResponse(w, Response{Done: true, Dir: "/", Errors: []string{"a", "b"}})
	if w.calls != 1 {
		t.Errorf("WriteResponse called Write %d times, want 1", w.calls)
	}
}
