package wire

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

var tokenizerTests = []struct {
	name   string
	req    string
	tokens []string
	rest   string
}{
	{"empty", "", []string{""}, ""},
	{"only whitespace", " \t\r\n", []string{""}, ""},
	{"method only", "exit", []string{"exit", ""}, ""},
	{"leading whitespace", "  \texit", []string{"exit"}, ""},
	{"stdio with three paths", "stdio /in /out /err", []string{"stdio", "/in", "/out", "/err", ""}, ""},
	{"stdio with trailing empty paths", "stdio /no/such/file  ", []string{"stdio", "/no/such/file", "", ""}, ""},
	{"all whitespace kinds", "a\tb\nc\rd e", []string{"a", "b", "c", "d", "e", ""}, ""},
	{"rest is verbatim", "run echo  a\tb\n", []string{"run"}, "echo  a\tb\n"},
	{"rest after whitespace-only payload", "run   ", []string{"run"}, ""},
}

func TestTokenizer(t *testing.T) {
	for _, test := range tokenizerTests {
		t.Run(test.name, func(t *testing.T) {
			tk := NewTokenizer([]byte(test.req))
			var tokens []string
			for range test.tokens {
				tokens = append(tokens, tk.Next())
			}
			if diff := cmp.Diff(test.tokens, tokens); diff != "" {
				t.Errorf("tokens (-want +got):\n%s", diff)
			}
			if rest := tk.Rest(); rest != test.rest {
				t.Errorf("Rest() -> %q, want %q", rest, test.rest)
			}
		})
	}
}

func TestTokenizer_SplitsOnEveryWhitespaceByte(t *testing.T) {
	for i := 0; i < len(Whitespace); i++ {
		sep := string(Whitespace[i])
		tk := NewTokenizer([]byte("stdio" + sep + "a" + sep + sep + "b"))
		got := []string{tk.Next(), tk.Next(), tk.Next(), tk.Next()}
		if diff := cmp.Diff([]string{"stdio", "a", "b", ""}, got); diff != "" {
			t.Errorf("separator %q: tokens (-want +got):\n%s", sep, diff)
		}
	}
}

func TestParseMethod(t *testing.T) {
	for token, want := range map[string]Method{
		"stdio": SetIO, "run": Run, "exit": Exit,
		"": Unknown, "RUN": Unknown, "stdin": Unknown,
	} {
		if got := ParseMethod(token); got != want {
			t.Errorf("ParseMethod(%q) -> %v, want %v", token, got, want)
		}
	}
}
