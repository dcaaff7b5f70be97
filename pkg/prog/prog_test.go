package prog

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"src.elv.sh/pkg/must"
)

type testProgram struct {
	shouldRun bool
	err       error
	ran       *[]string
	name      string
}

func (p testProgram) RegisterFlags(fs *FlagSet) {
	fs.JSON()
}

func (p testProgram) Run(fds [3]*os.File, args []string) error {
	if !p.shouldRun {
		return NextProgram()
	}
	*p.ran = append(*p.ran, p.name)
	return p.err
}

func run(t *testing.T, p Program, args ...string) (int, string, string) {
	t.Helper()
	r1, w1 := must.Pipe()
	r2, w2 := must.Pipe()
	in := must.OK1(os.Open(os.DevNull))
	defer in.Close()
	exit := Run([3]*os.File{in, w1, w2}, append([]string{"elvish-server"}, args...), p)
	w1.Close()
	w2.Close()
	return exit, string(must.OK1(io.ReadAll(r1))), string(must.OK1(io.ReadAll(r2)))
}

func TestComposite_RunsFirstSuitableProgram(t *testing.T) {
	var ran []string
	p := Composite(
		testProgram{name: "a", ran: &ran},
		testProgram{name: "b", shouldRun: true, ran: &ran},
		testProgram{name: "c", shouldRun: true, ran: &ran},
	)
	exit, _, _ := run(t, p)
	if exit != 0 || len(ran) != 1 || ran[0] != "b" {
		t.Errorf("exit %d, ran %v; want exit 0, ran [b]", exit, ran)
	}
}

func TestComposite_NoSuitableProgram(t *testing.T) {
	var ran []string
	exit, _, stderr := run(t, Composite(testProgram{ran: &ran}))
	if exit != 2 || !strings.Contains(stderr, "no suitable subprogram") {
		t.Errorf("exit %d, stderr %q", exit, stderr)
	}
}

func TestRun_BadFlag(t *testing.T) {
	var ran []string
	exit, _, stderr := run(t, testProgram{ran: &ran}, "-bad-flag")
	if exit != 2 || !strings.Contains(stderr, "Usage:") {
		t.Errorf("exit %d, stderr %q", exit, stderr)
	}
}

func TestRun_Help(t *testing.T) {
	var ran []string
	exit, stdout, _ := run(t, testProgram{ran: &ran}, "-help")
	if exit != 0 || !strings.Contains(stdout, "-json") {
		t.Errorf("exit %d, stdout %q", exit, stdout)
	}
}

func TestRun_ErrorKinds(t *testing.T) {
	var ran []string
	tests := []struct {
		err        error
		wantExit   int
		wantStderr string
	}{
		{Exit(0), 0, ""},
		{Exit(127), 127, ""},
		{BadUsage("lorem"), 2, "lorem\nUsage:"},
		{errors.New("ipsum"), 2, "ipsum\n"},
	}
	for _, test := range tests {
		exit, _, stderr := run(t, testProgram{shouldRun: true, err: test.err, ran: &ran})
		if exit != test.wantExit || !strings.HasPrefix(stderr, test.wantStderr) {
			t.Errorf("with error %v: exit %d, stderr %q; want %d, prefix %q",
				test.err, exit, stderr, test.wantExit, test.wantStderr)
		}
	}
}
