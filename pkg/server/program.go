package server

import (
	"errors"
	"fmt"
	"os"

	"src.elv.sh/pkg/diag"
	"src.elv.sh/pkg/eval"

	"github.com/elves/ctlserver/pkg/gateway"
	"github.com/elves/ctlserver/pkg/histstore"
	"github.com/elves/ctlserver/pkg/logutil"
	"github.com/elves/ctlserver/pkg/prog"
	"github.com/elves/ctlserver/pkg/term"
)

// Program is the server subprogram. It always runs, so it should be the last
// one in a prog.Composite.
type Program struct {
	configPath string
	flags      Config
	history    bool
	log        *string
	json       *bool

	// Used in tests.
	opts Opts
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.StringVar(&p.configPath, "config", "", "path to a YAML configuration file")
	fs.StringVar(&p.flags.DB, "db", "", "path to the history database")
	fs.StringVar(&p.flags.RC, "rc", "", "path to an Elvish script to evaluate before serving")
	fs.StringVar(&p.flags.Terminal, "terminal", "",
		"terminal implementation: headless (default), native or auto")
	fs.BoolVar(&p.history, "history", false, "print the history recorded in -db and quit")
	p.log = fs.Log()
	p.json = fs.JSON()
}

func (p *Program) Run(fds [3]*os.File, args []string) error {
	if len(args) > 0 {
		return prog.BadUsage("arguments are not allowed")
	}
	cfg, err := p.config()
	if err != nil {
		return err
	}
	if *p.log == "" && cfg.Log != "" {
		if err := logutil.SetOutputFile(cfg.Log); err != nil {
			fmt.Fprintln(fds[2], "Warning:", err)
		}
	}
	if p.history {
		return printHistory(fds, cfg.DB, *p.json)
	}

	var st histstore.Store
	if cfg.DB != "" {
		st, err = histstore.Open(cfg.DB)
		if err != nil {
			fmt.Fprintln(fds[2], "Warning: cannot open history database:", err)
			fmt.Fprintln(fds[2], "History will not be recorded.")
		} else {
			defer st.Close()
		}
	}

	s, err := New(fds, p.opts)
	if err != nil {
		return err
	}
	defer s.Close()

	gw := gateway.NewElvish(eval.NewEvaler(), gateway.Config{
		Terminal: selectTerminal(cfg.Terminal, fds[0], s.NotifyPgid),
		History:  st,
	})
	if cfg.RC != "" {
		err := gw.Source(cfg.RC, fds)
		var end gateway.SessionEnd
		if errors.As(err, &end) {
			return prog.Exit(end.Code)
		} else if err != nil {
			diag.ShowError(fds[2], err)
		}
	}

	logger.Println("serving, pid", os.Getpid())
	return prog.Exit(s.Serve(fds[0], gw))
}

func (p *Program) config() (Config, error) {
	var cfg Config
	if p.configPath != "" {
		var err error
		cfg, err = LoadConfig(p.configPath)
		if err != nil {
			return Config{}, err
		}
	}
	if err := p.flags.validate(); err != nil {
		return Config{}, prog.BadUsage(err.Error())
	}
	return cfg.Merge(p.flags), nil
}

func selectTerminal(kind string, in *os.File, notify func(int)) term.Terminal {
	switch kind {
	case TerminalNative:
		return term.Native{}
	case TerminalAuto:
		if term.IsTerminal(in.Fd()) {
			logger.Println("stdin is a terminal, using native terminal")
			return term.Native{}
		}
	}
	return term.Headless{Notify: notify}
}
