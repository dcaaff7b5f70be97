// Package buildinfo contains build information.
//
// Build information should be set during compilation by passing
// -ldflags "-X github.com/elves/ctlserver/pkg/buildinfo.VersionSuffix=value"
// to "go build".
package buildinfo

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/elves/ctlserver/pkg/prog"
)

// Version identifies the version of the server. On development commits, it
// identifies the next release.
const Version = "0.3.0"

// VersionSuffix is appended to Version to build the full version string.
var VersionSuffix = "-dev.unknown"

// Info contains all the build information.
type Info struct {
	Version       string `json:"version"`
	GoVersion     string `json:"goversion"`
	ElvishVersion string `json:"elvishversion"`
}

// Value contains the build information of this binary.
var Value = Info{
	Version:       Version + VersionSuffix,
	GoVersion:     runtime.Version(),
	ElvishVersion: elvishVersion(debug.ReadBuildInfo()),
}

func elvishVersion(bi *debug.BuildInfo, ok bool) string {
	if !ok {
		return "unknown"
	}
	for _, dep := range bi.Deps {
		if dep.Path == "src.elv.sh" {
			if dep.Replace != nil {
				return dep.Replace.Version
			}
			return dep.Version
		}
	}
	return "unknown"
}

// Program is the buildinfo subprogram.
type Program struct {
	version, buildinfo bool
	json               *bool
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.version, "version", false, "show version and quit")
	fs.BoolVar(&p.buildinfo, "buildinfo", false, "show build info and quit")
	p.json = fs.JSON()
}

func (p *Program) Run(fds [3]*os.File, _ []string) error {
	switch {
	case p.buildinfo:
		if *p.json {
			fmt.Fprintln(fds[1], mustToJSON(Value))
		} else {
			fmt.Fprintln(fds[1], "Version:", Value.Version)
			fmt.Fprintln(fds[1], "Go version:", Value.GoVersion)
			fmt.Fprintln(fds[1], "Elvish version:", Value.ElvishVersion)
		}
	case p.version:
		if *p.json {
			fmt.Fprintln(fds[1], mustToJSON(Value.Version))
		} else {
			fmt.Fprintln(fds[1], Value.Version)
		}
	default:
		return prog.NextProgram()
	}
	return nil
}

func mustToJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
