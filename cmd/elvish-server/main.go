// Elvish-server runs an Elvish interpreter on behalf of a controller process.
// The controller writes NUL-terminated requests to the standard input and reads
// one JSON record per evaluation from the standard output.
package main

import (
	"os"

	"github.com/elves/ctlserver/pkg/buildinfo"
	"github.com/elves/ctlserver/pkg/prog"
	"github.com/elves/ctlserver/pkg/server"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(&buildinfo.Program{}, &server.Program{})))
}
