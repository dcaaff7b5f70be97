package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/elves/ctlserver/pkg/histstore"
)

var errNoDB = errors.New("-history requires a history database; pass -db or set db in the configuration")

// Prints the history recorded in the database at path, one entry per line.
func printHistory(fds [3]*os.File, path string, asJSON bool) error {
	if path == "" {
		return errNoDB
	}
	st, err := histstore.Open(path)
	if err != nil {
		return fmt.Errorf("open history database: %w", err)
	}
	defer st.Close()

	next, err := st.NextCmdSeq()
	if err != nil {
		return err
	}
	cmds, err := st.CmdsWithSeq(0, next)
	if err != nil {
		return err
	}
	for _, cmd := range cmds {
		if asJSON {
			b, err := json.Marshal(struct {
				Seq  int    `json:"seq"`
				Text string `json:"text"`
			}{cmd.Seq, cmd.Text})
			if err != nil {
				return err
			}
			fmt.Fprintf(fds[1], "%s\n", b)
		} else {
			fmt.Fprintf(fds[1], "%5d  %s\n", cmd.Seq, cmd.Text)
		}
	}
	return nil
}
