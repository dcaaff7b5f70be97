// Package logutil provides logging utilities.
//
// All loggers created by GetLogger share one output, which discards everything
// until SetOutput or SetOutputFile is called. This keeps the protocol streams
// free of log lines unless the user asks for a log file.
package logutil

import (
	"io"
	"log"
	"os"
	"sync"
)

var (
	mu      sync.Mutex
	out     io.Writer = io.Discard
	file    *os.File
	loggers []*log.Logger
)

// GetLogger gets a logger with the given prefix.
func GetLogger(prefix string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	logger := log.New(out, prefix, log.LstdFlags|log.Lmicroseconds)
	loggers = append(loggers, logger)
	return logger
}

// SetOutput redirects the output of all loggers obtained with GetLogger to the
// new io.Writer. If the old output was a file opened by SetOutputFile, it is
// closed.
func SetOutput(newout io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	setOutput(newout)
	if file != nil {
		file.Close()
		file = nil
	}
}

// SetOutputFile redirects the output of all loggers obtained with GetLogger to
// the named file. The file is opened for appending. If fname is empty, the
// output is discarded.
func SetOutputFile(fname string) error {
	if fname == "" {
		SetOutput(io.Discard)
		return nil
	}
	f, err := os.OpenFile(fname, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	old := file
	setOutput(f)
	file = f
	if old != nil {
		old.Close()
	}
	return nil
}

func setOutput(newout io.Writer) {
	out = newout
	for _, logger := range loggers {
		logger.SetOutput(out)
	}
}
