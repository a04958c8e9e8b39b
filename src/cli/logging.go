// Contains utility functions related to logging.

package cli

import (
	"os"

	"golang.org/x/term"
	"gopkg.in/op/go-logging.v1"
)

// InitLogging initialises logging backends at the given verbosity.
func InitLogging(verbosity Verbosity) {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, logFormatter())
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(logging.Level(verbosity), "")
	logging.SetBackend(leveled)
}

// InitFileLogging adds a logging backend to a file in addition to stderr.
func InitFileLogging(verbosity, fileVerbosity Verbosity, filename string) error {
	file, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return err
	}
	stderrBackend := logging.AddModuleLevel(logging.NewBackendFormatter(logging.NewLogBackend(os.Stderr, "", 0), logFormatter()))
	stderrBackend.SetLevel(logging.Level(verbosity), "")
	fileBackend := logging.AddModuleLevel(logging.NewBackendFormatter(logging.NewLogBackend(file, "", 0), fileFormatter()))
	fileBackend.SetLevel(logging.Level(fileVerbosity), "")
	logging.SetBackend(logging.MultiLogger(stderrBackend, fileBackend))
	return nil
}

func logFormatter() logging.Formatter {
	format := "%{time:15:04:05.000} %{level:7s}: %{message}"
	if term.IsTerminal(int(os.Stderr.Fd())) {
		format = "%{color}" + format + "%{color:reset}"
	}
	return logging.MustStringFormatter(format)
}

func fileFormatter() logging.Formatter {
	return logging.MustStringFormatter("%{time:15:04:05.000} %{level:7s}: %{shortfunc}: %{message}")
}
