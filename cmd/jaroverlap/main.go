package main

import (
	"os"

	"github.com/terassyi/jaroverlap/internal/errors"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		formatter := errors.NewFormatter(os.Stderr, noColor)
		formatter.Print(err)
		os.Exit(errors.ExitCode(err))
	}
}
