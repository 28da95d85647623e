package main

import (
	"errors"
	"os"

	"pdf2tsv/pkg/logger"

	"github.com/urfave/cli/v2"
)

func main() {
	err := newApp().Run(os.Args)
	if err == nil {
		return
	}
	logger.Error(err, "pdf2tsv failed")
	code := 1
	var exit cli.ExitCoder
	if errors.As(err, &exit) {
		code = exit.ExitCode()
	}
	os.Exit(code)
}
