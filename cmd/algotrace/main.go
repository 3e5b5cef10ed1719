package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/algotrace/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands print their own diagnostics; cobra-level errors (bad flags,
		// invalid --format) still need reporting.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
