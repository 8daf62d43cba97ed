// Command mirror loads worlds of typed values and inspects them through
// mirrors.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/mirror/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
