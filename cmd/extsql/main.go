// Command extsql builds database extension installation scripts from
// entity descriptor manifests.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/extsql/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, "extsql:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
