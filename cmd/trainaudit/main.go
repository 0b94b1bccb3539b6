// Command trainaudit audits a timeline of weekly training-plan snapshots.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/trainaudit/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "trainaudit: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
