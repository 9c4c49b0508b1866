// Command pslint lints PowerShell scripts, modules and DSC resources.
package main

import (
	"os"

	"github.com/wharflab/pslint/cmd/pslint/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitConfigError)
	}
}
