package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/wharflab/pslint/internal/config"
)

// schemaCommand prints the configuration JSON Schema for editor integration.
func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON Schema of .pslint.toml",
		Action: func(_ context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprint(cmd.Root().Writer, config.Schema())
			return err
		},
	}
}
