package cmd

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wharflab/pslint/internal/version"
)

// NewApp creates the CLI application
func NewApp() *cli.Command {
	return &cli.Command{
		Name:    "pslint",
		Usage:   "A static analyzer for PowerShell scripts and modules",
		Version: version.Version(),
		Description: `pslint checks PowerShell scripts (.ps1), modules (.psm1), manifests (.psd1)
and DSC resources for best practices, security issues and common mistakes.

Syntax trees come from analysis bundles (<script>.psast.json) exported by the
PowerShell host; scripts without a bundle get the source-only checks.

Examples:
  pslint lint Build.ps1
  pslint lint --fail-level warning .
  pslint lint --fix --fix-rule PSAvoidTrailingWhitespace src/
  pslint rules`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Diagnostic log level: trace, debug, info, warn, error",
				Value:   "warn",
				Sources: cli.EnvVars("PSLINT_LOG_LEVEL"),
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			lintCommand(),
			rulesCommand(),
			schemaCommand(),
			versionCommand(),
		},
	}
}

// setupLogging routes logrus to stderr so reports on stdout stay clean.
func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level, err := logrus.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return ctx, cli.Exit("Error: "+err.Error(), ExitConfigError)
	}
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logrus.SetLevel(level)
	return ctx, nil
}

// Execute runs the CLI application
func Execute() error {
	return NewApp().Run(context.Background(), os.Args)
}
