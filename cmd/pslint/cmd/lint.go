package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gkampitakis/ciinfo"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wharflab/pslint/internal/config"
	"github.com/wharflab/pslint/internal/discovery"
	"github.com/wharflab/pslint/internal/fix"
	"github.com/wharflab/pslint/internal/linter"
	"github.com/wharflab/pslint/internal/reporter"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/version"
)

// Exit codes
const (
	ExitSuccess     = 0 // No diagnostics (or below fail-level threshold)
	ExitViolations  = 1 // Diagnostics found at or above fail-level
	ExitConfigError = 2 // Config, discovery or output error
	ExitNoFiles     = 3 // No scripts found (missing file, empty glob, empty directory)
)

func lintCommand() *cli.Command {
	return &cli.Command{
		Name:      "lint",
		Usage:     "Lint PowerShell scripts for issues",
		ArgsUsage: "[PATH...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (default: auto-discover)",
				Sources: cli.EnvVars("PSLINT_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, sarif, github-actions, markdown",
				Sources: cli.EnvVars("PSLINT_FORMAT", "PSLINT_OUTPUT_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path: stdout, stderr, or file path",
				Sources: cli.EnvVars("PSLINT_OUTPUT_PATH"),
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Usage:   "Disable colored output",
				Sources: cli.EnvVars("NO_COLOR"),
			},
			&cli.BoolFlag{
				Name:    "show-source",
				Usage:   "Show source code snippets (default: true)",
				Value:   true,
				Sources: cli.EnvVars("PSLINT_OUTPUT_SHOW_SOURCE"),
			},
			&cli.BoolFlag{
				Name:  "hide-source",
				Usage: "Hide source code snippets",
			},
			&cli.StringFlag{
				Name:    "fail-level",
				Usage:   "Minimum severity to cause non-zero exit: parseerror, error, warning, information, none",
				Sources: cli.EnvVars("PSLINT_OUTPUT_FAIL_LEVEL"),
			},
			&cli.StringSliceFlag{
				Name:    "exclude",
				Usage:   "Glob pattern to exclude files (can be repeated)",
				Sources: cli.EnvVars("PSLINT_EXCLUDE"),
			},
			&cli.StringSliceFlag{
				Name:    "select",
				Usage:   "Enable specific rules (pattern: rule name, PSDSC*, *)",
				Sources: cli.EnvVars("PSLINT_RULES_SELECT"),
			},
			&cli.StringSliceFlag{
				Name:    "ignore",
				Usage:   "Disable specific rules (pattern: rule name, PSDSC*, *)",
				Sources: cli.EnvVars("PSLINT_RULES_IGNORE"),
			},
			&cli.StringFlag{
				Name:    "catalog",
				Usage:   "Command catalog (TOML) describing commands known to the session",
				Sources: cli.EnvVars("PSLINT_SESSION_COMMAND_CATALOG"),
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "Number of files linted concurrently (0 = number of CPUs)",
				Sources: cli.EnvVars("PSLINT_JOBS"),
			},
			&cli.BoolFlag{
				Name:    "fix",
				Usage:   "Apply suggested corrections in place",
				Sources: cli.EnvVars("PSLINT_FIX"),
			},
			&cli.StringSliceFlag{
				Name:    "fix-rule",
				Usage:   "Only fix specific rules (can be repeated)",
				Sources: cli.EnvVars("PSLINT_FIX_RULE"),
			},
		},
		Action: runLint,
	}
}

// lintResults holds the aggregated results of linting all discovered files.
type lintResults struct {
	diagnostics []rules.Diagnostic
	results     []*linter.Result
	fileSources map[string][]byte
	fileConfigs map[string]*config.Config
	firstCfg    *config.Config
}

func runLint(ctx context.Context, cmd *cli.Command) error {
	stderr := cmd.Root().ErrWriter

	inputs := cmd.Args().Slice()
	if len(inputs) == 0 {
		inputs = []string{"."}
	}

	discovered, err := discovery.Discover(inputs, discovery.Options{
		Patterns:        discovery.DefaultPatterns(),
		ExcludePatterns: cmd.StringSlice("exclude"),
	})
	if err != nil {
		var notFound *discovery.FileNotFoundError
		if errors.As(err, &notFound) {
			fmt.Fprintf(stderr, "Error: %v\n", notFound)
			return cli.Exit("", ExitNoFiles)
		}
		fmt.Fprintf(stderr, "Error: failed to discover files: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	if len(discovered) == 0 {
		reportNoFilesFound(stderr, inputs)
		return cli.Exit("", ExitNoFiles)
	}

	res, err := lintFiles(ctx, discovered, cmd)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	// Each file gets its own config for rule enable/disable, severity, etc.
	chain, suppressions := linter.Processors()
	procCtx := linter.ProcessorContext(res.firstCfg, res.results...)
	diags := chain.Process(res.diagnostics, procCtx)
	if n := len(suppressions.Suppressed()); n > 0 {
		logrus.Debugf("%d diagnostics suppressed by SuppressMessageAttribute", n)
	}

	if len(cmd.StringSlice("fix-rule")) > 0 && !cmd.Bool("fix") {
		fmt.Fprintf(stderr, "Warning: --fix-rule has no effect without --fix\n")
	}
	if cmd.Bool("fix") {
		fixResult, err := applyFixes(cmd, diags, res)
		if err != nil {
			fmt.Fprintf(stderr, "Error: failed to apply fixes: %v\n", err)
			return cli.Exit("", ExitConfigError)
		}
		if fixResult.TotalApplied() > 0 {
			fmt.Fprintf(stderr, "Fixed %d issues in %d files\n",
				fixResult.TotalApplied(), fixResult.FilesModified())
		}
		if fixResult.TotalSkipped() > 0 {
			fmt.Fprintf(stderr, "Skipped %d fixes\n", fixResult.TotalSkipped())
			reportSkippedFixes(fixResult)
		}
		diags = filterFixedDiagnostics(diags, fixResult)
	}

	return writeReport(cmd, res.firstCfg, diags, len(discovered))
}

// lintFiles runs the lint pipeline on each discovered file and aggregates results.
func lintFiles(ctx context.Context, discovered []discovery.DiscoveredFile, cmd *cli.Command) (*lintResults, error) {
	paths := make([]string, len(discovered))
	for i, df := range discovered {
		paths[i] = df.Path
	}

	fileResults, err := linter.LintFiles(ctx, paths, linter.Options{
		Jobs: cmd.Int("jobs"),
		Config: func(path string) (*config.Config, error) {
			return loadConfigForFile(cmd, path)
		},
	})
	if err != nil {
		return nil, err
	}

	res := &lintResults{
		fileSources: make(map[string][]byte),
		fileConfigs: make(map[string]*config.Config),
	}
	for _, fr := range fileResults {
		if fr.Err != nil {
			return nil, errors.Wrapf(fr.Err, "failed to lint %s", fr.Path)
		}
		r := fr.Result
		if res.firstCfg == nil {
			res.firstCfg = r.Config
		}
		res.results = append(res.results, r)
		res.diagnostics = append(res.diagnostics, r.Diagnostics...)

		// In-memory bundles (stdin without a path) cannot be fixed in place.
		if r.Bundle == nil || r.Bundle.Path == "" {
			continue
		}
		res.fileConfigs[r.Bundle.Path] = r.Config
		if r.Bundle.Source != nil {
			res.fileSources[r.Bundle.Path] = r.Bundle.Source.Bytes()
		}
	}
	return res, nil
}

// writeReport formats and writes the diagnostic report.
func writeReport(cmd *cli.Command, cfg *config.Config, diags []rules.Diagnostic, filesScanned int) error {
	stderr := cmd.Root().ErrWriter
	outCfg := getOutputConfig(cmd, cfg)

	formatType, err := reporter.ParseFormat(outCfg.format)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	// Validate the threshold before writing anything.
	if _, err := parseFailLevel(outCfg.failLevel); err != nil {
		fmt.Fprintf(stderr, "Error: invalid --fail-level %q\n", outCfg.failLevel)
		return cli.Exit("", ExitConfigError)
	}

	writer, closeWriter, err := reporter.GetWriter(outCfg.path)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}
	defer func() {
		if err := closeWriter(); err != nil {
			fmt.Fprintf(stderr, "Warning: failed to close output: %v\n", err)
		}
	}()

	rep, err := reporter.New(reporter.Options{
		Format:      formatType,
		Writer:      writer,
		Color:       colorSetting(outCfg.color, cmd.IsSet("no-color") && cmd.Bool("no-color"), writer),
		ShowSource:  outCfg.showSource,
		ToolName:    "pslint",
		ToolVersion: version.RawVersion(),
		ToolURI:     "https://github.com/wharflab/pslint",
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to create reporter: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	metadata := reporter.ReportMetadata{
		FilesScanned: filesScanned,
		RulesEnabled: len(linter.EnabledRuleNames(cfg, nil)),
	}
	if err := rep.Report(diags, metadata); err != nil {
		fmt.Fprintf(stderr, "Error: failed to write output: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	if exitCode := determineExitCode(diags, outCfg.failLevel); exitCode != ExitSuccess {
		return cli.Exit("", exitCode)
	}
	return nil
}

// loadConfigForFile loads configuration for a target file, applying CLI overrides.
func loadConfigForFile(cmd *cli.Command, targetPath string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath := cmd.String("config"); configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load(targetPath)
	}
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("select") {
		cfg.Rules.Include = append(cfg.Rules.Include, cmd.StringSlice("select")...)
	}
	if cmd.IsSet("ignore") {
		cfg.Rules.Exclude = append(cfg.Rules.Exclude, cmd.StringSlice("ignore")...)
	}
	if cmd.IsSet("catalog") {
		// Flag paths are relative to the working directory, not the config file.
		catalog, err := filepath.Abs(cmd.String("catalog"))
		if err != nil {
			return nil, errors.Wrap(err, "resolve --catalog")
		}
		cfg.Session.CommandCatalog = catalog
	}

	// Output settings are handled in getOutputConfig to avoid duplication
	return cfg, nil
}

type outputConfig struct {
	format     string
	path       string
	showSource bool
	failLevel  string
	color      string
}

// getOutputConfig returns output configuration from CLI flags and config.
func getOutputConfig(cmd *cli.Command, cfg *config.Config) outputConfig {
	oc := outputConfig{
		format:     "text",
		path:       "stdout",
		showSource: true,
		failLevel:  "information",
		color:      "auto",
	}

	if cfg != nil {
		if cfg.Output.Format != "" {
			oc.format = cfg.Output.Format
		}
		if cfg.Output.Path != "" {
			oc.path = cfg.Output.Path
		}
		oc.showSource = cfg.Output.ShowSource
		if cfg.Output.FailLevel != "" {
			oc.failLevel = cfg.Output.FailLevel
		}
		if cfg.Output.Color != "" {
			oc.color = cfg.Output.Color
		}
	}

	// CLI flags take precedence
	if cmd.IsSet("format") {
		oc.format = cmd.String("format")
	}
	if cmd.IsSet("output") {
		oc.path = cmd.String("output")
	}
	if cmd.IsSet("show-source") {
		oc.showSource = cmd.Bool("show-source")
	}
	if cmd.IsSet("hide-source") && cmd.Bool("hide-source") {
		oc.showSource = false
	}
	if cmd.IsSet("fail-level") {
		oc.failLevel = cmd.String("fail-level")
	}
	return oc
}

// colorSetting resolves the color mode for the text reporter. Nil leaves
// the decision to terminal detection.
func colorSetting(mode string, noColor bool, w io.Writer) *bool {
	on, off := true, false
	if noColor {
		return &off
	}
	switch strings.ToLower(mode) {
	case "always":
		return &on
	case "never":
		return &off
	}
	// Actions logs render ANSI escapes even though stdout is a pipe.
	if ciinfo.GITHUB_ACTIONS {
		return &on
	}
	if f, ok := w.(*os.File); ok && !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return &off
	}
	return nil
}

// determineExitCode returns the appropriate exit code based on diagnostics and fail-level.
func determineExitCode(diags []rules.Diagnostic, failLevel string) int {
	// "none" means never fail due to diagnostics
	if strings.EqualFold(failLevel, "none") {
		return ExitSuccess
	}

	threshold, err := parseFailLevel(failLevel)
	if err != nil {
		return ExitConfigError
	}

	for _, d := range diags {
		if d.Severity.IsAtLeast(threshold) {
			return ExitViolations
		}
	}
	return ExitSuccess
}

// parseFailLevel parses a fail-level string to a Severity.
func parseFailLevel(level string) (rules.Severity, error) {
	switch strings.ToLower(level) {
	case "", "none":
		// Any diagnostic fails by default
		return rules.SeverityInformation, nil
	default:
		return rules.ParseSeverity(level)
	}
}

// applyFixes applies suggested corrections to the linted files and writes
// the modified ones back.
func applyFixes(cmd *cli.Command, diags []rules.Diagnostic, res *lintResults) (*fix.Result, error) {
	fixer := &fix.Fixer{
		RuleFilter: cmd.StringSlice("fix-rule"),
		FixModes:   buildPerFileFixModes(res.fileConfigs),
	}
	result := fixer.Apply(diags, res.fileSources)
	if err := fix.WriteChanges(result); err != nil {
		return nil, err
	}
	return result, nil
}

// buildPerFileFixModes builds a per-file map of fix modes from fileConfigs.
// Returns map[filePath]map[ruleName]FixMode.
func buildPerFileFixModes(fileConfigs map[string]*config.Config) map[string]map[string]fix.FixMode {
	result := make(map[string]map[string]fix.FixMode)
	for filePath, cfg := range fileConfigs {
		if modes := fix.BuildFixModes(cfg); len(modes) > 0 {
			result[filepath.Clean(filePath)] = modes
		}
	}
	return result
}

func reportSkippedFixes(result *fix.Result) {
	for _, fc := range result.Changes {
		for _, s := range fc.FixesSkipped {
			fields := logrus.Fields{"rule": s.RuleName, "file": fc.Path}
			if s.Extent != nil {
				fields["line"] = s.Extent.Start.Line
			}
			logrus.WithFields(fields).Infof("skipped fix: %s", s.Reason)
		}
	}
}

// filterFixedDiagnostics removes diagnostics whose fix was applied.
func filterFixedDiagnostics(diags []rules.Diagnostic, fixResult *fix.Result) []rules.Diagnostic {
	// Column is part of the key: one line can carry several findings.
	type locKey struct {
		file string
		line int
		col  int
		rule string
	}
	fixed := make(map[locKey]bool)
	for _, fc := range fixResult.Changes {
		for _, af := range fc.FixesApplied {
			key := locKey{file: filepath.ToSlash(fc.Path), rule: af.RuleName}
			if af.Extent != nil {
				key.line = af.Extent.Start.Line
				key.col = af.Extent.Start.Column
			}
			fixed[key] = true
		}
	}

	var remaining []rules.Diagnostic
	for _, d := range diags {
		key := locKey{
			file: filepath.ToSlash(d.ScriptPath),
			line: d.Line(),
			col:  d.Column(),
			rule: d.RuleName,
		}
		if !fixed[key] {
			remaining = append(remaining, d)
		}
	}
	return remaining
}

// reportNoFilesFound prints a context-aware message when no scripts are found.
func reportNoFilesFound(w io.Writer, inputs []string) {
	for _, input := range inputs {
		if discovery.ContainsGlobChars(input) {
			fmt.Fprintf(w, "Error: no PowerShell scripts matched pattern: %s\n", input)
			return
		}
	}

	// For directory inputs, resolve to absolute path so the user knows exactly
	// which directory was scanned.
	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err == nil && info.IsDir() {
			fmt.Fprintf(w, "Error: no .ps1, .psm1 or .psd1 files found in %s\n", abs)
			return
		}
	}

	fmt.Fprintf(w, "Error: no PowerShell scripts found\n")
}
