// Package reporter provides output formatters for lint results.
//
// The package supports multiple output formats:
//   - text: Human-readable terminal output with colors
//   - json: Machine-readable JSON output
//   - sarif: Static Analysis Results Interchange Format for CI/CD integration
//   - github-actions: Native GitHub Actions workflow annotations
//   - markdown: Concise markdown tables
package reporter

import (
	"io"
	"os"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/wharflab/pslint/internal/rules"
)

// ReportMetadata contains contextual information about the lint run.
type ReportMetadata struct {
	// FilesScanned is the total number of files that were scanned.
	FilesScanned int
	// RulesEnabled is the total number of rules that were active (not "off").
	RulesEnabled int
}

// Reporter formats and outputs lint diagnostics.
type Reporter interface {
	// Report writes diagnostics to the configured output.
	// The metadata parameter provides context like files scanned and rules enabled.
	Report(diags []rules.Diagnostic, metadata ReportMetadata) error
}

// SortDiagnostics sorts diagnostics by file, line, column, and rule name for
// stable output. File-level diagnostics (line 0) come first within a file.
func SortDiagnostics(diags []rules.Diagnostic) []rules.Diagnostic {
	sorted := slices.Clone(diags)
	slices.SortStableFunc(sorted, func(a, b rules.Diagnostic) int {
		if c := strings.Compare(a.ScriptPath, b.ScriptPath); c != 0 {
			return c
		}
		if a.Line() != b.Line() {
			return a.Line() - b.Line()
		}
		if a.Column() != b.Column() {
			return a.Column() - b.Column()
		}
		return strings.Compare(a.RuleName, b.RuleName)
	})
	return sorted
}

// Format represents an output format type.
type Format string

const (
	// FormatText is human-readable terminal output.
	FormatText Format = "text"
	// FormatJSON is machine-readable JSON output.
	FormatJSON Format = "json"
	// FormatSARIF is Static Analysis Results Interchange Format.
	FormatSARIF Format = "sarif"
	// FormatGitHubActions is GitHub Actions workflow command output.
	FormatGitHubActions Format = "github-actions"
	// FormatMarkdown is concise markdown tables.
	FormatMarkdown Format = "markdown"
)

// ParseFormat parses a format string into a Format type.
// Returns an error if the format is unknown.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "sarif":
		return FormatSARIF, nil
	case "github-actions", "github":
		return FormatGitHubActions, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", errors.Newf("unknown format: %q (valid: text, json, sarif, github-actions, markdown)", s)
	}
}

// Options configures reporter creation.
type Options struct {
	// Format specifies the output format.
	Format Format

	// Writer is the output destination.
	Writer io.Writer

	// Color enables/disables colored output (text format only).
	// nil means auto-detect.
	Color *bool

	// ShowSource enables source code snippets (text format only).
	ShowSource bool

	// ToolVersion is included in SARIF output.
	ToolVersion string

	// ToolName is the tool name for SARIF output.
	ToolName string

	// ToolURI is the tool information URI for SARIF output.
	ToolURI string
}

// DefaultOptions returns sensible defaults for reporter options.
func DefaultOptions() Options {
	return Options{
		Format:      FormatText,
		Writer:      os.Stdout,
		ShowSource:  true,
		ToolName:    defaultToolName,
		ToolURI:     defaultToolURI,
		ToolVersion: "dev",
	}
}

// New creates a reporter based on the format specified in options.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	switch opts.Format {
	case FormatText, "":
		return &textReporterAdapter{
			reporter: NewTextReporter(TextOptions{Color: opts.Color, ShowSource: opts.ShowSource}),
			writer:   opts.Writer,
		}, nil

	case FormatJSON:
		return NewJSONReporter(opts.Writer), nil

	case FormatSARIF:
		return NewSARIFReporter(opts.Writer, opts.ToolName, opts.ToolVersion, opts.ToolURI), nil

	case FormatGitHubActions:
		return NewGitHubActionsReporter(opts.Writer), nil

	case FormatMarkdown:
		return NewMarkdownReporter(opts.Writer), nil

	default:
		return nil, errors.Newf("unknown format: %q", opts.Format)
	}
}

// textReporterAdapter adapts TextReporter to the Reporter interface.
type textReporterAdapter struct {
	reporter *TextReporter
	writer   io.Writer
}

// Report implements Reporter.
func (a *textReporterAdapter) Report(diags []rules.Diagnostic, metadata ReportMetadata) error {
	if err := a.reporter.Print(a.writer, diags); err != nil {
		return err
	}
	return a.reporter.PrintSummary(a.writer, diags, metadata)
}

// GetWriter returns an io.Writer for the given output path.
// Supports "stdout", "stderr", or file paths.
func GetWriter(path string) (io.Writer, func() error, error) {
	switch path {
	case "stdout", "":
		return os.Stdout, func() error { return nil }, nil
	case "stderr":
		return os.Stderr, func() error { return nil }, nil
	default:
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to create output file")
		}
		return f, f.Close, nil
	}
}

// displayPath returns the path shown for a diagnostic's script.
func displayPath(d rules.Diagnostic) string {
	if d.ScriptPath == "" {
		return "<script>"
	}
	return d.ScriptPath
}
