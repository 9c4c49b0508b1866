package reporter

import (
	"cmp"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/wharflab/pslint/internal/rules"
)

// MarkdownReporter formats diagnostics as concise markdown tables, suitable
// for pull request comments and job summaries.
type MarkdownReporter struct {
	writer io.Writer
}

// NewMarkdownReporter creates a new Markdown reporter.
func NewMarkdownReporter(w io.Writer) *MarkdownReporter {
	return &MarkdownReporter{writer: w}
}

// Report implements Reporter.
func (r *MarkdownReporter) Report(diags []rules.Diagnostic, _ ReportMetadata) error {
	if len(diags) == 0 {
		_, err := fmt.Fprintln(r.writer, "**No issues found**")
		return err
	}

	sorted := SortDiagnosticsBySeverity(diags)
	for i := range sorted {
		sorted[i].ScriptPath = filepath.ToSlash(sorted[i].ScriptPath)
	}

	fileSet := make(map[string]struct{})
	for _, d := range sorted {
		fileSet[d.ScriptPath] = struct{}{}
	}

	if len(fileSet) == 1 {
		return r.writeSingleFileTable(sorted, displayPath(sorted[0]))
	}
	return r.writeMultiFileTable(sorted, len(fileSet))
}

// writeSingleFileTable writes a markdown table for diagnostics in a single file.
func (r *MarkdownReporter) writeSingleFileTable(sorted []rules.Diagnostic, filename string) error {
	if _, err := fmt.Fprintf(r.writer, "**%d %s** in `%s`\n\n",
		len(sorted), pluralize(len(sorted), "issue", "issues"), filename); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(r.writer, "| Line | Rule | Issue |\n|------|------|-------|"); err != nil {
		return err
	}

	for _, d := range sorted {
		if _, err := fmt.Fprintf(r.writer, "| %s | %s | %s %s |\n",
			formatLineNumber(d), d.RuleName, severityEmoji(d.Severity), escapeMarkdown(d.Message)); err != nil {
			return err
		}
	}
	return nil
}

// writeMultiFileTable writes a markdown table for diagnostics across multiple files.
func (r *MarkdownReporter) writeMultiFileTable(sorted []rules.Diagnostic, fileCount int) error {
	if _, err := fmt.Fprintf(r.writer, "**%d %s** across %d files\n\n",
		len(sorted), pluralize(len(sorted), "issue", "issues"), fileCount); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(r.writer, "| File | Line | Rule | Issue |\n|------|------|------|-------|"); err != nil {
		return err
	}

	for _, d := range sorted {
		if _, err := fmt.Fprintf(r.writer, "| %s | %s | %s | %s %s |\n",
			displayPath(d), formatLineNumber(d), d.RuleName, severityEmoji(d.Severity), escapeMarkdown(d.Message)); err != nil {
			return err
		}
	}
	return nil
}

// formatLineNumber returns the display string for a diagnostic's line number.
func formatLineNumber(d rules.Diagnostic) string {
	if line := d.Line(); line > 0 {
		return strconv.Itoa(line)
	}
	return "-"
}

// SortDiagnosticsBySeverity sorts diagnostics by severity (most severe first),
// then by file and line. Equal items keep their input order.
func SortDiagnosticsBySeverity(diags []rules.Diagnostic) []rules.Diagnostic {
	sorted := slices.Clone(diags)
	slices.SortStableFunc(sorted, func(a, b rules.Diagnostic) int {
		return cmp.Or(
			cmp.Compare(b.Severity, a.Severity),
			strings.Compare(a.ScriptPath, b.ScriptPath),
			cmp.Compare(a.Line(), b.Line()),
		)
	})
	return sorted
}

// severityEmoji returns an emoji indicator for the severity level.
func severityEmoji(s rules.Severity) string {
	switch s {
	case rules.SeverityParseError:
		return "🛑"
	case rules.SeverityError:
		return "❌"
	case rules.SeverityInformation:
		return "ℹ️"
	default:
		return "⚠️"
	}
}

// escapeMarkdown escapes special markdown characters in table cells.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}

// pluralize returns singular or plural form based on count.
func pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}
