package reporter

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/wharflab/pslint/internal/rules"
)

// GitHubActionsReporter formats diagnostics as GitHub Actions workflow commands.
// These commands appear as annotations in the GitHub Actions UI.
//
// Format: ::{level} file={file},line={line},col={col}::{message}
//
// See: https://docs.github.com/actions/using-workflows/workflow-commands-for-github-actions#setting-an-error-message
type GitHubActionsReporter struct {
	writer io.Writer
}

// NewGitHubActionsReporter creates a new GitHub Actions reporter.
func NewGitHubActionsReporter(w io.Writer) *GitHubActionsReporter {
	return &GitHubActionsReporter{writer: w}
}

// Report implements Reporter.
func (r *GitHubActionsReporter) Report(diags []rules.Diagnostic, _ ReportMetadata) error {
	for _, d := range SortDiagnostics(diags) {
		var parts []string
		if d.ScriptPath != "" {
			parts = append(parts, "file="+escapeGitHubProperty(filepath.ToSlash(d.ScriptPath)))
		}

		if !d.IsFileLevel() {
			parts = append(parts, fmt.Sprintf("line=%d", d.Extent.Start.Line))
			parts = append(parts, fmt.Sprintf("col=%d", d.Extent.Start.Column))
			if end := lastLine(*d.Extent); end > d.Extent.Start.Line {
				parts = append(parts, fmt.Sprintf("endLine=%d", end))
			} else if d.Extent.End.Column > d.Extent.Start.Column {
				parts = append(parts, fmt.Sprintf("endColumn=%d", d.Extent.End.Column))
			}
		}

		parts = append(parts, "title="+escapeGitHubProperty(d.RuleName))

		if _, err := fmt.Fprintf(r.writer, "::%s %s::%s\n",
			severityToGitHubLevel(d.Severity),
			strings.Join(parts, ","),
			escapeGitHubMessage(d.Message),
		); err != nil {
			return err
		}
	}

	return nil
}

// GitHub Actions annotation levels.
const (
	ghLevelError   = "error"
	ghLevelWarning = "warning"
	ghLevelNotice  = "notice"
)

// severityToGitHubLevel maps our Severity to GitHub Actions levels.
// GitHub supports: "error", "warning", "notice", "debug"
func severityToGitHubLevel(s rules.Severity) string {
	switch s {
	case rules.SeverityError, rules.SeverityParseError:
		return ghLevelError
	case rules.SeverityInformation:
		return ghLevelNotice
	default:
		return ghLevelWarning
	}
}

// escapeGitHubMessage escapes special characters in GitHub Actions workflow command messages.
// Messages use escapeData() rules which escape "%", "\r", "\n" but NOT ":" or ",".
// See: https://github.com/actions/toolkit/blob/main/packages/core/src/command.ts
func escapeGitHubMessage(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}

// escapeGitHubProperty escapes special characters in GitHub Actions workflow command properties.
// Properties (file, title, etc.) also escape ":" and ",".
func escapeGitHubProperty(s string) string {
	s = escapeGitHubMessage(s)
	s = strings.ReplaceAll(s, ":", "%3A")
	s = strings.ReplaceAll(s, ",", "%2C")
	return s
}
