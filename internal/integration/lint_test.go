package integration

import (
	"strings"
	"testing"

	"github.com/wharflab/pslint/internal/reporter"
	"github.com/wharflab/pslint/internal/rules"
)

const (
	trailingWhitespace = "PSAvoidTrailingWhitespace"
	comparisonWithNull = "PSPossibleIncorrectComparisonWithNull"
)

func lintCases() []lintCase {
	return []lintCase{
		{
			name:     "source-only-script",
			target:   "basic/Build.ps1",
			args:     append([]string{"--format", "json"}, selectRules(trailingWhitespace)...),
			wantExit: 1,
			check: func(t *testing.T, out reporter.JSONOutput, _ string) {
				if got := ruleCount(out, trailingWhitespace); got != 1 {
					t.Errorf("%s diagnostics = %d, want 1", trailingWhitespace, got)
				}
				if out.FilesScanned != 1 {
					t.Errorf("files_scanned = %d, want 1", out.FilesScanned)
				}
			},
		},
		{
			name:   "fail-level-none",
			target: "basic/Build.ps1",
			args:   append([]string{"--format", "json", "--fail-level", "none"}, selectRules(trailingWhitespace)...),
		},
		{
			name:   "ignored-rule",
			target: "basic/Build.ps1",
			args:   []string{"--format", "json", "--ignore", trailingWhitespace},
			check: func(t *testing.T, out reporter.JSONOutput, _ string) {
				if got := ruleCount(out, trailingWhitespace); got != 0 {
					t.Errorf("ignored rule reported %d diagnostics", got)
				}
			},
		},
		{
			name:     "config-file-discovery",
			target:   "with-config",
			args:     append([]string{"--format", "json"}, selectRules(trailingWhitespace)...),
			wantExit: 1,
			check: func(t *testing.T, out reporter.JSONOutput, _ string) {
				if out.Summary.Warnings != 1 {
					t.Errorf("warnings = %d, want 1 (severity override)", out.Summary.Warnings)
				}
			},
		},
		{
			name:   "cli-overrides-config",
			target: "with-config",
			args:   append([]string{"--format", "json", "--fail-level", "error"}, selectRules(trailingWhitespace)...),
		},
		{
			name:     "sidecar-bundle",
			target:   "bundle/check.ps1",
			args:     append([]string{"--format", "json"}, selectRules(comparisonWithNull)...),
			wantExit: 1,
			check: func(t *testing.T, out reporter.JSONOutput, _ string) {
				if got := ruleCount(out, comparisonWithNull); got != 1 {
					t.Errorf("%s diagnostics = %d, want 1", comparisonWithNull, got)
				}
				if got := ruleCount(out, rules.ParseErrorName); got != 1 {
					t.Errorf("parse errors = %d, want 1", got)
				}
				if out.Summary.ParseErrors != 1 {
					t.Errorf("summary parse_errors = %d, want 1", out.Summary.ParseErrors)
				}
			},
		},
		{
			name:     "bundle-and-script-deduplicated",
			target:   "bundle",
			args:     append([]string{"--format", "json"}, selectRules(comparisonWithNull)...),
			wantExit: 1,
			check: func(t *testing.T, out reporter.JSONOutput, _ string) {
				if out.FilesScanned != 1 {
					t.Errorf("files_scanned = %d, want 1", out.FilesScanned)
				}
			},
		},
		{
			name:   "module-directory",
			target: "module",
			args:   []string{"--format", "json", "--fail-level", "none"},
			check: func(t *testing.T, out reporter.JSONOutput, _ string) {
				if out.FilesScanned != 2 {
					t.Errorf("files_scanned = %d, want 2 (.psm1 and .psd1)", out.FilesScanned)
				}
			},
		},
		{
			name:     "text-format",
			target:   "basic/Build.ps1",
			args:     append([]string{"--format", "text", "--no-color"}, selectRules(trailingWhitespace)...),
			wantExit: 1,
			snapExt:  "txt",
		},
		{
			name:     "github-actions-format",
			target:   "basic/Build.ps1",
			args:     append([]string{"--format", "github-actions"}, selectRules(trailingWhitespace)...),
			wantExit: 1,
			snapExt:  "txt",
		},
		{
			name:     "markdown-format",
			target:   "basic/Build.ps1",
			args:     append([]string{"--format", "markdown"}, selectRules(trailingWhitespace)...),
			wantExit: 1,
			snapExt:  "md",
		},
		{
			name:     "sarif-format",
			target:   "bundle/check.ps1",
			args:     append([]string{"--format", "sarif"}, selectRules(comparisonWithNull)...),
			wantExit: 1,
			snapExt:  "sarif",
		},
	}
}

func TestLint(t *testing.T) {
	t.Parallel()
	for _, tc := range lintCases() {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			runLintCase(t, tc)
		})
	}
}

func TestLintNoFiles(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		target  string
		wantMsg string
	}{
		{"missing-file", "testdata/basic/Missing.ps1", "Missing.ps1"},
		{"empty-directory", "testdata/empty-dir", "no .ps1, .psm1 or .psd1 files found"},
		{"unmatched-glob", "testdata/basic/*.psm1", "matched pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := runPslint(t, nil, "lint", tt.target)
			if res.exitCode != 3 {
				t.Errorf("exit code = %d, want 3\nstderr: %s", res.exitCode, res.stderr)
			}
			if !strings.Contains(res.stderr, tt.wantMsg) {
				t.Errorf("stderr = %q, want substring %q", res.stderr, tt.wantMsg)
			}
		})
	}
}

func TestLintConfigErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		args []string
		env  []string
	}{
		{"unknown-format", []string{"lint", "--format", "yaml", "testdata/basic"}, nil},
		{"invalid-fail-level", []string{"lint", "--fail-level", "loud", "testdata/basic"}, nil},
		{"missing-config", []string{"lint", "--config", "testdata/nope.toml", "testdata/basic"}, nil},
		{"env-format", []string{"lint", "testdata/basic"}, []string{"PSLINT_FORMAT=yaml"}},
		{"bad-log-level", []string{"--log-level", "chatty", "lint", "testdata/basic"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := runPslint(t, tt.env, tt.args...)
			if res.exitCode != 2 {
				t.Errorf("exit code = %d, want 2\nstderr: %s", res.exitCode, res.stderr)
			}
		})
	}
}
