package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/fix"
	"github.com/wharflab/pslint/internal/reporter"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/rules/trailingwhitespace"
)

// runApp runs the CLI and returns its exit code with captured stdout/stderr.
func runApp(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := NewApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.ExitErrHandler = func(context.Context, *cli.Command, error) {}

	err := app.Run(context.Background(), append([]string{"pslint"}, args...))
	code := ExitSuccess
	if err != nil {
		var exitErr cli.ExitCoder
		require.True(t, errors.As(err, &exitErr), "unexpected error: %v", err)
		code = exitErr.ExitCode()
	}
	return code, stdout.String(), stderr.String()
}

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readReport(t *testing.T, path string) reporter.JSONOutput {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out reporter.JSONOutput
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func countRule(out reporter.JSONOutput, name string) int {
	n := 0
	for _, f := range out.Files {
		for _, d := range f.Diagnostics {
			if d.RuleName == name {
				n++
			}
		}
	}
	return n
}

func TestLint_ExitCodes(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "Build.ps1", "Get-Item   \n")
	report := filepath.Join(dir, "report.json")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"violations", []string{"lint", "-f", "json", "-o", report, script}, ExitViolations},
		{"fail level none", []string{"lint", "-f", "json", "-o", report, "--fail-level", "none", script}, ExitSuccess},
		{"below threshold", []string{"lint", "-f", "json", "-o", report, "--fail-level", "error", script}, ExitSuccess},
		{"invalid fail level", []string{"lint", "-o", report, "--fail-level", "bogus", script}, ExitConfigError},
		{"unknown format", []string{"lint", "-f", "yaml", script}, ExitConfigError},
		{"missing file", []string{"lint", filepath.Join(dir, "Missing.ps1")}, ExitNoFiles},
		{"empty directory", []string{"lint", t.TempDir()}, ExitNoFiles},
		{"unmatched glob", []string{"lint", filepath.Join(dir, "*.psm1")}, ExitNoFiles},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runApp(t, tt.args...)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestLint_JSONReport(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "Build.ps1", "Get-Item   \n")
	writeScript(t, dir, "src/Module.psm1", "function Get-Thing { 1 }\n")
	report := filepath.Join(dir, "report.json")

	code, _, stderr := runApp(t, "lint", "-f", "json", "-o", report, "--fail-level", "none", dir)
	require.Equal(t, ExitSuccess, code, stderr)

	out := readReport(t, report)
	assert.Equal(t, 2, out.FilesScanned)
	assert.Positive(t, out.RulesEnabled)
	assert.Equal(t, 1, countRule(out, trailingwhitespace.Name))
}

func TestLint_Ignore(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "Build.ps1", "Get-Item   \n")
	report := filepath.Join(dir, "report.json")

	code, _, stderr := runApp(t, "lint", "-f", "json", "-o", report,
		"--fail-level", "none", "--ignore", trailingwhitespace.Name, script)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Zero(t, countRule(readReport(t, report), trailingwhitespace.Name))
}

func TestLint_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "Build.ps1", "Get-Item   \n")
	cfgPath := writeScript(t, dir, "custom.toml", `
[rules.PSAvoidTrailingWhitespace]
severity = "error"
`)
	report := filepath.Join(dir, "report.json")

	code, _, stderr := runApp(t, "lint", "-c", cfgPath, "-f", "json", "-o", report, "--fail-level", "error", script)
	assert.Equal(t, ExitViolations, code, stderr)

	out := readReport(t, report)
	require.Equal(t, 1, countRule(out, trailingwhitespace.Name))
	assert.Positive(t, out.Summary.Errors)
}

func TestLint_Fix(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "Build.ps1", "Get-Item   \n$x = 1\t\n")
	report := filepath.Join(dir, "report.json")

	code, _, stderr := runApp(t, "lint", "--fix", "-f", "json", "-o", report, "--fail-level", "none",
		"--ignore", "*", "--select", trailingwhitespace.Name, script)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stderr, "Fixed 2 issues in 1 files")

	fixed, err := os.ReadFile(script)
	require.NoError(t, err)
	assert.Equal(t, "Get-Item\n$x = 1\n", string(fixed))
	assert.Zero(t, countRule(readReport(t, report), trailingwhitespace.Name), "fixed diagnostics are not reported")
}

func TestLint_FixRuleFilter(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "Build.ps1", "Get-Item   \n")
	report := filepath.Join(dir, "report.json")

	code, _, stderr := runApp(t, "lint", "--fix", "--fix-rule", "PSSomeOtherRule",
		"-f", "json", "-o", report, "--fail-level", "none", script)
	require.Equal(t, ExitSuccess, code, stderr)

	content, err := os.ReadFile(script)
	require.NoError(t, err)
	assert.Equal(t, "Get-Item   \n", string(content))
	assert.Equal(t, 1, countRule(readReport(t, report), trailingwhitespace.Name))
}

func TestRulesCommand(t *testing.T) {
	code, stdout, _ := runApp(t, "rules", "--json")
	require.Equal(t, ExitSuccess, code)

	var infos []ruleInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &infos))
	require.NotEmpty(t, infos)
	for i := 1; i < len(infos); i++ {
		assert.Less(t, infos[i-1].Name, infos[i].Name)
	}

	code, stdout, _ = runApp(t, "rules", "--category", "style")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, trailingwhitespace.Name)
}

func TestVersionCommand(t *testing.T) {
	code, stdout, _ := runApp(t, "version", "--json")
	require.Equal(t, ExitSuccess, code)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "platform")

	_, stdout, _ = runApp(t, "version")
	assert.Contains(t, stdout, "pslint version")
}

func TestDetermineExitCode(t *testing.T) {
	warning := []rules.Diagnostic{
		rules.NewFileDiagnostic("a.ps1", "PSTest", "msg", rules.SeverityWarning),
	}
	tests := []struct {
		name      string
		diags     []rules.Diagnostic
		failLevel string
		want      int
	}{
		{"no diagnostics", nil, "information", ExitSuccess},
		{"default threshold", warning, "", ExitViolations},
		{"at threshold", warning, "warning", ExitViolations},
		{"above threshold", warning, "error", ExitSuccess},
		{"none", warning, "none", ExitSuccess},
		{"none any case", warning, "None", ExitSuccess},
		{"invalid", nil, "loud", ExitConfigError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineExitCode(tt.diags, tt.failLevel))
		})
	}
}

func TestColorSetting(t *testing.T) {
	var buf bytes.Buffer
	on, off := true, false
	assert.Equal(t, &off, colorSetting("always", true, &buf), "--no-color wins")
	assert.Equal(t, &on, colorSetting("always", false, &buf))
	assert.Equal(t, &off, colorSetting("never", false, &buf))
}

func TestFilterFixedDiagnostics(t *testing.T) {
	src := ast.NewSource("a.ps1", []byte("Get-Item   \n"))
	ext := src.Extent(8, 11)
	fixedDiag := rules.NewDiagnostic(ext, trailingwhitespace.Name, "trailing", rules.SeverityInformation)
	otherDiag := rules.NewDiagnostic(ext, "PSOther", "other", rules.SeverityInformation)
	fileDiag := rules.NewFileDiagnostic("a.ps1", trailingwhitespace.Name, "file", rules.SeverityInformation)

	result := &fix.Result{Changes: map[string]*fix.FileChange{
		"a.ps1": {
			Path: "a.ps1",
			FixesApplied: []fix.AppliedFix{
				{RuleName: trailingwhitespace.Name, Extent: &ext},
			},
		},
	}}

	remaining := filterFixedDiagnostics([]rules.Diagnostic{fixedDiag, otherDiag, fileDiag}, result)
	require.Len(t, remaining, 2)
	assert.Equal(t, "PSOther", remaining[0].RuleName)
	assert.True(t, remaining[1].IsFileLevel())
}

func TestBuildPerFileFixModes(t *testing.T) {
	assert.Empty(t, buildPerFileFixModes(nil))
}

func TestSchemaCommand(t *testing.T) {
	code, stdout, _ := runApp(t, "schema")
	require.Equal(t, ExitSuccess, code)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &schema))
	assert.Equal(t, "pslint configuration", schema["title"])
}
