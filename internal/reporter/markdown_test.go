package reporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/pslint/internal/rules"
)

func TestMarkdownReporterSingleFile(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, NewMarkdownReporter(&buf).Report(sampleDiagnostics(t), ReportMetadata{}))

	want := "**5 issues** in `scripts/deploy.ps1`\n\n" +
		"| Line | Rule | Issue |\n" +
		"|------|------|-------|\n" +
		"| 1 | PSParseError | 🛑 Missing closing '}'. |\n" +
		"| - | PSUseBOMForUnicodeEncodedFile | ❌ Missing BOM encoding for non-ASCII encoded file. |\n" +
		"| 3 | PSAvoidUsingWriteHost | ⚠️ Script uses Write-Host. |\n" +
		"| 4 | PSPossibleIncorrectComparisonWithNull | ⚠️ $null should be on the left side of equality comparisons. |\n" +
		"| 5 | PSAvoidUsingCmdletAliases | ⚠️ 'gci' is an alias of 'Get-ChildItem'. |\n"
	assert.Equal(t, want, buf.String())
}

func TestMarkdownReporterMultipleFiles(t *testing.T) {
	t.Parallel()
	diags := []rules.Diagnostic{
		rules.NewFileDiagnostic("b.ps1", "PSRuleB", "b", rules.SeverityInformation),
		rules.NewFileDiagnostic(`dir\a.ps1`, "PSRuleA", "a", rules.SeverityWarning),
	}
	var buf bytes.Buffer
	require.NoError(t, NewMarkdownReporter(&buf).Report(diags, ReportMetadata{}))

	assert.Contains(t, buf.String(), "**2 issues** across 2 files")
	assert.Contains(t, buf.String(), "| File | Line | Rule | Issue |")
	assert.Contains(t, buf.String(), "| b.ps1 | - | PSRuleB | ℹ️ b |")
}

func TestMarkdownReporterEmpty(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, NewMarkdownReporter(&buf).Report(nil, ReportMetadata{}))
	assert.Equal(t, "**No issues found**\n", buf.String())
}

func TestMarkdownReporterEscaping(t *testing.T) {
	t.Parallel()
	diags := []rules.Diagnostic{
		rules.NewFileDiagnostic("a.ps1", "PSRule", "use a | b\r\nnot c", rules.SeverityWarning),
	}
	var buf bytes.Buffer
	require.NoError(t, NewMarkdownReporter(&buf).Report(diags, ReportMetadata{}))
	assert.Contains(t, buf.String(), `use a \| b not c`)
}

func TestSortDiagnosticsBySeverity(t *testing.T) {
	t.Parallel()
	diags := []rules.Diagnostic{
		rules.NewFileDiagnostic("a.ps1", "Info", "", rules.SeverityInformation),
		rules.NewFileDiagnostic("b.ps1", "Error", "", rules.SeverityError),
		rules.NewFileDiagnostic("a.ps1", "Warning", "", rules.SeverityWarning),
		rules.NewFileDiagnostic("a.ps1", "Error", "", rules.SeverityError),
	}
	sorted := SortDiagnosticsBySeverity(diags)

	var got []string
	for _, d := range sorted {
		got = append(got, d.ScriptPath+":"+d.RuleName)
	}
	assert.Equal(t, []string{"a.ps1:Error", "b.ps1:Error", "a.ps1:Warning", "a.ps1:Info"}, got)
}
