package reporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/testutil"
)

func TestGitHubActionsReporter(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, NewGitHubActionsReporter(&buf).Report(sampleDiagnostics(t), ReportMetadata{}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"::error file=scripts/deploy.ps1,title=PSUseBOMForUnicodeEncodedFile::Missing BOM encoding for non-ASCII encoded file.",
		"::error file=scripts/deploy.ps1,line=1,col=1,endColumn=13,title=PSParseError::Missing closing '}'.",
		"::warning file=scripts/deploy.ps1,line=3,col=1,endColumn=11,title=PSAvoidUsingWriteHost::Script uses Write-Host.",
		"::warning file=scripts/deploy.ps1,line=4,col=5,endColumn=17,title=PSPossibleIncorrectComparisonWithNull::$null should be on the left side of equality comparisons.",
		"::warning file=scripts/deploy.ps1,line=5,col=5,endColumn=8,title=PSAvoidUsingCmdletAliases::'gci' is an alias of 'Get-ChildItem'.",
	}, lines)
}

func TestGitHubActionsReporterSeverityMapping(t *testing.T) {
	t.Parallel()
	tests := []struct {
		severity rules.Severity
		want     string
	}{
		{rules.SeverityParseError, "error"},
		{rules.SeverityError, "error"},
		{rules.SeverityWarning, "warning"},
		{rules.SeverityInformation, "notice"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, severityToGitHubLevel(tt.severity), tt.severity.String())
	}
}

func TestGitHubActionsReporterEmpty(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, NewGitHubActionsReporter(&buf).Report(nil, ReportMetadata{}))
	assert.Empty(t, buf.String())
}

func TestGitHubActionsReporterMultiLine(t *testing.T) {
	t.Parallel()
	s := testutil.NewScript(t, "m.ps1", "$x = @(\n  1\n)\n")
	diags := []rules.Diagnostic{
		rules.NewDiagnostic(s.Ext("@(\n  1\n)"), "PSRule", "multi", rules.SeverityWarning),
	}
	var buf bytes.Buffer
	require.NoError(t, NewGitHubActionsReporter(&buf).Report(diags, ReportMetadata{}))
	assert.Equal(t, "::warning file=m.ps1,line=1,col=6,endLine=3,title=PSRule::multi\n", buf.String())
}

func TestGitHubActionsReporterEscaping(t *testing.T) {
	t.Parallel()
	diags := []rules.Diagnostic{
		rules.NewFileDiagnostic("dir,with:chars/a.ps1", "PSRule", "100% done\r\nnext: line", rules.SeverityWarning),
	}
	var buf bytes.Buffer
	require.NoError(t, NewGitHubActionsReporter(&buf).Report(diags, ReportMetadata{}))
	assert.Equal(t, "::warning file=dir%2Cwith%3Achars/a.ps1,title=PSRule::100%25 done%0D%0Anext: line\n", buf.String())
}

func TestGitHubActionsReporterInMemoryScript(t *testing.T) {
	t.Parallel()
	diags := []rules.Diagnostic{rules.NewFileDiagnostic("", "PSRule", "m", rules.SeverityInformation)}
	var buf bytes.Buffer
	require.NoError(t, NewGitHubActionsReporter(&buf).Report(diags, ReportMetadata{}))
	assert.Equal(t, "::notice title=PSRule::m\n", buf.String())
}
