package reporter

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/pslint/internal/rules"
)

func TestJSONReporter(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := NewJSONReporter(&buf).Report(sampleDiagnostics(t), ReportMetadata{FilesScanned: 1, RulesEnabled: 12})
	require.NoError(t, err)

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out), buf.String())

	assert.Equal(t, 1, out.FilesScanned)
	assert.Equal(t, 12, out.RulesEnabled)
	assert.Equal(t, Summary{Total: 5, ParseErrors: 1, Errors: 1, Warnings: 3, Files: 1}, out.Summary)

	require.Len(t, out.Files, 1)
	assert.Equal(t, "scripts/deploy.ps1", out.Files[0].File)
	diags := out.Files[0].Diagnostics
	require.Len(t, diags, 5)
	assert.Equal(t, "PSUseBOMForUnicodeEncodedFile", diags[0].RuleName)
	assert.Nil(t, diags[0].Extent)

	alias := diags[4]
	assert.Equal(t, "PSAvoidUsingCmdletAliases", alias.RuleName)
	assert.Equal(t, rules.SeverityWarning, alias.Severity)
	require.NotNil(t, alias.Extent)
	assert.Equal(t, 5, alias.Extent.Start.Line)
	assert.Equal(t, 5, alias.Extent.Start.Column)
	require.Len(t, alias.SuggestedCorrections, 1)
	assert.Equal(t, "Get-ChildItem", alias.SuggestedCorrections[0].Text)
}

func TestJSONReporterMultipleFiles(t *testing.T) {
	t.Parallel()
	diags := []rules.Diagnostic{
		rules.NewFileDiagnostic(`src\b.ps1`, "PSRule", "b", rules.SeverityInformation),
		rules.NewFileDiagnostic("a.ps1", "PSRule", "a", rules.SeverityError),
	}

	var buf bytes.Buffer
	require.NoError(t, NewJSONReporter(&buf).Report(diags, ReportMetadata{FilesScanned: 3}))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out.Files, 2)
	assert.Equal(t, "a.ps1", out.Files[0].File)
	assert.Equal(t, 2, out.Summary.Files)
	assert.Equal(t, 1, out.Summary.Information)
}

func TestJSONReporterEmpty(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, NewJSONReporter(&buf).Report(nil, ReportMetadata{FilesScanned: 4}))
	assert.Contains(t, buf.String(), `"files": []`)
	assert.Contains(t, buf.String(), `"files_scanned": 4`)
}
