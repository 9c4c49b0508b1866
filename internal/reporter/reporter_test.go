package reporter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/testutil"
)

const sampleScript = "param($Name)\n\nWrite-Host $Name\nif ($x -eq $null) {\n    gci C:\\\n}\n"

// sampleDiagnostics returns findings over sampleScript in scrambled order.
func sampleDiagnostics(t *testing.T) []rules.Diagnostic {
	t.Helper()
	s := testutil.NewScript(t, "scripts/deploy.ps1", sampleScript)
	alias := rules.NewDiagnostic(s.Ext("gci"), "PSAvoidUsingCmdletAliases",
		"'gci' is an alias of 'Get-ChildItem'.", rules.SeverityWarning)
	alias, err := alias.WithCorrections(rules.NewCorrection(s.Ext("gci"), "Get-ChildItem", "Replace gci with Get-ChildItem"))
	require.NoError(t, err)
	return []rules.Diagnostic{
		rules.NewDiagnostic(s.Ext("$x -eq $null"), "PSPossibleIncorrectComparisonWithNull",
			"$null should be on the left side of equality comparisons.", rules.SeverityWarning),
		alias,
		rules.NewDiagnostic(s.Ext("Write-Host"), "PSAvoidUsingWriteHost",
			"Script uses Write-Host.", rules.SeverityWarning).WithDocURL("https://example.com/writehost"),
		rules.NewFileDiagnostic("scripts/deploy.ps1", "PSUseBOMForUnicodeEncodedFile",
			"Missing BOM encoding for non-ASCII encoded file.", rules.SeverityError),
		rules.NewDiagnostic(s.Ext("param($Name)"), "PSParseError",
			"Missing closing '}'.", rules.SeverityParseError),
	}
}

func TestSortDiagnostics(t *testing.T) {
	t.Parallel()
	in := sampleDiagnostics(t)
	in = append(in, rules.NewFileDiagnostic("a.ps1", "PSRuleB", "b", rules.SeverityWarning),
		rules.NewFileDiagnostic("a.ps1", "PSRuleA", "a", rules.SeverityWarning))

	sorted := SortDiagnostics(in)
	var names []string
	for _, d := range sorted {
		names = append(names, d.RuleName)
	}
	assert.Equal(t, []string{
		"PSRuleA",
		"PSRuleB",
		"PSUseBOMForUnicodeEncodedFile",
		"PSParseError",
		"PSAvoidUsingWriteHost",
		"PSPossibleIncorrectComparisonWithNull",
		"PSAvoidUsingCmdletAliases",
	}, names)
	assert.Equal(t, "PSPossibleIncorrectComparisonWithNull", in[0].RuleName, "input must not be reordered")
}

func TestTextReporterAdapter_Summary(t *testing.T) {
	t.Parallel()
	noColor := false
	var buf bytes.Buffer
	rep, err := New(Options{Format: FormatText, Writer: &buf, Color: &noColor, ShowSource: false})
	require.NoError(t, err)
	require.NoError(t, rep.Report(sampleDiagnostics(t), ReportMetadata{FilesScanned: 2, RulesEnabled: 40}))

	out := buf.String()
	assert.Contains(t, out, "scripts/deploy.ps1:3:1")
	assert.NotContains(t, out, ">>>")
	assert.Contains(t, out, "5 problems in 2 files scanned (1 errors, 3 warnings, 0 information, 1 parse errors)")
}

func TestDisplayPath(t *testing.T) {
	t.Parallel()
	ext := ast.NewSource("", []byte("gci")).Whole()
	d := rules.NewDiagnostic(ext, "PSAvoidUsingCmdletAliases", "m", rules.SeverityWarning)
	assert.Equal(t, "<script>", displayPath(d))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"text", FormatText, false},
		{"", FormatText, false},
		{"json", FormatJSON, false},
		{"sarif", FormatSARIF, false},
		{"github-actions", FormatGitHubActions, false},
		{"github", FormatGitHubActions, false},
		{"markdown", FormatMarkdown, false},
		{"unknown", "", true},
		{"TEXT", "", true}, // Case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			format, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && format != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, format, tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"json", FormatJSON, false},
		{"sarif", FormatSARIF, false},
		{"github-actions", FormatGitHubActions, false},
		{"markdown", FormatMarkdown, false},
		{"unknown", Format("unknown"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			opts := Options{
				Format: tt.format,
				Writer: &buf,
			}
			rep, err := New(opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && rep == nil {
				t.Error("New() returned nil reporter")
			}
		})
	}
}

func TestGetWriter(t *testing.T) {
	tests := []struct {
		path     string
		wantErr  bool
		expected string // "stdout", "stderr", or "file"
	}{
		{"stdout", false, "stdout"},
		{"", false, "stdout"},
		{"stderr", false, "stderr"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w, closer, err := GetWriter(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("GetWriter(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err != nil {
				return
			}

			switch tt.expected {
			case "stdout":
				if w != os.Stdout {
					t.Errorf("GetWriter(%q) did not return stdout", tt.path)
				}
			case "stderr":
				if w != os.Stderr {
					t.Errorf("GetWriter(%q) did not return stderr", tt.path)
				}
			}

			if closer == nil {
				t.Error("GetWriter() returned nil closer")
			}
			if err := closer(); err != nil {
				t.Errorf("closer() error = %v", err)
			}
		})
	}
}

func TestGetWriterFile(t *testing.T) {
	// Test file output
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "output.txt")

	w, closer, err := GetWriter(filePath)
	if err != nil {
		t.Fatalf("GetWriter() error = %v", err)
	}

	// Write something
	_, err = w.Write([]byte("test"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	// Close and verify
	if err := closer(); err != nil {
		t.Fatalf("closer() error = %v", err)
	}

	// Verify file exists and has content
	content, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(content) != "test" {
		t.Errorf("File content = %q, want %q", string(content), "test")
	}
}

func TestGetWriterInvalidPath(t *testing.T) {
	// Test invalid file path
	_, _, err := GetWriter("/nonexistent/directory/file.txt")
	if err == nil {
		t.Error("GetWriter() with invalid path should return error")
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Format != FormatText {
		t.Errorf("Default format = %v, want %v", opts.Format, FormatText)
	}
	if opts.Writer != os.Stdout {
		t.Error("Default writer should be stdout")
	}
	if opts.Color != nil {
		t.Error("Default color should be nil (auto-detect)")
	}
	if !opts.ShowSource {
		t.Error("Default ShowSource should be true")
	}
	if opts.ToolName != "pslint" {
		t.Errorf("Default ToolName = %q, want %q", opts.ToolName, "pslint")
	}
}
