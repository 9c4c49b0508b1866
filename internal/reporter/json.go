package reporter

import (
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/wharflab/pslint/internal/rules"
)

// JSONOutput is the top-level structure for JSON output.
type JSONOutput struct {
	// Files contains results grouped by file.
	Files []FileResult `json:"files"`
	// Summary contains aggregate statistics.
	Summary Summary `json:"summary"`
	// FilesScanned is the total number of files scanned.
	FilesScanned int `json:"files_scanned"`
	// RulesEnabled is the total number of rules that were active.
	RulesEnabled int `json:"rules_enabled"`
}

// FileResult contains the linting results for a single file.
type FileResult struct {
	File        string             `json:"file"`
	Diagnostics []rules.Diagnostic `json:"diagnostics"`
}

// Summary contains aggregate statistics about diagnostics.
type Summary struct {
	Total       int `json:"total"`
	ParseErrors int `json:"parse_errors"`
	Errors      int `json:"errors"`
	Warnings    int `json:"warnings"`
	Information int `json:"information"`
	Files       int `json:"files"`
}

// JSONReporter formats diagnostics as JSON output.
type JSONReporter struct {
	writer io.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{writer: w}
}

// Report implements Reporter.
func (r *JSONReporter) Report(diags []rules.Diagnostic, metadata ReportMetadata) error {
	// Group diagnostics by file (deterministic order)
	byFile := make(map[string][]rules.Diagnostic)
	filesOrder := make([]string, 0)

	for _, d := range SortDiagnostics(diags) {
		d.ScriptPath = filepath.ToSlash(d.ScriptPath)
		file := d.ScriptPath
		if _, exists := byFile[file]; !exists {
			filesOrder = append(filesOrder, file)
		}
		byFile[file] = append(byFile[file], d)
	}

	output := JSONOutput{
		Files:        make([]FileResult, 0, len(filesOrder)),
		Summary:      calculateSummary(diags, len(filesOrder)),
		FilesScanned: metadata.FilesScanned,
		RulesEnabled: metadata.RulesEnabled,
	}

	for _, file := range filesOrder {
		output.Files = append(output.Files, FileResult{
			File:        file,
			Diagnostics: byFile[file],
		})
	}

	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// calculateSummary computes aggregate statistics from diagnostics.
func calculateSummary(diags []rules.Diagnostic, fileCount int) Summary {
	summary := Summary{
		Total: len(diags),
		Files: fileCount,
	}

	for _, d := range diags {
		switch d.Severity {
		case rules.SeverityParseError:
			summary.ParseErrors++
		case rules.SeverityError:
			summary.Errors++
		case rules.SeverityWarning:
			summary.Warnings++
		case rules.SeverityInformation:
			summary.Information++
		}
	}

	return summary
}

func countFiles(diags []rules.Diagnostic) int {
	seen := make(map[string]struct{})
	for _, d := range diags {
		seen[d.ScriptPath] = struct{}{}
	}
	return len(seen)
}
