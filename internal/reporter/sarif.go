package reporter

import (
	"io"
	"path/filepath"
	"sort"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/wharflab/pslint/internal/rules"
)

// Default SARIF tool information.
const (
	defaultToolName = "pslint"
	defaultToolURI  = "https://github.com/wharflab/pslint"
)

// SARIFReporter formats diagnostics as SARIF (Static Analysis Results Interchange Format).
// SARIF is a standard format for static analysis tools, widely supported by CI/CD systems
// including GitHub Code Scanning and Azure DevOps.
//
// See: https://docs.oasis-open.org/sarif/sarif/v2.1.0/
type SARIFReporter struct {
	writer      io.Writer
	toolName    string
	toolVersion string
	toolURI     string
	registry    *rules.Registry
}

// NewSARIFReporter creates a new SARIF reporter. Rule descriptions are taken
// from the default registry.
func NewSARIFReporter(w io.Writer, toolName, toolVersion, toolURI string) *SARIFReporter {
	if toolName == "" {
		toolName = defaultToolName
	}
	if toolURI == "" {
		toolURI = defaultToolURI
	}
	return &SARIFReporter{
		writer:      w,
		toolName:    toolName,
		toolVersion: toolVersion,
		toolURI:     toolURI,
		registry:    rules.DefaultRegistry(),
	}
}

// Report implements Reporter.
func (r *SARIFReporter) Report(diags []rules.Diagnostic, _ ReportMetadata) error {
	report := sarif.NewReport()

	run := sarif.NewRunWithInformationURI(r.toolName, r.toolURI)
	if r.toolVersion != "" {
		run.Tool.Driver.WithVersion(r.toolVersion)
	}

	sorted := SortDiagnostics(diags)

	// Collect unique rule names and files
	ruleSet := make(map[string]rules.Diagnostic)
	fileSet := make(map[string]struct{})
	for _, d := range sorted {
		if _, exists := ruleSet[d.RuleName]; !exists {
			ruleSet[d.RuleName] = d
		}
		if d.ScriptPath != "" {
			fileSet[filepath.ToSlash(d.ScriptPath)] = struct{}{}
		}
	}

	ruleNames := make([]string, 0, len(ruleSet))
	for name := range ruleSet {
		ruleNames = append(ruleNames, name)
	}
	sort.Strings(ruleNames)

	for _, name := range ruleNames {
		d := ruleSet[name]
		rule := run.AddRule(name)
		docURL := d.DocURL
		if proto := r.registry.Get(name); proto != nil {
			meta := proto.Metadata()
			if meta.Description != "" {
				rule.WithShortDescription(sarif.NewMultiformatMessageString().WithText(meta.Description))
			}
			if docURL == "" {
				docURL = meta.DocURL
			}
		}
		if docURL != "" {
			rule.WithHelpURI(docURL)
		}
	}

	files := make([]string, 0, len(fileSet))
	for file := range fileSet {
		files = append(files, file)
	}
	sort.Strings(files)
	for _, file := range files {
		run.AddDistinctArtifact(file)
	}

	for _, d := range sorted {
		result := sarif.NewRuleResult(d.RuleName).
			WithMessage(sarif.NewTextMessage(d.Message)).
			WithLevel(severityToSARIFLevel(d.Severity))

		if d.ScriptPath != "" {
			physicalLocation := sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewSimpleArtifactLocation(filepath.ToSlash(d.ScriptPath)))
			if !d.IsFileLevel() {
				physicalLocation.WithRegion(sarifRegion(d))
			}
			result.WithLocations([]*sarif.Location{
				sarif.NewLocationWithPhysicalLocation(physicalLocation),
			})
		}

		run.AddResult(result)
	}

	report.AddRun(run)

	return report.PrettyWrite(r.writer)
}

// sarifRegion converts the diagnostic's extent. Both use 1-based lines and
// columns, and SARIF end columns are exclusive like ours.
func sarifRegion(d rules.Diagnostic) *sarif.Region {
	ext := d.Extent
	region := sarif.NewRegion().
		WithStartLine(ext.Start.Line).
		WithStartColumn(ext.Start.Column)
	if !ext.IsEmpty() {
		region.WithEndLine(ext.End.Line).WithEndColumn(ext.End.Column)
	}
	if d.SourceCode != "" {
		region.WithSnippet(sarif.NewArtifactContent().WithText(d.SourceCode))
	}
	return region
}

// SARIF severity levels.
const (
	sarifLevelError   = "error"
	sarifLevelWarning = "warning"
	sarifLevelNote    = "note"
)

// severityToSARIFLevel maps our Severity to SARIF levels.
// SARIF uses: "error", "warning", "note", "none"
func severityToSARIFLevel(s rules.Severity) string {
	switch s {
	case rules.SeverityError, rules.SeverityParseError:
		return sarifLevelError
	case rules.SeverityInformation:
		return sarifLevelNote
	default:
		return sarifLevelWarning
	}
}
