package rules

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/wharflab/pslint/internal/ast"
)

var (
	// ErrCorrectionFileMismatch is returned when a correction targets a file
	// other than the diagnostic's script.
	ErrCorrectionFileMismatch = errors.New("correction file does not match diagnostic script path")

	// ErrOverlappingCorrections is returned when two corrections of one
	// diagnostic cover overlapping ranges.
	ErrOverlappingCorrections = errors.New("corrections overlap")
)

// Correction is a suggested edit: replace the text spanned by Extent with
// Text. An empty Text deletes the span; an empty Extent inserts Text.
type Correction struct {
	// Extent is the range to replace.
	Extent ast.Extent `json:"extent"`
	// Text is the replacement text.
	Text string `json:"text"`
	// File is the script the edit applies to.
	File string `json:"file"`
	// Description explains the edit to a human.
	Description string `json:"description"`
}

// NewCorrection creates a correction replacing ext with text.
func NewCorrection(ext ast.Extent, text, description string) Correction {
	return Correction{
		Extent:      ext,
		Text:        text,
		File:        ext.File(),
		Description: description,
	}
}

// Diagnostic is one finding reported by a rule.
//
// A Diagnostic is treated as immutable once constructed: the With* helpers
// return modified copies.
type Diagnostic struct {
	// Message is the human-readable description of the issue.
	Message string `json:"message"`

	// Extent locates the issue. Nil for file-level findings.
	Extent *ast.Extent `json:"extent,omitempty"`

	// RuleName is the name of the rule that produced the diagnostic.
	RuleName string `json:"ruleName"`

	// Severity indicates how critical the issue is.
	Severity Severity `json:"severity"`

	// ScriptPath is the analyzed file. Empty for in-memory scripts.
	ScriptPath string `json:"scriptPath"`

	// SuggestedCorrections are ordered, non-overlapping edits that fix the
	// issue. Every correction's File equals ScriptPath.
	SuggestedCorrections []Correction `json:"suggestedCorrections,omitempty"`

	// Data carries extra information for programmatic consumers, such as the
	// offending identifier. A string Data doubles as the suppression ID.
	Data any `json:"data,omitempty"`

	// DocURL links to documentation about the rule (optional).
	DocURL string `json:"docUrl,omitempty"`

	// SourceCode is the source snippet of the finding.
	// Populated by post-processing; rules don't need to set this.
	SourceCode string `json:"sourceCode,omitempty"`
}

// NewDiagnostic creates a diagnostic anchored at ext.
func NewDiagnostic(ext ast.Extent, ruleName, message string, severity Severity) Diagnostic {
	return Diagnostic{
		Message:    message,
		Extent:     &ext,
		RuleName:   ruleName,
		Severity:   severity,
		ScriptPath: ext.File(),
	}
}

// NewFileDiagnostic creates a file-level diagnostic with no extent.
func NewFileDiagnostic(file, ruleName, message string, severity Severity) Diagnostic {
	return Diagnostic{
		Message:    message,
		RuleName:   ruleName,
		Severity:   severity,
		ScriptPath: file,
	}
}

// WithCorrections returns a copy carrying the given corrections. It fails
// when a correction targets another file or two corrections overlap.
func (d Diagnostic) WithCorrections(corrections ...Correction) (Diagnostic, error) {
	if err := ValidateCorrections(d.ScriptPath, corrections); err != nil {
		return d, err
	}
	d.SuggestedCorrections = slices.Clone(corrections)
	return d, nil
}

// ValidateCorrections checks the invariants of a correction list for file.
func ValidateCorrections(file string, corrections []Correction) error {
	for i, c := range corrections {
		if c.File != file {
			return errors.Wrapf(ErrCorrectionFileMismatch, "correction %d targets %q, diagnostic is for %q", i, c.File, file)
		}
		if c.Extent.Start.Offset > c.Extent.End.Offset {
			return errors.Wrapf(ast.ErrInvalidExtent, "correction %d", i)
		}
		for j := range i {
			if corrections[j].Extent.Overlaps(c.Extent) {
				return errors.Wrapf(ErrOverlappingCorrections, "corrections %d and %d", j, i)
			}
		}
	}
	return nil
}

// WithData returns a copy carrying extra data.
func (d Diagnostic) WithData(data any) Diagnostic {
	d.Data = data
	return d
}

// WithDocURL returns a copy with the documentation URL set.
func (d Diagnostic) WithDocURL(url string) Diagnostic {
	d.DocURL = url
	return d
}

// WithSourceCode returns a copy with the source snippet set.
func (d Diagnostic) WithSourceCode(code string) Diagnostic {
	d.SourceCode = code
	return d
}

// WithSeverity returns a copy with a different severity.
func (d Diagnostic) WithSeverity(s Severity) Diagnostic {
	d.Severity = s
	return d
}

// IsFileLevel reports whether the diagnostic has no precise location.
func (d Diagnostic) IsFileLevel() bool {
	return d.Extent == nil
}

// HasCorrections reports whether the diagnostic carries suggested edits.
func (d Diagnostic) HasCorrections() bool {
	return len(d.SuggestedCorrections) > 0
}

// Line returns the 1-based start line, or 0 for file-level diagnostics.
func (d Diagnostic) Line() int {
	if d.Extent == nil {
		return 0
	}
	return d.Extent.Start.Line
}

// Column returns the 1-based start column, or 0 for file-level diagnostics.
func (d Diagnostic) Column() int {
	if d.Extent == nil {
		return 0
	}
	return d.Extent.Start.Column
}

// SuppressionID returns Data when it is a string identifier, else "".
func (d Diagnostic) SuppressionID() string {
	if s, ok := d.Data.(string); ok {
		return s
	}
	return ""
}
