// Package fix applies suggested corrections to script sources.
package fix

import (
	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/config"
	"github.com/wharflab/pslint/internal/rules"
)

// Re-export FixMode from config for convenience.
type FixMode = config.FixMode

const (
	// FixModeNever disables fixes even with --fix.
	FixModeNever = config.FixModeNever

	// FixModeExplicit requires --fix-rule to apply.
	FixModeExplicit = config.FixModeExplicit

	// FixModeAlways applies with --fix (default).
	FixModeAlways = config.FixModeAlways
)

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	// RuleName identifies which rule this fix is for.
	RuleName string

	// Description explains what the fix did.
	Description string

	// Extent is where the diagnostic was reported. Nil for file-level ones.
	Extent *ast.Extent

	// Corrections are the edits of this fix, positioned against the
	// original content.
	Corrections []rules.Correction
}

// SkipReason explains why a fix was skipped.
type SkipReason int

const (
	// SkipConflict means the fix overlaps with another fix.
	SkipConflict SkipReason = iota

	// SkipRuleFilter means the rule is not in the --fix-rule list.
	SkipRuleFilter

	// SkipNoEdits means the fix has no usable edits.
	SkipNoEdits

	// SkipFixMode means the rule's fix mode config disallows fixing.
	SkipFixMode

	// SkipWrongFile means a correction targets a file other than the one
	// being fixed.
	SkipWrongFile

	// SkipOutOfRange means a correction lies outside the current content,
	// usually because the file changed since it was analyzed.
	SkipOutOfRange
)

// String returns a human-readable description of the skip reason.
func (r SkipReason) String() string {
	switch r {
	case SkipConflict:
		return "conflicts with another fix"
	case SkipRuleFilter:
		return "rule not in fix-rule list"
	case SkipNoEdits:
		return "no edits in fix"
	case SkipFixMode:
		return "disabled by fix mode config"
	case SkipWrongFile:
		return "correction targets another file"
	case SkipOutOfRange:
		return "correction out of range"
	default:
		return "unknown reason"
	}
}

// SkippedFix records a fix that couldn't be applied.
type SkippedFix struct {
	// RuleName identifies which rule this fix is for.
	RuleName string

	// Reason explains why the fix was skipped.
	Reason SkipReason

	// Extent is where the diagnostic was reported.
	Extent *ast.Extent
}

// FileChange describes changes to a single file.
type FileChange struct {
	// Path is the file path.
	Path string

	// FixesApplied lists the fixes that were applied.
	FixesApplied []AppliedFix

	// FixesSkipped lists fixes that couldn't be applied.
	FixesSkipped []SkippedFix

	// OriginalContent is the file content before fixes.
	OriginalContent []byte

	// ModifiedContent is the file content after fixes.
	ModifiedContent []byte
}

// HasChanges returns true if any fixes were applied to this file.
func (fc *FileChange) HasChanges() bool {
	return len(fc.FixesApplied) > 0
}
