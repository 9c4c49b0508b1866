package fix

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/wharflab/pslint/internal/rules"
)

// normalizePath ensures consistent path format for map lookups.
// This handles Windows vs Unix path separator differences.
func normalizePath(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Clean(path)
}

// Fixer applies suggested corrections to source files.
type Fixer struct {
	// RuleFilter limits fixes to specific rule names (case-insensitive).
	// If empty, all rules are eligible.
	RuleFilter []string

	// FixModes maps file paths to their per-rule fix modes.
	// Outer key is the normalized file path, inner key is the lowercase
	// rule name. If nil or a file/rule is not present, FixModeAlways is
	// assumed.
	FixModes map[string]map[string]FixMode
}

// Result contains the outcome of applying fixes.
type Result struct {
	// Changes contains modifications for each file.
	Changes map[string]*FileChange
}

// TotalApplied returns the total number of fixes applied across all files.
func (r *Result) TotalApplied() int {
	count := 0
	for _, fc := range r.Changes {
		count += len(fc.FixesApplied)
	}
	return count
}

// TotalSkipped returns the total number of fixes skipped across all files.
func (r *Result) TotalSkipped() int {
	count := 0
	for _, fc := range r.Changes {
		count += len(fc.FixesSkipped)
	}
	return count
}

// FilesModified returns the number of files with actual changes.
func (r *Result) FilesModified() int {
	count := 0
	for _, fc := range r.Changes {
		if fc.HasChanges() {
			count++
		}
	}
	return count
}

// fixCandidate pairs a diagnostic with the corrections it suggests. All
// corrections of a candidate are applied together or not at all.
type fixCandidate struct {
	diag  *rules.Diagnostic
	edits []rules.Correction
}

func (c *fixCandidate) start() int {
	return c.edits[0].Extent.Start.Offset
}

// Apply applies the suggested corrections of diags to sources, which maps
// file paths to their analyzed content. Fixes are ordered by position;
// a fix overlapping an earlier accepted fix is skipped.
func (f *Fixer) Apply(diags []rules.Diagnostic, sources map[string][]byte) *Result {
	result := &Result{Changes: make(map[string]*FileChange, len(sources))}
	for path, content := range sources {
		result.Changes[normalizePath(path)] = &FileChange{
			Path:            path,
			OriginalContent: content,
			ModifiedContent: bytes.Clone(content),
		}
	}

	byFile := make(map[string][]*fixCandidate)
	for i := range diags {
		d := &diags[i]
		if !d.HasCorrections() {
			continue
		}
		file := normalizePath(d.ScriptPath)
		fc := result.Changes[file]
		if fc == nil {
			continue
		}

		switch {
		case !f.ruleAllowed(d.RuleName):
			fc.skip(d, SkipRuleFilter)
		case !f.fixModeAllowed(file, d.RuleName):
			fc.skip(d, SkipFixMode)
		default:
			edits := slices.Clone(d.SuggestedCorrections)
			slices.SortStableFunc(edits, compareEdits)
			byFile[file] = append(byFile[file], &fixCandidate{diag: d, edits: edits})
		}
	}

	for file, candidates := range byFile {
		result.Changes[file].apply(candidates)
	}
	return result
}

func (fc *FileChange) skip(d *rules.Diagnostic, reason SkipReason) {
	fc.FixesSkipped = append(fc.FixesSkipped, SkippedFix{
		RuleName: d.RuleName,
		Reason:   reason,
		Extent:   d.Extent,
	})
}

// apply applies non-conflicting candidates to the file. Earlier fixes win.
func (fc *FileChange) apply(candidates []*fixCandidate) {
	slices.SortStableFunc(candidates, func(a, b *fixCandidate) int {
		return a.start() - b.start()
	})

	path := normalizePath(fc.Path)
	var accepted []rules.Correction
	for _, c := range candidates {
		if reason, ok := fc.check(path, c, accepted); !ok {
			fc.skip(c.diag, reason)
			continue
		}
		accepted = append(accepted, c.edits...)

		desc := c.edits[0].Description
		if desc == "" {
			desc = c.diag.Message
		}
		fc.FixesApplied = append(fc.FixesApplied, AppliedFix{
			RuleName:    c.diag.RuleName,
			Description: desc,
			Extent:      c.diag.Extent,
			Corrections: c.edits,
		})
	}

	// Apply back to front so earlier offsets stay valid.
	slices.SortStableFunc(accepted, compareEdits)
	content := fc.ModifiedContent
	for _, e := range slices.Backward(accepted) {
		content = applyEdit(content, e)
	}
	fc.ModifiedContent = content
}

// check reports whether every correction of c can be applied on top of the
// already accepted ones.
func (fc *FileChange) check(path string, c *fixCandidate, accepted []rules.Correction) (SkipReason, bool) {
	for _, e := range c.edits {
		if normalizePath(e.File) != path {
			return SkipWrongFile, false
		}
		if e.Extent.Start.Offset < 0 || e.Extent.End.Offset > len(fc.OriginalContent) ||
			e.Extent.Start.Offset > e.Extent.End.Offset {
			return SkipOutOfRange, false
		}
	}
	for _, e := range c.edits {
		for _, a := range accepted {
			if editsOverlap(e, a) {
				return SkipConflict, false
			}
		}
	}
	return 0, true
}

// ruleAllowed checks if a rule passes the filter.
func (f *Fixer) ruleAllowed(ruleName string) bool {
	if len(f.RuleFilter) == 0 {
		return true
	}
	return slices.ContainsFunc(f.RuleFilter, func(r string) bool {
		return strings.EqualFold(r, ruleName)
	})
}

// fixModeAllowed checks if a fix is allowed based on the file's per-rule fix
// mode config.
func (f *Fixer) fixModeAllowed(file, ruleName string) bool {
	mode := FixModeAlways
	if m, ok := f.FixModes[file][strings.ToLower(ruleName)]; ok {
		mode = m
	}

	switch mode {
	case FixModeNever:
		return false
	case FixModeExplicit:
		return len(f.RuleFilter) > 0 && f.ruleAllowed(ruleName)
	default:
		return true
	}
}

// applyEdit replaces content[Start.Offset:End.Offset] with the correction
// text.
func applyEdit(content []byte, e rules.Correction) []byte {
	start, end := e.Extent.Start.Offset, e.Extent.End.Offset
	out := make([]byte, 0, len(content)-(end-start)+len(e.Text))
	out = append(out, content[:start]...)
	out = append(out, e.Text...)
	return append(out, content[end:]...)
}

// WriteChanges writes every modified file back to disk, keeping its mode.
func WriteChanges(result *Result) error {
	for _, fc := range result.Changes {
		if !fc.HasChanges() || fc.Path == "" {
			continue
		}
		info, err := os.Stat(fc.Path)
		if err != nil {
			return errors.Wrapf(err, "stat %s", fc.Path)
		}
		if err := os.WriteFile(fc.Path, fc.ModifiedContent, info.Mode().Perm()); err != nil {
			return errors.Wrapf(err, "write %s", fc.Path)
		}
	}
	return nil
}
