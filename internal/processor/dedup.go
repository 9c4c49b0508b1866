package processor

import (
	"fmt"

	"github.com/wharflab/pslint/internal/rules"
)

// Deduplication removes duplicate diagnostics: same file, rule, start
// offset and message. One rule may report several findings on a line, so
// the line alone is not a key.
type Deduplication struct{}

// NewDeduplication creates a new deduplication processor.
func NewDeduplication() *Deduplication {
	return &Deduplication{}
}

// Name returns the processor's identifier.
func (p *Deduplication) Name() string {
	return "deduplication"
}

// Process keeps the first occurrence of each diagnostic.
func (p *Deduplication) Process(diags []rules.Diagnostic, _ *Context) []rules.Diagnostic {
	seen := make(map[string]bool)
	return filterDiagnostics(diags, func(d rules.Diagnostic) bool {
		offset := -1
		if d.Extent != nil {
			offset = d.Extent.Start.Offset
		}
		key := fmt.Sprintf("%s\x00%s\x00%d\x00%s", toSlash(d.ScriptPath), d.RuleName, offset, d.Message)
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	})
}
