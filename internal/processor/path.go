package processor

import (
	"slices"
	"strings"

	"github.com/wharflab/pslint/internal/rules"
)

// PathNormalization converts file paths to forward slashes for cross-platform consistency.
// This ensures output is identical regardless of OS (Windows vs Unix).
type PathNormalization struct{}

// NewPathNormalization creates a new path normalization processor.
func NewPathNormalization() *PathNormalization {
	return &PathNormalization{}
}

// Name returns the processor's identifier.
func (p *PathNormalization) Name() string {
	return "path-normalization"
}

// Process normalizes script paths. Correction files are rewritten alongside
// so they keep matching their diagnostic.
func (p *PathNormalization) Process(diags []rules.Diagnostic, _ *Context) []rules.Diagnostic {
	return transformDiagnostics(diags, func(d rules.Diagnostic) rules.Diagnostic {
		d.ScriptPath = toSlash(d.ScriptPath)
		if len(d.SuggestedCorrections) > 0 {
			d.SuggestedCorrections = slices.Clone(d.SuggestedCorrections)
			for i := range d.SuggestedCorrections {
				d.SuggestedCorrections[i].File = toSlash(d.SuggestedCorrections[i].File)
			}
		}
		return d
	})
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
