package processor

import (
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/suppression"
)

// SuppressionFilter drops diagnostics silenced by a SuppressMessageAttribute
// in their script. Files without a tree in the context pass unchanged.
type SuppressionFilter struct {
	suppressed []suppression.Suppressed
}

// NewSuppressionFilter creates a new suppression filter processor.
func NewSuppressionFilter() *SuppressionFilter {
	return &SuppressionFilter{}
}

// Name returns the processor's identifier.
func (p *SuppressionFilter) Name() string {
	return "suppression-filter"
}

// Suppressed returns the diagnostics the last Process call filtered out.
func (p *SuppressionFilter) Suppressed() []suppression.Suppressed {
	return p.suppressed
}

// Process applies each file's suppressions to its diagnostics.
func (p *SuppressionFilter) Process(diags []rules.Diagnostic, ctx *Context) []rules.Diagnostic {
	p.suppressed = nil
	if ctx == nil || len(ctx.Roots) == 0 {
		return diags
	}

	byFile := make(map[string][]suppression.Suppression)
	for file, root := range ctx.Roots {
		byFile[toSlash(file)] = suppression.Collect(root)
	}

	out := make([]rules.Diagnostic, 0, len(diags))
	for _, d := range diags {
		sups := byFile[toSlash(d.ScriptPath)]
		if len(sups) == 0 {
			out = append(out, d)
			continue
		}
		res := suppression.Filter([]rules.Diagnostic{d}, sups)
		out = append(out, res.Diagnostics...)
		p.suppressed = append(p.suppressed, res.Suppressed...)
	}
	return out
}
