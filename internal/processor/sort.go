package processor

import (
	"github.com/wharflab/pslint/internal/reporter"
	"github.com/wharflab/pslint/internal/rules"
)

// Sorting ensures stable, deterministic output ordering.
// Order: file path, then line number, then column, then rule name.
type Sorting struct{}

// NewSorting creates a new sorting processor.
func NewSorting() *Sorting {
	return &Sorting{}
}

// Name returns the processor's identifier.
func (p *Sorting) Name() string {
	return "sorting"
}

// Process sorts diagnostics using reporter.SortDiagnostics.
func (p *Sorting) Process(diags []rules.Diagnostic, _ *Context) []rules.Diagnostic {
	return reporter.SortDiagnostics(diags)
}
