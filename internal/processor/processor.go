// Package processor provides a composable diagnostic processing pipeline.
//
// Diagnostics flow through a sequence of processors, each transforming the
// slice (filtering, modifying, or augmenting).
//
// Standard pipeline order:
//  1. PathNormalization - Cross-platform path consistency
//  2. SeverityOverride - Apply config severity overrides
//  3. EnableFilter - Remove diagnostics for disabled rules
//  4. PathExclusionFilter - Remove per-rule path exclusions
//  5. SuppressionFilter - Apply SuppressMessageAttribute declarations
//  6. Deduplication - Remove duplicate diagnostics
//  7. Sorting - Stable output ordering
//  8. SnippetAttachment - Populate SourceCode field
package processor

import (
	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/config"
	"github.com/wharflab/pslint/internal/rules"
)

// Processor transforms a slice of diagnostics.
// Implementations should be stateless where possible, using Context for shared state.
type Processor interface {
	// Name returns the processor's identifier (for debugging/logging).
	Name() string

	// Process applies the processor's logic to diagnostics.
	// Must not modify the input slice; return a new slice if filtering.
	Process(diags []rules.Diagnostic, ctx *Context) []rules.Diagnostic
}

// Context provides shared state for processors.
// Populated once before running the chain, then passed to each processor.
type Context struct {
	// Config is the configuration used when a file has none of its own.
	Config *config.Config

	// FileConfigs holds per-file configuration, keyed by script path.
	FileConfigs map[string]*config.Config

	// Roots maps script paths to their syntax trees, for suppressions.
	Roots map[string]ast.Node
}

// NewContext creates a new processor context.
func NewContext(cfg *config.Config) *Context {
	return &Context{
		Config:      cfg,
		FileConfigs: make(map[string]*config.Config),
		Roots:       make(map[string]ast.Node),
	}
}

// ConfigForFile returns the file's own configuration, or the shared one.
func (ctx *Context) ConfigForFile(file string) *config.Config {
	if ctx == nil {
		return nil
	}
	if cfg, ok := ctx.FileConfigs[file]; ok && cfg != nil {
		return cfg
	}
	return ctx.Config
}

// Chain runs processors in sequence.
type Chain struct {
	processors []Processor
}

// NewChain creates a new processor chain.
func NewChain(processors ...Processor) *Chain {
	return &Chain{processors: processors}
}

// Process runs all processors in sequence.
func (c *Chain) Process(diags []rules.Diagnostic, ctx *Context) []rules.Diagnostic {
	for _, p := range c.processors {
		diags = p.Process(diags, ctx)
	}
	return diags
}

// Default returns the standard chain.
func Default() *Chain {
	return NewChain(
		NewPathNormalization(),
		NewSeverityOverride(),
		NewEnableFilter(),
		NewPathExclusionFilter(),
		NewSuppressionFilter(),
		NewDeduplication(),
		NewSorting(),
		NewSnippetAttachment(),
	)
}

// filterDiagnostics returns a new slice containing only diagnostics where
// keep() returns true.
func filterDiagnostics(diags []rules.Diagnostic, keep func(d rules.Diagnostic) bool) []rules.Diagnostic {
	result := make([]rules.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if keep(d) {
			result = append(result, d)
		}
	}
	return result
}

// transformDiagnostics returns a new slice with each diagnostic transformed
// by transform().
func transformDiagnostics(
	diags []rules.Diagnostic,
	transform func(d rules.Diagnostic) rules.Diagnostic,
) []rules.Diagnostic {
	result := make([]rules.Diagnostic, len(diags))
	for i, d := range diags {
		result[i] = transform(d)
	}
	return result
}
