package linter

import (
	"strings"

	"github.com/wharflab/pslint/internal/config"
	"github.com/wharflab/pslint/internal/processor"
)

// Processors returns the standard processor chain and the suppression
// filter (the caller needs it for [processor.SuppressionFilter.Suppressed]).
func Processors() (*processor.Chain, *processor.SuppressionFilter) {
	suppressions := processor.NewSuppressionFilter()
	chain := processor.NewChain(
		processor.NewPathNormalization(),   // Normalize paths for cross-platform consistency
		processor.NewSeverityOverride(),    // Apply severity overrides (must run before EnableFilter)
		processor.NewEnableFilter(),        // Filter rules with severity="off"
		processor.NewPathExclusionFilter(), // Apply per-rule path exclusions
		suppressions,                       // Apply SuppressMessageAttribute declarations
		processor.NewDeduplication(),       // Remove duplicate diagnostics
		processor.NewSorting(),             // Stable output ordering
		processor.NewSnippetAttachment(),   // Attach source code snippets
	)
	return chain, suppressions
}

// ProcessorContext builds the processor context for a set of lint results:
// each file's config and syntax tree, keyed by the normalized script path.
func ProcessorContext(cfg *config.Config, results ...*Result) *processor.Context {
	ctx := processor.NewContext(cfg)
	for _, r := range results {
		if r == nil || r.Bundle == nil {
			continue
		}
		path := strings.ReplaceAll(r.Bundle.Path, "\\", "/")
		if r.Config != nil {
			ctx.FileConfigs[path] = r.Config
		}
		if r.Bundle.Root != nil {
			ctx.Roots[path] = r.Bundle.Root
		}
	}
	return ctx
}
