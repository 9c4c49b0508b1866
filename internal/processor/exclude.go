package processor

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/wharflab/pslint/internal/rules"
)

// PathExclusionFilter removes diagnostics based on per-rule path exclusions.
// Patterns match the script path as written, and relative to the directory
// of the config file that declared them.
type PathExclusionFilter struct{}

// NewPathExclusionFilter creates a new path exclusion filter processor.
func NewPathExclusionFilter() *PathExclusionFilter {
	return &PathExclusionFilter{}
}

// Name returns the processor's identifier.
func (p *PathExclusionFilter) Name() string {
	return "path-exclusion-filter"
}

// Process filters out diagnostics for files that match exclusion patterns.
func (p *PathExclusionFilter) Process(diags []rules.Diagnostic, ctx *Context) []rules.Diagnostic {
	return filterDiagnostics(diags, func(d rules.Diagnostic) bool {
		cfg := ctx.ConfigForFile(d.ScriptPath)
		if cfg == nil || d.ScriptPath == "" {
			return true
		}
		patterns := cfg.Rules.GetExcludePaths(d.RuleName)
		if len(patterns) == 0 {
			return true
		}

		candidates := []string{toSlash(d.ScriptPath)}
		if cfg.ConfigFile != "" {
			if rel, err := filepath.Rel(filepath.Dir(cfg.ConfigFile), d.ScriptPath); err == nil {
				candidates = append(candidates, filepath.ToSlash(rel))
			}
		}

		for _, pattern := range patterns {
			for _, path := range candidates {
				matched, err := doublestar.Match(pattern, path)
				if err != nil {
					// Invalid pattern - skip this check
					break
				}
				if matched {
					return false
				}
			}
		}
		return true
	})
}
