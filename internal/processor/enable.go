package processor

import (
	"github.com/wharflab/pslint/internal/rules"
)

// EnableFilter removes diagnostics of rules the configuration disables
// through Include/Exclude patterns or severity "off". Diagnostics the
// linter raises itself (parse and configuration errors) always pass.
type EnableFilter struct{}

// NewEnableFilter creates a new enable filter processor.
func NewEnableFilter() *EnableFilter {
	return &EnableFilter{}
}

// Name returns the processor's identifier.
func (p *EnableFilter) Name() string {
	return "enable-filter"
}

// Process filters out diagnostics for disabled rules.
func (p *EnableFilter) Process(diags []rules.Diagnostic, ctx *Context) []rules.Diagnostic {
	return filterDiagnostics(diags, func(d rules.Diagnostic) bool {
		if d.Severity == rules.SeverityParseError || rules.IsEngineRule(d.RuleName) {
			return true
		}
		cfg := ctx.ConfigForFile(d.ScriptPath)
		if cfg == nil {
			return true
		}
		if enabled := cfg.Rules.IsEnabled(d.RuleName); enabled != nil {
			return *enabled
		}
		return true
	})
}
