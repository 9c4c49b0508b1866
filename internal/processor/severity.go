package processor

import (
	"github.com/wharflab/pslint/internal/rules"
)

// SeverityOverride applies severity overrides from configuration.
// Allows users to downgrade warnings to information, upgrade to errors, etc.
// Parse errors keep their severity.
type SeverityOverride struct{}

// NewSeverityOverride creates a new severity override processor.
func NewSeverityOverride() *SeverityOverride {
	return &SeverityOverride{}
}

// Name returns the processor's identifier.
func (p *SeverityOverride) Name() string {
	return "severity-override"
}

// Process applies severity overrides from config. "off" is left to
// EnableFilter.
func (p *SeverityOverride) Process(diags []rules.Diagnostic, ctx *Context) []rules.Diagnostic {
	return transformDiagnostics(diags, func(d rules.Diagnostic) rules.Diagnostic {
		if d.Severity == rules.SeverityParseError {
			return d
		}
		cfg := ctx.ConfigForFile(d.ScriptPath)
		if cfg == nil {
			return d
		}
		override := cfg.Rules.GetSeverity(d.RuleName)
		if override == "" || override == rules.SeverityOff {
			return d
		}
		sev, err := rules.ParseSeverity(override)
		if err != nil {
			// Invalid severity in config - keep original
			return d
		}
		return d.WithSeverity(sev)
	})
}
