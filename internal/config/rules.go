package config

import (
	"maps"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/wharflab/pslint/internal/rules/configutil"
)

// FixMode controls when auto-fixes are applied for a rule.
type FixMode string

const (
	// FixModeNever disables fixes even with --fix.
	FixModeNever FixMode = "never"

	// FixModeExplicit requires --fix-rule to apply.
	FixModeExplicit FixMode = "explicit"

	// FixModeAlways applies with --fix (default).
	FixModeAlways FixMode = "always"
)

// RuleConfig represents per-rule configuration:
//
//	[rules.PSAvoidLongLines]
//	severity = "warning"
//	fix = "never"
//	exclude = { paths = ["build/**"] }
//	# Rule-specific options are flattened at this level
//	enable = true
//	maximum-line-length = 100
type RuleConfig struct {
	// Severity overrides the rule's default severity.
	// Use "off" to disable the rule.
	Severity string `json:"severity,omitempty" koanf:"severity"`

	// Fix controls when auto-fixes are applied for this rule.
	Fix FixMode `json:"fix,omitempty" koanf:"fix"`

	// Exclude contains path patterns where this rule should not run.
	Exclude ExcludeConfig `json:"exclude" koanf:"exclude"`

	// Options contains rule-specific configuration options.
	Options map[string]any `json:"-" koanf:",remain"`
}

// ExcludeConfig defines file exclusion patterns for a rule.
type ExcludeConfig struct {
	// Paths contains glob patterns for files to exclude.
	Paths []string `json:"paths,omitempty" koanf:"paths"`
}

// RulesConfig contains rule selection and per-rule configuration.
//
//	[rules]
//	include = ["PSAvoid*"]
//	exclude = ["PSAvoidUsingWriteHost"]
//
//	[rules.PSAvoidLongLines]
//	maximum-line-length = 100
type RulesConfig struct {
	// Include explicitly enables rules by name pattern.
	Include []string `json:"include,omitempty" koanf:"include"`

	// Exclude explicitly disables rules by name pattern.
	Exclude []string `json:"exclude,omitempty" koanf:"exclude"`

	// ByName holds per-rule tables keyed by lowercase rule name.
	ByName map[string]RuleConfig `json:"-" koanf:"-"`
}

// Get returns the configuration for a specific rule, matched
// case-insensitively. Returns nil if no configuration exists for the rule.
func (rc *RulesConfig) Get(ruleName string) *RuleConfig {
	if rc == nil {
		return nil
	}
	if cfg, ok := rc.ByName[strings.ToLower(ruleName)]; ok {
		return &cfg
	}
	return nil
}

// Set stores configuration for a rule.
func (rc *RulesConfig) Set(ruleName string, cfg RuleConfig) {
	if rc.ByName == nil {
		rc.ByName = make(map[string]RuleConfig)
	}
	rc.ByName[strings.ToLower(ruleName)] = cfg
}

// IsEnabled checks if a rule is enabled based on Include/Exclude patterns.
// Returns nil if no configuration specifies enabled/disabled (use rule default).
// Include takes precedence over Exclude, and severity "off" disables.
func (rc *RulesConfig) IsEnabled(ruleName string) *bool {
	if rc == nil {
		return nil
	}
	if strings.EqualFold(rc.GetSeverity(ruleName), "off") {
		return boolPtr(false)
	}
	if matchesAnyPattern(ruleName, rc.Include) {
		return boolPtr(true)
	}
	if matchesAnyPattern(ruleName, rc.Exclude) {
		return boolPtr(false)
	}
	return nil
}

// matchesAnyPattern reports whether ruleName matches one of the glob
// patterns ("*", "PSDSC*", "PSAvoidUsing{WriteHost,InvokeExpression}").
// Matching ignores case.
func matchesAnyPattern(ruleName string, patterns []string) bool {
	name := strings.ToLower(ruleName)
	for _, pattern := range patterns {
		ok, err := doublestar.Match(strings.ToLower(pattern), name)
		if err == nil && ok {
			return true
		}
	}
	return false
}

// GetSeverity returns the severity override for a rule.
// Returns empty string if no override is configured.
func (rc *RulesConfig) GetSeverity(ruleName string) string {
	if cfg := rc.Get(ruleName); cfg != nil {
		return cfg.Severity
	}
	return ""
}

// GetFixMode returns the fix mode for a rule.
// Returns FixModeAlways (default) if no override is configured.
func (rc *RulesConfig) GetFixMode(ruleName string) FixMode {
	if cfg := rc.Get(ruleName); cfg != nil && cfg.Fix != "" {
		return cfg.Fix
	}
	return FixModeAlways
}

// GetExcludePaths returns the exclusion patterns for a rule.
func (rc *RulesConfig) GetExcludePaths(ruleName string) []string {
	if cfg := rc.Get(ruleName); cfg != nil {
		return slices.Clone(cfg.Exclude.Paths)
	}
	return nil
}

// GetOptions returns rule-specific options, or nil.
// Returns a shallow copy to prevent mutation of internal state.
func (rc *RulesConfig) GetOptions(ruleName string) map[string]any {
	if cfg := rc.Get(ruleName); cfg != nil && len(cfg.Options) > 0 {
		return maps.Clone(cfg.Options)
	}
	return nil
}

// DecodeRuleOptions returns typed rule options merged over defaults.
// Returns defaults when the rule has no options or they do not decode.
func DecodeRuleOptions[T any](rc *RulesConfig, ruleName string, defaults T) T {
	cfg, err := configutil.Decode(ruleName, rc.GetOptions(ruleName), defaults, "")
	if err != nil {
		return defaults
	}
	return cfg
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}
