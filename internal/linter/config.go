package linter

import (
	"sort"

	"github.com/wharflab/pslint/internal/config"
	"github.com/wharflab/pslint/internal/rules"
)

// EnabledRuleNames returns the names of the registry's rules that are active
// for cfg. Configurable rules are configured on a throwaway instance so
// their "enable" option counts.
func EnabledRuleNames(cfg *config.Config, registry *rules.Registry) []string {
	if registry == nil {
		registry = rules.DefaultRegistry()
	}
	var enabled []string
	for _, proto := range registry.All() {
		name := proto.Metadata().Name
		rule := registry.New(name)
		if cr, ok := rule.(rules.ConfigurableRule); ok && cfg != nil {
			// A rule that fails to configure keeps its defaults.
			_ = cr.Configure(cfg.Rules.GetOptions(name))
		}
		if isRuleEnabled(rule, cfg) {
			enabled = append(enabled, name)
		}
	}
	sort.Strings(enabled)
	return enabled
}

// isRuleEnabled checks if a configured rule instance should run.
func isRuleEnabled(rule rules.Rule, cfg *config.Config) bool {
	meta := rule.Metadata()
	if cfg != nil {
		// Include/exclude patterns and severity "off" win.
		if enabled := cfg.Rules.IsEnabled(meta.Name); enabled != nil {
			return *enabled
		}
	}
	if cr, ok := rule.(rules.ConfigurableRule); ok {
		return cr.Enabled()
	}
	return meta.EnabledByDefault
}
