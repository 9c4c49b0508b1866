package fix

import "github.com/wharflab/pslint/internal/config"

// BuildFixModes extracts per-rule fix mode settings from a config.
// Keys are lowercase rule names; rules without a fix setting are omitted.
//
// Nil is returned when cfg is nil.
func BuildFixModes(cfg *config.Config) map[string]FixMode {
	if cfg == nil {
		return nil
	}

	modes := make(map[string]FixMode)
	for name, ruleCfg := range cfg.Rules.ByName {
		if ruleCfg.Fix == "" {
			continue
		}
		modes[name] = ruleCfg.Fix
	}
	return modes
}
