package config

import (
	_ "embed"
	"maps"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"

	"github.com/wharflab/pslint/internal/rules/configutil"
)

// ErrInvalidConfig marks configuration that does not load or validate.
var ErrInvalidConfig = errors.New("invalid configuration")

//go:embed schema.json
var schema string

// Schema returns the JSON Schema of the configuration file.
func Schema() string {
	return schema
}

func invalidf(err error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrInvalidConfig)
}

// reservedRuleKeys are the [rules] keys that are not rule tables.
var reservedRuleKeys = map[string]bool{"include": true, "exclude": true}

func decodeConfig(raw map[string]any) (*Config, error) {
	normalizeOutputAliases(raw)
	normalizeCase(raw)

	if err := configutil.ValidateWithSchema(raw, schema); err != nil {
		return nil, invalidf(err, "validate configuration")
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(raw, ""), nil); err != nil {
		return nil, invalidf(err, "load configuration")
	}
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, invalidf(err, "decode configuration")
	}

	rules, err := decodeRulesConfig(raw)
	if err != nil {
		return nil, err
	}
	cfg.Rules = rules
	return cfg, nil
}

func decodeRulesConfig(raw map[string]any) (RulesConfig, error) {
	rulesRaw, ok := raw["rules"].(map[string]any)
	if !ok {
		return RulesConfig{}, nil
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(rulesRaw, ""), nil); err != nil {
		return RulesConfig{}, invalidf(err, "load rule config")
	}
	var rc RulesConfig
	if err := k.Unmarshal("", &rc); err != nil {
		return RulesConfig{}, invalidf(err, "decode rule config")
	}

	// Environment keys arrive lowercase and must win over the file's
	// spelling of the same rule, so lowercase keys are applied last.
	names := slices.Collect(maps.Keys(rulesRaw))
	slices.SortFunc(names, func(a, b string) int {
		la, lb := a == strings.ToLower(a), b == strings.ToLower(b)
		switch {
		case la == lb:
			return strings.Compare(a, b)
		case la:
			return 1
		default:
			return -1
		}
	})

	for _, name := range names {
		if reservedRuleKeys[name] {
			continue
		}
		entry, ok := rulesRaw[name].(map[string]any)
		if !ok {
			return RulesConfig{}, invalidf(errors.Newf("got %T", rulesRaw[name]), "rules.%s must be a table", name)
		}
		rk := koanf.New(".")
		if err := rk.Load(confmap.Provider(entry, ""), nil); err != nil {
			return RulesConfig{}, invalidf(err, "load rules.%s", name)
		}
		var cfg RuleConfig
		if err := rk.Unmarshal("", &cfg); err != nil {
			return RulesConfig{}, invalidf(err, "decode rules.%s", name)
		}
		if prev := rc.Get(name); prev != nil {
			cfg = mergeRuleConfig(*prev, cfg)
		}
		rc.Set(name, cfg)
	}
	return rc, nil
}

func mergeRuleConfig(base, over RuleConfig) RuleConfig {
	if over.Severity != "" {
		base.Severity = over.Severity
	}
	if over.Fix != "" {
		base.Fix = over.Fix
	}
	if over.Exclude.Paths != nil {
		base.Exclude.Paths = over.Exclude.Paths
	}
	if len(over.Options) > 0 {
		opts := maps.Clone(base.Options)
		if opts == nil {
			opts = make(map[string]any, len(over.Options))
		}
		maps.Copy(opts, over.Options)
		base.Options = opts
	}
	return base
}

// normalizeOutputAliases moves top-level shorthands (format = "json") into
// the output table. An explicit output key wins.
func normalizeOutputAliases(raw map[string]any) {
	outputRaw, ok := raw["output"].(map[string]any)
	if !ok {
		outputRaw = make(map[string]any)
		raw["output"] = outputRaw
	}
	for _, key := range outputAliases {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if _, exists := outputRaw[key]; !exists {
			outputRaw[key] = value
		}
		delete(raw, key)
	}
}

// normalizeCase lowercases enumerated values so "Warning" and "warning"
// validate alike.
func normalizeCase(raw map[string]any) {
	lower := func(m map[string]any, key string) {
		if s, ok := m[key].(string); ok {
			m[key] = strings.ToLower(strings.TrimSpace(s))
		}
	}
	if out, ok := raw["output"].(map[string]any); ok {
		lower(out, "format")
		lower(out, "fail-level")
		lower(out, "color")
	}
	if rulesRaw, ok := raw["rules"].(map[string]any); ok {
		for name, entry := range rulesRaw {
			if m, ok := entry.(map[string]any); ok && !reservedRuleKeys[name] {
				lower(m, "severity")
				lower(m, "fix")
			}
		}
	}
}
