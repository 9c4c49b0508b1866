package config

import (
	"strconv"
	"strings"
)

// envSections are the top-level tables reachable from the environment, in
// their underscore spelling.
var envSections = []struct{ env, key string }{
	{"file_validation", "file-validation"},
	{"output", "output"},
	{"session", "session"},
	{"rules", "rules"},
}

// outputAliases are top-level shorthands for output keys.
var outputAliases = map[string]string{
	"format":      "format",
	"path":        "path",
	"show_source": "show-source",
	"fail_level":  "fail-level",
	"color":       "color",
}

// envKeyTransform converts environment variable names to config keys.
//
//	PSLINT_FORMAT                                -> format
//	PSLINT_OUTPUT_SHOW_SOURCE                    -> output.show-source
//	PSLINT_RULES_EXCLUDE                         -> rules.exclude (comma list)
//	PSLINT_RULES_PSAVOIDLONGLINES_MAXIMUM_LINE_LENGTH
//	                                             -> rules.psavoidlonglines.maximum-line-length
//
// Variables outside these shapes are ignored.
func envKeyTransform(k, v string) (string, any) {
	s := strings.ToLower(strings.TrimPrefix(k, EnvPrefix))

	if alias, ok := outputAliases[s]; ok {
		return alias, envValue(v)
	}

	for _, sec := range envSections {
		rest, ok := strings.CutPrefix(s, sec.env+"_")
		if !ok || rest == "" {
			continue
		}
		if sec.key != "rules" {
			return sec.key + "." + strings.ReplaceAll(rest, "_", "-"), envValue(v)
		}
		if rest == "include" || rest == "exclude" {
			return "rules." + rest, envList(v)
		}
		rule, option, ok := strings.Cut(rest, "_")
		if !ok || option == "" {
			return "", nil
		}
		return "rules." + rule + "." + strings.ReplaceAll(option, "_", "-"), envValue(v)
	}
	return "", nil
}

// envValue types an environment string: integers and booleans become
// numbers and bools, anything else stays a string.
func envValue(v string) any {
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}

func envList(v string) []any {
	var out []any
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
