// Package configutil provides utilities for rule configuration resolution.
package configutil

import (
	"encoding/json"
	"strings"
	"sync"
	"unicode"

	"github.com/cockroachdb/errors"
	gjsonschema "github.com/google/jsonschema-go/jsonschema"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ErrInvalidOptions wraps every option validation or binding failure.
var ErrInvalidOptions = errors.New("invalid rule options")

var resolvedSchemaCache sync.Map

// Decode overlays user options on defaults and returns the typed result.
//
// Options are first canonicalized (see CanonicalKey) and validated against
// schema, a JSON Schema document; an empty schema skips validation. Keys the
// user did not set keep their default value, while an explicit zero value
// overrides the default. On any error the defaults are returned together
// with an error wrapping ErrInvalidOptions.
//
// Fields of T are matched by their koanf tag.
func Decode[T any](ruleName string, opts map[string]any, defaults T, schema string) (T, error) {
	if len(opts) == 0 {
		return defaults, nil
	}
	opts = Canonicalize(opts)

	if err := ValidateWithSchema(opts, schema); err != nil {
		return defaults, errors.Wrapf(errors.Mark(err, ErrInvalidOptions), "rule %s", ruleName)
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return defaults, errors.Wrapf(err, "rule %s: load defaults", ruleName)
	}
	if err := k.Load(confmap.Provider(opts, "."), nil); err != nil {
		return defaults, errors.Wrapf(errors.Mark(err, ErrInvalidOptions), "rule %s", ruleName)
	}

	var result T
	if err := k.Unmarshal("", &result); err != nil {
		return defaults, errors.Wrapf(errors.Mark(err, ErrInvalidOptions), "rule %s", ruleName)
	}
	return result, nil
}

// Canonicalize returns a copy of opts with every key, at any depth, turned
// into its kebab-case form.
func Canonicalize(opts map[string]any) map[string]any {
	out := make(map[string]any, len(opts))
	for key, value := range opts {
		if nested, ok := value.(map[string]any); ok {
			value = Canonicalize(nested)
		}
		out[CanonicalKey(key)] = value
	}
	return out
}

// CanonicalKey converts an option name written as PascalCase, camelCase or
// snake_case into kebab-case: "MaximumLineLength", "maximumLineLength" and
// "maximum_line_length" all become "maximum-line-length".
func CanonicalKey(key string) string {
	var b strings.Builder
	runes := []rune(key)
	for i, r := range runes {
		switch {
		case r == '_' || r == ' ':
			b.WriteByte('-')
		case unicode.IsUpper(r):
			// Start a new word at a lower->upper boundary, or at the last
			// capital of an acronym ("DSCResource" -> "dsc-resource").
			if i > 0 && runes[i-1] != '-' && runes[i-1] != '_' &&
				(unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
					(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateWithSchema validates config against a JSON Schema document.
// Returns nil if valid, or an error describing validation failures.
func ValidateWithSchema(config any, schema string) error {
	if schema == "" || config == nil {
		return nil
	}

	resolved, err := resolveSchema(schema)
	if err != nil {
		return err
	}

	configData, err := json.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "marshal options")
	}
	var configJSON any
	if err := json.Unmarshal(configData, &configJSON); err != nil {
		return errors.Wrap(err, "unmarshal options")
	}
	return resolved.Validate(configJSON)
}

func resolveSchema(schema string) (*gjsonschema.Resolved, error) {
	if cached, ok := resolvedSchemaCache.Load(schema); ok {
		if resolved, ok := cached.(*gjsonschema.Resolved); ok {
			return resolved, nil
		}
	}

	var parsed gjsonschema.Schema
	if err := json.Unmarshal([]byte(schema), &parsed); err != nil {
		return nil, errors.Wrap(err, "parse schema")
	}

	resolved, err := parsed.Resolve(nil)
	if err != nil {
		return nil, errors.Wrap(err, "resolve schema")
	}
	resolvedSchemaCache.Store(schema, resolved)
	return resolved, nil
}
