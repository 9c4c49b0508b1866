package configutil

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Enable    bool     `koanf:"enable"`
	MaxLength int      `koanf:"max-length"`
	Name      string   `koanf:"name"`
	AllowList []string `koanf:"allow-list"`
}

const testSchema = `{
  "type": "object",
  "properties": {
    "enable": {"type": "boolean"},
    "max-length": {"type": "integer", "minimum": 1},
    "name": {"type": "string"},
    "allow-list": {"type": "array", "items": {"type": "string"}}
  },
  "additionalProperties": false
}`

func defaults() testConfig {
	return testConfig{Enable: true, MaxLength: 120, Name: "default", AllowList: []string{"a"}}
}

func TestDecode_EmptyOpts(t *testing.T) {
	got, err := Decode("PSTest", nil, defaults(), testSchema)
	require.NoError(t, err)
	assert.Equal(t, defaults(), got)

	got, err = Decode("PSTest", map[string]any{}, defaults(), testSchema)
	require.NoError(t, err)
	assert.Equal(t, defaults(), got)
}

func TestDecode_UnsetKeysKeepDefaults(t *testing.T) {
	got, err := Decode("PSTest", map[string]any{"MaxLength": 80}, defaults(), testSchema)
	require.NoError(t, err)
	assert.Equal(t, 80, got.MaxLength)
	assert.True(t, got.Enable)
	assert.Equal(t, "default", got.Name)
	assert.Equal(t, []string{"a"}, got.AllowList)
}

func TestDecode_ExplicitZeroOverridesDefault(t *testing.T) {
	got, err := Decode("PSTest", map[string]any{"enable": false, "allow-list": []any{}}, defaults(), testSchema)
	require.NoError(t, err)
	assert.False(t, got.Enable)
	assert.Empty(t, got.AllowList)
}

func TestDecode_InvalidOverrideIsReported(t *testing.T) {
	tests := []struct {
		name string
		opts map[string]any
	}{
		{"wrong type", map[string]any{"max-length": "long"}},
		{"below minimum", map[string]any{"max-length": 0}},
		{"unknown key", map[string]any{"bogus": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode("PSTest", tt.opts, defaults(), testSchema)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidOptions))
			assert.Contains(t, err.Error(), "PSTest")
			assert.Equal(t, defaults(), got, "defaults are kept on error")
		})
	}
}

func TestDecode_NoSchema(t *testing.T) {
	got, err := Decode("PSTest", map[string]any{"name": "x"}, defaults(), "")
	require.NoError(t, err)
	assert.Equal(t, "x", got.Name)
}

func TestCanonicalKey(t *testing.T) {
	tests := map[string]string{
		"MaximumLineLength":   "maximum-line-length",
		"maximumLineLength":   "maximum-line-length",
		"maximum_line_length": "maximum-line-length",
		"maximum-line-length": "maximum-line-length",
		"Enable":              "enable",
		"DSCResourceName":     "dsc-resource-name",
		"commandAllowList":    "command-allow-list",
	}
	for in, want := range tests {
		assert.Equal(t, want, CanonicalKey(in), in)
	}
}

func TestCanonicalize_Nested(t *testing.T) {
	got := Canonicalize(map[string]any{"Outer": map[string]any{"InnerKey": 1}})
	assert.Equal(t, map[string]any{"outer": map[string]any{"inner-key": 1}}, got)
}

func TestValidateWithSchema_BadSchema(t *testing.T) {
	err := ValidateWithSchema(map[string]any{}, "{not json")
	require.Error(t, err)
}
