// Package config provides configuration loading and discovery for pslint.
//
// Configuration is loaded from multiple sources with the following priority
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (PSLINT_* prefix)
//  3. Config file (closest .pslint.toml or pslint.toml)
//  4. Built-in defaults
//
// Config file discovery starts from the target file's directory and walks up
// the filesystem until a config file is found. The closest config wins (no
// merging).
package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigFileNames defines the config file names to search for, in priority order.
var ConfigFileNames = []string{".pslint.toml", "pslint.toml"}

// EnvPrefix is the prefix for environment variables.
const EnvPrefix = "PSLINT_"

// Config represents the complete pslint configuration.
type Config struct {
	// Rules contains rule selection and per-rule configuration.
	// Decoded separately because rule tables sit next to include/exclude.
	Rules RulesConfig `json:"rules" koanf:"-"`

	// Output configures output format and destination.
	Output OutputConfig `json:"output" koanf:"output"`

	// FileValidation configures checks run before a script is analyzed.
	FileValidation FileValidationConfig `json:"file-validation" koanf:"file-validation"`

	// Session configures command resolution.
	Session SessionConfig `json:"session" koanf:"session"`

	// ConfigFile is the path to the config file that was loaded (if any).
	// This is metadata, not loaded from config.
	ConfigFile string `json:"-" koanf:"-"`
}

// OutputConfig configures output formatting and behavior.
type OutputConfig struct {
	// Format is one of text, json, sarif, github-actions, markdown.
	Format string `json:"format,omitempty" koanf:"format"`

	// Path specifies where to write output ("stdout", "stderr" or a file).
	Path string `json:"path,omitempty" koanf:"path"`

	// ShowSource enables source code snippets in text output.
	ShowSource bool `json:"show-source,omitempty" koanf:"show-source"`

	// FailLevel sets the minimum severity that causes a non-zero exit code.
	// "none" never fails.
	FailLevel string `json:"fail-level,omitempty" koanf:"fail-level"`

	// Color is auto, always or never.
	Color string `json:"color,omitempty" koanf:"color"`
}

// FileValidationConfig configures pre-analysis file checks.
//
//	[file-validation]
//	max-file-size = 1048576
type FileValidationConfig struct {
	// MaxFileSize is the maximum script size in bytes (0 = unlimited).
	MaxFileSize int64 `json:"max-file-size,omitempty" koanf:"max-file-size"`
}

// SessionConfig configures the command catalog sessions resolve against.
//
//	[session]
//	command-catalog = "tools/commands.toml"
type SessionConfig struct {
	// CommandCatalog is a commands.toml file, relative to the config file.
	CommandCatalog string `json:"command-catalog,omitempty" koanf:"command-catalog"`
}

// Default returns the default configuration.
// Rule-specific defaults are owned by each rule via ConfigurableRule.DefaultConfig().
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Format:     "text",
			Path:       "stdout",
			ShowSource: true,
			FailLevel:  "information", // Any diagnostic causes exit code 1
			Color:      "auto",
		},
		FileValidation: FileValidationConfig{
			MaxFileSize: 4 << 20,
		},
	}
}

// CatalogPath returns the command catalog path resolved against the config
// file's directory, or "" when none is configured.
func (c *Config) CatalogPath() string {
	p := c.Session.CommandCatalog
	if p == "" || filepath.IsAbs(p) || c.ConfigFile == "" {
		return p
	}
	return filepath.Join(filepath.Dir(c.ConfigFile), p)
}

// Load loads configuration for a target file path.
// It discovers the closest config file, loads it, and applies
// environment variable overrides.
func Load(targetPath string) (*Config, error) {
	return load(Discover(targetPath), nil)
}

// LoadFromFile loads configuration from a specific config file path.
// Unlike Load, it does not perform config discovery.
func LoadFromFile(configPath string) (*Config, error) {
	return load(configPath, nil)
}

// LoadWithOverrides is Load with CLI overrides applied last. Overrides use
// the nested shape of the TOML file:
//
//	overrides := map[string]any{
//	  "output": map[string]any{"format": "json"},
//	  "rules":  map[string]any{"exclude": []any{"PSAvoidUsingWriteHost"}},
//	}
//
// A non-empty configPath skips discovery.
func LoadWithOverrides(targetPath, configPath string, overrides map[string]any) (*Config, error) {
	if configPath == "" {
		configPath = Discover(targetPath)
	}
	return load(configPath, overrides)
}

func load(configPath string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, err
	}

	// 2. Config file
	if configPath != "" {
		if err := loadLayer(k, file.Provider(configPath), toml.Parser()); err != nil {
			return nil, invalidf(err, "load %s", configPath)
		}
	}

	// 3. Environment (PSLINT_OUTPUT_FORMAT -> output.format)
	if err := loadLayer(k, env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKeyTransform,
	}), nil); err != nil {
		return nil, err
	}

	// 4. CLI overrides
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, ""), nil); err != nil {
			return nil, err
		}
	}

	cfg, err := decodeConfig(k.Raw())
	if err != nil {
		return nil, err
	}
	cfg.ConfigFile = configPath
	return cfg, nil
}

// loadLayer reads one source on its own and folds its top-level output
// shorthands into the output table before merging it over the layers below.
// Otherwise the defaults' output table would shadow a shorthand such as
// format = "json".
func loadLayer(k *koanf.Koanf, p koanf.Provider, pa koanf.Parser) error {
	layer := koanf.New(".")
	if err := layer.Load(p, pa); err != nil {
		return err
	}
	raw := layer.Raw()
	normalizeOutputAliases(raw)
	return k.Load(confmap.Provider(raw, ""), nil)
}

// Discover finds the closest config file for a target file path.
// It walks up the directory tree from the target's directory,
// checking for config files at each level.
// Returns empty string if no config file is found.
func Discover(targetPath string) string {
	absPath, err := filepath.Abs(targetPath)
	if err != nil {
		return ""
	}

	dir := absPath
	if info, err := os.Stat(absPath); err != nil || !info.IsDir() {
		dir = filepath.Dir(absPath)
	}

	for {
		for _, name := range ConfigFileNames {
			configPath := filepath.Join(dir, name)
			if fileExists(configPath) {
				return configPath
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
