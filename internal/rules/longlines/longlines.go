// Package longlines flags lines longer than a configured maximum.
package longlines

import (
	_ "embed"
	"fmt"
	"iter"
	"strconv"
	"unicode/utf8"

	"github.com/editorconfig/editorconfig-core-go/v2"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/rules/configutil"
	"github.com/wharflab/pslint/internal/session"
)

// Name is the rule identifier.
const Name = "PSAvoidLongLines"

// DefaultMaximumLineLength applies when neither the options nor an
// .editorconfig set a limit.
const DefaultMaximumLineLength = 120

//go:embed schema.json
var schema string

// Config is the configuration for PSAvoidLongLines.
type Config struct {
	Enable bool `koanf:"enable" json:"enable"`

	// MaximumLineLength is the longest allowed line in characters.
	// 0 defers to .editorconfig.
	MaximumLineLength int `koanf:"maximum-line-length" json:"maximum-line-length"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Enable: false}
}

// Rule implements PSAvoidLongLines.
type Rule struct {
	cfg Config
}

// New creates a new rule instance with the default configuration.
func New() rules.Rule {
	return &Rule{cfg: DefaultConfig()}
}

// Metadata returns the rule metadata.
func (r *Rule) Metadata() rules.Metadata {
	return rules.Metadata{
		Name:        Name,
		CommonName:  "Avoid long lines",
		Description: "Line lengths should be less than the configured maximum.",
		Severity:    rules.SeverityWarning,
		SourceType:  rules.SourceBuiltin,
		SourceName:  rules.BuiltinSourceName,
		DocURL:      rules.BuiltinDocURL(Name),
		Category:    "style",
	}
}

// DefaultConfig implements rules.ConfigurableRule.
func (r *Rule) DefaultConfig() any { return DefaultConfig() }

// Configure implements rules.ConfigurableRule.
func (r *Rule) Configure(opts map[string]any) error {
	cfg, err := configutil.Decode(Name, opts, DefaultConfig(), schema)
	r.cfg = cfg
	return err
}

// Enabled implements rules.ConfigurableRule.
func (r *Rule) Enabled() bool { return r.cfg.Enable }

// AnalyzeScript reports every line longer than the limit, counted in
// characters rather than bytes.
func (r *Rule) AnalyzeScript(s *session.Session, root ast.Node, file string) (iter.Seq[rules.Diagnostic], error) {
	if err := rules.CheckRoot(root); err != nil {
		return nil, err
	}
	src := rules.SourceOf(s, root)
	if src == nil {
		return rules.Empty(), nil
	}
	limit := r.limit(file)
	meta := r.Metadata()
	msg := fmt.Sprintf("Line exceeds the configured maximum length of %d characters", limit)

	return func(yield func(rules.Diagnostic) bool) {
		for line := 1; line <= src.LineCount(); line++ {
			text := src.Line(line)
			if utf8.RuneCountInString(text) <= limit {
				continue
			}
			start := src.LineStart(line)
			d := rules.NewDiagnostic(src.Extent(start, start+len(text)), meta.Name, msg, meta.Severity).
				WithDocURL(meta.DocURL)
			if !yield(d) {
				return
			}
		}
	}, nil
}

func (r *Rule) limit(file string) int {
	if r.cfg.MaximumLineLength > 0 {
		return r.cfg.MaximumLineLength
	}
	if n := editorconfigLimit(file); n > 0 {
		return n
	}
	return DefaultMaximumLineLength
}

// editorconfigLimit reads max_line_length for file, or 0.
func editorconfigLimit(file string) int {
	if file == "" {
		return 0
	}
	def, err := editorconfig.GetDefinitionForFilename(file)
	if err != nil || def == nil {
		return 0
	}
	n, err := strconv.Atoi(def.Raw["max_line_length"])
	if err != nil {
		return 0
	}
	return n
}

func init() {
	rules.Register(New)
}
