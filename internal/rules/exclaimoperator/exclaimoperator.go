// Package exclaimoperator flags the ! negation operator in favour of -not.
package exclaimoperator

import (
	_ "embed"
	"iter"
	"unicode"
	"unicode/utf8"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/rules/configutil"
	"github.com/wharflab/pslint/internal/session"
)

// Name is the rule identifier.
const Name = "PSAvoidExclaimOperator"

const message = "Avoid using the ! Operator. Use the -not operator instead."

//go:embed schema.json
var schema string

// Config is the configuration for PSAvoidExclaimOperator.
type Config struct {
	Enable bool `koanf:"enable" json:"enable"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{}
}

// Rule implements PSAvoidExclaimOperator.
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
		CommonName:  "Avoid exclaim operator",
		Description: "The negation operator ! should not be used for readability purposes. Use -not instead.",
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

// AnalyzeScript reports each ! operator. The correction replaces the single
// character with -not, adding a space unless one already follows.
func (r *Rule) AnalyzeScript(_ *session.Session, root ast.Node, _ string) (iter.Seq[rules.Diagnostic], error) {
	if err := rules.CheckRoot(root); err != nil {
		return nil, err
	}
	meta := r.Metadata()

	return func(yield func(rules.Diagnostic) bool) {
		for un := range ast.All[*ast.UnaryExpression](root) {
			if un.Operator != "!" {
				continue
			}
			ext := un.Extent()
			d := rules.NewDiagnostic(ext, meta.Name, message, meta.Severity).WithDocURL(meta.DocURL)
			if src := ext.Source(); src != nil {
				op := src.Extent(ext.Start.Offset, ext.Start.Offset+1)
				text := "-not"
				next, _ := utf8.DecodeRuneInString(src.Slice(op.End.Offset, op.End.Offset+utf8.UTFMax))
				if !unicode.IsSpace(next) {
					text += " "
				}
				if withFix, err := d.WithCorrections(rules.NewCorrection(op, text, "Replace ! with -not")); err == nil {
					d = withFix
				}
			}
			if !yield(d) {
				return
			}
		}
	}, nil
}

func init() {
	rules.Register(New)
}
