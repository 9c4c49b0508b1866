// Package cmdletaliases flags aliases used in place of full command names
// and offers the full name as a correction.
package cmdletaliases

import (
	_ "embed"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/rules/configutil"
	"github.com/wharflab/pslint/internal/session"
)

// Name is the rule identifier.
const Name = "PSAvoidUsingCmdletAliases"

//go:embed schema.json
var schema string

// Config is the configuration for PSAvoidUsingCmdletAliases.
type Config struct {
	Enable bool `koanf:"enable" json:"enable"`

	// Allowlist names aliases that are accepted, case-insensitively.
	Allowlist []string `koanf:"allowlist" json:"allowlist"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Enable: true, Allowlist: []string{}}
}

// Rule implements PSAvoidUsingCmdletAliases.
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
		Name:             Name,
		CommonName:       "Avoid Using Cmdlet Aliases",
		Description:      "An alias is an alternate name or nickname for a command. Scripts should use the full command name.",
		Severity:         rules.SeverityWarning,
		SourceType:       rules.SourceBuiltin,
		SourceName:       rules.BuiltinSourceName,
		DocURL:           rules.BuiltinDocURL(Name),
		Category:         "readability",
		EnabledByDefault: true,
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

// AnalyzeScript reports every command invoked through an alias, and bare
// nouns the host would resolve by prepending "Get-".
func (r *Rule) AnalyzeScript(s *session.Session, root ast.Node, file string) (iter.Seq[rules.Diagnostic], error) {
	if err := rules.CheckRoot(root); err != nil {
		return nil, err
	}
	s = rules.SessionOr(s, file)
	meta := r.Metadata()

	return func(yield func(rules.Diagnostic) bool) {
		for cmd := range ast.All[*ast.Command](root) {
			name := cmd.Name()
			if name == "" || r.allowed(name) {
				continue
			}

			var msg, full string
			if target := s.ResolveAlias(name); target != "" {
				full = target
				msg = fmt.Sprintf("'%s' is an alias of '%s'. Alias can introduce possible problems and make scripts hard to maintain. Please consider changing alias to its full content.", name, target)
			} else if implicit := implicitGet(s, name); implicit != "" {
				full = implicit
				msg = fmt.Sprintf("'%s' is implicitly aliasing '%s' because it is missing the 'Get-' prefix. This can introduce possible problems and make scripts hard to maintain. Please consider changing command to its full name.", name, implicit)
			} else {
				continue
			}

			ext := cmd.NameExtent()
			d, err := rules.NewDiagnostic(ext, meta.Name, msg, meta.Severity).
				WithData(name).
				WithDocURL(meta.DocURL).
				WithCorrections(rules.NewCorrection(ext, full, fmt.Sprintf("Replace %s with %s", name, full)))
			if err != nil {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}, nil
}

func (r *Rule) allowed(name string) bool {
	return slices.ContainsFunc(r.cfg.Allowlist, func(a string) bool {
		return strings.EqualFold(a, name)
	})
}

// implicitGet returns the cmdlet name reaches through the host's implicit
// Get- prefix, or "".
func implicitGet(s *session.Session, name string) string {
	if strings.Contains(name, "-") || strings.ContainsAny(name, `\/.`) || s.ResolveCommand(name) != nil {
		return ""
	}
	info := s.ResolveCommand("Get-" + name)
	if info == nil || info.CommandType != session.CommandTypeCmdlet {
		return ""
	}
	return info.Name
}

func init() {
	rules.Register(New)
}
