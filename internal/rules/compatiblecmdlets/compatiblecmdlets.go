// Package compatiblecmdlets flags cmdlets that do not ship on a platform
// the script targets.
package compatiblecmdlets

import (
	_ "embed"
	"fmt"
	"iter"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/rules/configutil"
	"github.com/wharflab/pslint/internal/session"
)

// Name is the rule identifier.
const Name = "PSUseCompatibleCmdlets"

//go:embed schema.json
var schema string

// Config is the configuration for PSUseCompatibleCmdlets.
type Config struct {
	Enable bool `koanf:"enable" json:"enable"`

	// Platforms are the targets to check, e.g. "core-7-linux".
	Platforms []string `koanf:"platforms" json:"platforms"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Enable: true, Platforms: []string{}}
}

// Rule implements PSUseCompatibleCmdlets.
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
		CommonName:       "Use compatible cmdlets",
		Description:      "Use cmdlets compatible with the given PowerShell version and edition and operating system.",
		Severity:         rules.SeverityWarning,
		SourceType:       rules.SourceBuiltin,
		SourceName:       rules.BuiltinSourceName,
		DocURL:           rules.BuiltinDocURL(Name),
		Category:         "compatibility",
		EnabledByDefault: true,
	}
}

// DefaultConfig implements rules.ConfigurableRule.
func (r *Rule) DefaultConfig() any { return DefaultConfig() }

// Configure implements rules.ConfigurableRule. Platforms without a cmdlet
// table are rejected.
func (r *Rule) Configure(opts map[string]any) error {
	cfg, err := configutil.Decode(Name, opts, DefaultConfig(), schema)
	if err != nil {
		r.cfg = cfg
		return err
	}
	for _, p := range cfg.Platforms {
		if !session.IsKnownPlatform(p) {
			r.cfg = DefaultConfig()
			return errors.Wrapf(
				errors.Mark(errors.Newf("unknown platform %q, known: %s", p, strings.Join(session.Platforms(), ", ")), configutil.ErrInvalidOptions),
				"rule %s", Name)
		}
	}
	r.cfg = cfg
	return nil
}

// Enabled implements rules.ConfigurableRule.
func (r *Rule) Enabled() bool { return r.cfg.Enable }

// AnalyzeScript reports, for every configured platform, each invocation of
// a cmdlet that platform does not ship. With no platforms nothing is
// reported.
func (r *Rule) AnalyzeScript(s *session.Session, root ast.Node, file string) (iter.Seq[rules.Diagnostic], error) {
	if err := rules.CheckRoot(root); err != nil {
		return nil, err
	}
	if len(r.cfg.Platforms) == 0 {
		return rules.Empty(), nil
	}
	s = rules.SessionOr(s, file)
	meta := r.Metadata()

	return func(yield func(rules.Diagnostic) bool) {
		for cmd := range ast.All[*ast.Command](root) {
			name := cmd.Name()
			info := s.ResolveCommand(name)
			if info == nil || info.CommandType != session.CommandTypeCmdlet {
				continue
			}
			for _, platform := range r.cfg.Platforms {
				if s.IsAvailableOnPlatform(info.Name, platform) {
					continue
				}
				msg := fmt.Sprintf("'%s' is not compatible with PowerShell edition '%s'.", name, platform)
				d := rules.NewDiagnostic(cmd.NameExtent(), meta.Name, msg, meta.Severity).
					WithData(info.Name).
					WithDocURL(meta.DocURL)
				if !yield(d) {
					return
				}
			}
		}
	}, nil
}

func init() {
	rules.Register(New)
}
