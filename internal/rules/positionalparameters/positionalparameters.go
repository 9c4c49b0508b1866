// Package positionalparameters flags commands called with several
// positional arguments.
package positionalparameters

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
const Name = "PSAvoidUsingPositionalParameters"

// threshold is the number of positional arguments that triggers the rule.
const threshold = 2

//go:embed schema.json
var schema string

// Config is the configuration for PSAvoidUsingPositionalParameters.
type Config struct {
	Enable bool `koanf:"enable" json:"enable"`

	// CommandAllowList names commands exempt from the rule.
	CommandAllowList []string `koanf:"command-allow-list" json:"command-allow-list"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Enable: true, CommandAllowList: []string{}}
}

// Rule implements PSAvoidUsingPositionalParameters.
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
		CommonName:       "Avoid Using Positional Parameters",
		Description:      "Readability and clarity should be the goal of any script. Use named parameters when calling a command.",
		Severity:         rules.SeverityInformation,
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

// AnalyzeScript reports calls to known cmdlets and functions that bind
// threshold or more arguments by position. Native applications are not
// checked: their arguments have no names.
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
			info := s.ResolveCommand(name)
			if info == nil || info.CommandType == session.CommandTypeApplication {
				continue
			}
			if r.allowed(info.Name) || PositionalCount(cmd, info) < threshold {
				continue
			}
			msg := fmt.Sprintf("Cmdlet '%s' has positional parameter. Please use named parameters instead of positional parameters when calling a command.", name)
			d := rules.NewDiagnostic(cmd.Extent(), meta.Name, msg, meta.Severity).
				WithData(name).
				WithDocURL(meta.DocURL)
			if !yield(d) {
				return
			}
		}
	}, nil
}

func (r *Rule) allowed(name string) bool {
	return slices.ContainsFunc(r.cfg.CommandAllowList, func(a string) bool {
		return strings.EqualFold(a, name)
	})
}

// PositionalCount returns how many arguments of cmd bind by position. A
// bare -Name consumes the following argument unless info knows it to be a
// switch.
func PositionalCount(cmd *ast.Command, info *session.CommandInfo) int {
	args := cmd.Arguments()
	count := 0
	for i := 0; i < len(args); i++ {
		p, ok := args[i].(*ast.CommandParameter)
		if !ok {
			count++
			continue
		}
		if p.Argument != nil || isSwitch(info, p.Name) || i+1 >= len(args) {
			continue
		}
		if _, next := args[i+1].(*ast.CommandParameter); !next {
			i++
		}
	}
	return count
}

func isSwitch(info *session.CommandInfo, name string) bool {
	if info == nil {
		return false
	}
	p := info.Parameter(name)
	return p != nil && session.CanonicalTypeName(p.Type) == "System.Management.Automation.SwitchParameter"
}

func init() {
	rules.Register(New)
}
