// Package invokeexpression flags Invoke-Expression calls.
package invokeexpression

import (
	"iter"
	"strings"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/session"
)

// Name is the rule identifier.
const Name = "PSAvoidUsingInvokeExpression"

const message = "Invoke-Expression is used. Please remove Invoke-Expression from script and find other options instead."

// Rule implements PSAvoidUsingInvokeExpression.
type Rule struct{}

// New creates a new rule instance.
func New() rules.Rule {
	return &Rule{}
}

// Metadata returns the rule metadata.
func (r *Rule) Metadata() rules.Metadata {
	return rules.Metadata{
		Name:             Name,
		CommonName:       "Avoid Using Invoke-Expression",
		Description:      "Invoke-Expression runs arbitrary strings as code and is open to injection.",
		Severity:         rules.SeverityWarning,
		SourceType:       rules.SourceBuiltin,
		SourceName:       rules.BuiltinSourceName,
		DocURL:           rules.BuiltinDocURL(Name),
		Category:         "security",
		EnabledByDefault: true,
	}
}

// AnalyzeScript reports Invoke-Expression however it is spelled.
func (r *Rule) AnalyzeScript(s *session.Session, root ast.Node, file string) (iter.Seq[rules.Diagnostic], error) {
	if err := rules.CheckRoot(root); err != nil {
		return nil, err
	}
	s = rules.SessionOr(s, file)
	meta := r.Metadata()

	return func(yield func(rules.Diagnostic) bool) {
		for cmd := range ast.All[*ast.Command](root) {
			info := s.ResolveCommand(cmd.Name())
			if info == nil || !strings.EqualFold(info.Name, "Invoke-Expression") {
				continue
			}
			d := rules.NewDiagnostic(cmd.Extent(), meta.Name, message, meta.Severity).WithDocURL(meta.DocURL)
			if !yield(d) {
				return
			}
		}
	}, nil
}

func init() {
	rules.Register(New)
}
