// Package avoiddefaultvalueswitch flags switch parameters that default to
// $true. A switch is meant to be off unless the caller passes it.
package avoiddefaultvalueswitch

import (
	"fmt"
	"iter"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/session"
)

// Name is the rule identifier.
const Name = "PSAvoidDefaultValueSwitchParameter"

// Rule implements PSAvoidDefaultValueSwitchParameter.
type Rule struct{}

// New creates a new rule instance.
func New() rules.Rule {
	return &Rule{}
}

// Metadata returns the rule metadata.
func (r *Rule) Metadata() rules.Metadata {
	return rules.Metadata{
		Name:             Name,
		CommonName:       "Switch Parameters Should Not Default To True",
		Description:      "Switch parameters should not default to true; invert the parameter's meaning instead.",
		Severity:         rules.SeverityWarning,
		SourceType:       rules.SourceBuiltin,
		SourceName:       rules.BuiltinSourceName,
		DocURL:           rules.BuiltinDocURL(Name),
		Category:         "best-practices",
		EnabledByDefault: true,
	}
}

// AnalyzeScript reports every [switch] parameter whose default is $true.
func (r *Rule) AnalyzeScript(_ *session.Session, root ast.Node, _ string) (iter.Seq[rules.Diagnostic], error) {
	if err := rules.CheckRoot(root); err != nil {
		return nil, err
	}
	meta := r.Metadata()

	return func(yield func(rules.Diagnostic) bool) {
		for p := range ast.All[*ast.Parameter](root) {
			if !ast.SameTypeName(p.StaticType(), "switch") || !defaultsToTrue(p) {
				continue
			}
			d := rules.NewDiagnostic(
				p.Extent(),
				meta.Name,
				fmt.Sprintf("Switch parameter '%s' should not default to $true.", p.ParameterName()),
				meta.Severity,
			).WithData(p.ParameterName()).WithDocURL(meta.DocURL)
			if !yield(d) {
				return
			}
		}
	}, nil
}

func defaultsToTrue(p *ast.Parameter) bool {
	switch v := p.Default.(type) {
	case *ast.Variable:
		return v.IsTrue()
	case *ast.Constant:
		b, ok := v.Value.(bool)
		return ok && b
	}
	return false
}

func init() {
	rules.Register(New)
}
