// Package dscidenticalparameters checks that Set-TargetResource and
// Test-TargetResource declare the same parameters.
package dscidenticalparameters

import (
	"iter"
	"strings"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/dsc"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/session"
)

// Name is the rule identifier.
const Name = "PSDSCUseIdenticalParametersForDSC"

const message = "The Test and Set-TargetResource functions of DSC Resource must have the same parameters."

// Rule implements PSDSCUseIdenticalParametersForDSC.
type Rule struct{}

// New creates a new rule instance.
func New() rules.Rule {
	return &Rule{}
}

// Metadata returns the rule metadata.
func (r *Rule) Metadata() rules.Metadata {
	return rules.Metadata{
		Name:             Name,
		CommonName:       "Use identical parameters for Set-TargetResource and Test-TargetResource functions",
		Description:      "The Test and Set-TargetResource functions of DSC Resource must have the same parameters.",
		Severity:         rules.SeverityError,
		SourceType:       rules.SourceBuiltin,
		SourceName:       rules.BuiltinSourceName,
		DocURL:           rules.BuiltinDocURL(Name),
		Category:         "dsc",
		EnabledByDefault: true,
	}
}

// AnalyzeDSCResource reports every parameter declared by only one of the
// two functions, or declared with different types, at the declaration.
func (r *Rule) AnalyzeDSCResource(_ *session.Session, root ast.Node, _ string) (iter.Seq[rules.Diagnostic], error) {
	if err := rules.CheckRoot(root); err != nil {
		return nil, err
	}
	set, okSet := dsc.ResourceFunction(root, "Set-TargetResource")
	test, okTest := dsc.ResourceFunction(root, "Test-TargetResource")
	if !okSet || !okTest {
		return rules.Empty(), nil
	}
	meta := r.Metadata()

	return rules.Seq(func() []rules.Diagnostic {
		setParams := byName(set.AllParameters())
		testParams := byName(test.AllParameters())
		var out []rules.Diagnostic
		report := func(own []*ast.Parameter, other map[string]*ast.Parameter) {
			for _, p := range own {
				match, ok := other[strings.ToLower(p.ParameterName())]
				if ok && ast.SameTypeName(p.StaticType(), match.StaticType()) {
					continue
				}
				out = append(out, rules.NewDiagnostic(p.Extent(), meta.Name, message, meta.Severity).
					WithData(p.ParameterName()).
					WithDocURL(meta.DocURL))
			}
		}
		report(set.AllParameters(), testParams)
		report(test.AllParameters(), setParams)
		return out
	}), nil
}

func byName(params []*ast.Parameter) map[string]*ast.Parameter {
	out := make(map[string]*ast.Parameter, len(params))
	for _, p := range params {
		out[strings.ToLower(p.ParameterName())] = p
	}
	return out
}

func init() {
	rules.Register(New)
}
