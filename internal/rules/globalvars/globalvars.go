// Package globalvars flags variables in the global scope.
package globalvars

import (
	"fmt"
	"iter"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/session"
)

// Name is the rule identifier.
const Name = "PSAvoidGlobalVars"

// Rule implements PSAvoidGlobalVars.
type Rule struct{}

// New creates a new rule instance.
func New() rules.Rule {
	return &Rule{}
}

// Metadata returns the rule metadata.
func (r *Rule) Metadata() rules.Metadata {
	return rules.Metadata{
		Name:             Name,
		CommonName:       "No Global Variables",
		Description:      "Checks that global variables are not used. Global variables are strongly discouraged as they can cause errors across different systems.",
		Severity:         rules.SeverityWarning,
		SourceType:       rules.SourceBuiltin,
		SourceName:       rules.BuiltinSourceName,
		DocURL:           rules.BuiltinDocURL(Name),
		Category:         "best-practice",
		EnabledByDefault: true,
	}
}

// AnalyzeScript reports every $global: variable that is not one of the
// host's automatic or preference variables.
func (r *Rule) AnalyzeScript(s *session.Session, root ast.Node, file string) (iter.Seq[rules.Diagnostic], error) {
	if err := rules.CheckRoot(root); err != nil {
		return nil, err
	}
	s = rules.SessionOr(s, file)
	meta := r.Metadata()

	return func(yield func(rules.Diagnostic) bool) {
		for v := range ast.All[*ast.Variable](root) {
			if v.Scope() != "global" || s.IsSpecialVariable(v.Name()) {
				continue
			}
			msg := fmt.Sprintf("Found global variable '%s'.", v.Path)
			d := rules.NewDiagnostic(v.Extent(), meta.Name, msg, meta.Severity).
				WithData(v.Name()).
				WithDocURL(meta.DocURL)
			if !yield(d) {
				return
			}
		}
	}, nil
}

func init() {
	rules.Register(New)
}
