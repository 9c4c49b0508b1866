// Package standarddscfunctions checks that DSC resources implement the Get,
// Set and Test operations.
package standarddscfunctions

import (
	"fmt"
	"iter"
	"strings"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/dsc"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/session"
)

// Name is the rule identifier.
const Name = "PSUseStandardDSCFunctionsInResource"

// Rule implements PSUseStandardDSCFunctionsInResource.
type Rule struct{}

// New creates a new rule instance.
func New() rules.Rule {
	return &Rule{}
}

// Metadata returns the rule metadata.
func (r *Rule) Metadata() rules.Metadata {
	return rules.Metadata{
		Name:             Name,
		CommonName:       "Use Standard Get/Set/Test TargetResource functions in DSC Resource",
		Description:      "DSC Resource must implement Get, Set and Test-TargetResource functions. DSC Class must implement Get, Set and Test functions.",
		Severity:         rules.SeverityError,
		SourceType:       rules.SourceBuiltin,
		SourceName:       rules.BuiltinSourceName,
		DocURL:           rules.BuiltinDocURL(Name),
		Category:         "dsc",
		EnabledByDefault: true,
	}
}

// AnalyzeDSCResource reports each missing *-TargetResource function at file
// level.
func (r *Rule) AnalyzeDSCResource(_ *session.Session, root ast.Node, file string) (iter.Seq[rules.Diagnostic], error) {
	if err := rules.CheckRoot(root); err != nil {
		return nil, err
	}
	meta := r.Metadata()

	return rules.Seq(func() []rules.Diagnostic {
		fns := dsc.Functions(root)
		var out []rules.Diagnostic
		for _, name := range dsc.ResourceFunctions {
			if _, ok := fns[strings.ToLower(name)]; ok {
				continue
			}
			msg := fmt.Sprintf("Missing '%s' function. DSC Resource must implement Get, Set and Test-TargetResource functions.", name)
			out = append(out, rules.NewFileDiagnostic(file, meta.Name, msg, meta.Severity).
				WithData(name).
				WithDocURL(meta.DocURL))
		}
		return out
	}), nil
}

// AnalyzeDSCClass reports each [DscResource()] class lacking a Get, Set or
// Test method, at the class.
func (r *Rule) AnalyzeDSCClass(_ *session.Session, root ast.Node, _ string) (iter.Seq[rules.Diagnostic], error) {
	if err := rules.CheckRoot(root); err != nil {
		return nil, err
	}
	meta := r.Metadata()

	return func(yield func(rules.Diagnostic) bool) {
		for _, class := range dsc.Classes(root) {
			for _, method := range dsc.ClassMethods {
				if class.Method(method) != nil {
					continue
				}
				msg := fmt.Sprintf("Missing '%s' function. DSC Class must implement Get, Set and Test functions.", method)
				d := rules.NewDiagnostic(class.Extent(), meta.Name, msg, meta.Severity).
					WithData(class.Name).
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
