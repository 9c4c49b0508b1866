// Package approvedverbs flags commands whose verb is not one of the host's
// approved verbs.
package approvedverbs

import (
	"fmt"
	"iter"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/session"
)

// Name is the rule identifier.
const Name = "PSUseApprovedVerbs"

// Rule implements PSUseApprovedVerbs.
type Rule struct{}

// New creates a new rule instance.
func New() rules.Rule {
	return &Rule{}
}

// Metadata returns the rule metadata.
func (r *Rule) Metadata() rules.Metadata {
	return rules.Metadata{
		Name:             Name,
		CommonName:       "Cmdlet Verbs",
		Description:      "Define and use commands with approved verbs only.",
		Severity:         rules.SeverityWarning,
		SourceType:       rules.SourceBuiltin,
		SourceName:       rules.BuiltinSourceName,
		DocURL:           rules.BuiltinDocURL(Name),
		Category:         "naming",
		EnabledByDefault: true,
	}
}

// AnalyzeCommand reports cmd when it has Verb-Noun form with an unapproved
// verb. Applications and scripts are not named by the host's conventions and
// are skipped. Commands imported from another module cannot be renamed by
// the script's author, and a function the script defines is reported once,
// at its definition.
func (r *Rule) AnalyzeCommand(s *session.Session, cmd *session.CommandInfo, extent ast.Extent, _ string) (iter.Seq[rules.Diagnostic], error) {
	if cmd == nil {
		return nil, rules.ErrNilCommand
	}
	switch cmd.CommandType {
	case session.CommandTypeApplication, session.CommandTypeExternalScript:
		return rules.Empty(), nil
	}
	if cmd.Definition == nil && cmd.Module != "" {
		return rules.Empty(), nil
	}
	if cmd.Definition != nil && s != nil && !sameSpan(extent, s.FunctionNameExtent(cmd.Definition)) {
		return rules.Empty(), nil
	}
	verb := cmd.Verb()
	if verb == "" || session.IsApprovedVerb(verb) {
		return rules.Empty(), nil
	}

	meta := r.Metadata()
	d := rules.NewDiagnostic(
		extent,
		meta.Name,
		fmt.Sprintf("The cmdlet '%s' uses an unapproved verb.", cmd.Name),
		meta.Severity,
	).WithData(cmd.Name).WithDocURL(meta.DocURL)
	return rules.Seq(func() []rules.Diagnostic { return []rules.Diagnostic{d} }), nil
}

func sameSpan(a, b ast.Extent) bool {
	return a.Start.Offset == b.Start.Offset && a.End.Offset == b.End.Offset
}

func init() {
	rules.Register(New)
}
