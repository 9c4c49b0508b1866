// Package brokenhashalgorithms flags uses of MD5 and SHA1, which are no
// longer considered secure.
package brokenhashalgorithms

import (
	"fmt"
	"iter"
	"strings"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/session"
)

// Name is the rule identifier.
const Name = "PSAvoidUsingBrokenHashAlgorithms"

var broken = map[string]bool{
	"md5":  true,
	"sha1": true,
}

// Rule implements PSAvoidUsingBrokenHashAlgorithms.
type Rule struct{}

// New creates a new rule instance.
func New() rules.Rule {
	return &Rule{}
}

// Metadata returns the rule metadata.
func (r *Rule) Metadata() rules.Metadata {
	return rules.Metadata{
		Name:             Name,
		CommonName:       "Avoid Using Broken Hash Algorithms",
		Description:      "Avoid using the broken algorithms MD5 or SHA-1.",
		Severity:         rules.SeverityWarning,
		SourceType:       rules.SourceBuiltin,
		SourceName:       rules.BuiltinSourceName,
		DocURL:           rules.BuiltinDocURL(Name),
		Category:         "security",
		EnabledByDefault: true,
	}
}

// AnalyzeScript checks -Algorithm arguments of every command and calls to
// the static HashAlgorithm.Create factory.
func (r *Rule) AnalyzeScript(_ *session.Session, root ast.Node, _ string) (iter.Seq[rules.Diagnostic], error) {
	if err := rules.CheckRoot(root); err != nil {
		return nil, err
	}
	meta := r.Metadata()

	return func(yield func(rules.Diagnostic) bool) {
		for n := range ast.Find(root, isCandidate, true) {
			var (
				subject string
				algo    string
			)
			switch n := n.(type) {
			case *ast.Command:
				arg, ok := n.ParameterArgument("Algorithm")
				if !ok {
					continue
				}
				subject, algo = n.Name(), literal(arg)
			case *ast.InvokeMember:
				if !isCreateCall(n) || len(n.Arguments) == 0 {
					continue
				}
				subject, algo = "HashAlgorithm.Create", literal(n.Arguments[0])
			}
			if !broken[strings.ToLower(algo)] {
				continue
			}
			d := rules.NewDiagnostic(
				n.Extent(),
				meta.Name,
				fmt.Sprintf("The Algorithm parameter of '%s' was used with the broken algorithm '%s'.", subject, algo),
				meta.Severity,
			).WithData(algo).WithDocURL(meta.DocURL)
			if !yield(d) {
				return
			}
		}
	}, nil
}

func isCandidate(n ast.Node) bool {
	switch n.(type) {
	case *ast.Command, *ast.InvokeMember:
		return true
	}
	return false
}

// isCreateCall matches [System.Security.Cryptography.HashAlgorithm]::Create(...).
func isCreateCall(n *ast.InvokeMember) bool {
	te, ok := n.Target.(*ast.TypeExpression)
	if !ok || !n.Static {
		return false
	}
	member, ok := n.Member.(*ast.StringConstant)
	if !ok || !strings.EqualFold(member.Value, "Create") {
		return false
	}
	return ast.SameTypeName(te.TypeName, "System.Security.Cryptography.HashAlgorithm")
}

// literal returns the value of a constant string argument, or "".
func literal(n ast.Node) string {
	switch v := n.(type) {
	case *ast.StringConstant:
		return v.Value
	case *ast.ExpandableString:
		if len(v.Nested) == 0 {
			return v.Value
		}
	}
	return ""
}

func init() {
	rules.Register(New)
}
