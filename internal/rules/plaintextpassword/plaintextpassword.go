// Package plaintextpassword flags password parameters that are not
// SecureString.
package plaintextpassword

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/session"
)

// Name is the rule identifier.
const Name = "PSAvoidUsingPlainTextForPassword"

// passwordNames are parameter names that hold a secret, compared
// case-insensitively.
var passwordNames = []string{
	"password", "passwords", "passphrase", "passphrases", "passwordparam", "pass", "pwd",
}

// Rule implements PSAvoidUsingPlainTextForPassword.
type Rule struct{}

// New creates a new rule instance.
func New() rules.Rule {
	return &Rule{}
}

// Metadata returns the rule metadata.
func (r *Rule) Metadata() rules.Metadata {
	return rules.Metadata{
		Name:             Name,
		CommonName:       "Avoid Using Plain Text For Password Parameter",
		Description:      "Password parameters that take in plaintext will expose passwords and compromise the security of your system.",
		Severity:         rules.SeverityWarning,
		SourceType:       rules.SourceBuiltin,
		SourceName:       rules.BuiltinSourceName,
		DocURL:           rules.BuiltinDocURL(Name),
		Category:         "security",
		EnabledByDefault: true,
	}
}

// AnalyzeScript reports password-like parameters whose type is String,
// Object or an array of either. The correction retypes the parameter as
// SecureString, inserting a constraint when there is none.
func (r *Rule) AnalyzeScript(s *session.Session, root ast.Node, file string) (iter.Seq[rules.Diagnostic], error) {
	if err := rules.CheckRoot(root); err != nil {
		return nil, err
	}
	s = rules.SessionOr(s, file)
	meta := r.Metadata()

	return func(yield func(rules.Diagnostic) bool) {
		for p := range ast.All[*ast.Parameter](root) {
			name := p.ParameterName()
			if !isPasswordName(name) {
				continue
			}
			typ := s.InferType(p)
			if !isPlainText(typ) {
				continue
			}

			replacement := "[SecureString]"
			if strings.HasSuffix(typ, "[]") {
				replacement = "[SecureString[]]"
			}
			var fix rules.Correction
			if tc := p.TypeConstraint(); tc != nil {
				fix = rules.NewCorrection(tc.Extent(), replacement, "Set "+name+" type to SecureString")
			} else {
				at := insertionPoint(p)
				fix = rules.NewCorrection(at, replacement+" ", "Set "+name+" type to SecureString")
			}

			msg := fmt.Sprintf("Parameter '%s' should not use String type but either SecureString or PSCredential, otherwise it increases the chance to expose this sensitive information.", name)
			d, err := rules.NewDiagnostic(p.Extent(), meta.Name, msg, meta.Severity).
				WithData(name).
				WithDocURL(meta.DocURL).
				WithCorrections(fix)
			if err != nil {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}, nil
}

func isPasswordName(name string) bool {
	return slices.Contains(passwordNames, strings.ToLower(name))
}

func isPlainText(typ string) bool {
	switch typ {
	case "System.String", "System.String[]", session.ObjectType, "System.Object[]":
		return true
	default:
		return false
	}
}

// insertionPoint is the empty extent just before the parameter variable.
func insertionPoint(p *ast.Parameter) ast.Extent {
	ext := p.Name.Extent()
	if src := ext.Source(); src != nil {
		return src.Extent(ext.Start.Offset, ext.Start.Offset)
	}
	at, _ := ast.NewExtent(ext.Start, ext.Start)
	return at
}

func init() {
	rules.Register(New)
}
