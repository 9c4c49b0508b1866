// Package hardcodedsecrets detects credentials written into string
// literals, such as API keys, tokens and private keys.
//
// Detection uses gitleaks' curated pattern database, so it finds actual
// secret values rather than suspicious names.
package hardcodedsecrets

import (
	"fmt"
	"iter"
	"sync"

	"github.com/zricethezav/gitleaks/v8/detect"
	"github.com/zricethezav/gitleaks/v8/report"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/session"
)

// Name is the rule identifier.
const Name = "PSAvoidHardcodedSecrets"

// detector loads the gitleaks rule set once per process.
var detector = sync.OnceValues(detect.NewDetectorDefaultConfig)

// Rule implements PSAvoidHardcodedSecrets.
type Rule struct{}

// New creates a new rule instance.
func New() rules.Rule {
	return &Rule{}
}

// Metadata returns the rule metadata.
func (r *Rule) Metadata() rules.Metadata {
	return rules.Metadata{
		Name:             Name,
		CommonName:       "Avoid Hardcoded Secrets",
		Description:      "Detects hardcoded secrets, API keys and credentials in string literals.",
		Severity:         rules.SeverityError,
		SourceType:       rules.SourceBuiltin,
		SourceName:       rules.BuiltinSourceName,
		DocURL:           rules.BuiltinDocURL(Name),
		Category:         "security",
		EnabledByDefault: true,
	}
}

// AnalyzeScript scans every quoted string. A string assigned to a variable
// is scanned as "name = value" so keyword-anchored patterns can match.
func (r *Rule) AnalyzeScript(_ *session.Session, root ast.Node, _ string) (iter.Seq[rules.Diagnostic], error) {
	if err := rules.CheckRoot(root); err != nil {
		return nil, err
	}
	d, err := detector()
	if err != nil {
		return nil, err
	}
	meta := r.Metadata()

	return rules.Seq(func() []rules.Diagnostic {
		var out []rules.Diagnostic
		ast.Inspect(root, func(n ast.Node) bool {
			value, ok := literal(n)
			if !ok || value == "" {
				return true
			}
			for _, f := range d.DetectString(scanText(n, value)) {
				out = append(out, diagnostic(meta, n.Extent(), f))
			}
			return true
		})
		return out
	}), nil
}

func literal(n ast.Node) (string, bool) {
	switch n := n.(type) {
	case *ast.StringConstant:
		return n.Value, n.Quote != ast.BareWord
	case *ast.ExpandableString:
		return n.Value, true
	}
	return "", false
}

func scanText(n ast.Node, value string) string {
	asg, ok := n.Parent().(*ast.Assignment)
	if !ok || asg.Right != n {
		return value
	}
	left := asg.Left
	if cv, ok := left.(*ast.ConvertExpression); ok {
		left = cv.Child
	}
	if v, ok := left.(*ast.Variable); ok {
		return v.Name() + " = " + value
	}
	return value
}

func diagnostic(meta rules.Metadata, ext ast.Extent, f report.Finding) rules.Diagnostic {
	desc := f.Description
	if desc == "" {
		desc = "Potential secret detected"
	}
	msg := fmt.Sprintf("%s in string literal. Found: %s (rule: %s).", desc, redact(f.Secret), f.RuleID)
	return rules.NewDiagnostic(ext, meta.Name, msg, meta.Severity).
		WithData(f.RuleID).
		WithDocURL(meta.DocURL)
}

// redact keeps the first and last four characters of long secrets.
func redact(secret string) string {
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

func init() {
	rules.Register(New)
}
