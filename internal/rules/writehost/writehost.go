// Package writehost flags Write-Host calls outside Show- functions.
package writehost

import (
	"fmt"
	"iter"
	"strings"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/session"
)

// Name is the rule identifier.
const Name = "PSAvoidUsingWriteHost"

const target = "Write-Host"

// Rule implements PSAvoidUsingWriteHost.
type Rule struct{}

// New creates a new rule instance.
func New() rules.Rule {
	return &Rule{}
}

// Metadata returns the rule metadata.
func (r *Rule) Metadata() rules.Metadata {
	return rules.Metadata{
		Name:             Name,
		CommonName:       "Avoid Using Write-Host",
		Description:      "Write-Host output cannot be captured or redirected in every host. Use Write-Output, Write-Verbose or Write-Information.",
		Severity:         rules.SeverityWarning,
		SourceType:       rules.SourceBuiltin,
		SourceName:       rules.BuiltinSourceName,
		DocURL:           rules.BuiltinDocURL(Name),
		Category:         "best-practice",
		EnabledByDefault: true,
	}
}

// AnalyzeScript reports Write-Host invocations, including ones through an
// alias. Functions using the Show verb exist to write to the host, so calls
// inside them are accepted.
func (r *Rule) AnalyzeScript(s *session.Session, root ast.Node, file string) (iter.Seq[rules.Diagnostic], error) {
	if err := rules.CheckRoot(root); err != nil {
		return nil, err
	}
	s = rules.SessionOr(s, file)
	meta := r.Metadata()
	msg := fmt.Sprintf("File '%s' uses Write-Host. Avoid using Write-Host because it might not work in all hosts, does not work when there is no host, and (prior to PS 5.0) cannot be suppressed, captured, or redirected. Instead, use Write-Output, Write-Verbose, or Write-Information.", rules.DisplayName(file))

	return func(yield func(rules.Diagnostic) bool) {
		for cmd := range ast.All[*ast.Command](root) {
			info := s.ResolveCommand(cmd.Name())
			if info == nil || !strings.EqualFold(info.Name, target) || inShowFunction(cmd) {
				continue
			}
			d := rules.NewDiagnostic(cmd.Extent(), meta.Name, msg, meta.Severity).WithDocURL(meta.DocURL)
			if !yield(d) {
				return
			}
		}
	}, nil
}

func inShowFunction(n ast.Node) bool {
	fd, ok := ast.Enclosing[*ast.FunctionDefinition](n)
	if !ok {
		return false
	}
	verb, _, _ := strings.Cut(fd.Name, "-")
	return strings.EqualFold(verb, "Show")
}

func init() {
	rules.Register(New)
}
