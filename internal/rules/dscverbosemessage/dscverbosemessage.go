// Package dscverbosemessage suggests Write-Verbose calls in DSC resource
// functions.
package dscverbosemessage

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
const Name = "PSDSCUseVerboseMessageInDSCResource"

// Rule implements PSDSCUseVerboseMessageInDSCResource.
type Rule struct{}

// New creates a new rule instance.
func New() rules.Rule {
	return &Rule{}
}

// Metadata returns the rule metadata.
func (r *Rule) Metadata() rules.Metadata {
	return rules.Metadata{
		Name:             Name,
		CommonName:       "Use verbose message in DSC resource",
		Description:      "It is a best practice to emit informative, verbose messages in DSC resource functions. This helps in debugging issues when a DSC configuration is executed.",
		Severity:         rules.SeverityInformation,
		SourceType:       rules.SourceBuiltin,
		SourceName:       rules.BuiltinSourceName,
		DocURL:           rules.BuiltinDocURL(Name),
		Category:         "dsc",
		EnabledByDefault: true,
	}
}

// AnalyzeDSCResource reports each *-TargetResource function whose body never
// calls Write-Verbose.
func (r *Rule) AnalyzeDSCResource(s *session.Session, root ast.Node, file string) (iter.Seq[rules.Diagnostic], error) {
	if err := rules.CheckRoot(root); err != nil {
		return nil, err
	}
	s = rules.SessionOr(s, file)
	meta := r.Metadata()

	return func(yield func(rules.Diagnostic) bool) {
		for _, name := range dsc.ResourceFunctions {
			fd, ok := dsc.ResourceFunction(root, name)
			if !ok || callsWriteVerbose(s, fd) {
				continue
			}
			msg := fmt.Sprintf("There is no call to Write-Verbose in DSC function '%s'. If you are using Write-Verbose in a helper function, suppress this rule application.", fd.Name)
			d := rules.NewDiagnostic(fd.Extent(), meta.Name, msg, meta.Severity).
				WithData(fd.Name).
				WithDocURL(meta.DocURL)
			if !yield(d) {
				return
			}
		}
	}, nil
}

func callsWriteVerbose(s *session.Session, fd *ast.FunctionDefinition) bool {
	for cmd := range ast.All[*ast.Command](fd) {
		if info := s.ResolveCommand(cmd.Name()); info != nil && strings.EqualFold(info.Name, "Write-Verbose") {
			return true
		}
	}
	return false
}

func init() {
	rules.Register(New)
}
