// Package trailingwhitespace flags lines that end in spaces or tabs.
package trailingwhitespace

import (
	"iter"
	"strings"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/session"
)

// Name is the rule identifier.
const Name = "PSAvoidTrailingWhitespace"

// Rule implements PSAvoidTrailingWhitespace.
type Rule struct{}

// New creates a new rule instance.
func New() rules.Rule {
	return &Rule{}
}

// Metadata returns the rule metadata.
func (r *Rule) Metadata() rules.Metadata {
	return rules.Metadata{
		Name:             Name,
		CommonName:       "Avoid Trailing Whitespace",
		Description:      "Each line should have no trailing whitespace.",
		Severity:         rules.SeverityInformation,
		SourceType:       rules.SourceBuiltin,
		SourceName:       rules.BuiltinSourceName,
		DocURL:           rules.BuiltinDocURL(Name),
		Category:         "style",
		EnabledByDefault: true,
	}
}

// AnalyzeScript reports one diagnostic per line ending in whitespace. Lines
// whose trailing whitespace belongs to a here-string are skipped: removing it
// would change the string's value.
func (r *Rule) AnalyzeScript(s *session.Session, root ast.Node, _ string) (iter.Seq[rules.Diagnostic], error) {
	if err := rules.CheckRoot(root); err != nil {
		return nil, err
	}
	src := rules.SourceOf(s, root)
	if src == nil {
		return rules.Empty(), nil
	}
	meta := r.Metadata()

	return func(yield func(rules.Diagnostic) bool) {
		for line := 1; line <= src.LineCount(); line++ {
			text := src.Line(line)
			trimmed := strings.TrimRight(text, " \t")
			if len(trimmed) == len(text) {
				continue
			}
			start := src.LineStart(line) + len(trimmed)
			end := src.LineStart(line) + len(text)
			if inHereString(s, start) {
				continue
			}
			ext := src.Extent(start, end)
			d, err := rules.NewDiagnostic(ext, meta.Name, "Line has trailing whitespace", meta.Severity).
				WithDocURL(meta.DocURL).
				WithCorrections(rules.NewCorrection(ext, "", "Remove trailing whitespace"))
			if err != nil {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}, nil
}

func inHereString(s *session.Session, offset int) bool {
	if s == nil {
		return false
	}
	tok, ok := s.TokenAt(offset)
	return ok && (tok.Kind == ast.TokenHereLiteral || tok.Kind == ast.TokenHereExpand)
}

func init() {
	rules.Register(New)
}
