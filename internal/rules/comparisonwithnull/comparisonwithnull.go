// Package comparisonwithnull flags equality comparisons with $null on the
// right-hand side.
package comparisonwithnull

import (
	"iter"
	"strings"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/session"
)

// Name is the rule identifier.
const Name = "PSPossibleIncorrectComparisonWithNull"

const message = "$null should be on the left side of equality comparisons."

// equalityOperators compare element-wise when the left operand is a
// collection, which is why $null belongs on the left.
var equalityOperators = map[string]bool{
	"eq": true, "ne": true,
	"ceq": true, "cne": true,
	"ieq": true, "ine": true,
}

// Rule implements PSPossibleIncorrectComparisonWithNull.
type Rule struct{}

// New creates a new rule instance.
func New() rules.Rule {
	return &Rule{}
}

// Metadata returns the rule metadata.
func (r *Rule) Metadata() rules.Metadata {
	return rules.Metadata{
		Name:             Name,
		CommonName:       "Null Comparison",
		Description:      "Checks that $null is on the left side of any equality comparisons. With a collection on the left, the comparison filters the collection instead.",
		Severity:         rules.SeverityWarning,
		SourceType:       rules.SourceBuiltin,
		SourceName:       rules.BuiltinSourceName,
		DocURL:           rules.BuiltinDocURL(Name),
		Category:         "correctness",
		EnabledByDefault: true,
	}
}

// AnalyzeScript reports "x -eq $null" and suggests "$null -eq x".
func (r *Rule) AnalyzeScript(_ *session.Session, root ast.Node, _ string) (iter.Seq[rules.Diagnostic], error) {
	if err := rules.CheckRoot(root); err != nil {
		return nil, err
	}
	meta := r.Metadata()

	return func(yield func(rules.Diagnostic) bool) {
		for bin := range ast.All[*ast.BinaryExpression](root) {
			if !equalityOperators[strings.ToLower(bin.Operator)] || !isNull(bin.Right) || isNull(bin.Left) {
				continue
			}
			d := rules.NewDiagnostic(bin.Extent(), meta.Name, message, meta.Severity).WithDocURL(meta.DocURL)
			if fix, ok := swap(bin); ok {
				if withFix, err := d.WithCorrections(fix); err == nil {
					d = withFix
				}
			}
			if !yield(d) {
				return
			}
		}
	}, nil
}

func isNull(n ast.Node) bool {
	v, ok := n.(*ast.Variable)
	return ok && v.IsNull()
}

// swap builds the correction exchanging the operands. The operator is kept
// as written so case-sensitive variants survive.
func swap(bin *ast.BinaryExpression) (rules.Correction, bool) {
	ext := bin.Extent()
	src := ext.Source()
	if src == nil {
		return rules.Correction{}, false
	}
	left, right := bin.Left.Extent(), bin.Right.Extent()
	op := strings.TrimSpace(src.Slice(left.End.Offset, right.Start.Offset))
	text := right.Text() + " " + op + " " + left.Text()
	return rules.NewCorrection(ext, text, "Use "+text+" instead"), true
}

func init() {
	rules.Register(New)
}
