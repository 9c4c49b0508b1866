package testutil

import (
	"strconv"
	"strings"
	"testing"

	"github.com/wharflab/pslint/internal/ast"
)

// Script builds AST nodes over a script's text for tests. Nodes are located
// by the source substring they cover, so tests read like the script they
// describe instead of a list of offsets.
//
// Lookups use the first occurrence of a substring; the N variants pick the
// n-th (0-based). Composite nodes built without text span their children.
type Script struct {
	tb  testing.TB
	Src *ast.Source
}

// NewScript indexes content as the text of file. An empty file makes an
// in-memory script.
func NewScript(tb testing.TB, file, content string) *Script {
	tb.Helper()
	return &Script{tb: tb, Src: ast.NewSource(file, []byte(content))}
}

// File returns the script path.
func (s *Script) File() string {
	return s.Src.File()
}

// ExtN returns the extent of the n-th occurrence of sub.
func (s *Script) ExtN(sub string, n int) ast.Extent {
	s.tb.Helper()
	text := s.Src.Text()
	from := 0
	for i := 0; ; i++ {
		idx := strings.Index(text[from:], sub)
		if idx < 0 || sub == "" {
			s.tb.Fatalf("testutil: %q occurrence %d not found in script", sub, n)
			return ast.Extent{}
		}
		start := from + idx
		if i == n {
			return s.Src.Extent(start, start+len(sub))
		}
		from = start + 1
	}
}

// Ext returns the extent of the first occurrence of sub.
func (s *Script) Ext(sub string) ast.Extent {
	s.tb.Helper()
	return s.ExtN(sub, 0)
}

// At returns a node base spanning the first occurrence of sub.
func (s *Script) At(sub string) ast.Base {
	s.tb.Helper()
	return ast.At(s.Ext(sub))
}

// AtN returns a node base spanning the n-th occurrence of sub.
func (s *Script) AtN(sub string, n int) ast.Base {
	s.tb.Helper()
	return ast.At(s.ExtN(sub, n))
}

func (s *Script) span(nodes ...ast.Node) ast.Base {
	s.tb.Helper()
	first, last := -1, -1
	for _, n := range nodes {
		if n == nil {
			continue
		}
		ext := n.Extent()
		if first < 0 || ext.Start.Offset < first {
			first = ext.Start.Offset
		}
		if ext.End.Offset > last {
			last = ext.End.Offset
		}
	}
	if first < 0 {
		s.tb.Fatal("testutil: cannot span zero nodes")
	}
	return ast.At(s.Src.Extent(first, last))
}

func (s *Script) base(text string, nodes ...ast.Node) ast.Base {
	s.tb.Helper()
	if text == "" {
		return s.span(nodes...)
	}
	return s.At(text)
}

// Var returns the variable written as text ("$x", "$global:y", "@splat").
func (s *Script) Var(text string) *ast.Variable {
	s.tb.Helper()
	return s.VarN(text, 0)
}

// VarN is Var for the n-th occurrence.
func (s *Script) VarN(text string, n int) *ast.Variable {
	s.tb.Helper()
	v := &ast.Variable{Base: s.AtN(text, n), Path: text[1:], Splatted: text[0] == '@'}
	v.Path = strings.TrimSuffix(strings.TrimPrefix(v.Path, "{"), "}")
	return v
}

// Bare returns an unquoted word such as a command name or bare argument.
func (s *Script) Bare(text string) *ast.StringConstant {
	s.tb.Helper()
	return s.BareN(text, 0)
}

// BareN is Bare for the n-th occurrence.
func (s *Script) BareN(text string, n int) *ast.StringConstant {
	s.tb.Helper()
	return &ast.StringConstant{Base: s.AtN(text, n), Value: text, Quote: ast.BareWord}
}

// Str returns a quoted string literal; text includes the quotes.
func (s *Script) Str(text string) *ast.StringConstant {
	s.tb.Helper()
	return s.StrN(text, 0)
}

// StrN is Str for the n-th occurrence.
func (s *Script) StrN(text string, n int) *ast.StringConstant {
	s.tb.Helper()
	quote := ast.SingleQuoted
	if strings.HasPrefix(text, `"`) {
		quote = ast.DoubleQuoted
	}
	return &ast.StringConstant{Base: s.AtN(text, n), Value: text[1 : len(text)-1], Quote: quote}
}

// Num returns an integer constant.
func (s *Script) Num(text string) *ast.Constant {
	s.tb.Helper()
	v, err := strconv.Atoi(text)
	if err != nil {
		s.tb.Fatalf("testutil: %q is not an integer", text)
	}
	return &ast.Constant{Base: s.At(text), Value: v}
}

// Param returns a command parameter token ("-Algorithm" or "-Force:$true").
func (s *Script) Param(text string) *ast.CommandParameter {
	s.tb.Helper()
	return s.ParamN(text, 0)
}

// ParamN is Param for the n-th occurrence.
func (s *Script) ParamN(text string, n int) *ast.CommandParameter {
	s.tb.Helper()
	name := strings.TrimPrefix(text, "-")
	name, _, _ = strings.Cut(name, ":")
	return &ast.CommandParameter{Base: s.AtN(text, n), Name: name}
}

// Cmd returns a command invocation spanning its elements.
func (s *Script) Cmd(elements ...ast.Node) *ast.Command {
	s.tb.Helper()
	return &ast.Command{Base: s.span(elements...), Elements: elements}
}

// Pipe returns a pipeline spanning its elements.
func (s *Script) Pipe(elements ...ast.Node) *ast.Pipeline {
	s.tb.Helper()
	return &ast.Pipeline{Base: s.span(elements...), Elements: elements}
}

// Expr wraps an expression used as a statement.
func (s *Script) Expr(e ast.Node) *ast.CommandExpression {
	s.tb.Helper()
	return &ast.CommandExpression{Base: s.span(e), Expression: e}
}

// Binary returns left <op> right. op is written as in the script ("-eq").
func (s *Script) Binary(op string, left, right ast.Node) *ast.BinaryExpression {
	s.tb.Helper()
	return &ast.BinaryExpression{
		Base:     s.span(left, right),
		Operator: strings.ToLower(strings.TrimPrefix(op, "-")),
		Left:     left,
		Right:    right,
	}
}

// Unary returns op applied to child; the operator is the closest
// occurrence of op before child.
func (s *Script) Unary(op string, child ast.Node) *ast.UnaryExpression {
	s.tb.Helper()
	start := child.Extent().Start.Offset
	idx := strings.LastIndex(s.Src.Slice(0, start), op)
	if idx < 0 {
		s.tb.Fatalf("testutil: operator %q not found before child", op)
	}
	return &ast.UnaryExpression{
		Base:     ast.At(s.Src.Extent(idx, child.Extent().End.Offset)),
		Operator: strings.ToLower(strings.TrimPrefix(op, "-")),
		Child:    child,
	}
}

// Assign returns left = right.
func (s *Script) Assign(left, right ast.Node) *ast.Assignment {
	s.tb.Helper()
	return &ast.Assignment{Base: s.span(left, right), Left: left, Operator: "=", Right: right}
}

// TypeC returns a type constraint written as "[Name]".
func (s *Script) TypeC(text string) *ast.TypeConstraint {
	s.tb.Helper()
	return s.TypeCN(text, 0)
}

// TypeCN is TypeC for the n-th occurrence.
func (s *Script) TypeCN(text string, n int) *ast.TypeConstraint {
	s.tb.Helper()
	return &ast.TypeConstraint{Base: s.AtN(text, n), TypeName: strings.TrimSuffix(strings.TrimPrefix(text, "["), "]")}
}

// Cast returns [Type]child.
func (s *Script) Cast(tc *ast.TypeConstraint, child ast.Node) *ast.ConvertExpression {
	s.tb.Helper()
	return &ast.ConvertExpression{Base: s.span(tc, child), Type: tc, Child: child}
}

// Attr returns an attribute spanning text. Positional arguments and named
// arguments are given in args.
func (s *Script) Attr(text, typeName string, args ...ast.Node) *ast.Attribute {
	s.tb.Helper()
	a := &ast.Attribute{Base: s.At(text), TypeName: typeName}
	for _, arg := range args {
		if na, ok := arg.(*ast.NamedArgument); ok {
			a.Named = append(a.Named, na)
			continue
		}
		a.Positional = append(a.Positional, arg)
	}
	return a
}

// Named returns Name=arg, or the bare Name form when arg is nil.
func (s *Script) Named(text, name string, arg ast.Node) *ast.NamedArgument {
	s.tb.Helper()
	return &ast.NamedArgument{Base: s.At(text), Name: name, Argument: arg, ExpressionOmitted: arg == nil}
}

// Parameter returns a parameter declaration spanning its parts.
func (s *Script) Parameter(attrs []ast.Node, name *ast.Variable, def ast.Node) *ast.Parameter {
	s.tb.Helper()
	parts := append(append([]ast.Node(nil), attrs...), name, def)
	return &ast.Parameter{Base: s.span(parts...), Attributes: attrs, Name: name, Default: def}
}

// ParamBlock returns param(...) spanning text.
func (s *Script) ParamBlock(text string, attrs []*ast.Attribute, params ...*ast.Parameter) *ast.ParamBlock {
	s.tb.Helper()
	return &ast.ParamBlock{Base: s.At(text), Attributes: attrs, Parameters: params}
}

// Block returns a script block spanning text, or the whole script when text
// is empty.
func (s *Script) Block(text string, pb *ast.ParamBlock, statements ...ast.Node) *ast.ScriptBlock {
	s.tb.Helper()
	b := ast.At(s.Src.Whole())
	if text != "" {
		b = s.At(text)
	}
	return &ast.ScriptBlock{Base: b, ParamBlock: pb, Statements: statements}
}

// Func returns a function definition spanning text.
func (s *Script) Func(text, name string, body *ast.ScriptBlock) *ast.FunctionDefinition {
	s.tb.Helper()
	return &ast.FunctionDefinition{Base: s.At(text), Name: name, Body: body}
}

// Hashtable returns @{...} spanning text.
func (s *Script) Hashtable(text string, pairs ...*ast.KeyValuePair) *ast.Hashtable {
	s.tb.Helper()
	return &ast.Hashtable{Base: s.At(text), Pairs: pairs}
}

// Pair returns one hashtable entry.
func (s *Script) Pair(key, value ast.Node) *ast.KeyValuePair {
	s.tb.Helper()
	return &ast.KeyValuePair{Base: s.span(key, value), Key: key, Value: value}
}

// Class returns a class definition spanning text.
func (s *Script) Class(text, name string, attrs []*ast.Attribute, members ...ast.Node) *ast.TypeDefinition {
	s.tb.Helper()
	return &ast.TypeDefinition{Base: s.At(text), Name: name, Attributes: attrs, Members: members}
}

// Method returns a class method spanning text.
func (s *Script) Method(text, name string, body *ast.ScriptBlock) *ast.FunctionMember {
	s.tb.Helper()
	return &ast.FunctionMember{Base: s.At(text), Name: name, Body: body}
}

// Root returns the script's top-level block with parents linked.
func (s *Script) Root(statements ...ast.Node) *ast.ScriptBlock {
	s.tb.Helper()
	return s.RootWith(nil, statements...)
}

// RootWith is Root for scripts with a top-level param block.
func (s *Script) RootWith(pb *ast.ParamBlock, statements ...ast.Node) *ast.ScriptBlock {
	s.tb.Helper()
	root := s.Block("", pb, statements...)
	ast.Link(root)
	return root
}

// Link links a hand-assembled tree and returns it.
func Link[T ast.Node](root T) T {
	ast.Link(root)
	return root
}
