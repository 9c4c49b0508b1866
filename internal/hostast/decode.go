package hostast

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/session"
)

// maxDepth bounds node nesting so a hostile bundle cannot exhaust the stack.
const maxDepth = 2048

type wireExtent struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type wireToken struct {
	Kind   ast.TokenKind `json:"kind"`
	Text   string        `json:"text"`
	Extent wireExtent    `json:"extent"`
}

type wireParseError struct {
	ID      string     `json:"errorId"`
	Message string     `json:"message"`
	Extent  wireExtent `json:"extent"`
}

type wireBundle struct {
	Path        string                `json:"path"`
	Source      *string               `json:"source"`
	AST         json.RawMessage       `json:"ast"`
	Tokens      []wireToken           `json:"tokens"`
	Commands    []session.CommandInfo `json:"commands"`
	ParseErrors []wireParseError      `json:"parseErrors"`
}

// Decode reads one bundle from r. When the bundle carries no source text it
// is read from the bundle's path.
func Decode(r io.Reader) (*Bundle, error) {
	return decode(r, "")
}

// decode is Decode with the script path to assume when the bundle has none.
func decode(r io.Reader, defaultPath string) (*Bundle, error) {
	var w wireBundle
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode bundle"), ErrInvalidBundle)
	}
	if w.Path == "" {
		w.Path = defaultPath
	}

	var text []byte
	switch {
	case w.Source != nil:
		text = []byte(*w.Source)
	case w.Path != "":
		data, err := os.ReadFile(w.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "bundle has no source and %s is unreadable", w.Path)
		}
		text = data
	default:
		return nil, errors.Mark(errors.New("bundle has neither source nor path"), ErrInvalidBundle)
	}

	src := ast.NewSource(w.Path, text)
	b := &Bundle{Path: w.Path, Source: src, Commands: w.Commands}

	for i, t := range w.Tokens {
		ext, err := extentOf(src, t.Extent)
		if err != nil {
			return nil, errors.Wrapf(err, "token %d", i)
		}
		b.Tokens = append(b.Tokens, ast.Token{Kind: t.Kind, Text: t.Text, Extent: ext})
	}
	for i, pe := range w.ParseErrors {
		ext, err := extentOf(src, pe.Extent)
		if err != nil {
			return nil, errors.Wrapf(err, "parse error %d", i)
		}
		b.ParseErrors = append(b.ParseErrors, ParseError{ID: pe.ID, Message: pe.Message, Extent: ext})
	}

	if len(bytes.TrimSpace(w.AST)) == 0 || bytes.Equal(bytes.TrimSpace(w.AST), []byte("null")) {
		root := &ast.ScriptBlock{Base: ast.At(src.Whole())}
		ast.Link(root)
		b.Root, b.SourceOnly = root, true
		return b, nil
	}

	d := &decoder{src: src}
	root, err := d.node(w.AST, 0)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, errors.Mark(errors.New("ast is empty"), ErrInvalidBundle)
	}
	ast.Link(root)
	b.Root = root
	return b, nil
}

// DecodeNode decodes a single node against src. Used to read trees that are
// not wrapped in a bundle.
func DecodeNode(src *ast.Source, data []byte) (ast.Node, error) {
	n, err := (&decoder{src: src}).node(data, 0)
	if err != nil {
		return nil, err
	}
	if n != nil {
		ast.Link(n)
	}
	return n, nil
}

func extentOf(src *ast.Source, w wireExtent) (ast.Extent, error) {
	if w.Start < 0 || w.Start > w.End || w.End > src.Len() {
		return ast.Extent{}, errors.Wrapf(ast.ErrInvalidExtent, "offsets [%d, %d) outside source of %d bytes", w.Start, w.End, src.Len())
	}
	return src.Extent(w.Start, w.End), nil
}

// fields is one undecoded node object.
type fields map[string]json.RawMessage

type decoder struct {
	src *ast.Source
}

func (d *decoder) fail(kind, field string, err error) error {
	return errors.Mark(errors.Wrapf(err, "%s.%s", kind, field), ErrInvalidBundle)
}

func (f fields) str(key string) string {
	var s string
	if raw, ok := f[key]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

func (f fields) flag(key string) bool {
	var b bool
	if raw, ok := f[key]; ok {
		_ = json.Unmarshal(raw, &b)
	}
	return b
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// node decodes one node object. A missing or null value decodes to a nil
// interface, never to a typed nil.
func (d *decoder) node(raw json.RawMessage, depth int) (ast.Node, error) {
	if isNull(raw) {
		return nil, nil
	}
	if depth > maxDepth {
		return nil, errors.Mark(errors.Newf("nesting deeper than %d", maxDepth), ErrInvalidBundle)
	}
	var f fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "node"), ErrInvalidBundle)
	}
	kind := f.str("type")
	if kind == "" {
		return nil, errors.Mark(errors.New("node without type"), ErrInvalidBundle)
	}
	var we wireExtent
	if err := json.Unmarshal(f["extent"], &we); err != nil {
		return nil, d.fail(kind, "extent", err)
	}
	ext, err := extentOf(d.src, we)
	if err != nil {
		return nil, d.fail(kind, "extent", err)
	}
	return d.build(kind, ast.At(ext), f, depth+1)
}

func (d *decoder) child(kind string, f fields, key string, depth int) (ast.Node, error) {
	n, err := d.node(f[key], depth)
	if err != nil {
		return nil, d.fail(kind, key, err)
	}
	return n, nil
}

func (d *decoder) list(kind string, f fields, key string, depth int) ([]ast.Node, error) {
	raw, ok := f[key]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, d.fail(kind, key, err)
	}
	out := make([]ast.Node, 0, len(items))
	for i, item := range items {
		n, err := d.node(item, depth)
		if err != nil {
			return nil, d.fail(kind, key, errors.Wrapf(err, "[%d]", i))
		}
		if n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

// typed decodes key and asserts the node type. Absent values give the zero
// T (a nil pointer), which callers store only in typed fields.
func typed[T ast.Node](d *decoder, kind string, f fields, key string, depth int) (T, error) {
	var zero T
	n, err := d.child(kind, f, key, depth)
	if err != nil || n == nil {
		return zero, err
	}
	t, ok := n.(T)
	if !ok {
		return zero, d.fail(kind, key, errors.Newf("unexpected %s", n.Kind()))
	}
	return t, nil
}

func typedList[T ast.Node](d *decoder, kind string, f fields, key string, depth int) ([]T, error) {
	nodes, err := d.list(kind, f, key, depth)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(nodes))
	for _, n := range nodes {
		t, ok := n.(T)
		if !ok {
			return nil, d.fail(kind, key, errors.Newf("unexpected %s", n.Kind()))
		}
		out = append(out, t)
	}
	return out, nil
}

// constant decodes a ConstantExpressionAst value. Integral numbers become
// int so rules can compare them with Go literals.
func constant(raw json.RawMessage) (any, error) {
	if isNull(raw) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	num, ok := v.(json.Number)
	if !ok {
		return v, nil
	}
	if i, err := num.Int64(); err == nil {
		if i >= math.MinInt && i <= math.MaxInt {
			return int(i), nil
		}
		return i, nil
	}
	return num.Float64()
}

var quoteKinds = map[string]ast.QuoteKind{
	"BareWord":               ast.BareWord,
	"SingleQuoted":           ast.SingleQuoted,
	"DoubleQuoted":           ast.DoubleQuoted,
	"SingleQuotedHereString": ast.SingleQuotedHereString,
	"DoubleQuotedHereString": ast.DoubleQuotedHereString,
}
