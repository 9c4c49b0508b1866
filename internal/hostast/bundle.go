// Package hostast reads the analysis bundle the host front end writes for a
// script: its source, syntax tree, tokens, resolvable commands and parse
// errors, as one JSON document.
//
//	{
//	  "path": "C:/src/Build.ps1",
//	  "source": "...",
//	  "ast": {"type": "ScriptBlockAst", "extent": {"start": 0, "end": 42}, ...},
//	  "tokens": [{"kind": "Comment", "text": "# x", "extent": {"start": 0, "end": 3}}],
//	  "commands": [{"name": "Get-Thing", "type": "Function", "parameters": [...]}],
//	  "parseErrors": [{"errorId": "MissingEndCurlyBrace", "message": "...", "extent": {...}}]
//	}
//
// Extents are byte offsets into the UTF-8 source, end exclusive.
package hostast

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/session"
)

// ErrInvalidBundle marks every malformed-bundle error.
var ErrInvalidBundle = errors.New("invalid analysis bundle")

// BundleSuffix is appended to a script path to find its sidecar bundle.
const BundleSuffix = ".psast.json"

// ParseError is a syntax error the host parser reported.
type ParseError struct {
	ID      string
	Message string
	Extent  ast.Extent
}

// Bundle is one decoded analysis bundle.
type Bundle struct {
	// Path is the script the bundle describes. Empty for in-memory scripts.
	Path string

	Source   *ast.Source
	Root     ast.Node
	Tokens   []ast.Token
	Commands []session.CommandInfo

	ParseErrors []ParseError

	// SourceOnly is set when no syntax tree was available and Root is an
	// empty script block spanning the source.
	SourceOnly bool
}

// SessionOptions returns the options for a session over the bundle.
func (b *Bundle) SessionOptions() session.Options {
	return session.Options{
		File:     b.Path,
		Source:   b.Source,
		Tokens:   b.Tokens,
		Commands: b.Commands,
		Root:     b.Root,
	}
}

// SidecarPath returns where the bundle for script is expected.
func SidecarPath(script string) string {
	return script + BundleSuffix
}

// IsBundlePath reports whether path names a bundle rather than a script.
func IsBundlePath(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), BundleSuffix)
}

// openBundle opens a bundle path for reading.
// If path is "-", returns os.Stdin and a no-op closer.
func openBundle(path string) (io.Reader, func() error, error) {
	if path == "-" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// LoadFile decodes the bundle at path ("-" reads standard input). A bundle
// without a path describes the script next to it.
func LoadFile(_ context.Context, path string) (*Bundle, error) {
	r, closer, err := openBundle(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = closer() }()

	var script string
	if path != "-" {
		script = ScriptPath(path)
	}
	return decode(r, script)
}

// Load returns the bundle for a script: its sidecar bundle when one exists,
// otherwise a source-only bundle read from the script itself.
func Load(ctx context.Context, script string) (*Bundle, error) {
	if IsBundlePath(script) || script == "-" {
		return LoadFile(ctx, script)
	}
	sidecar := SidecarPath(script)
	if _, err := os.Stat(sidecar); err == nil {
		b, err := LoadFile(ctx, sidecar)
		if err != nil {
			return nil, errors.Wrapf(err, "load %s", sidecar)
		}
		return b, nil
	}
	data, err := os.ReadFile(script)
	if err != nil {
		return nil, err
	}
	return FromSource(script, data), nil
}

// FromSource builds a source-only bundle: rules that read text still run,
// tree-based rules see an empty script.
func FromSource(path string, data []byte) *Bundle {
	src := ast.NewSource(path, data)
	root := &ast.ScriptBlock{Base: ast.At(src.Whole())}
	ast.Link(root)
	return &Bundle{Path: path, Source: src, Root: root, SourceOnly: true}
}

// ScriptPath returns the script a bundle path belongs to.
func ScriptPath(bundlePath string) string {
	if !IsBundlePath(bundlePath) {
		return bundlePath
	}
	return filepath.Clean(bundlePath[:len(bundlePath)-len(BundleSuffix)])
}
