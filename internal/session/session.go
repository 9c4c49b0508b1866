// Package session provides the per-run analysis context shared by rules.
//
// A Session caches derived data that many rules ask for: command resolution,
// the token stream, inferred types and the built-in tables. One Session is
// created for each analyzed file and handed to every rule invocation for that
// file. All methods are safe for concurrent use.
package session

import (
	"strings"
	"sync"

	"github.com/wharflab/pslint/internal/ast"
)

// Options configures a new Session.
type Options struct {
	// File is the analyzed script path. Empty for in-memory scripts.
	File string

	// Source is the script text. May be nil when only the tree is known.
	Source *ast.Source

	// Tokens is the host tokenizer's output for Source.
	Tokens []ast.Token

	// Commands is the resolved-command catalog supplied by the host.
	Commands []CommandInfo

	// Root, when set, registers the functions the script defines so that
	// calls to them resolve.
	Root ast.Node
}

// Session is the per-run analysis context.
type Session struct {
	file   string
	source *ast.Source
	tokens []ast.Token

	catalog map[string]*CommandInfo // case-folded name -> command
	defined map[string]*CommandInfo // functions defined by the script

	mu        sync.RWMutex
	resolved  map[string]*CommandInfo // includes negative results
	aliasesOf map[string][]string
	types     map[ast.Node]string
}

// New creates a Session for one analysis run.
func New(opts Options) *Session {
	s := &Session{
		file:    opts.File,
		source:  opts.Source,
		tokens:  opts.Tokens,
		catalog: make(map[string]*CommandInfo, len(opts.Commands)),
		defined: make(map[string]*CommandInfo),
	}
	for i := range opts.Commands {
		c := opts.Commands[i]
		s.catalog[strings.ToLower(c.Name)] = &c
	}
	if opts.Root != nil {
		for fd := range ast.All[*ast.FunctionDefinition](opts.Root) {
			s.defined[strings.ToLower(fd.Name)] = functionInfo(fd)
		}
	}
	s.Reset()
	return s
}

// File returns the analyzed script path.
func (s *Session) File() string {
	return s.file
}

// Source returns the script text, or nil.
func (s *Session) Source() *ast.Source {
	return s.source
}

// Tokens returns the script's token stream. Callers must not modify it.
func (s *Session) Tokens() []ast.Token {
	return s.tokens
}

// TokenAt returns the token containing offset, if any.
func (s *Session) TokenAt(offset int) (ast.Token, bool) {
	for _, t := range s.tokens {
		if t.Extent.Start.Offset <= offset && offset < t.Extent.End.Offset {
			return t, true
		}
	}
	return ast.Token{}, false
}

// Reset drops every cached entry. The catalog and the source stay.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolved = make(map[string]*CommandInfo)
	s.aliasesOf = nil
	s.types = make(map[ast.Node]string)
}
