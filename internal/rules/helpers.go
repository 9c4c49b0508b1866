package rules

import (
	"path/filepath"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/session"
)

// BuiltinSourceName is the SourceName of rules shipped with pslint.
const BuiltinSourceName = "PS"

// BuiltinDocURL returns the documentation URL of a built-in rule.
func BuiltinDocURL(name string) string {
	return "https://github.com/wharflab/pslint/blob/main/docs/rules/" + name + ".md"
}

// SourceOf returns the script text behind an analysis: the session's
// source when known, else the one backing root's extent. May be nil.
func SourceOf(s *session.Session, root ast.Node) *ast.Source {
	if s != nil && s.Source() != nil {
		return s.Source()
	}
	if root != nil {
		return root.Extent().Source()
	}
	return nil
}

// DisplayName returns the base name of file for messages, or "Script" for
// in-memory scripts.
func DisplayName(file string) string {
	if file == "" {
		return "Script"
	}
	return filepath.Base(file)
}

// SessionOr returns s, or an empty session for file when s is nil.
func SessionOr(s *session.Session, file string) *session.Session {
	if s != nil {
		return s
	}
	return session.New(session.Options{File: file})
}

// ConfigBase carries the option every configurable rule has.
type ConfigBase struct {
	Enable bool `koanf:"enable" json:"enable"`
}
