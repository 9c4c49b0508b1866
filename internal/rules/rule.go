package rules

import (
	"iter"
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/session"
)

var (
	// ErrNilAST is returned by every analyzer capability when called with a
	// nil tree.
	ErrNilAST = errors.New("invalid argument: nil AST")

	// ErrNilCommand is returned by AnalyzeCommand when called with a nil
	// command.
	ErrNilCommand = errors.New("invalid argument: nil command")
)

// SourceType tells where a rule comes from.
type SourceType int

const (
	// SourceBuiltin rules ship with pslint.
	SourceBuiltin SourceType = iota
	// SourceManaged rules are loaded from a managed plugin.
	SourceManaged
	// SourceModule rules are provided by a script module.
	SourceModule
)

func (t SourceType) String() string {
	switch t {
	case SourceBuiltin:
		return "Builtin"
	case SourceManaged:
		return "Managed"
	case SourceModule:
		return "Module"
	default:
		return "Unknown"
	}
}

// Metadata contains static information about a rule.
type Metadata struct {
	// Name is the unique identifier (e.g., "PSAvoidUsingWriteHost").
	Name string

	// CommonName is the human-readable rule name.
	CommonName string

	// Description explains what the rule checks.
	Description string

	// Severity is the severity when not overridden.
	Severity Severity

	SourceType SourceType

	// SourceName names the rule provider ("PS" for built-in rules).
	SourceName string

	// DocURL links to detailed documentation.
	DocURL string

	// Category groups related rules (e.g., "security", "style", "dsc").
	Category string

	// EnabledByDefault indicates if the rule runs without explicit opt-in.
	EnabledByDefault bool
}

// Rule is the interface every rule implements. Analysis happens through the
// capability interfaces below; a rule implements one or more of them.
type Rule interface {
	// Metadata returns static information about the rule.
	Metadata() Metadata
}

// ScriptAnalyzer checks a whole script tree.
//
// Empty file means an in-memory script: checks that depend on the file path
// are skipped. The returned sequence is lazy and yields the same diagnostics,
// in the same order, every time it is iterated.
type ScriptAnalyzer interface {
	Rule
	AnalyzeScript(s *session.Session, root ast.Node, file string) (iter.Seq[Diagnostic], error)
}

// CommandAnalyzer checks one resolved command reference at a time.
type CommandAnalyzer interface {
	Rule
	AnalyzeCommand(s *session.Session, cmd *session.CommandInfo, extent ast.Extent, file string) (iter.Seq[Diagnostic], error)
}

// DSCResourceAnalyzer checks a script-based DSC resource module.
type DSCResourceAnalyzer interface {
	Rule
	AnalyzeDSCResource(s *session.Session, root ast.Node, file string) (iter.Seq[Diagnostic], error)
}

// DSCClassAnalyzer checks class-based DSC resources declared in a script.
type DSCClassAnalyzer interface {
	Rule
	AnalyzeDSCClass(s *session.Session, root ast.Node, file string) (iter.Seq[Diagnostic], error)
}

// ConfigurableRule is an optional interface for rules that accept options.
//
// Configure is called once on a fresh instance before analysis. Keys that are
// not set keep their defaults. On error the instance keeps its defaults and
// the error describes the offending option.
type ConfigurableRule interface {
	Rule

	// DefaultConfig returns the default configuration for this rule.
	DefaultConfig() any

	// Configure applies user options.
	Configure(opts map[string]any) error

	// Enabled reports the rule's "enable" option.
	Enabled() bool
}

// Capability is a bit set of the analyzer interfaces a rule implements.
type Capability uint8

const (
	CapScript Capability = 1 << iota
	CapCommand
	CapDSCResource
	CapDSCClass
)

// Has reports whether c includes every bit of other.
func (c Capability) Has(other Capability) bool {
	return c&other == other
}

// Capabilities reports the analyzer interfaces it implements.
func Capabilities(rule Rule) Capability {
	var c Capability
	if _, ok := rule.(ScriptAnalyzer); ok {
		c |= CapScript
	}
	if _, ok := rule.(CommandAnalyzer); ok {
		c |= CapCommand
	}
	if _, ok := rule.(DSCResourceAnalyzer); ok {
		c |= CapDSCResource
	}
	if _, ok := rule.(DSCClassAnalyzer); ok {
		c |= CapDSCClass
	}
	return c
}

// CheckRoot returns ErrNilAST when root is nil, including a typed nil
// pointer stored in the interface.
func CheckRoot(root ast.Node) error {
	if root == nil {
		return ErrNilAST
	}
	if v := reflect.ValueOf(root); v.Kind() == reflect.Pointer && v.IsNil() {
		return ErrNilAST
	}
	return nil
}

// Seq wraps a function that appends diagnostics into a restartable sequence.
// collect runs on every iteration, so it must be pure.
func Seq(collect func() []Diagnostic) iter.Seq[Diagnostic] {
	return func(yield func(Diagnostic) bool) {
		for _, d := range collect() {
			if !yield(d) {
				return
			}
		}
	}
}

// Empty is the sequence with no diagnostics.
func Empty() iter.Seq[Diagnostic] {
	return func(func(Diagnostic) bool) {}
}
