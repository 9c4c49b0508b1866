// Package dscartifacts checks that DSC resources ship with examples and
// tests in the module's Examples and Tests directories.
package dscartifacts

import (
	"fmt"
	"iter"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/dsc"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/session"
)

const (
	// ExamplesName is the identifier of the examples rule.
	ExamplesName = "PSDSCDscExamplesPresent"
	// TestsName is the identifier of the tests rule.
	TestsName = "PSDSCDscTestsPresent"
)

// Rule looks for files naming a resource under one module directory.
type Rule struct {
	meta rules.Metadata
	dir  string
	what string
}

// NewExamples creates the PSDSCDscExamplesPresent rule.
func NewExamples() rules.Rule {
	return &Rule{
		dir:  "Examples",
		what: "examples",
		meta: rules.Metadata{
			Name:             ExamplesName,
			CommonName:       "DSC examples are present",
			Description:      "Every DSC resource module should contain folder \"Examples\" with sample configurations for every resource.",
			Severity:         rules.SeverityInformation,
			SourceType:       rules.SourceBuiltin,
			SourceName:       rules.BuiltinSourceName,
			DocURL:           rules.BuiltinDocURL(ExamplesName),
			Category:         "dsc",
			EnabledByDefault: true,
		},
	}
}

// NewTests creates the PSDSCDscTestsPresent rule.
func NewTests() rules.Rule {
	return &Rule{
		dir:  "Tests",
		what: "tests",
		meta: rules.Metadata{
			Name:             TestsName,
			CommonName:       "Dsc tests are present",
			Description:      "Every DSC resource module should contain folder \"Tests\" with tests for every resource.",
			Severity:         rules.SeverityInformation,
			SourceType:       rules.SourceBuiltin,
			SourceName:       rules.BuiltinSourceName,
			DocURL:           rules.BuiltinDocURL(TestsName),
			Category:         "dsc",
			EnabledByDefault: true,
		},
	}
}

// Metadata returns the rule metadata.
func (r *Rule) Metadata() rules.Metadata {
	return r.meta
}

// AnalyzeDSCResource reports, at file level, a script-based resource with no
// matching file in the module directory. The file system is read once, when
// the analysis is requested.
func (r *Rule) AnalyzeDSCResource(_ *session.Session, root ast.Node, file string) (iter.Seq[rules.Diagnostic], error) {
	if err := rules.CheckRoot(root); err != nil {
		return nil, err
	}
	if file == "" {
		return rules.Empty(), nil
	}
	name := dsc.ResourceName(file)
	ok, err := r.present(file, name)
	if err != nil || ok {
		return rules.Empty(), err
	}
	d := rules.NewFileDiagnostic(file, r.meta.Name, r.message(name), r.meta.Severity).
		WithData(name).
		WithDocURL(r.meta.DocURL)
	return rules.Seq(func() []rules.Diagnostic { return []rules.Diagnostic{d} }), nil
}

// AnalyzeDSCClass reports each [DscResource()] class with no matching file,
// at the class.
func (r *Rule) AnalyzeDSCClass(_ *session.Session, root ast.Node, file string) (iter.Seq[rules.Diagnostic], error) {
	if err := rules.CheckRoot(root); err != nil {
		return nil, err
	}
	if file == "" {
		return rules.Empty(), nil
	}
	var out []rules.Diagnostic
	for _, class := range dsc.Classes(root) {
		ok, err := r.present(file, class.Name)
		if err != nil {
			return nil, err
		}
		if ok {
			continue
		}
		out = append(out, rules.NewDiagnostic(class.Extent(), r.meta.Name, r.message(class.Name), r.meta.Severity).
			WithData(class.Name).
			WithDocURL(r.meta.DocURL))
	}
	return rules.Seq(func() []rules.Diagnostic { return out }), nil
}

func (r *Rule) present(file, resource string) (bool, error) {
	found, err := dsc.FindArtifacts(dsc.ModuleRoot(file), r.dir, resource)
	if err != nil {
		return false, err
	}
	return len(found) > 0, nil
}

func (r *Rule) message(resource string) string {
	return fmt.Sprintf("No %s found for resource '%s'", r.what, resource)
}

func init() {
	rules.Register(NewExamples)
	rules.Register(NewTests)
}
