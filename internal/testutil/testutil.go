// Package testutil provides test helpers for the PowerShell linter.
package testutil

import (
	"iter"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/dsc"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/session"
)

// DefaultFile is the script path rule tests analyze unless a case says
// otherwise.
const DefaultFile = "test.ps1"

// NewSession creates a session for a test script, registering the
// functions root defines.
func NewSession(s *Script, root ast.Node, commands ...session.CommandInfo) *session.Session {
	return session.New(session.Options{
		File:     s.File(),
		Source:   s.Src,
		Commands: commands,
		Root:     root,
	})
}

// Analyze runs every capability rule implements against root and returns
// the diagnostics in dispatch order: script, commands, DSC resource, DSC
// class. DSC capabilities run only for scripts the linter would treat as
// resources. Each sequence is consumed twice to check it is restartable.
func Analyze(tb testing.TB, rule rules.Rule, sess *session.Session, root ast.Node) []rules.Diagnostic {
	tb.Helper()

	file := sess.File()
	caps := rules.Capabilities(rule)
	var out []rules.Diagnostic

	collect := func(seq iter.Seq[rules.Diagnostic], err error) {
		tb.Helper()
		require.NoError(tb, err)
		first := slices.Collect(seq)
		require.Equal(tb, first, slices.Collect(seq), "diagnostic sequence must be restartable")
		out = append(out, first...)
	}

	if caps.Has(rules.CapScript) {
		collect(rule.(rules.ScriptAnalyzer).AnalyzeScript(sess, root, file))
	}
	if caps.Has(rules.CapCommand) {
		ca := rule.(rules.CommandAnalyzer)
		for ref := range sess.CommandReferences(root) {
			collect(ca.AnalyzeCommand(sess, ref.Info, ref.Extent, file))
		}
	}
	if caps.Has(rules.CapDSCResource) && dsc.IsResource(root, file) {
		collect(rule.(rules.DSCResourceAnalyzer).AnalyzeDSCResource(sess, root, file))
	}
	if caps.Has(rules.CapDSCClass) && len(dsc.Classes(root)) > 0 {
		collect(rule.(rules.DSCClassAnalyzer).AnalyzeDSCClass(sess, root, file))
	}
	return out
}

// RuleTestCase defines a test case for table-driven rule tests.
type RuleTestCase struct {
	// Name is the test case name.
	Name string

	// Content is the script text.
	Content string

	// File overrides DefaultFile. Set InMemory for a script with no path.
	File     string
	InMemory bool

	// Build constructs the tree for Content.
	Build func(s *Script) ast.Node

	// Commands is the host command catalog for the case.
	Commands []session.CommandInfo

	// Config is the optional rule configuration.
	Config map[string]any

	// WantViolations is the expected number of violations.
	// Use -1 to skip the count check.
	WantViolations int

	// WantMessages are substrings expected in violation messages.
	WantMessages []string

	// WantCorrections are the expected replacement texts of each
	// diagnostic's first correction, in diagnostic order.
	WantCorrections []string
}

// RunRuleTests runs a table of test cases against fresh instances of a rule.
func RunRuleTests(t *testing.T, newRule func() rules.Rule, cases []RuleTestCase) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			rule := newRule()
			if tc.Config != nil {
				cr, ok := rule.(rules.ConfigurableRule)
				require.True(t, ok, "rule %s does not accept configuration", rule.Metadata().Name)
				require.NoError(t, cr.Configure(tc.Config))
			}

			file := tc.File
			if file == "" && !tc.InMemory {
				file = DefaultFile
			}
			script := NewScript(t, file, tc.Content)
			root := tc.Build(script)
			diags := Analyze(t, rule, NewSession(script, root, tc.Commands...), root)

			// Check violation count
			if tc.WantViolations >= 0 && len(diags) != tc.WantViolations {
				t.Errorf("got %d violations, want %d", len(diags), tc.WantViolations)
				for i, d := range diags {
					t.Logf("  [%d] %s: %s", i, d.RuleName, d.Message)
				}
			}

			for _, d := range diags {
				if d.RuleName != rule.Metadata().Name {
					t.Errorf("RuleName = %q, want %q", d.RuleName, rule.Metadata().Name)
				}
				if d.ScriptPath != file {
					t.Errorf("ScriptPath = %q, want %q", d.ScriptPath, file)
				}
				for _, c := range d.SuggestedCorrections {
					if c.File != d.ScriptPath {
						t.Errorf("correction file %q differs from script path %q", c.File, d.ScriptPath)
					}
				}
			}

			// Check message substrings
			for i, msg := range tc.WantMessages {
				if i >= len(diags) {
					t.Errorf(
						"expected violation[%d] with message containing %q, but only got %d violations",
						i,
						msg,
						len(diags),
					)
					continue
				}
				if !strings.Contains(diags[i].Message, msg) {
					t.Errorf("violation[%d].Message = %q, want substring %q", i, diags[i].Message, msg)
				}
			}

			for i, want := range tc.WantCorrections {
				if i >= len(diags) || !diags[i].HasCorrections() {
					t.Errorf("expected violation[%d] with correction %q", i, want)
					continue
				}
				if got := diags[i].SuggestedCorrections[0].Text; got != want {
					t.Errorf("violation[%d] correction = %q, want %q", i, got, want)
				}
			}
		})
	}
}

// AssertNoViolations fails the test if there are any violations.
func AssertNoViolations(tb testing.TB, diags []rules.Diagnostic) {
	tb.Helper()
	if len(diags) > 0 {
		tb.Errorf("expected no violations, got %d:", len(diags))
		for _, d := range diags {
			tb.Logf("  - %s at line %d: %s", d.RuleName, d.Line(), d.Message)
		}
	}
}

// AssertViolationCount fails if the violation count doesn't match.
func AssertViolationCount(tb testing.TB, diags []rules.Diagnostic, want int) {
	tb.Helper()
	if len(diags) != want {
		tb.Errorf("got %d violations, want %d", len(diags), want)
		for _, d := range diags {
			tb.Logf("  - %s at line %d: %s", d.RuleName, d.Line(), d.Message)
		}
	}
}
