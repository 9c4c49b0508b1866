package cmdletaliases

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/rules/configutil"
	"github.com/wharflab/pslint/internal/session"
	"github.com/wharflab/pslint/internal/testutil"
)

func single(name string, args ...string) func(*testutil.Script) ast.Node {
	return func(s *testutil.Script) ast.Node {
		elems := []ast.Node{s.Bare(name)}
		for _, a := range args {
			elems = append(elems, s.Bare(a))
		}
		return s.Root(s.Cmd(elems...))
	}
}

func TestRule(t *testing.T) {
	testutil.RunRuleTests(t, New, []testutil.RuleTestCase{
		{
			Name:            "builtin alias",
			Content:         "gci C:\\",
			Build:           single("gci", "C:\\"),
			WantViolations:  1,
			WantMessages:    []string{"'gci' is an alias of 'Get-ChildItem'"},
			WantCorrections: []string{"Get-ChildItem"},
		},
		{
			Name:           "full name",
			Content:        "Get-ChildItem",
			Build:          single("Get-ChildItem"),
			WantViolations: 0,
		},
		{
			Name:           "allowlisted alias",
			Content:        "cd ..",
			Build:          single("cd", ".."),
			Config:         map[string]any{"allowlist": []any{"CD"}},
			WantViolations: 0,
		},
		{
			Name:            "catalog alias",
			Content:         "dt",
			Build:           single("dt"),
			Commands:        []session.CommandInfo{{Name: "dt", CommandType: session.CommandTypeAlias, ResolvedCommand: "Do-Thing"}},
			WantViolations:  1,
			WantCorrections: []string{"Do-Thing"},
		},
		{
			Name:            "implicit Get- prefix",
			Content:         "ChildItem",
			Build:           single("ChildItem"),
			WantViolations:  1,
			WantMessages:    []string{"implicitly aliasing 'Get-ChildItem'"},
			WantCorrections: []string{"Get-ChildItem"},
		},
		{
			Name:           "catalog function shadows alias",
			Content:        "ls",
			Build:          single("ls"),
			Commands:       []session.CommandInfo{{Name: "ls", CommandType: session.CommandTypeApplication}},
			WantViolations: 0,
		},
	})
}

func TestConfigure(t *testing.T) {
	r := New().(rules.ConfigurableRule)
	assert.True(t, r.Enabled())
	assert.Equal(t, DefaultConfig(), r.DefaultConfig())

	require.NoError(t, r.Configure(map[string]any{"Enable": false}))
	assert.False(t, r.Enabled())

	r = New().(rules.ConfigurableRule)
	err := r.Configure(map[string]any{"allowlist": "gci"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, configutil.ErrInvalidOptions))
	assert.True(t, r.Enabled(), "defaults are kept after a bad override")
}
