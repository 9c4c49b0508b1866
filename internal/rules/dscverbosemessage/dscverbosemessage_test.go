package dscverbosemessage

import (
	"testing"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/testutil"
)

func TestRule(t *testing.T) {
	const (
		getVerbose = "function Get-TargetResource { Write-Verbose 'reading' }"
		setQuiet   = "function Set-TargetResource { Set-Item x }"
		helper     = "function Get-Helper { Set-Item y }"
	)

	testutil.RunRuleTests(t, New, []testutil.RuleTestCase{
		{
			Name:    "verbose and quiet functions",
			File:    "Res.psm1",
			Content: getVerbose + "\n" + setQuiet,
			Build: func(s *testutil.Script) ast.Node {
				get := s.Func(getVerbose, "Get-TargetResource",
					s.Block("{ Write-Verbose 'reading' }", nil, s.Cmd(s.Bare("Write-Verbose"), s.Str("'reading'"))))
				set := s.Func(setQuiet, "Set-TargetResource",
					s.Block("{ Set-Item x }", nil, s.Cmd(s.Bare("Set-Item"), s.Bare("x"))))
				return s.Root(get, set)
			},
			WantViolations: 1,
			WantMessages:   []string{"There is no call to Write-Verbose in DSC function 'Set-TargetResource'."},
		},
		{
			Name:    "helper functions are ignored",
			File:    "Res.psm1",
			Content: getVerbose + "\n" + helper,
			Build: func(s *testutil.Script) ast.Node {
				get := s.Func(getVerbose, "Get-TargetResource",
					s.Block("{ Write-Verbose 'reading' }", nil, s.Cmd(s.Bare("Write-Verbose"), s.Str("'reading'"))))
				h := s.Func(helper, "Get-Helper", s.Block("{ Set-Item y }", nil, s.Cmd(s.Bare("Set-Item"), s.Bare("y"))))
				return s.Root(get, h)
			},
			WantViolations: 0,
		},
	})
}
