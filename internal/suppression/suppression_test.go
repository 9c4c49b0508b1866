package suppression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/testutil"
)

const (
	scriptAttr = `[Diagnostics.CodeAnalysis.SuppressMessageAttribute('PSAvoidGlobalVars', '', Scope='Function', Target='Set-*')]`
	bomAttr    = `[SuppressMessage('PSUseBOMForUnicodeEncodedFile', '')]`
	banner     = "function Show-Banner {\n" +
		"    [Diagnostics.CodeAnalysis.SuppressMessageAttribute('PSAvoidUsingWriteHost', 'Write-Host', Justification='UI')]\n" +
		"    param()\n" +
		"    Write-Host 'hi'\n" +
		"}"
	bannerAttr = `[Diagnostics.CodeAnalysis.SuppressMessageAttribute('PSAvoidUsingWriteHost', 'Write-Host', Justification='UI')]`
	setState   = "function Set-State { $global:state = 1 }"
	content    = scriptAttr + "\n" + bomAttr + "\nparam()\n" + banner + "\n" + setState +
		"\nWrite-Host 'outside'\n$global:other = 2\n"
)

func buildTree(t *testing.T) (*testutil.Script, *ast.ScriptBlock) {
	t.Helper()
	s := testutil.NewScript(t, "/src/test.ps1", content)

	top := s.Attr(scriptAttr, "Diagnostics.CodeAnalysis.SuppressMessageAttribute",
		s.Str("'PSAvoidGlobalVars'"), s.Str("''"),
		s.Named("Scope='Function'", "Scope", s.Str("'Function'")),
		s.Named("Target='Set-*'", "Target", s.Str("'Set-*'")))
	bom := s.Attr(bomAttr, "SuppressMessage", s.Str("'PSUseBOMForUnicodeEncodedFile'"), s.StrN("''", 1))
	pb := &ast.ParamBlock{Base: ast.At(s.Src.Extent(0, s.ExtN("param()", 0).End.Offset)), Attributes: []*ast.Attribute{top, bom}}

	inner := s.Attr(bannerAttr, "Diagnostics.CodeAnalysis.SuppressMessageAttribute",
		s.Str("'PSAvoidUsingWriteHost'"), s.Str("'Write-Host'"),
		s.Named("Justification='UI'", "Justification", s.Str("'UI'")))
	bannerFn := s.Func(banner, "Show-Banner", &ast.ScriptBlock{
		Base:       s.At(banner),
		ParamBlock: &ast.ParamBlock{Base: s.AtN("param()", 1), Attributes: []*ast.Attribute{inner}},
	})
	setFn := s.Func(setState, "Set-State", s.Block("{ $global:state = 1 }", nil))

	return s, s.RootWith(pb, bannerFn, setFn)
}

func TestCollect(t *testing.T) {
	t.Parallel()
	_, root := buildTree(t)

	sups := Collect(root)
	require.Len(t, sups, 3)

	byRule := map[string]Suppression{}
	for _, s := range sups {
		byRule[s.RuleName] = s
	}

	globals := byRule["PSAvoidGlobalVars"]
	assert.Equal(t, setState, globals.Extent.Text(), "targeted onto matching functions")
	assert.False(t, globals.ScriptLevel)

	assert.True(t, byRule["PSUseBOMForUnicodeEncodedFile"].ScriptLevel)

	wh := byRule["PSAvoidUsingWriteHost"]
	assert.Equal(t, "Write-Host", wh.ID)
	assert.Equal(t, "UI", wh.Justification)
	assert.Equal(t, banner, wh.Extent.Text())
}

func TestCollect_NilRoot(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Collect(nil))
	assert.Nil(t, Collect((*ast.ScriptBlock)(nil)))
}

func TestFilter(t *testing.T) {
	t.Parallel()
	s, root := buildTree(t)

	diag := func(sub, rule string, data any) rules.Diagnostic {
		return rules.NewDiagnostic(s.Ext(sub), rule, "m", rules.SeverityWarning).WithData(data)
	}
	diags := []rules.Diagnostic{
		diag("Write-Host 'hi'", "PSAvoidUsingWriteHost", "Write-Host"),
		diag("Write-Host 'outside'", "PSAvoidUsingWriteHost", "Write-Host"),
		diag("$global:state", "PSAvoidGlobalVars", nil),
		diag("$global:other", "PSAvoidGlobalVars", nil),
		rules.NewFileDiagnostic(s.File(), "PSUseBOMForUnicodeEncodedFile", "m", rules.SeverityWarning),
		rules.NewFileDiagnostic(s.File(), "PSUseApprovedVerbs", "m", rules.SeverityWarning),
		diag("Write-Host 'hi'", "PSAvoidUsingWriteHost", "Other"),
		rules.NewDiagnostic(s.Ext("Write-Host 'hi'"), "PSAvoidUsingWriteHost", "parse", rules.SeverityParseError),
	}

	result := Filter(diags, Collect(root))

	var kept []string
	for _, d := range result.Diagnostics {
		if d.Extent != nil {
			kept = append(kept, d.RuleName+"@"+d.Extent.Text())
		} else {
			kept = append(kept, d.RuleName)
		}
	}
	assert.Equal(t, []string{
		"PSAvoidUsingWriteHost@Write-Host 'outside'",
		"PSAvoidGlobalVars@$global:other",
		"PSUseApprovedVerbs",
		"PSAvoidUsingWriteHost@Write-Host 'hi'",
		"PSAvoidUsingWriteHost@Write-Host 'hi'",
	}, kept)

	require.Len(t, result.Suppressed, 3)
	assert.Equal(t, "UI", result.Suppressed[0].Justification)
	assert.Empty(t, result.Unused)
}

func TestFilter_Unused(t *testing.T) {
	t.Parallel()
	_, root := buildTree(t)

	result := Filter(nil, Collect(root))
	assert.Len(t, result.Unused, 3)
	assert.Empty(t, result.Diagnostics)
}

func TestSuppresses_Wildcards(t *testing.T) {
	t.Parallel()
	s := testutil.NewScript(t, "a.ps1", "Write-Host x")
	d := rules.NewDiagnostic(s.Ext("Write-Host"), "PSAvoidUsingWriteHost", "m", rules.SeverityWarning)

	tests := []struct {
		rule string
		want bool
	}{
		{"PSAvoidUsingWriteHost", true},
		{"psavoidusingwritehost", true},
		{"PSScriptAnalyzer\\PSAvoidUsingWriteHost", true},
		{"PSAvoid*", true},
		{"*", true},
		{"PSAvoidGlobalVars", false},
	}
	for _, tt := range tests {
		sup := Suppression{RuleName: tt.rule, Extent: s.Src.Whole()}
		assert.Equal(t, tt.want, sup.Suppresses(d), tt.rule)
	}
}
