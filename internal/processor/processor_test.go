package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/config"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/testutil"
)

type mockProcessor struct {
	name   string
	filter func(d rules.Diagnostic) bool
}

func (m *mockProcessor) Name() string { return m.name }

func (m *mockProcessor) Process(diags []rules.Diagnostic, _ *Context) []rules.Diagnostic {
	return filterDiagnostics(diags, m.filter)
}

func fileDiag(file, rule string) rules.Diagnostic {
	return rules.NewFileDiagnostic(file, rule, "msg", rules.SeverityWarning)
}

func TestChain(t *testing.T) {
	diags := []rules.Diagnostic{fileDiag("a.ps1", "PSA"), fileDiag("b.ps1", "PSB")}

	chain := NewChain(&mockProcessor{name: "filter-all", filter: func(rules.Diagnostic) bool { return false }})
	assert.Empty(t, chain.Process(diags, NewContext(config.Default())))
	assert.Len(t, diags, 2, "input slice is not modified")
}

func TestPathNormalization(t *testing.T) {
	s := testutil.NewScript(t, `C:\src\a.ps1`, "gci")
	d, err := rules.NewDiagnostic(s.Ext("gci"), "PSAvoidUsingCmdletAliases", "m", rules.SeverityWarning).
		WithCorrections(rules.NewCorrection(s.Ext("gci"), "Get-ChildItem", ""))
	require.NoError(t, err)

	got := NewPathNormalization().Process([]rules.Diagnostic{d}, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "C:/src/a.ps1", got[0].ScriptPath)
	assert.Equal(t, "C:/src/a.ps1", got[0].SuggestedCorrections[0].File)
	assert.Equal(t, `C:\src\a.ps1`, d.SuggestedCorrections[0].File, "original correction untouched")
}

func TestSeverityOverride(t *testing.T) {
	cfg := config.Default()
	cfg.Rules.Set("PSAvoidGlobalVars", config.RuleConfig{Severity: "error"})
	cfg.Rules.Set("PSAvoidUsingWriteHost", config.RuleConfig{Severity: "off"})

	parse := rules.NewFileDiagnostic("a.ps1", "PSAvoidGlobalVars", "x", rules.SeverityParseError)
	got := NewSeverityOverride().Process([]rules.Diagnostic{
		fileDiag("a.ps1", "psavoidglobalvars"),
		fileDiag("a.ps1", "PSAvoidUsingWriteHost"),
		parse,
	}, NewContext(cfg))

	assert.Equal(t, rules.SeverityError, got[0].Severity)
	assert.Equal(t, rules.SeverityWarning, got[1].Severity, "off is left to EnableFilter")
	assert.Equal(t, rules.SeverityParseError, got[2].Severity)
}

func TestEnableFilter(t *testing.T) {
	cfg := config.Default()
	cfg.Rules.Exclude = []string{"PSDSC*", "PSConfigurationError"}
	cfg.Rules.Set("PSAvoidUsingWriteHost", config.RuleConfig{Severity: "off"})

	got := NewEnableFilter().Process([]rules.Diagnostic{
		fileDiag("a.ps1", "PSDSCDscTestsPresent"),
		fileDiag("a.ps1", "PSAvoidUsingWriteHost"),
		fileDiag("a.ps1", "PSAvoidGlobalVars"),
		fileDiag("a.ps1", rules.ConfigurationErrorName),
	}, NewContext(cfg))

	var names []string
	for _, d := range got {
		names = append(names, d.RuleName)
	}
	assert.Equal(t, []string{"PSAvoidGlobalVars", rules.ConfigurationErrorName}, names)
}

func TestPathExclusionFilter(t *testing.T) {
	cfg := config.Default()
	cfg.ConfigFile = "/repo/.pslint.toml"
	cfg.Rules.Set("PSAvoidLongLines", config.RuleConfig{Exclude: config.ExcludeConfig{Paths: []string{"build/**"}}})

	got := NewPathExclusionFilter().Process([]rules.Diagnostic{
		fileDiag("/repo/build/gen.ps1", "PSAvoidLongLines"),
		fileDiag("/repo/src/app.ps1", "PSAvoidLongLines"),
		fileDiag("/repo/build/gen.ps1", "PSAvoidGlobalVars"),
	}, NewContext(cfg))

	require.Len(t, got, 2)
	assert.Equal(t, "/repo/src/app.ps1", got[0].ScriptPath)
	assert.Equal(t, "PSAvoidGlobalVars", got[1].RuleName)
}

func TestPerFileConfig(t *testing.T) {
	strict := config.Default()
	strict.Rules.Set("PSAvoidGlobalVars", config.RuleConfig{Severity: "error"})

	ctx := NewContext(config.Default())
	ctx.FileConfigs["strict.ps1"] = strict

	got := NewSeverityOverride().Process([]rules.Diagnostic{
		fileDiag("strict.ps1", "PSAvoidGlobalVars"),
		fileDiag("lax.ps1", "PSAvoidGlobalVars"),
	}, ctx)
	assert.Equal(t, rules.SeverityError, got[0].Severity)
	assert.Equal(t, rules.SeverityWarning, got[1].Severity)
}

func TestDeduplication(t *testing.T) {
	s := testutil.NewScript(t, "a.ps1", "gci; gci")
	first := rules.NewDiagnostic(s.ExtN("gci", 0), "PSAvoidUsingCmdletAliases", "m", rules.SeverityWarning)
	second := rules.NewDiagnostic(s.ExtN("gci", 1), "PSAvoidUsingCmdletAliases", "m", rules.SeverityWarning)

	got := NewDeduplication().Process([]rules.Diagnostic{first, first, second, fileDiag("a.ps1", "X"), fileDiag("a.ps1", "X")}, nil)
	assert.Len(t, got, 3, "same line, different column is kept")
}

func TestSuppressionFilter(t *testing.T) {
	const content = "[SuppressMessage('PSAvoidGlobalVars', '')]\nparam()\n$global:x = 1\n"
	s := testutil.NewScript(t, "a.ps1", content)
	attr := s.Attr("[SuppressMessage('PSAvoidGlobalVars', '')]", "SuppressMessage", s.Str("'PSAvoidGlobalVars'"), s.Str("''"))
	root := s.RootWith(&ast.ParamBlock{Base: s.At("[SuppressMessage('PSAvoidGlobalVars', '')]\nparam()"), Attributes: []*ast.Attribute{attr}})

	ctx := NewContext(config.Default())
	ctx.Roots["a.ps1"] = root

	f := NewSuppressionFilter()
	got := f.Process([]rules.Diagnostic{
		rules.NewDiagnostic(s.Ext("$global:x"), "PSAvoidGlobalVars", "m", rules.SeverityWarning),
		fileDiag("b.ps1", "PSAvoidGlobalVars"),
	}, ctx)

	require.Len(t, got, 1)
	assert.Equal(t, "b.ps1", got[0].ScriptPath)
	assert.Len(t, f.Suppressed(), 1)
}

func TestSnippetAttachment(t *testing.T) {
	s := testutil.NewScript(t, "a.ps1", "if ($x) {\n  Write-Host 'hi'\n}\n")
	multi := rules.NewDiagnostic(s.Src.Extent(0, s.Ext("}").End.Offset), "R", "m", rules.SeverityWarning)
	single := rules.NewDiagnostic(s.Ext("Write-Host"), "R", "m", rules.SeverityWarning)
	toNextLine := rules.NewDiagnostic(s.Src.Extent(0, s.Ext("  Write").Start.Offset), "R", "m", rules.SeverityWarning)

	got := NewSnippetAttachment().Process([]rules.Diagnostic{multi, single, toNextLine, fileDiag("a.ps1", "R")}, nil)

	assert.Equal(t, "if ($x) {\n  Write-Host 'hi'\n}", got[0].SourceCode)
	assert.Equal(t, "  Write-Host 'hi'", got[1].SourceCode)
	assert.Equal(t, "if ($x) {", got[2].SourceCode)
	assert.Empty(t, got[3].SourceCode)
}

func TestDefaultChain(t *testing.T) {
	cfg := config.Default()
	cfg.Rules.Exclude = []string{"PSAvoidGlobalVars"}

	got := Default().Process([]rules.Diagnostic{
		fileDiag(`b\x.ps1`, "PSUseBOMForUnicodeEncodedFile"),
		fileDiag("a.ps1", "PSAvoidGlobalVars"),
		fileDiag("a.ps1", "PSUseBOMForUnicodeEncodedFile"),
	}, NewContext(cfg))

	require.Len(t, got, 2)
	assert.Equal(t, "a.ps1", got[0].ScriptPath)
	assert.Equal(t, "b/x.ps1", got[1].ScriptPath)
}
