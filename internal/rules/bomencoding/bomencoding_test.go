package bomencoding

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/testutil"
)

func root(s *testutil.Script) ast.Node {
	return s.Root()
}

func TestRule(t *testing.T) {
	testutil.RunRuleTests(t, New, []testutil.RuleTestCase{
		{Name: "ascii", Content: "Write-Output 'hello'\n", Build: root, WantViolations: 0},
		{
			Name:           "non-ascii without BOM",
			Content:        "Write-Output 'héllo'\n",
			Build:          root,
			WantViolations: 1,
			WantMessages:   []string{"Missing BOM encoding for non-ASCII encoded file 'test.ps1'"},
		},
		{Name: "non-ascii with UTF-8 BOM", Content: "\uFEFFWrite-Output 'héllo'\n", Build: root, WantViolations: 0},
		{Name: "in-memory", Content: "Write-Output 'héllo'\n", InMemory: true, Build: root, WantViolations: 0},
	})
}

func TestFileLevel(t *testing.T) {
	s := testutil.NewScript(t, "dir/test.ps1", "'ü'")
	top := s.Root()
	diags := testutil.Analyze(t, New(), testutil.NewSession(s, top), top)
	testutil.AssertViolationCount(t, diags, 1)
	if len(diags) == 1 {
		assert.True(t, diags[0].IsFileLevel())
		assert.Equal(t, "dir/test.ps1", diags[0].ScriptPath)
		assert.Equal(t, 0, diags[0].Line())
	}
}

func TestHasBOM(t *testing.T) {
	assert.True(t, HasBOM([]byte{0xFF, 0xFE, 'a', 0}))
	assert.True(t, HasBOM([]byte{0xEF, 0xBB, 0xBF}))
	assert.False(t, HasBOM([]byte("abc")))
	assert.False(t, HasBOM(nil))
}
