package fix

import (
	"testing"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/rules"
)

func TestEditsOverlap(t *testing.T) {
	t.Parallel()
	src := ast.NewSource("f.ps1", []byte("0123456789abcdef"))
	other := ast.NewSource("g.ps1", []byte("0123456789abcdef"))
	edit := func(s *ast.Source, start, end int) rules.Correction {
		return rules.NewCorrection(s.Extent(start, end), "x", "")
	}

	tests := []struct {
		name string
		a, b rules.Correction
		want bool
	}{
		{"different files", edit(src, 0, 10), edit(other, 0, 10), false},
		{"adjacent", edit(src, 0, 5), edit(src, 5, 10), false},
		{"adjacent reversed", edit(src, 5, 10), edit(src, 0, 5), false},
		{"overlapping", edit(src, 0, 10), edit(src, 5, 15), true},
		{"contained", edit(src, 2, 12), edit(src, 4, 6), true},
		{"insert at start of replacement", edit(src, 5, 5), edit(src, 5, 8), false},
		{"insert inside replacement", edit(src, 6, 6), edit(src, 5, 8), true},
		{"two inserts same offset", edit(src, 3, 3), edit(src, 3, 3), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := editsOverlap(tt.a, tt.b); got != tt.want {
				t.Errorf("editsOverlap() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompareEdits(t *testing.T) {
	t.Parallel()
	src := ast.NewSource("f.ps1", []byte("0123456789"))
	a := rules.NewCorrection(src.Extent(1, 3), "", "")
	b := rules.NewCorrection(src.Extent(1, 5), "", "")
	c := rules.NewCorrection(src.Extent(4, 5), "", "")

	if compareEdits(a, b) >= 0 {
		t.Error("shorter edit at same start should sort first")
	}
	if compareEdits(c, a) <= 0 {
		t.Error("later start should sort after")
	}
	if compareEdits(a, a) != 0 {
		t.Error("edit should compare equal to itself")
	}
}
