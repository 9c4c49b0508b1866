package dsc

import "testing"

func TestFoldCase(t *testing.T) {
	tests := map[string]string{
		"Tests": "[Tt][Ee][Ss][Tt][Ss]",
		"v1.0":  "[Vv]1.0",
		"a*":    "[Aa]\\*",
		"":      "",
	}
	for in, want := range tests {
		if got := foldCase(in); got != want {
			t.Errorf("foldCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEscapeMeta(t *testing.T) {
	tests := map[string]string{
		"MyRes":     "MyRes",
		"My[Res]":   `My\[Res\]`,
		"a*b?{c,d}": `a\*b\?\{c,d\}`,
		`x\y`:       `x\\y`,
	}
	for in, want := range tests {
		if got := escapeMeta(in); got != want {
			t.Errorf("escapeMeta(%q) = %q, want %q", in, got, want)
		}
	}
}
