package rules

import (
	"iter"
	"testing"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/session"
)

// mockRule is a simple rule for testing.
type mockRule struct {
	name     string
	enabled  bool
	category string
	severity Severity
}

func (r *mockRule) Metadata() Metadata {
	return Metadata{
		Name:             r.name,
		CommonName:       "Mock Rule " + r.name,
		Description:      "A mock rule for testing",
		Severity:         r.severity,
		SourceName:       "PS",
		Category:         r.category,
		EnabledByDefault: r.enabled,
	}
}

// mockScriptRule additionally implements ScriptAnalyzer.
type mockScriptRule struct{ mockRule }

func (r *mockScriptRule) AnalyzeScript(_ *session.Session, root ast.Node, _ string) (iter.Seq[Diagnostic], error) {
	if err := CheckRoot(root); err != nil {
		return nil, err
	}
	return Empty(), nil
}

func factory(r Rule) Factory {
	return func() Rule { return r }
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()

	reg.Register(factory(&mockRule{name: "PSTest001"}))

	if !reg.Has("PSTest001") {
		t.Error("Has() = false after registration")
	}
	if !reg.Has("pstest001") {
		t.Error("Has() should match names case-insensitively")
	}
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	reg := NewRegistry()
	reg.Register(factory(&mockRule{name: "PSDup"}))

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()

	reg.Register(factory(&mockRule{name: "psdup"})) // Should panic
}

func TestRegistry_Get(t *testing.T) {
	reg := NewRegistry()
	reg.Register(factory(&mockRule{name: "PSGet"}))

	got := reg.Get("PSGet")
	if got == nil {
		t.Fatal("Get() returned nil")
	}
	if got.Metadata().Name != "PSGet" {
		t.Errorf("Get().Name = %q, want %q", got.Metadata().Name, "PSGet")
	}

	if reg.Get("nonexistent") != nil {
		t.Error("Get() should return nil for nonexistent rule")
	}
}

func TestRegistry_New(t *testing.T) {
	reg := NewRegistry()
	calls := 0
	reg.Register(func() Rule {
		calls++
		return &mockRule{name: "PSFresh"}
	})

	a := reg.New("PSFresh")
	b := reg.New("PSFresh")
	if a == nil || b == nil {
		t.Fatal("New() returned nil")
	}
	if a == b {
		t.Error("New() should build a fresh instance each call")
	}
	// One call for the prototype, one per New.
	if calls != 3 {
		t.Errorf("factory called %d times, want 3", calls)
	}
	if reg.New("missing") != nil {
		t.Error("New() should return nil for nonexistent rule")
	}
}

func TestRegistry_All(t *testing.T) {
	reg := NewRegistry()
	reg.Register(factory(&mockRule{name: "PSC"}))
	reg.Register(factory(&mockRule{name: "PSA"}))
	reg.Register(factory(&mockRule{name: "PSB"}))

	all := reg.All()
	if len(all) != 3 {
		t.Fatalf("All() returned %d rules, want 3", len(all))
	}

	want := []string{"PSA", "PSB", "PSC"}
	for i, r := range all {
		if r.Metadata().Name != want[i] {
			t.Errorf("All()[%d].Name = %q, want %q", i, r.Metadata().Name, want[i])
		}
	}
}

func TestRegistry_Names(t *testing.T) {
	reg := NewRegistry()
	reg.Register(factory(&mockRule{name: "PSZ"}))
	reg.Register(factory(&mockRule{name: "PSA"}))

	names := reg.Names()
	if len(names) != 2 {
		t.Fatalf("Names() returned %d, want 2", len(names))
	}
	if names[0] != "PSA" || names[1] != "PSZ" {
		t.Errorf("Names() = %v, want [PSA PSZ]", names)
	}
}

func TestRegistry_EnabledByDefault(t *testing.T) {
	reg := NewRegistry()
	reg.Register(factory(&mockRule{name: "PSEnabled1", enabled: true}))
	reg.Register(factory(&mockRule{name: "PSDisabled1", enabled: false}))
	reg.Register(factory(&mockRule{name: "PSEnabled2", enabled: true}))

	enabled := reg.EnabledByDefault()
	if len(enabled) != 2 {
		t.Fatalf("EnabledByDefault() returned %d, want 2", len(enabled))
	}

	for _, r := range enabled {
		if !r.Metadata().EnabledByDefault {
			t.Errorf("rule %q should be enabled by default", r.Metadata().Name)
		}
	}
}

func TestRegistry_ByCategory(t *testing.T) {
	reg := NewRegistry()
	reg.Register(factory(&mockRule{name: "PSSec1", category: "security"}))
	reg.Register(factory(&mockRule{name: "PSStyle1", category: "style"}))
	reg.Register(factory(&mockRule{name: "PSSec2", category: "security"}))

	if got := reg.ByCategory("security"); len(got) != 2 {
		t.Fatalf("ByCategory(security) returned %d, want 2", len(got))
	}
	if got := reg.ByCategory("style"); len(got) != 1 {
		t.Fatalf("ByCategory(style) returned %d, want 1", len(got))
	}
}

func TestRegistry_BySeverity(t *testing.T) {
	reg := NewRegistry()
	reg.Register(factory(&mockRule{name: "PSErr1", severity: SeverityError}))
	reg.Register(factory(&mockRule{name: "PSWarn1", severity: SeverityWarning}))
	reg.Register(factory(&mockRule{name: "PSErr2", severity: SeverityError}))

	if got := reg.BySeverity(SeverityError); len(got) != 2 {
		t.Fatalf("BySeverity(error) returned %d, want 2", len(got))
	}
}

func TestRegistry_WithCapability(t *testing.T) {
	reg := NewRegistry()
	reg.Register(factory(&mockRule{name: "PSPlain"}))
	reg.Register(factory(&mockScriptRule{mockRule{name: "PSScript"}}))

	got := reg.WithCapability(CapScript)
	if len(got) != 1 || got[0].Metadata().Name != "PSScript" {
		t.Errorf("WithCapability(CapScript) = %v, want [PSScript]", got)
	}
}
