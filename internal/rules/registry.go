package rules

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Factory builds a fresh rule instance. Configurable rules carry per-run
// option state, so the linter asks for a new instance on every run.
type Factory func() Rule

type entry struct {
	proto   Rule
	factory Factory
}

// Registry manages rule registration and lookup.
// Names are matched case-insensitively, like the host does.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]entry
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rules: make(map[string]entry),
	}
}

// Register adds a rule factory to the registry.
// Panics if a rule with the same name is already registered.
func (r *Registry) Register(factory Factory) {
	proto := factory()
	name := proto.Metadata().Name

	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(name)
	if _, exists := r.rules[key]; exists {
		panic(fmt.Sprintf("rule %q already registered", name))
	}
	r.rules[key] = entry{proto: proto, factory: factory}
}

// Get retrieves the prototype of a rule by name.
// Returns nil if no rule is found. The prototype must not be configured;
// use New for an instance that can be.
func (r *Registry) Get(name string) Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rules[strings.ToLower(name)].proto
}

// New builds a fresh instance of the named rule, or nil.
func (r *Registry) New(name string) Rule {
	r.mu.RLock()
	e, ok := r.rules[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return e.factory()
}

// Has returns true if a rule with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.rules[strings.ToLower(name)]
	return exists
}

// All returns all registered rule prototypes sorted by name.
func (r *Registry) All() []Rule {
	return r.filter(func(Rule) bool { return true })
}

// Names returns all registered rule names sorted alphabetically.
func (r *Registry) Names() []string {
	all := r.All()
	names := make([]string, len(all))
	for i, rule := range all {
		names[i] = rule.Metadata().Name
	}
	return names
}

// EnabledByDefault returns rules that are enabled by default.
func (r *Registry) EnabledByDefault() []Rule {
	return r.filter(func(rule Rule) bool { return rule.Metadata().EnabledByDefault })
}

// ByCategory returns rules filtered by category.
func (r *Registry) ByCategory(category string) []Rule {
	return r.filter(func(rule Rule) bool { return rule.Metadata().Category == category })
}

// BySeverity returns rules filtered by default severity.
func (r *Registry) BySeverity(severity Severity) []Rule {
	return r.filter(func(rule Rule) bool { return rule.Metadata().Severity == severity })
}

// WithCapability returns rules implementing every analyzer in c.
func (r *Registry) WithCapability(c Capability) []Rule {
	return r.filter(func(rule Rule) bool { return Capabilities(rule).Has(c) })
}

func (r *Registry) filter(keep func(Rule) bool) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Rule, 0, len(r.rules))
	for _, e := range r.rules {
		if keep(e.proto) {
			result = append(result, e.proto)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Metadata().Name < result[j].Metadata().Name
	})
	return result
}

// defaultRegistry is the global default registry.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the global default registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a rule factory to the default registry.
func Register(factory Factory) {
	defaultRegistry.Register(factory)
}

// Get retrieves a rule prototype from the default registry.
func Get(name string) Rule {
	return defaultRegistry.Get(name)
}

// All returns all rules from the default registry.
func All() []Rule {
	return defaultRegistry.All()
}

// Names returns all rule names from the default registry.
func Names() []string {
	return defaultRegistry.Names()
}

// EnabledDefault returns rules enabled by default from the default registry.
func EnabledDefault() []Rule {
	return defaultRegistry.EnabledByDefault()
}
