package session

import (
	_ "embed"
	"sort"
	"strings"
	"sync"

	"go.yaml.in/yaml/v4"
)

//go:embed data/builtin.yaml
var builtinYAML []byte

type builtinFile struct {
	ApprovedVerbs       map[string][]string `yaml:"approved-verbs"`
	Aliases             map[string]string   `yaml:"aliases"`
	AutomaticVariables  []string            `yaml:"automatic-variables"`
	PreferenceVariables []string            `yaml:"preference-variables"`
	Cmdlets             map[string][]string `yaml:"cmdlets"`
	Platforms           map[string]struct {
		Unavailable []string `yaml:"unavailable"`
	} `yaml:"platforms"`
}

// builtinTables is the indexed, read-only form of builtinFile.
type builtinTables struct {
	verbs        map[string]string // lower -> canonical casing
	verbGroups   map[string]string // lower -> group
	aliases      map[string]string // lower alias -> command
	special      map[string]bool
	cmdletModule map[string]string
	cmdletName   map[string]string
	unavailable  map[string]map[string]bool // platform -> lower cmdlet set
}

var builtins = sync.OnceValue(func() *builtinTables {
	var f builtinFile
	if err := yaml.Unmarshal(builtinYAML, &f); err != nil {
		panic("session: invalid embedded builtin.yaml: " + err.Error())
	}

	t := &builtinTables{
		verbs:        make(map[string]string),
		verbGroups:   make(map[string]string),
		aliases:      make(map[string]string, len(f.Aliases)),
		special:      make(map[string]bool),
		cmdletModule: make(map[string]string),
		cmdletName:   make(map[string]string),
		unavailable:  make(map[string]map[string]bool, len(f.Platforms)),
	}
	for group, verbs := range f.ApprovedVerbs {
		for _, v := range verbs {
			t.verbs[strings.ToLower(v)] = v
			t.verbGroups[strings.ToLower(v)] = group
		}
	}
	for alias, cmd := range f.Aliases {
		t.aliases[strings.ToLower(alias)] = cmd
	}
	for _, v := range f.AutomaticVariables {
		t.special[strings.ToLower(v)] = true
	}
	for _, v := range f.PreferenceVariables {
		t.special[strings.ToLower(v)] = true
	}
	for module, cmdlets := range f.Cmdlets {
		for _, c := range cmdlets {
			t.cmdletModule[strings.ToLower(c)] = module
			t.cmdletName[strings.ToLower(c)] = c
		}
	}
	for platform, p := range f.Platforms {
		set := make(map[string]bool, len(p.Unavailable))
		for _, c := range p.Unavailable {
			set[strings.ToLower(c)] = true
		}
		t.unavailable[strings.ToLower(platform)] = set
	}
	return t
})

// IsApprovedVerb reports whether verb is in the host's approved verb list.
func IsApprovedVerb(verb string) bool {
	_, ok := builtins().verbs[strings.ToLower(verb)]
	return ok
}

// VerbGroup returns the group an approved verb belongs to ("common",
// "data", ...), or "".
func VerbGroup(verb string) string {
	return builtins().verbGroups[strings.ToLower(verb)]
}

// IsSpecialVariable reports whether name (without $) is an automatic or
// preference variable.
func (s *Session) IsSpecialVariable(name string) bool {
	return builtins().special[strings.ToLower(strings.TrimPrefix(name, "$"))]
}

// Platforms returns the known platform identifiers, sorted.
func Platforms() []string {
	t := builtins()
	out := make([]string, 0, len(t.unavailable))
	for p := range t.unavailable {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// IsKnownPlatform reports whether platform has a cmdlet table.
func IsKnownPlatform(platform string) bool {
	_, ok := builtins().unavailable[strings.ToLower(platform)]
	return ok
}

// IsAvailableOnPlatform reports whether command ships on platform. Unknown
// platforms report every command as available.
func (s *Session) IsAvailableOnPlatform(command, platform string) bool {
	set, ok := builtins().unavailable[strings.ToLower(platform)]
	if !ok {
		return true
	}
	return !set[strings.ToLower(command)]
}
