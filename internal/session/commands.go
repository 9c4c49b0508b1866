package session

import (
	"iter"
	"sort"
	"strings"

	"github.com/wharflab/pslint/internal/ast"
)

// CommandType is the kind of a resolved command.
type CommandType string

const (
	CommandTypeAlias          CommandType = "Alias"
	CommandTypeCmdlet         CommandType = "Cmdlet"
	CommandTypeFunction       CommandType = "Function"
	CommandTypeFilter         CommandType = "Filter"
	CommandTypeWorkflow       CommandType = "Workflow"
	CommandTypeApplication    CommandType = "Application"
	CommandTypeExternalScript CommandType = "ExternalScript"
)

// ParameterInfo describes one parameter of a resolved command.
type ParameterInfo struct {
	Name      string   `json:"name" toml:"name"`
	Type      string   `json:"type,omitempty" toml:"type"`
	Position  *int     `json:"position,omitempty" toml:"position"`
	Mandatory bool     `json:"mandatory,omitempty" toml:"mandatory"`
	Aliases   []string `json:"aliases,omitempty" toml:"aliases"`
}

// IsPositional reports whether the parameter binds by position.
func (p ParameterInfo) IsPositional() bool {
	return p.Position != nil
}

// CommandInfo is a command the host resolved, or one pslint knows about.
type CommandInfo struct {
	Name        string          `json:"name" toml:"name"`
	CommandType CommandType     `json:"type" toml:"type"`
	Module      string          `json:"module,omitempty" toml:"module"`
	Parameters  []ParameterInfo `json:"parameters,omitempty" toml:"parameter"`

	// ResolvedCommand is the target of an alias.
	ResolvedCommand string `json:"resolvedCommand,omitempty" toml:"resolved-command"`

	// Definition is the function defining the command when the script
	// itself declares it.
	Definition *ast.FunctionDefinition `json:"-" toml:"-"`
}

// Verb returns the part before the first dash of a Verb-Noun name.
func (c *CommandInfo) Verb() string {
	verb, _, ok := strings.Cut(c.Name, "-")
	if !ok {
		return ""
	}
	return verb
}

// Noun returns the part after the first dash of a Verb-Noun name.
func (c *CommandInfo) Noun() string {
	_, noun, _ := strings.Cut(c.Name, "-")
	return noun
}

// Parameter returns the parameter whose name or alias matches name. An
// unambiguous prefix of a name or alias matches too, as the host binder
// allows; a prefix shared by two parameters matches neither.
func (c *CommandInfo) Parameter(name string) *ParameterInfo {
	name = strings.TrimPrefix(name, "-")
	var prefix *ParameterInfo
	matches := 0
	for i := range c.Parameters {
		p := &c.Parameters[i]
		if strings.EqualFold(p.Name, name) {
			return p
		}
		hit := hasPrefixFold(p.Name, name)
		for _, a := range p.Aliases {
			if strings.EqualFold(a, name) {
				return p
			}
			hit = hit || hasPrefixFold(a, name)
		}
		if hit {
			prefix = p
			matches++
		}
	}
	if matches == 1 {
		return prefix
	}
	return nil
}

func hasPrefixFold(s, prefix string) bool {
	return len(prefix) > 0 && len(prefix) < len(s) && strings.EqualFold(s[:len(prefix)], prefix)
}

// CommandReference is one place a script names a command.
type CommandReference struct {
	// Info is the resolved command.
	Info *CommandInfo

	// Extent covers the reference: the command name for invocations, the
	// function name for definitions.
	Extent ast.Extent

	// Command is the invocation, nil for definitions.
	Command *ast.Command

	// Definition is set when the reference is the script's own function
	// declaration.
	Definition *ast.FunctionDefinition
}

// ResolveCommand resolves name through the host catalog, the script's own
// functions and the built-in tables. Aliases are followed to their target.
// Returns nil when the command is unknown. Results are cached, negative ones
// included.
func (s *Session) ResolveCommand(name string) *CommandInfo {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil
	}

	s.mu.RLock()
	info, ok := s.resolved[key]
	s.mu.RUnlock()
	if ok {
		return info
	}

	info = s.resolve(key, 0)

	s.mu.Lock()
	s.resolved[key] = info
	s.mu.Unlock()
	return info
}

// maxAliasDepth bounds alias chains so cyclic catalogs terminate.
const maxAliasDepth = 8

func (s *Session) resolve(key string, depth int) *CommandInfo {
	if depth > maxAliasDepth {
		return nil
	}
	if info, ok := s.catalog[key]; ok {
		if info.CommandType == CommandTypeAlias && info.ResolvedCommand != "" {
			return s.resolve(strings.ToLower(info.ResolvedCommand), depth+1)
		}
		return info
	}
	if info, ok := s.defined[key]; ok {
		return info
	}
	b := builtins()
	if target, ok := b.aliases[key]; ok {
		return s.resolve(strings.ToLower(target), depth+1)
	}
	if module, ok := b.cmdletModule[key]; ok {
		return &CommandInfo{
			Name:        b.cmdletName[key],
			CommandType: CommandTypeCmdlet,
			Module:      module,
		}
	}
	return nil
}

// ResolveAlias returns the command an alias points to, or "" when name is
// not an alias.
func (s *Session) ResolveAlias(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if info, ok := s.catalog[key]; ok {
		if info.CommandType == CommandTypeAlias {
			return info.ResolvedCommand
		}
		return ""
	}
	if _, ok := s.defined[key]; ok {
		return ""
	}
	return builtins().aliases[key]
}

// AliasesOf returns every known alias of command, sorted.
func (s *Session) AliasesOf(command string) []string {
	s.mu.RLock()
	table := s.aliasesOf
	s.mu.RUnlock()

	if table == nil {
		table = s.buildAliasesOf()
		s.mu.Lock()
		s.aliasesOf = table
		s.mu.Unlock()
	}
	return table[strings.ToLower(command)]
}

func (s *Session) buildAliasesOf() map[string][]string {
	table := make(map[string][]string)
	add := func(alias, target string) {
		k := strings.ToLower(target)
		table[k] = append(table[k], alias)
	}
	for alias, target := range builtins().aliases {
		if _, shadowed := s.catalog[alias]; !shadowed {
			add(alias, target)
		}
	}
	for _, info := range s.catalog {
		if info.CommandType == CommandTypeAlias && info.ResolvedCommand != "" {
			add(info.Name, info.ResolvedCommand)
		}
	}
	for _, aliases := range table {
		sort.Strings(aliases)
	}
	return table
}

// CommandReferences yields every command the script names that resolves:
// function definitions first, then invocations in source order.
func (s *Session) CommandReferences(root ast.Node) iter.Seq[CommandReference] {
	return func(yield func(CommandReference) bool) {
		if root == nil {
			return
		}
		for fd := range ast.All[*ast.FunctionDefinition](root) {
			info := s.ResolveCommand(fd.Name)
			if info == nil {
				continue
			}
			if !yield(CommandReference{Info: info, Extent: s.FunctionNameExtent(fd), Definition: fd}) {
				return
			}
		}
		for cmd := range ast.All[*ast.Command](root) {
			name := cmd.Name()
			if name == "" {
				continue
			}
			info := s.ResolveCommand(name)
			if info == nil {
				continue
			}
			if !yield(CommandReference{Info: info, Extent: cmd.NameExtent(), Command: cmd}) {
				return
			}
		}
	}
}

// FunctionNameExtent narrows a definition's extent to its name when the
// source is available.
func (s *Session) FunctionNameExtent(fd *ast.FunctionDefinition) ast.Extent {
	ext := fd.Extent()
	if s.source == nil {
		return ext
	}
	header := strings.ToLower(s.source.Slice(ext.Start.Offset, ext.End.Offset))
	if brace := strings.IndexByte(header, '{'); brace >= 0 {
		header = header[:brace]
	}
	idx := strings.Index(header, strings.ToLower(fd.Name))
	if idx < 0 {
		return ext
	}
	start := ext.Start.Offset + idx
	return s.source.Extent(start, start+len(fd.Name))
}

func functionInfo(fd *ast.FunctionDefinition) *CommandInfo {
	info := &CommandInfo{
		Name:        fd.Name,
		CommandType: CommandTypeFunction,
		Definition:  fd,
	}
	switch {
	case fd.IsFilter:
		info.CommandType = CommandTypeFilter
	case fd.IsWorkflow:
		info.CommandType = CommandTypeWorkflow
	}
	params := fd.AllParameters()
	// Without [Parameter(Position=...)] every parameter binds by position
	// in declaration order.
	explicit := false
	for _, p := range params {
		if pa := p.Attribute("Parameter"); pa != nil && pa.NamedArgument("Position") != nil {
			explicit = true
			break
		}
	}
	for i, p := range params {
		pi := ParameterInfo{Name: p.ParameterName(), Type: p.StaticType()}
		pa := p.Attribute("Parameter")
		if pa != nil {
			if na := pa.NamedArgument("Mandatory"); na != nil {
				pi.Mandatory = na.IsTrue()
			}
		}
		switch {
		case !explicit && !ast.SameTypeName(pi.Type, "switch"):
			pos := i
			pi.Position = &pos
		case explicit && pa != nil:
			if na := pa.NamedArgument("Position"); na != nil {
				if c, ok := na.Argument.(*ast.Constant); ok {
					if pos, ok := c.Value.(int); ok {
						pi.Position = &pos
					}
				}
			}
		}
		if alias := p.Attribute("Alias"); alias != nil {
			for _, a := range alias.Positional {
				if sc, ok := a.(*ast.StringConstant); ok {
					pi.Aliases = append(pi.Aliases, sc.Value)
				}
			}
		}
		info.Parameters = append(info.Parameters, pi)
	}
	return info
}
