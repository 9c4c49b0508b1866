// Package ast models the PowerShell abstract syntax tree pslint analyzes.
//
// The tree is produced by the host runtime's parser and handed to pslint as
// an analysis bundle (see package hostast). Node kinds mirror the host's
// System.Management.Automation.Language types closely enough that rules read
// like their host-side counterparts; node kinds pslint has no rule for are
// carried as Generic so traversal still reaches their children.
//
// Trees are read-only once linked: rules must never mutate nodes.
package ast

import "strings"

// Node is implemented by every AST node.
type Node interface {
	// Kind returns the host type name of the node (e.g. "CommandAst").
	Kind() string
	// Extent returns the source range covered by the node.
	Extent() Extent
	// Parent returns the enclosing node, or nil for the root.
	Parent() Node
	// Children returns the direct child nodes in source order.
	Children() []Node

	setParent(Node)
}

// Base carries the fields shared by every node.
type Base struct {
	Span   Extent
	parent Node
}

// At returns a Base spanning ext. Used when building trees by hand.
func At(ext Extent) Base {
	return Base{Span: ext}
}

// Extent implements Node.
func (b *Base) Extent() Extent { return b.Span }

// Parent implements Node.
func (b *Base) Parent() Node { return b.parent }

func (b *Base) setParent(p Node) { b.parent = p }

// QuoteKind distinguishes how a string literal was written.
type QuoteKind int

const (
	// BareWord is an unquoted argument such as Get-ChildItem or MD5.
	BareWord QuoteKind = iota
	// SingleQuoted is a 'verbatim' string.
	SingleQuoted
	// DoubleQuoted is a "expandable" string.
	DoubleQuoted
	// SingleQuotedHereString is a @' '@ here-string.
	SingleQuotedHereString
	// DoubleQuotedHereString is a @" "@ here-string.
	DoubleQuotedHereString
)

// ScriptBlock is the root of a script, a function body or a { } literal.
type ScriptBlock struct {
	Base
	ParamBlock *ParamBlock
	Statements []Node
}

func (*ScriptBlock) Kind() string { return "ScriptBlockAst" }

func (n *ScriptBlock) Children() []Node {
	var out []Node
	if n.ParamBlock != nil {
		out = append(out, n.ParamBlock)
	}
	return append(out, n.Statements...)
}

// NamedBlock is a begin, process, end or dynamicparam block.
type NamedBlock struct {
	Base
	Name       string
	Statements []Node
}

func (*NamedBlock) Kind() string { return "NamedBlockAst" }

func (n *NamedBlock) Children() []Node { return n.Statements }

// StatementBlock is a braced list of statements (if/loop bodies).
type StatementBlock struct {
	Base
	Statements []Node
}

func (*StatementBlock) Kind() string { return "StatementBlockAst" }

func (n *StatementBlock) Children() []Node { return n.Statements }

// ParamBlock is a param(...) declaration with its attributes.
type ParamBlock struct {
	Base
	Attributes []*Attribute
	Parameters []*Parameter
}

func (*ParamBlock) Kind() string { return "ParamBlockAst" }

func (n *ParamBlock) Children() []Node {
	out := make([]Node, 0, len(n.Attributes)+len(n.Parameters))
	for _, a := range n.Attributes {
		out = append(out, a)
	}
	for _, p := range n.Parameters {
		out = append(out, p)
	}
	return out
}

// Parameter is one declared parameter.
// Attributes holds *Attribute and *TypeConstraint nodes in source order.
type Parameter struct {
	Base
	Attributes []Node
	Name       *Variable
	Default    Node
}

func (*Parameter) Kind() string { return "ParameterAst" }

func (n *Parameter) Children() []Node {
	out := append([]Node(nil), n.Attributes...)
	if n.Name != nil {
		out = append(out, n.Name)
	}
	if n.Default != nil {
		out = append(out, n.Default)
	}
	return out
}

// ParameterName returns the parameter's name without the leading $.
func (n *Parameter) ParameterName() string {
	if n.Name == nil {
		return ""
	}
	return n.Name.Name()
}

// TypeConstraint returns the first type constraint, or nil.
func (n *Parameter) TypeConstraint() *TypeConstraint {
	for _, a := range n.Attributes {
		if tc, ok := a.(*TypeConstraint); ok {
			return tc
		}
	}
	return nil
}

// StaticType returns the declared type name, or System.Object when the
// parameter is unconstrained.
func (n *Parameter) StaticType() string {
	if tc := n.TypeConstraint(); tc != nil {
		return tc.TypeName
	}
	return "System.Object"
}

// Attribute returns the first attribute named name, or nil.
func (n *Parameter) Attribute(name string) *Attribute {
	for _, a := range n.Attributes {
		if attr, ok := a.(*Attribute); ok && SameTypeName(attr.TypeName, name) {
			return attr
		}
	}
	return nil
}

// Attribute is an [Name(args)] attribute.
type Attribute struct {
	Base
	TypeName   string
	Positional []Node
	Named      []*NamedArgument
}

func (*Attribute) Kind() string { return "AttributeAst" }

func (n *Attribute) Children() []Node {
	out := append([]Node(nil), n.Positional...)
	for _, a := range n.Named {
		out = append(out, a)
	}
	return out
}

// NamedArgument returns the named argument called name, or nil.
func (n *Attribute) NamedArgument(name string) *NamedArgument {
	for _, a := range n.Named {
		if strings.EqualFold(a.Name, name) {
			return a
		}
	}
	return nil
}

// NamedArgument is a Name=value pair inside an attribute.
// ExpressionOmitted is true for the bare [Parameter(Mandatory)] form.
type NamedArgument struct {
	Base
	Name              string
	Argument          Node
	ExpressionOmitted bool
}

func (*NamedArgument) Kind() string { return "NamedAttributeArgumentAst" }

// IsTrue reports whether a flag argument such as Mandatory is switched on:
// the bare form, or a value that is not statically false. Expressions that
// cannot be evaluated here count as true.
func (n *NamedArgument) IsTrue() bool {
	if n.ExpressionOmitted || n.Argument == nil {
		return true
	}
	switch a := n.Argument.(type) {
	case *Variable:
		return !a.IsFalse() && !a.IsNull()
	case *Constant:
		switch v := a.Value.(type) {
		case bool:
			return v
		case int:
			return v != 0
		case int64:
			return v != 0
		case float64:
			return v != 0
		}
	case *StringConstant:
		return a.Value != ""
	}
	return true
}

func (n *NamedArgument) Children() []Node {
	if n.Argument == nil {
		return nil
	}
	return []Node{n.Argument}
}

// TypeConstraint is a [TypeName] constraint on a parameter or variable.
type TypeConstraint struct {
	Base
	TypeName string
}

func (*TypeConstraint) Kind() string { return "TypeConstraintAst" }

func (*TypeConstraint) Children() []Node { return nil }

// FunctionDefinition is a function, filter or workflow definition.
// Parameters holds the parameters of the function Name($a) form.
type FunctionDefinition struct {
	Base
	Name       string
	IsFilter   bool
	IsWorkflow bool
	Parameters []*Parameter
	Body       *ScriptBlock
}

func (*FunctionDefinition) Kind() string { return "FunctionDefinitionAst" }

func (n *FunctionDefinition) Children() []Node {
	out := make([]Node, 0, len(n.Parameters)+1)
	for _, p := range n.Parameters {
		out = append(out, p)
	}
	if n.Body != nil {
		out = append(out, n.Body)
	}
	return out
}

// AllParameters returns the inline parameters, or the body's param block
// parameters when the function uses param(...).
func (n *FunctionDefinition) AllParameters() []*Parameter {
	if len(n.Parameters) > 0 {
		return n.Parameters
	}
	if n.Body != nil && n.Body.ParamBlock != nil {
		return n.Body.ParamBlock.Parameters
	}
	return nil
}

// Pipeline is a sequence of commands joined by |.
type Pipeline struct {
	Base
	Elements []Node
}

func (*Pipeline) Kind() string { return "PipelineAst" }

func (n *Pipeline) Children() []Node { return n.Elements }

// Command is a command invocation. Elements[0] is the command name.
type Command struct {
	Base
	InvocationOperator string
	Elements           []Node
}

func (*Command) Kind() string { return "CommandAst" }

func (n *Command) Children() []Node { return n.Elements }

// Name returns the invoked command name when it is a literal, else "".
func (n *Command) Name() string {
	if len(n.Elements) == 0 {
		return ""
	}
	if s, ok := n.Elements[0].(*StringConstant); ok {
		return s.Value
	}
	return ""
}

// NameExtent returns the extent of the command name element.
func (n *Command) NameExtent() Extent {
	if len(n.Elements) == 0 {
		return n.Span
	}
	return n.Elements[0].Extent()
}

// Arguments returns every element after the command name.
func (n *Command) Arguments() []Node {
	if len(n.Elements) < 2 {
		return nil
	}
	return n.Elements[1:]
}

// ParameterArgument returns the argument bound to the named parameter.
// The parameter may be abbreviated in the script (-Algo for -Algorithm), as
// the host binder allows. Both -Name:value and -Name value forms are handled.
// A switch with no value returns the CommandParameter itself.
func (n *Command) ParameterArgument(name string) (Node, bool) {
	args := n.Arguments()
	for i, el := range args {
		p, ok := el.(*CommandParameter)
		if !ok || !p.Matches(name) {
			continue
		}
		if p.Argument != nil {
			return p.Argument, true
		}
		if i+1 < len(args) {
			if _, isParam := args[i+1].(*CommandParameter); !isParam {
				return args[i+1], true
			}
		}
		return p, true
	}
	return nil, false
}

// CommandParameter is a -Name or -Name:value token in a command.
type CommandParameter struct {
	Base
	Name     string
	Argument Node
}

func (*CommandParameter) Kind() string { return "CommandParameterAst" }

func (n *CommandParameter) Children() []Node {
	if n.Argument == nil {
		return nil
	}
	return []Node{n.Argument}
}

// Matches reports whether the parameter as written is a case-insensitive
// prefix of full.
func (n *CommandParameter) Matches(full string) bool {
	if n.Name == "" || len(n.Name) > len(full) {
		return false
	}
	return strings.EqualFold(full[:len(n.Name)], n.Name)
}

// CommandExpression is an expression used as a pipeline element.
type CommandExpression struct {
	Base
	Expression Node
}

func (*CommandExpression) Kind() string { return "CommandExpressionAst" }

func (n *CommandExpression) Children() []Node {
	if n.Expression == nil {
		return nil
	}
	return []Node{n.Expression}
}

// Assignment is an assignment statement (=, +=, ...).
type Assignment struct {
	Base
	Left     Node
	Operator string
	Right    Node
}

func (*Assignment) Kind() string { return "AssignmentStatementAst" }

func (n *Assignment) Children() []Node { return nonNil(n.Left, n.Right) }

// BinaryExpression is a binary operator application such as $a -eq $b.
// Operator is written lower-case without the leading dash for comparison
// operators ("eq", "and", "+").
type BinaryExpression struct {
	Base
	Operator string
	Left     Node
	Right    Node
}

func (*BinaryExpression) Kind() string { return "BinaryExpressionAst" }

func (n *BinaryExpression) Children() []Node { return nonNil(n.Left, n.Right) }

// UnaryExpression is a unary operator application such as !$x or -not $x.
type UnaryExpression struct {
	Base
	Operator string
	Child    Node
}

func (*UnaryExpression) Kind() string { return "UnaryExpressionAst" }

func (n *UnaryExpression) Children() []Node { return nonNil(n.Child) }

// StringConstant is a non-expandable string, including bare words.
type StringConstant struct {
	Base
	Value string
	Quote QuoteKind
}

func (*StringConstant) Kind() string { return "StringConstantExpressionAst" }

func (*StringConstant) Children() []Node { return nil }

// ExpandableString is a double-quoted string with embedded expressions.
type ExpandableString struct {
	Base
	Value  string
	Quote  QuoteKind
	Nested []Node
}

func (*ExpandableString) Kind() string { return "ExpandableStringExpressionAst" }

func (n *ExpandableString) Children() []Node { return n.Nested }

// Constant is a numeric or other non-string literal.
type Constant struct {
	Base
	Value any
}

func (*Constant) Kind() string { return "ConstantExpressionAst" }

func (*Constant) Children() []Node { return nil }

// Variable is a $variable reference. Path keeps any scope or drive
// qualifier ("global:Foo", "env:PATH").
type Variable struct {
	Base
	Path     string
	Splatted bool
}

func (*Variable) Kind() string { return "VariableExpressionAst" }

func (*Variable) Children() []Node { return nil }

// Scope returns the qualifier before the colon, lower-cased, or "".
func (n *Variable) Scope() string {
	if before, _, ok := strings.Cut(n.Path, ":"); ok {
		return strings.ToLower(before)
	}
	return ""
}

// Name returns the variable name without its qualifier.
func (n *Variable) Name() string {
	if _, after, ok := strings.Cut(n.Path, ":"); ok {
		return after
	}
	return n.Path
}

// IsTrue reports whether the variable is the $true constant.
func (n *Variable) IsTrue() bool { return strings.EqualFold(n.Path, "true") }

// IsFalse reports whether the variable is the $false constant.
func (n *Variable) IsFalse() bool { return strings.EqualFold(n.Path, "false") }

// IsNull reports whether the variable is the $null constant.
func (n *Variable) IsNull() bool { return strings.EqualFold(n.Path, "null") }

// Hashtable is a @{ key = value } literal.
type Hashtable struct {
	Base
	Pairs []*KeyValuePair
}

func (*Hashtable) Kind() string { return "HashtableAst" }

func (n *Hashtable) Children() []Node {
	out := make([]Node, 0, len(n.Pairs))
	for _, p := range n.Pairs {
		out = append(out, p)
	}
	return out
}

// KeyValuePair is one entry of a hashtable literal.
type KeyValuePair struct {
	Base
	Key   Node
	Value Node
}

func (*KeyValuePair) Kind() string { return "KeyValuePair" }

func (n *KeyValuePair) Children() []Node { return nonNil(n.Key, n.Value) }

// ConvertExpression is a cast such as [int]$x.
type ConvertExpression struct {
	Base
	Type  *TypeConstraint
	Child Node
}

func (*ConvertExpression) Kind() string { return "ConvertExpressionAst" }

func (n *ConvertExpression) Children() []Node {
	var out []Node
	if n.Type != nil {
		out = append(out, n.Type)
	}
	return append(out, nonNil(n.Child)...)
}

// TypeExpression is a type literal such as [System.IO.File].
type TypeExpression struct {
	Base
	TypeName string
}

func (*TypeExpression) Kind() string { return "TypeExpressionAst" }

func (*TypeExpression) Children() []Node { return nil }

// MemberExpression is a property access such as $x.Length or [Math]::PI.
type MemberExpression struct {
	Base
	Target Node
	Member Node
	Static bool
}

func (*MemberExpression) Kind() string { return "MemberExpressionAst" }

func (n *MemberExpression) Children() []Node { return nonNil(n.Target, n.Member) }

// InvokeMember is a method call such as $x.ToString() or [IO.File]::ReadAllText($p).
type InvokeMember struct {
	Base
	Target    Node
	Member    Node
	Arguments []Node
	Static    bool
}

func (*InvokeMember) Kind() string { return "InvokeMemberExpressionAst" }

func (n *InvokeMember) Children() []Node {
	return append(nonNil(n.Target, n.Member), n.Arguments...)
}

// ArrayLiteral is a comma-separated list such as 1, 2, 3.
type ArrayLiteral struct {
	Base
	Elements []Node
}

func (*ArrayLiteral) Kind() string { return "ArrayLiteralAst" }

func (n *ArrayLiteral) Children() []Node { return n.Elements }

// ArrayExpression is an @( ) expression.
type ArrayExpression struct {
	Base
	Statements []Node
}

func (*ArrayExpression) Kind() string { return "ArrayExpressionAst" }

func (n *ArrayExpression) Children() []Node { return n.Statements }

// SubExpression is a $( ) expression.
type SubExpression struct {
	Base
	Statements []Node
}

func (*SubExpression) Kind() string { return "SubExpressionAst" }

func (n *SubExpression) Children() []Node { return n.Statements }

// ParenExpression is a ( ) expression.
type ParenExpression struct {
	Base
	Pipeline Node
}

func (*ParenExpression) Kind() string { return "ParenExpressionAst" }

func (n *ParenExpression) Children() []Node { return nonNil(n.Pipeline) }

// ScriptBlockExpression is a { } literal used as a value.
type ScriptBlockExpression struct {
	Base
	Body *ScriptBlock
}

func (*ScriptBlockExpression) Kind() string { return "ScriptBlockExpressionAst" }

func (n *ScriptBlockExpression) Children() []Node {
	if n.Body == nil {
		return nil
	}
	return []Node{n.Body}
}

// If is an if/elseif/else statement.
type If struct {
	Base
	Clauses []*IfClause
	Else    *StatementBlock
}

func (*If) Kind() string { return "IfStatementAst" }

func (n *If) Children() []Node {
	out := make([]Node, 0, len(n.Clauses)+1)
	for _, c := range n.Clauses {
		out = append(out, c)
	}
	if n.Else != nil {
		out = append(out, n.Else)
	}
	return out
}

// IfClause is one condition/body pair of an If.
type IfClause struct {
	Base
	Condition Node
	Body      *StatementBlock
}

func (*IfClause) Kind() string { return "IfClause" }

func (n *IfClause) Children() []Node {
	out := nonNil(n.Condition)
	if n.Body != nil {
		out = append(out, n.Body)
	}
	return out
}

// Return is a return statement.
type Return struct {
	Base
	Pipeline Node
}

func (*Return) Kind() string { return "ReturnStatementAst" }

func (n *Return) Children() []Node { return nonNil(n.Pipeline) }

// TypeDefinition is a class or enum declaration.
type TypeDefinition struct {
	Base
	Name       string
	IsEnum     bool
	Attributes []*Attribute
	BaseTypes  []*TypeConstraint
	Members    []Node
}

func (*TypeDefinition) Kind() string { return "TypeDefinitionAst" }

func (n *TypeDefinition) Children() []Node {
	out := make([]Node, 0, len(n.Attributes)+len(n.BaseTypes)+len(n.Members))
	for _, a := range n.Attributes {
		out = append(out, a)
	}
	for _, b := range n.BaseTypes {
		out = append(out, b)
	}
	return append(out, n.Members...)
}

// HasAttribute reports whether the type carries the named attribute.
func (n *TypeDefinition) HasAttribute(name string) bool {
	for _, a := range n.Attributes {
		if SameTypeName(a.TypeName, name) {
			return true
		}
	}
	return false
}

// Method returns the first method member named name, or nil.
func (n *TypeDefinition) Method(name string) *FunctionMember {
	for _, m := range n.Members {
		if fm, ok := m.(*FunctionMember); ok && strings.EqualFold(fm.Name, name) {
			return fm
		}
	}
	return nil
}

// FunctionMember is a method declared in a class.
type FunctionMember struct {
	Base
	Name       string
	IsStatic   bool
	ReturnType *TypeConstraint
	Attributes []*Attribute
	Parameters []*Parameter
	Body       *ScriptBlock
}

func (*FunctionMember) Kind() string { return "FunctionMemberAst" }

func (n *FunctionMember) Children() []Node {
	out := make([]Node, 0, len(n.Attributes)+len(n.Parameters)+2)
	for _, a := range n.Attributes {
		out = append(out, a)
	}
	if n.ReturnType != nil {
		out = append(out, n.ReturnType)
	}
	for _, p := range n.Parameters {
		out = append(out, p)
	}
	if n.Body != nil {
		out = append(out, n.Body)
	}
	return out
}

// PropertyMember is a property declared in a class.
type PropertyMember struct {
	Base
	Name         string
	IsStatic     bool
	Attributes   []*Attribute
	PropertyType *TypeConstraint
	Initial      Node
}

func (*PropertyMember) Kind() string { return "PropertyMemberAst" }

func (n *PropertyMember) Children() []Node {
	out := make([]Node, 0, len(n.Attributes)+2)
	for _, a := range n.Attributes {
		out = append(out, a)
	}
	if n.PropertyType != nil {
		out = append(out, n.PropertyType)
	}
	return append(out, nonNil(n.Initial)...)
}

// Generic carries any node kind pslint has no dedicated type for
// (loops, switch, try/catch, trap, ...). Traversal still visits Nodes.
type Generic struct {
	Base
	Type  string
	Nodes []Node
}

func (n *Generic) Kind() string { return n.Type }

func (n *Generic) Children() []Node { return n.Nodes }

// SameTypeName compares two type names the way the host resolves them:
// case-insensitively, ignoring a leading "System." and a trailing
// "Attribute" suffix on attribute names.
func SameTypeName(a, b string) bool {
	return normalizeTypeName(a) == normalizeTypeName(b)
}

func normalizeTypeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(strings.TrimSuffix(strings.TrimPrefix(s, "["), "]"), "system.")
	if s != "attribute" {
		s = strings.TrimSuffix(s, "attribute")
	}
	if full, ok := typeAccelerators[s]; ok {
		return full
	}
	return s
}

// typeAccelerators maps the short names the host accepts to their full
// names, both in normalized form.
var typeAccelerators = map[string]string{
	"switch":          "management.automation.switchparameter",
	"securestring":    "security.securestring",
	"pscredential":    "management.automation.pscredential",
	"psobject":        "management.automation.psobject",
	"pscustomobject":  "management.automation.pscustomobject",
	"scriptblock":     "management.automation.scriptblock",
	"int":             "int32",
	"long":            "int64",
	"bool":            "boolean",
	"hashtable":       "collections.hashtable",
	"cmdletbinding":   "management.automation.cmdletbinding",
	"parameter":       "management.automation.parameter",
	"alias":           "management.automation.alias",
	"outputtype":      "management.automation.outputtype",
	"dscresource":     "management.automation.dscresource",
	"dscproperty":     "management.automation.dscproperty",
	"suppressmessage": "diagnostics.codeanalysis.suppressmessage",
}

func nonNil(nodes ...Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
