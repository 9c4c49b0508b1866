package session

import (
	"strings"

	"github.com/wharflab/pslint/internal/ast"
)

// ObjectType is the inferred type when nothing better is known.
const ObjectType = "System.Object"

// InferType returns the static type of the expression at n: declared
// parameter types, casts, literal kinds and the last assignment to a
// variable in its scope. The result is cached per node.
func (s *Session) InferType(n ast.Node) string {
	if n == nil {
		return ObjectType
	}
	s.mu.RLock()
	t, ok := s.types[n]
	s.mu.RUnlock()
	if ok {
		return t
	}

	t = s.inferType(n, 0)

	s.mu.Lock()
	s.types[n] = t
	s.mu.Unlock()
	return t
}

// maxInferDepth stops inference through long assignment chains.
const maxInferDepth = 16

func (s *Session) inferType(n ast.Node, depth int) string {
	if depth > maxInferDepth {
		return ObjectType
	}
	switch n := n.(type) {
	case *ast.StringConstant, *ast.ExpandableString:
		return "System.String"
	case *ast.Constant:
		switch n.Value.(type) {
		case int, int32:
			return "System.Int32"
		case int64:
			return "System.Int64"
		case float32, float64:
			return "System.Double"
		case bool:
			return "System.Boolean"
		}
	case *ast.ConvertExpression:
		if n.Type != nil {
			return CanonicalTypeName(n.Type.TypeName)
		}
	case *ast.TypeConstraint:
		return CanonicalTypeName(n.TypeName)
	case *ast.Hashtable:
		return "System.Collections.Hashtable"
	case *ast.ArrayLiteral, *ast.ArrayExpression:
		return "System.Object[]"
	case *ast.ScriptBlockExpression:
		return "System.Management.Automation.ScriptBlock"
	case *ast.TypeExpression:
		return "System.Type"
	case *ast.ParenExpression:
		if n.Pipeline != nil {
			return s.inferType(n.Pipeline, depth+1)
		}
	case *ast.CommandExpression:
		if n.Expression != nil {
			return s.inferType(n.Expression, depth+1)
		}
	case *ast.Pipeline:
		if len(n.Elements) == 1 {
			return s.inferType(n.Elements[0], depth+1)
		}
	case *ast.BinaryExpression:
		return binaryType(s, n, depth)
	case *ast.UnaryExpression:
		switch strings.ToLower(n.Operator) {
		case "!", "not":
			return "System.Boolean"
		}
	case *ast.Parameter:
		return CanonicalTypeName(n.StaticType())
	case *ast.Variable:
		return s.inferVariable(n, depth)
	}
	return ObjectType
}

func binaryType(s *Session, n *ast.BinaryExpression, depth int) string {
	switch n.Operator {
	case "eq", "ne", "gt", "ge", "lt", "le", "like", "notlike", "match", "notmatch",
		"contains", "notcontains", "in", "notin", "is", "isnot", "and", "or", "xor",
		"ieq", "ine", "ceq", "cne":
		return "System.Boolean"
	case "+", "*":
		// The left operand decides the result type.
		return s.inferType(n.Left, depth+1)
	}
	return ObjectType
}

// automaticTypes are the static types of automatic variables.
var automaticTypes = map[string]string{
	"true":              "System.Boolean",
	"false":             "System.Boolean",
	"psscriptroot":      "System.String",
	"pscommandpath":     "System.String",
	"home":              "System.String",
	"pshome":            "System.String",
	"pid":               "System.Int32",
	"lastexitcode":      "System.Int32",
	"args":              "System.Object[]",
	"psboundparameters": "System.Management.Automation.PSBoundParametersDictionary",
	"pscmdlet":          "System.Management.Automation.PSCmdlet",
	"psversiontable":    "System.Management.Automation.PSVersionHashTable",
	"matches":           "System.Collections.Hashtable",
	"iscoreclr":         "System.Boolean",
	"islinux":           "System.Boolean",
	"ismacos":           "System.Boolean",
	"iswindows":         "System.Boolean",
}

func (s *Session) inferVariable(v *ast.Variable, depth int) string {
	name := strings.ToLower(v.Name())
	if t, ok := automaticTypes[name]; ok && v.Scope() == "" {
		return t
	}
	if v.Scope() == "env" {
		return "System.String"
	}

	scope, ok := ast.Enclosing[*ast.ScriptBlock](v)
	if !ok {
		return ObjectType
	}

	// A typed assignment ([int]$x = ...) constrains the variable for the
	// rest of the scope; otherwise the last preceding assignment wins.
	var constrained string
	var last ast.Node
	for a := range ast.Find(scope, isAssignment, false) {
		asg := a.(*ast.Assignment)
		if asg.Extent().Start.Offset >= v.Extent().Start.Offset {
			break
		}
		switch left := asg.Left.(type) {
		case *ast.ConvertExpression:
			if lv, ok := left.Child.(*ast.Variable); ok && strings.EqualFold(lv.Name(), v.Name()) && left.Type != nil {
				constrained = CanonicalTypeName(left.Type.TypeName)
			}
		case *ast.Variable:
			if strings.EqualFold(left.Name(), v.Name()) && asg.Operator == "=" {
				last = asg.Right
			}
		}
	}
	if constrained != "" {
		return constrained
	}
	if last != nil {
		return s.inferType(last, depth+1)
	}

	for _, p := range scopeParameters(scope) {
		if strings.EqualFold(p.ParameterName(), v.Name()) {
			return CanonicalTypeName(p.StaticType())
		}
	}
	return ObjectType
}

func isAssignment(n ast.Node) bool {
	_, ok := n.(*ast.Assignment)
	return ok
}

func scopeParameters(sb *ast.ScriptBlock) []*ast.Parameter {
	if fd, ok := sb.Parent().(*ast.FunctionDefinition); ok {
		return fd.AllParameters()
	}
	if fm, ok := sb.Parent().(*ast.FunctionMember); ok {
		return fm.Parameters
	}
	if sb.ParamBlock != nil {
		return sb.ParamBlock.Parameters
	}
	return nil
}

// canonicalNames expands the host's type accelerators.
var canonicalNames = map[string]string{
	"string":                                "System.String",
	"int":                                   "System.Int32",
	"int32":                                 "System.Int32",
	"long":                                  "System.Int64",
	"int64":                                 "System.Int64",
	"double":                                "System.Double",
	"bool":                                  "System.Boolean",
	"boolean":                               "System.Boolean",
	"switch":                                "System.Management.Automation.SwitchParameter",
	"switchparameter":                       "System.Management.Automation.SwitchParameter",
	"management.automation.switchparameter": "System.Management.Automation.SwitchParameter",
	"securestring":                          "System.Security.SecureString",
	"pscredential":                          "System.Management.Automation.PSCredential",
	"hashtable":                             "System.Collections.Hashtable",
	"scriptblock":                           "System.Management.Automation.ScriptBlock",
	"psobject":                              "System.Management.Automation.PSObject",
	"pscustomobject":                        "System.Management.Automation.PSObject",
	"object":                                ObjectType,
	"array":                                 "System.Array",
	"datetime":                              "System.DateTime",
	"char":                                  "System.Char",
	"byte":                                  "System.Byte",
	"string[]":                              "System.String[]",
	"object[]":                              "System.Object[]",
	"int[]":                                 "System.Int32[]",
}

// CanonicalTypeName expands an accelerator ("int", "[string]") to the full
// type name. Unknown names are returned without brackets.
func CanonicalTypeName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) >= 2 && name[0] == '[' && name[len(name)-1] == ']' {
		name = strings.TrimSpace(name[1 : len(name)-1])
	}
	key := strings.ToLower(strings.TrimPrefix(strings.ToLower(name), "system."))
	if full, ok := canonicalNames[key]; ok {
		return full
	}
	return name
}

// IsScalarType reports whether values of the type are never collections.
func IsScalarType(name string) bool {
	switch CanonicalTypeName(name) {
	case "System.String", "System.Int32", "System.Int64", "System.Double", "System.Boolean",
		"System.Char", "System.Byte", "System.DateTime", "System.Security.SecureString",
		"System.Management.Automation.SwitchParameter":
		return true
	default:
		return false
	}
}
