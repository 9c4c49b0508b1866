package hostast

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/wharflab/pslint/internal/ast"
)

// namedBlockKeys are the ScriptBlockAst properties holding NamedBlockAst
// children, in source order.
var namedBlockKeys = []string{"dynamicParamBlock", "beginBlock", "processBlock", "endBlock", "cleanBlock"}

// tokenOperators maps host token kind names to operator text for the
// kinds whose name differs from what is written.
var tokenOperators = map[string]string{
	"equals":    "eq",
	"notequals": "ne",
	"exclaim":   "!",
	"minus":     "-",
	"plus":      "+",
	"multiply":  "*",
	"divide":    "/",
	"rem":       "%",
}

// operatorName normalizes an operator as written ("-Eq") or as a host token
// kind ("Ieq") to its lowercase name without the dash ("eq", "ieq", "!").
func operatorName(op string) string {
	if op == "-" {
		return op
	}
	op = strings.ToLower(strings.TrimPrefix(op, "-"))
	if mapped, ok := tokenOperators[op]; ok {
		return mapped
	}
	return op
}

//nolint:gocyclo // one case per node kind
func (d *decoder) build(kind string, base ast.Base, f fields, depth int) (ast.Node, error) {
	var err error
	must := func(e error) {
		if err == nil {
			err = e
		}
	}
	nodes := func(key string) []ast.Node {
		out, e := d.list(kind, f, key, depth)
		must(e)
		return out
	}
	node := func(key string) ast.Node {
		out, e := d.child(kind, f, key, depth)
		must(e)
		return out
	}

	var n ast.Node
	switch kind {
	case "ScriptBlockAst":
		sb := &ast.ScriptBlock{Base: base}
		sb.ParamBlock, err = typed[*ast.ParamBlock](d, kind, f, "paramBlock", depth)
		sb.Statements = nodes("statements")
		for _, key := range namedBlockKeys {
			if blk := node(key); blk != nil {
				sb.Statements = append(sb.Statements, blk)
			}
		}
		n = sb
	case "NamedBlockAst":
		n = &ast.NamedBlock{Base: base, Name: f.str("blockKind"), Statements: nodes("statements")}
	case "StatementBlockAst":
		n = &ast.StatementBlock{Base: base, Statements: nodes("statements")}
	case "ParamBlockAst":
		pb := &ast.ParamBlock{Base: base}
		pb.Attributes, err = typedList[*ast.Attribute](d, kind, f, "attributes", depth)
		if err == nil {
			pb.Parameters, err = typedList[*ast.Parameter](d, kind, f, "parameters", depth)
		}
		n = pb
	case "ParameterAst":
		p := &ast.Parameter{Base: base, Attributes: nodes("attributes"), Default: node("defaultValue")}
		if err == nil {
			p.Name, err = typed[*ast.Variable](d, kind, f, "name", depth)
		}
		n = p
	case "AttributeAst":
		a := &ast.Attribute{Base: base, TypeName: f.str("typeName"), Positional: nodes("positionalArguments")}
		if err == nil {
			a.Named, err = typedList[*ast.NamedArgument](d, kind, f, "namedArguments", depth)
		}
		n = a
	case "NamedAttributeArgumentAst":
		n = &ast.NamedArgument{
			Base:              base,
			Name:              f.str("argumentName"),
			Argument:          node("argument"),
			ExpressionOmitted: f.flag("expressionOmitted"),
		}
	case "TypeConstraintAst":
		n = &ast.TypeConstraint{Base: base, TypeName: f.str("typeName")}
	case "FunctionDefinitionAst":
		fd := &ast.FunctionDefinition{
			Base:       base,
			Name:       f.str("name"),
			IsFilter:   f.flag("isFilter"),
			IsWorkflow: f.flag("isWorkflow"),
		}
		fd.Parameters, err = typedList[*ast.Parameter](d, kind, f, "parameters", depth)
		if err == nil {
			fd.Body, err = typed[*ast.ScriptBlock](d, kind, f, "body", depth)
		}
		n = fd
	case "PipelineAst":
		n = &ast.Pipeline{Base: base, Elements: nodes("pipelineElements")}
	case "CommandAst":
		n = &ast.Command{Base: base, InvocationOperator: f.str("invocationOperator"), Elements: nodes("commandElements")}
	case "CommandParameterAst":
		n = &ast.CommandParameter{Base: base, Name: f.str("parameterName"), Argument: node("argument")}
	case "CommandExpressionAst":
		n = &ast.CommandExpression{Base: base, Expression: node("expression")}
	case "AssignmentStatementAst":
		n = &ast.Assignment{Base: base, Left: node("left"), Operator: f.str("operator"), Right: node("right")}
	case "BinaryExpressionAst":
		n = &ast.BinaryExpression{Base: base, Operator: operatorName(f.str("operator")), Left: node("left"), Right: node("right")}
	case "UnaryExpressionAst":
		n = &ast.UnaryExpression{Base: base, Operator: operatorName(f.str("operator")), Child: node("child")}
	case "StringConstantExpressionAst":
		n = &ast.StringConstant{Base: base, Value: f.str("value"), Quote: quoteKinds[f.str("stringConstantType")]}
	case "ExpandableStringExpressionAst":
		n = &ast.ExpandableString{
			Base:   base,
			Value:  f.str("value"),
			Quote:  quoteKinds[f.str("stringConstantType")],
			Nested: nodes("nestedExpressions"),
		}
	case "ConstantExpressionAst":
		c := &ast.Constant{Base: base}
		c.Value, err = constant(f["value"])
		if err != nil {
			err = d.fail(kind, "value", err)
		}
		n = c
	case "VariableExpressionAst":
		n = &ast.Variable{Base: base, Path: f.str("variablePath"), Splatted: f.flag("splatted")}
	case "HashtableAst":
		h := &ast.Hashtable{Base: base}
		h.Pairs, err = typedList[*ast.KeyValuePair](d, kind, f, "keyValuePairs", depth)
		n = h
	case "KeyValuePair":
		n = &ast.KeyValuePair{Base: base, Key: node("key"), Value: node("value")}
	case "ConvertExpressionAst":
		c := &ast.ConvertExpression{Base: base, Child: node("child")}
		if err == nil {
			c.Type, err = typed[*ast.TypeConstraint](d, kind, f, "type", depth)
		}
		n = c
	case "TypeExpressionAst":
		n = &ast.TypeExpression{Base: base, TypeName: f.str("typeName")}
	case "MemberExpressionAst":
		n = &ast.MemberExpression{Base: base, Target: node("expression"), Member: node("member"), Static: f.flag("static")}
	case "InvokeMemberExpressionAst":
		n = &ast.InvokeMember{
			Base:      base,
			Target:    node("expression"),
			Member:    node("member"),
			Arguments: nodes("arguments"),
			Static:    f.flag("static"),
		}
	case "ArrayLiteralAst":
		n = &ast.ArrayLiteral{Base: base, Elements: nodes("elements")}
	case "ArrayExpressionAst":
		n = &ast.ArrayExpression{Base: base, Statements: nodes("statements")}
	case "SubExpressionAst":
		n = &ast.SubExpression{Base: base, Statements: nodes("statements")}
	case "ParenExpressionAst":
		n = &ast.ParenExpression{Base: base, Pipeline: node("pipeline")}
	case "ScriptBlockExpressionAst":
		sbe := &ast.ScriptBlockExpression{Base: base}
		sbe.Body, err = typed[*ast.ScriptBlock](d, kind, f, "scriptBlock", depth)
		n = sbe
	case "IfStatementAst":
		st := &ast.If{Base: base}
		st.Clauses, err = typedList[*ast.IfClause](d, kind, f, "clauses", depth)
		if err == nil {
			st.Else, err = typed[*ast.StatementBlock](d, kind, f, "elseClause", depth)
		}
		n = st
	case "IfClause":
		c := &ast.IfClause{Base: base, Condition: node("condition")}
		if err == nil {
			c.Body, err = typed[*ast.StatementBlock](d, kind, f, "body", depth)
		}
		n = c
	case "ReturnStatementAst":
		n = &ast.Return{Base: base, Pipeline: node("pipeline")}
	case "TypeDefinitionAst":
		td := &ast.TypeDefinition{Base: base, Name: f.str("name"), IsEnum: f.flag("isEnum"), Members: nodes("members")}
		if err == nil {
			td.Attributes, err = typedList[*ast.Attribute](d, kind, f, "attributes", depth)
		}
		if err == nil {
			td.BaseTypes, err = typedList[*ast.TypeConstraint](d, kind, f, "baseTypes", depth)
		}
		n = td
	case "FunctionMemberAst":
		fm := &ast.FunctionMember{Base: base, Name: f.str("name"), IsStatic: f.flag("isStatic")}
		fm.ReturnType, err = typed[*ast.TypeConstraint](d, kind, f, "returnType", depth)
		if err == nil {
			fm.Attributes, err = typedList[*ast.Attribute](d, kind, f, "attributes", depth)
		}
		if err == nil {
			fm.Parameters, err = typedList[*ast.Parameter](d, kind, f, "parameters", depth)
		}
		if err == nil {
			fm.Body, err = typed[*ast.ScriptBlock](d, kind, f, "body", depth)
		}
		n = fm
	case "PropertyMemberAst":
		pm := &ast.PropertyMember{Base: base, Name: f.str("name"), IsStatic: f.flag("isStatic"), Initial: node("initialValue")}
		if err == nil {
			pm.Attributes, err = typedList[*ast.Attribute](d, kind, f, "attributes", depth)
		}
		if err == nil {
			pm.PropertyType, err = typed[*ast.TypeConstraint](d, kind, f, "propertyType", depth)
		}
		n = pm
	default:
		n = &ast.Generic{Base: base, Type: kind, Nodes: nodes("children")}
	}
	if err != nil {
		return nil, errors.Mark(err, ErrInvalidBundle)
	}
	return n, nil
}
