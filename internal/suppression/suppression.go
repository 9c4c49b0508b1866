// Package suppression reads SuppressMessageAttribute declarations from a
// script and filters the diagnostics they silence.
//
//	function Show-Banner {
//	    [Diagnostics.CodeAnalysis.SuppressMessageAttribute('PSAvoidUsingWriteHost', '')]
//	    param()
//	    Write-Host 'hello'
//	}
//
// The first positional argument names the rule, the optional second one the
// RuleSuppressionID a diagnostic must carry in its Data. A script-level
// attribute with Scope='Function' and a Target pattern applies to every
// function whose name matches.
package suppression

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/rules"
)

// attributeNames are the spellings of the attribute type, compared
// case-insensitively.
var attributeNames = []string{
	"SuppressMessageAttribute",
	"SuppressMessage",
	"Diagnostics.CodeAnalysis.SuppressMessageAttribute",
	"Diagnostics.CodeAnalysis.SuppressMessage",
	"System.Diagnostics.CodeAnalysis.SuppressMessageAttribute",
	"System.Diagnostics.CodeAnalysis.SuppressMessage",
}

// Suppression is one attribute applied to one extent.
type Suppression struct {
	// RuleName is the rule to silence; "*" and other glob patterns match
	// several rules.
	RuleName string

	// ID must equal the diagnostic's suppression ID when non-empty.
	ID string

	Scope         string
	Target        string
	Justification string

	// Extent is the script, function or class member the attribute covers.
	Extent ast.Extent

	// Attribute is where the attribute was written.
	Attribute ast.Extent

	// ScriptLevel is set for attributes on the script's own param block;
	// they also cover file-level diagnostics.
	ScriptLevel bool

	// Used records whether the suppression silenced anything.
	Used bool
}

// IsSuppressMessage reports whether attr is a SuppressMessageAttribute.
func IsSuppressMessage(attr *ast.Attribute) bool {
	for _, name := range attributeNames {
		if strings.EqualFold(attr.TypeName, name) {
			return true
		}
	}
	return false
}

// Collect returns every suppression declared in the tree rooted at root.
func Collect(root ast.Node) []Suppression {
	if rules.CheckRoot(root) != nil {
		return nil
	}
	var out []Suppression

	if sb, ok := root.(*ast.ScriptBlock); ok && sb.ParamBlock != nil {
		for _, attr := range sb.ParamBlock.Attributes {
			s, ok := fromAttribute(attr, root.Extent())
			if !ok {
				continue
			}
			if s.Target != "" && scopeMatches(s.Scope, "function") {
				out = append(out, targeted(root, s)...)
				continue
			}
			if s.Target != "" && scopeMatches(s.Scope, "class") {
				out = append(out, targetedClasses(root, s)...)
				continue
			}
			s.ScriptLevel = true
			out = append(out, s)
		}
	}

	for fd := range ast.All[*ast.FunctionDefinition](root) {
		if fd.Body == nil || fd.Body.ParamBlock == nil {
			continue
		}
		out = append(out, fromAttributes(fd.Body.ParamBlock.Attributes, fd.Extent())...)
	}
	for td := range ast.All[*ast.TypeDefinition](root) {
		out = append(out, fromAttributes(td.Attributes, td.Extent())...)
	}
	for fm := range ast.All[*ast.FunctionMember](root) {
		out = append(out, fromAttributes(fm.Attributes, fm.Extent())...)
	}
	return out
}

func fromAttributes(attrs []*ast.Attribute, ext ast.Extent) []Suppression {
	var out []Suppression
	for _, attr := range attrs {
		if s, ok := fromAttribute(attr, ext); ok {
			out = append(out, s)
		}
	}
	return out
}

func fromAttribute(attr *ast.Attribute, ext ast.Extent) (Suppression, bool) {
	if !IsSuppressMessage(attr) {
		return Suppression{}, false
	}
	s := Suppression{Extent: ext, Attribute: attr.Extent()}
	if len(attr.Positional) > 0 {
		s.RuleName = literal(attr.Positional[0])
	}
	if len(attr.Positional) > 1 {
		s.ID = literal(attr.Positional[1])
	}
	for _, named := range attr.Named {
		value := literal(named.Argument)
		switch strings.ToLower(named.Name) {
		case "rulename", "checkid":
			s.RuleName = value
		case "rulesuppressionid", "messageid":
			s.ID = value
		case "scope":
			s.Scope = value
		case "target":
			s.Target = value
		case "justification":
			s.Justification = value
		}
	}
	if s.RuleName == "" {
		return Suppression{}, false
	}
	return s, true
}

// targeted expands a script-level Scope='Function' suppression onto every
// function whose name matches Target.
func targeted(root ast.Node, s Suppression) []Suppression {
	var out []Suppression
	for fd := range ast.All[*ast.FunctionDefinition](root) {
		if wildcard(s.Target, fd.Name) {
			t := s
			t.Extent = fd.Extent()
			out = append(out, t)
		}
	}
	return out
}

func targetedClasses(root ast.Node, s Suppression) []Suppression {
	var out []Suppression
	for td := range ast.All[*ast.TypeDefinition](root) {
		if wildcard(s.Target, td.Name) {
			t := s
			t.Extent = td.Extent()
			out = append(out, t)
		}
	}
	return out
}

func scopeMatches(scope, want string) bool {
	return strings.EqualFold(scope, want)
}

func literal(n ast.Node) string {
	switch v := n.(type) {
	case *ast.StringConstant:
		return v.Value
	case *ast.ExpandableString:
		return v.Value
	}
	return ""
}

// wildcard matches PowerShell-style patterns ("Get-*", "?et-Item")
// ignoring case.
func wildcard(pattern, name string) bool {
	ok, err := doublestar.Match(strings.ToLower(pattern), strings.ToLower(name))
	return err == nil && ok
}

// ruleName strips a provider prefix ("PSScriptAnalyzer\PSAvoidGlobalVars").
func ruleName(name string) string {
	if i := strings.LastIndexAny(name, `\/`); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Suppresses reports whether s silences d.
func (s *Suppression) Suppresses(d rules.Diagnostic) bool {
	if !wildcard(ruleName(s.RuleName), d.RuleName) {
		return false
	}
	if s.ID != "" && !strings.EqualFold(s.ID, d.SuppressionID()) {
		return false
	}
	if d.Extent == nil {
		return s.ScriptLevel
	}
	return s.Extent.Start.Offset <= d.Extent.Start.Offset && d.Extent.Start.Offset < max(s.Extent.End.Offset, s.Extent.Start.Offset+1)
}

// FilterResult contains the results of filtering diagnostics through
// suppressions.
type FilterResult struct {
	// Diagnostics that were not suppressed.
	Diagnostics []rules.Diagnostic

	// Suppressed diagnostics with the justification that silenced them.
	Suppressed []Suppressed

	// Unused suppressions that silenced nothing.
	Unused []Suppression
}

// Suppressed is a diagnostic a suppression filtered out.
type Suppressed struct {
	rules.Diagnostic
	Justification string `json:"justification,omitempty"`
}

// Filter applies suppressions to diagnostics. Parse errors are never
// suppressed. The first matching suppression wins.
func Filter(diags []rules.Diagnostic, sups []Suppression) *FilterResult {
	result := &FilterResult{Diagnostics: make([]rules.Diagnostic, 0, len(diags))}
	sups = append([]Suppression(nil), sups...)

	for _, d := range diags {
		suppressed := false
		if d.Severity != rules.SeverityParseError {
			for i := range sups {
				if sups[i].Suppresses(d) {
					sups[i].Used = true
					result.Suppressed = append(result.Suppressed, Suppressed{Diagnostic: d, Justification: sups[i].Justification})
					suppressed = true
					break
				}
			}
		}
		if !suppressed {
			result.Diagnostics = append(result.Diagnostics, d)
		}
	}

	for _, s := range sups {
		if !s.Used {
			result.Unused = append(result.Unused, s)
		}
	}
	return result
}
