// Package bomencoding flags non-ASCII scripts saved without a byte order
// mark. Windows PowerShell reads such files in the legacy code page.
package bomencoding

import (
	"bytes"
	"fmt"
	"iter"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/rules"
	"github.com/wharflab/pslint/internal/session"
)

// Name is the rule identifier.
const Name = "PSUseBOMForUnicodeEncodedFile"

var boms = [][]byte{
	{0xEF, 0xBB, 0xBF},       // UTF-8
	{0x00, 0x00, 0xFE, 0xFF}, // UTF-32 BE
	{0xFF, 0xFE, 0x00, 0x00}, // UTF-32 LE
	{0xFE, 0xFF},             // UTF-16 BE
	{0xFF, 0xFE},             // UTF-16 LE
}

// Rule implements PSUseBOMForUnicodeEncodedFile.
type Rule struct{}

// New creates a new rule instance.
func New() rules.Rule {
	return &Rule{}
}

// Metadata returns the rule metadata.
func (r *Rule) Metadata() rules.Metadata {
	return rules.Metadata{
		Name:             Name,
		CommonName:       "Use BOM encoding for non-ASCII files",
		Description:      "For a file encoded with a format other than ASCII, ensure BOM is present to ensure that any application consuming this file can interpret it correctly.",
		Severity:         rules.SeverityWarning,
		SourceType:       rules.SourceBuiltin,
		SourceName:       rules.BuiltinSourceName,
		DocURL:           rules.BuiltinDocURL(Name),
		Category:         "compatibility",
		EnabledByDefault: true,
	}
}

// AnalyzeScript reports one file-level diagnostic when the script holds a
// non-ASCII byte and starts with no byte order mark. In-memory scripts have
// no encoding and are skipped.
func (r *Rule) AnalyzeScript(s *session.Session, root ast.Node, file string) (iter.Seq[rules.Diagnostic], error) {
	if err := rules.CheckRoot(root); err != nil {
		return nil, err
	}
	src := rules.SourceOf(s, root)
	if file == "" || src == nil {
		return rules.Empty(), nil
	}
	data := src.Bytes()
	if HasBOM(data) || isASCII(data) {
		return rules.Empty(), nil
	}

	meta := r.Metadata()
	msg := fmt.Sprintf("Missing BOM encoding for non-ASCII encoded file '%s'", rules.DisplayName(file))
	d := rules.NewFileDiagnostic(file, meta.Name, msg, meta.Severity).WithDocURL(meta.DocURL)
	return rules.Seq(func() []rules.Diagnostic { return []rules.Diagnostic{d} }), nil
}

// HasBOM reports whether data starts with a Unicode byte order mark.
func HasBOM(data []byte) bool {
	for _, bom := range boms {
		if bytes.HasPrefix(data, bom) {
			return true
		}
	}
	return false
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b > 0x7F {
			return false
		}
	}
	return true
}

func init() {
	rules.Register(New)
}
