package processor

import (
	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/rules"
)

// SnippetAttachment populates the SourceCode field of diagnostics with the
// full lines their extent covers, so reporters can show context without
// re-reading files.
type SnippetAttachment struct{}

// NewSnippetAttachment creates a new snippet attachment processor.
func NewSnippetAttachment() *SnippetAttachment {
	return &SnippetAttachment{}
}

// Name returns the processor's identifier.
func (p *SnippetAttachment) Name() string {
	return "snippet-attachment"
}

// Process attaches source code snippets. File-level diagnostics and extents
// without backing source are skipped.
func (p *SnippetAttachment) Process(diags []rules.Diagnostic, _ *Context) []rules.Diagnostic {
	return transformDiagnostics(diags, func(d rules.Diagnostic) rules.Diagnostic {
		if d.SourceCode != "" || d.Extent == nil {
			return d
		}
		return d.WithSourceCode(extractSnippet(*d.Extent))
	})
}

// extractSnippet returns the lines spanned by ext. An extent ending at
// column 1 of a later line does not include that line.
func extractSnippet(ext ast.Extent) string {
	src := ext.Source()
	if src == nil {
		return ext.Start.LineText
	}
	endLine := ext.End.Line
	if ext.End.Column == 1 && endLine > ext.Start.Line {
		endLine--
	}
	return src.Snippet(ext.Start.Line, endLine)
}
