package reporter

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/muesli/termenv"

	"github.com/wharflab/pslint/internal/ast"
	"github.com/wharflab/pslint/internal/rules"
)

// Styles for different parts of the output
var (
	// Color detection using termenv (respects NO_COLOR, CLICOLOR_FORCE, terminal detection)
	useColors = termenv.EnvColorProfile() != termenv.Ascii

	warningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")) // Orange/Yellow

	ruleNameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")) // Red

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")). // Blue
			Underline(true)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")) // White

	fileLocStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")) // Light gray

	lineNumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // Dark gray

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")) // Darker gray

	markerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")) // Red

	fixStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")) // Green

	severityStyles = map[rules.Severity]lipgloss.Style{
		rules.SeverityParseError: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("201")), // Magenta
		rules.SeverityError: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		rules.SeverityWarning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")), // Orange
		rules.SeverityInformation: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")), // Blue
	}
)

const (
	plainSeparator  = "--------------------"
	styledSeparator = "────────────────────"
)

// TextOptions configures the text reporter output.
type TextOptions struct {
	// Color enables/disables colored output. Default: auto-detect.
	Color *bool

	// ShowSource shows source code snippets. Default: true.
	ShowSource bool
}

// DefaultTextOptions returns sensible defaults for text output.
func DefaultTextOptions() TextOptions {
	return TextOptions{ShowSource: true}
}

// TextReporter formats diagnostics as styled text output.
type TextReporter struct {
	opts  TextOptions
	color bool
}

// NewTextReporter creates a new text reporter with the given options.
func NewTextReporter(opts TextOptions) *TextReporter {
	color := useColors
	if opts.Color != nil {
		color = *opts.Color
	}
	return &TextReporter{opts: opts, color: color}
}

func (r *TextReporter) render(style lipgloss.Style, s string) string {
	if !r.color {
		return s
	}
	return style.Render(s)
}

// Print writes diagnostics to the writer.
func (r *TextReporter) Print(w io.Writer, diags []rules.Diagnostic) error {
	for _, d := range SortDiagnostics(diags) {
		if err := r.printDiagnostic(w, d); err != nil {
			return err
		}
	}
	return nil
}

// PrintSummary writes the one-line totals after the diagnostics.
func (r *TextReporter) PrintSummary(w io.Writer, diags []rules.Diagnostic, metadata ReportMetadata) error {
	if metadata.FilesScanned == 0 {
		return nil
	}
	s := calculateSummary(diags, countFiles(diags))
	line := fmt.Sprintf("\n%d %s in %d %s scanned (%d errors, %d warnings, %d information, %d parse errors)",
		s.Total, pluralize(s.Total, "problem", "problems"),
		metadata.FilesScanned, pluralize(metadata.FilesScanned, "file", "files"),
		s.Errors, s.Warnings, s.Information, s.ParseErrors)
	_, err := fmt.Fprintln(w, r.render(fileLocStyle, line))
	return err
}

// printDiagnostic formats a single diagnostic.
func (r *TextReporter) printDiagnostic(w io.Writer, d rules.Diagnostic) error {
	sevStyle, ok := severityStyles[d.Severity]
	if !ok {
		sevStyle = warningStyle
	}

	// Header line: SEVERITY: RuleName - URL
	header := fmt.Sprintf("\n%s %s",
		r.render(sevStyle, strings.ToUpper(d.Severity.String())+":"),
		r.render(ruleNameStyle, d.RuleName))
	if d.DocURL != "" {
		header += " - " + r.render(urlStyle, d.DocURL)
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, r.render(messageStyle, d.Message)); err != nil {
		return err
	}

	if d.IsFileLevel() {
		if _, err := fmt.Fprintln(w, r.render(fileLocStyle, displayPath(d))); err != nil {
			return err
		}
	} else if r.opts.ShowSource {
		r.printSource(w, d)
	} else {
		loc := fmt.Sprintf("%s:%d:%d", displayPath(d), d.Line(), d.Column())
		if _, err := fmt.Fprintln(w, r.render(fileLocStyle, loc)); err != nil {
			return err
		}
	}

	for _, c := range d.SuggestedCorrections {
		desc := c.Description
		if desc == "" {
			desc = fmt.Sprintf("replace with %q", c.Text)
		}
		if _, err := fmt.Fprintln(w, r.render(fixStyle, "fix: "+desc)); err != nil {
			return err
		}
	}
	return nil
}

// printSource renders the lines around the diagnostic's extent.
func (r *TextReporter) printSource(w io.Writer, d rules.Diagnostic) {
	ext := *d.Extent
	first, last, line := sourceLines(d)
	if line == nil {
		fmt.Fprintln(w, r.render(fileLocStyle, fmt.Sprintf("%s:%d:%d", displayPath(d), ext.Start.Line, ext.Start.Column)))
		return
	}

	start := ext.Start.Line
	end := lastLine(ext)
	if start < first || start > last {
		return
	}
	end = min(end, last)

	// Pad with 2-4 lines of context
	pad := 2
	if end == start {
		pad = 4
	}
	from, to := start, end
	for p := 0; p < pad; {
		expanded := false
		if from > first {
			from--
			p++
			expanded = true
		}
		if to < last {
			to++
			p++
			expanded = true
		}
		if !expanded {
			break
		}
	}

	sep := plainSeparator
	if r.color {
		sep = styledSeparator
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, r.render(fileLocStyle, fmt.Sprintf("%s:%d:%d", displayPath(d), ext.Start.Line, ext.Start.Column)))
	fmt.Fprintln(w, r.render(separatorStyle, sep))

	for i := from; i <= to; i++ {
		bar := "|"
		if r.color {
			bar = "│"
		}
		lineNum := r.render(lineNumStyle, fmt.Sprintf(" %3d %s", i, bar))

		marker := "   "
		if i >= start && i <= end {
			marker = r.render(markerStyle, ">>>")
		}
		fmt.Fprintf(w, "%s %s %s\n", lineNum, marker, line(i))
	}

	fmt.Fprintln(w, r.render(separatorStyle, sep))
}

// sourceLines returns the range of script lines available for display and
// a lookup for them. The whole script is used when the extent still
// references it, else the attached snippet is numbered from the extent's
// start line. line is nil when nothing can be shown.
func sourceLines(d rules.Diagnostic) (first, last int, line func(int) string) {
	if src := d.Extent.Source(); src != nil {
		return 1, src.LineCount(), src.Line
	}
	if d.SourceCode == "" {
		return 0, 0, nil
	}
	lines := strings.Split(strings.TrimSuffix(d.SourceCode, "\n"), "\n")
	first = d.Extent.Start.Line
	return first, first + len(lines) - 1, func(n int) string {
		return strings.TrimSuffix(lines[n-first], "\r")
	}
}

// lastLine is the last line the extent covers; an extent that ends at the
// start of a line does not cover it.
func lastLine(ext ast.Extent) int {
	end := ext.End.Line
	if end > ext.Start.Line && ext.End.Column == 1 {
		end--
	}
	return max(end, ext.Start.Line)
}

// PrintText is a convenience function that uses default options.
func PrintText(w io.Writer, diags []rules.Diagnostic) error {
	return NewTextReporter(DefaultTextOptions()).Print(w, diags)
}

// PrintTextPlain writes diagnostics without any styling (for non-TTY output).
func PrintTextPlain(w io.Writer, diags []rules.Diagnostic) error {
	noColor := false
	return NewTextReporter(TextOptions{Color: &noColor, ShowSource: true}).Print(w, diags)
}
