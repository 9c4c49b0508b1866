package ast

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// ErrInvalidExtent is returned when an extent's start lies after its end or
// the two positions belong to different files.
var ErrInvalidExtent = errors.New("invalid extent")

// Position is a single point in a script.
//
// Line and Column are 1-based (matching the host runtime's ScriptPosition).
// Column counts characters, not bytes. Offset is the 0-based byte offset
// into the script text.
type Position struct {
	File     string `json:"file,omitempty"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Offset   int    `json:"offset"`
	LineText string `json:"-"`
}

// Extent is an immutable source range. Start is inclusive, End is exclusive.
type Extent struct {
	Start Position `json:"start"`
	End   Position `json:"end"`

	// src backs the lazily computed text span. Nil for hand-built extents.
	src *Source
}

// NewExtent builds an extent from two positions, enforcing the
// start <= end and same-file invariants.
func NewExtent(start, end Position) (Extent, error) {
	if start.File != end.File {
		return Extent{}, errors.Wrapf(ErrInvalidExtent, "start file %q differs from end file %q", start.File, end.File)
	}
	if start.Offset > end.Offset {
		return Extent{}, errors.Wrapf(ErrInvalidExtent, "start offset %d is after end offset %d", start.Offset, end.Offset)
	}
	return Extent{Start: start, End: end}, nil
}

// File returns the file the extent belongs to. Empty for in-memory scripts.
func (e Extent) File() string {
	return e.Start.File
}

// Text returns the source text covered by the extent.
func (e Extent) Text() string {
	if e.src == nil {
		return ""
	}
	return e.src.Slice(e.Start.Offset, e.End.Offset)
}

// Source returns the script the extent was cut from, or nil for hand-built
// extents.
func (e Extent) Source() *Source {
	return e.src
}

// IsEmpty reports whether the extent covers no characters.
func (e Extent) IsEmpty() bool {
	return e.Start.Offset == e.End.Offset
}

// Contains reports whether other lies entirely within e.
func (e Extent) Contains(other Extent) bool {
	return e.File() == other.File() &&
		e.Start.Offset <= other.Start.Offset &&
		other.End.Offset <= e.End.Offset
}

// Overlaps reports whether e and other share at least one character.
// Two empty extents at the same offset are considered overlapping so that
// two insertions at one point conflict.
func (e Extent) Overlaps(other Extent) bool {
	if e.File() != other.File() {
		return false
	}
	if e.IsEmpty() && other.IsEmpty() {
		return e.Start.Offset == other.Start.Offset
	}
	return e.Start.Offset < other.End.Offset && other.Start.Offset < e.End.Offset
}

// Source is the text of one script with precomputed line starts, used to
// turn byte offsets into positions.
type Source struct {
	file       string
	text       string
	lineStarts []int
}

// NewSource indexes text for position lookups.
func NewSource(file string, text []byte) *Source {
	s := &Source{file: file, text: string(text), lineStarts: []int{0}}
	for i := 0; i < len(s.text); i++ {
		if s.text[i] == '\n' {
			s.lineStarts = append(s.lineStarts, i+1)
		}
	}
	return s
}

// File returns the script path.
func (s *Source) File() string {
	return s.file
}

// Text returns the full script text.
func (s *Source) Text() string {
	return s.text
}

// Bytes returns the script text as bytes.
func (s *Source) Bytes() []byte {
	return []byte(s.text)
}

// Len returns the length of the script in bytes.
func (s *Source) Len() int {
	return len(s.text)
}

// LineCount returns the number of lines in the script.
func (s *Source) LineCount() int {
	return len(s.lineStarts)
}

// Slice returns text[start:end] with both bounds clamped.
func (s *Source) Slice(start, end int) string {
	start = clamp(start, 0, len(s.text))
	end = clamp(end, start, len(s.text))
	return s.text[start:end]
}

// Line returns the text of the 1-based line without its terminator.
func (s *Source) Line(line int) string {
	if line < 1 || line > len(s.lineStarts) {
		return ""
	}
	start := s.lineStarts[line-1]
	end := len(s.text)
	if line < len(s.lineStarts) {
		end = s.lineStarts[line] - 1
	}
	return strings.TrimSuffix(s.text[start:end], "\r")
}

// Snippet returns the 1-based lines start..end joined by newlines.
func (s *Source) Snippet(start, end int) string {
	start = max(start, 1)
	end = min(end, len(s.lineStarts))
	if start > end {
		return ""
	}
	lines := make([]string, 0, end-start+1)
	for l := start; l <= end; l++ {
		lines = append(lines, s.Line(l))
	}
	return strings.Join(lines, "\n")
}

// LineStart returns the byte offset of the 1-based line, or -1.
func (s *Source) LineStart(line int) int {
	if line < 1 || line > len(s.lineStarts) {
		return -1
	}
	return s.lineStarts[line-1]
}

// Position converts a byte offset into a Position.
func (s *Source) Position(offset int) Position {
	offset = clamp(offset, 0, len(s.text))
	idx := sort.Search(len(s.lineStarts), func(i int) bool {
		return s.lineStarts[i] > offset
	}) - 1
	line := idx + 1
	return Position{
		File:     s.file,
		Line:     line,
		Column:   utf8.RuneCountInString(s.text[s.lineStarts[idx]:offset]) + 1,
		Offset:   offset,
		LineText: s.Line(line),
	}
}

// Extent returns the extent covering text[start:end].
func (s *Source) Extent(start, end int) Extent {
	if end < start {
		end = start
	}
	return Extent{Start: s.Position(start), End: s.Position(end), src: s}
}

// Whole returns the extent covering the entire script.
func (s *Source) Whole() Extent {
	return s.Extent(0, len(s.text))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
