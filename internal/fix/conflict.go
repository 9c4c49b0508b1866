package fix

import "github.com/wharflab/pslint/internal/rules"

// editsOverlap checks if two corrections overlap. Two insertions at the same
// offset overlap because their order would be ambiguous.
func editsOverlap(a, b rules.Correction) bool {
	if a.File != b.File {
		return false
	}
	return a.Extent.Overlaps(b.Extent)
}

// compareEdits orders corrections by start offset, then end offset.
func compareEdits(a, b rules.Correction) int {
	if a.Extent.Start.Offset != b.Extent.Start.Offset {
		return a.Extent.Start.Offset - b.Extent.Start.Offset
	}
	return a.Extent.End.Offset - b.Extent.End.Offset
}
