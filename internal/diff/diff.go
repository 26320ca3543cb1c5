// Package diff produces line-oriented before/after records between two text
// blobs. It is a positional line split, not an LCS alignment: the payload is
// stored on a version for display and never replayed, so alignment quality is
// not part of the contract.
package diff

import "strings"

// Diff holds the previous and next text split on line boundaries.
type Diff struct {
	Before []string `json:"before"`
	After  []string `json:"after"`
}

// Make splits prev and next into lines. Blank input yields an empty slice,
// never an error.
func Make(prev, next string) *Diff {
	return &Diff{
		Before: splitLines(prev),
		After:  splitLines(next),
	}
}

func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}
