package engine

import "github.com/rivo/uniseg"

// Selection is a single anchor/head pair of byte offsets into the document.
// Anchor is the fixed end, Head the moving end; a cursor has Anchor == Head.
type Selection struct {
	Anchor int `json:"anchor"`
	Head   int `json:"head"`
}

// Cursor returns a collapsed selection at the given offset.
func Cursor(offset int) Selection {
	return Selection{Anchor: offset, Head: offset}
}

// Empty reports whether the selection is a bare cursor.
func (s Selection) Empty() bool { return s.Anchor == s.Head }

// From returns the lower bound of the selection.
func (s Selection) From() int {
	if s.Anchor < s.Head {
		return s.Anchor
	}
	return s.Head
}

// To returns the upper bound of the selection.
func (s Selection) To() int {
	if s.Anchor > s.Head {
		return s.Anchor
	}
	return s.Head
}

// clamp snaps both ends of the selection into the document, aligned to
// grapheme cluster boundaries so a cursor can never land inside a combining
// sequence or emoji cluster.
func (s Selection) clamp(doc string) Selection {
	return Selection{
		Anchor: clampToGrapheme(doc, s.Anchor),
		Head:   clampToGrapheme(doc, s.Head),
	}
}

// clampToGrapheme returns the largest grapheme cluster boundary <= offset,
// after clamping offset into [0, len(doc)].
func clampToGrapheme(doc string, offset int) int {
	if offset <= 0 {
		return 0
	}
	if offset >= len(doc) {
		return len(doc)
	}

	pos := 0
	state := -1
	rest := doc
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.StepString(rest, state)
		next := pos + len(cluster)
		if next > offset {
			return pos
		}
		pos = next
	}
	return pos
}
