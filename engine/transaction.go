package engine

import "sort"

// Change replaces the byte range [From, To) of the document with Insert.
type Change struct {
	From   int    `json:"from"`
	To     int    `json:"to"`
	Insert string `json:"insert"`
}

// TransactionSpec describes one atomic update: document changes, an
// optional new selection, compartment effects, and free-form annotations.
type TransactionSpec struct {
	// Changes are applied against the pre-transaction document. They must
	// not overlap.
	Changes []Change

	// Selection, when non-nil, becomes the post-transaction selection
	// (clamped to the new document).
	Selection *Selection

	// Effects are compartment reconfigurations applied with the changes.
	Effects []StateEffect

	// Annotations carry caller metadata through to update listeners. The
	// engine never interprets them.
	Annotations map[string]any

	// skipHistory suppresses history recording; used by undo/redo.
	skipHistory bool
}

// Transaction is the committed record of a dispatched spec.
type Transaction struct {
	// Changes as applied, sorted by From ascending.
	Changes []Change

	// Effects as applied.
	Effects []StateEffect

	// DocChanged reports whether the document text differs after commit.
	DocChanged bool

	// SelectionChanged reports whether the selection moved.
	SelectionChanged bool

	// StartDoc and NewDoc are the document before and after.
	StartDoc string
	NewDoc   string

	// Annotations from the spec.
	Annotations map[string]any
}

// Annotation returns the named annotation value, or nil.
func (tr *Transaction) Annotation(name string) any {
	if tr.Annotations == nil {
		return nil
	}
	return tr.Annotations[name]
}

// applyChanges validates and applies changes to doc, returning the new
// document and the inverse changes (in post-apply coordinates) needed to
// undo them.
func applyChanges(doc string, changes []Change) (string, []Change, error) {
	if len(changes) == 0 {
		return doc, nil, nil
	}

	sorted := make([]Change, len(changes))
	copy(sorted, changes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].From < sorted[j].From })

	for i, c := range sorted {
		if c.From < 0 || c.To < c.From || c.To > len(doc) {
			return "", nil, ErrRangeInvalid
		}
		if i > 0 && c.From < sorted[i-1].To {
			return "", nil, ErrChangesOverlap
		}
	}

	// Build the new document in one pass, recording each change's inverse
	// with offsets shifted into post-apply coordinates.
	var (
		out     []byte
		inverse []Change
		prevEnd int
		delta   int
	)
	for _, c := range sorted {
		out = append(out, doc[prevEnd:c.From]...)
		out = append(out, c.Insert...)
		inverse = append(inverse, Change{
			From:   c.From + delta,
			To:     c.From + delta + len(c.Insert),
			Insert: doc[c.From:c.To],
		})
		delta += len(c.Insert) - (c.To - c.From)
		prevEnd = c.To
	}
	out = append(out, doc[prevEnd:]...)

	return string(out), inverse, nil
}
