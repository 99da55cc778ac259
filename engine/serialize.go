package engine

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Serializable state fields selectable through a FieldSet. The document is
// always serialized; whether it is trusted on restore is the caller's
// decision (the binding layer always prefers its own value).
const (
	FieldHistory   = "history"
	FieldSelection = "selection"
)

// FieldSet names the optional state slices to carry through a
// serialize/restore round trip.
type FieldSet []string

// DefaultFields persists undo history only.
var DefaultFields = FieldSet{FieldHistory}

// Has reports whether the set names the given field.
func (f FieldSet) Has(name string) bool {
	for _, n := range f {
		if n == name {
			return true
		}
	}
	return false
}

// serializedState is the on-wire snapshot layout.
type serializedState struct {
	Doc       string    `json:"doc"`
	Selection Selection `json:"selection"`
	History   *struct {
		Undo []historyEntry `json:"undo"`
		Redo []historyEntry `json:"redo"`
	} `json:"history,omitempty"`
}

// Serialize captures the state as JSON. The document and selection are
// always present in the output; optional slices not named by fields are
// stripped so a snapshot carries exactly what the caller asked to persist.
func (st *EditorState) Serialize(fields FieldSet) ([]byte, error) {
	if fields == nil {
		fields = DefaultFields
	}

	out := serializedState{
		Doc:       st.doc,
		Selection: st.selection,
	}
	if st.history != nil {
		undo, redo := st.history.snapshot()
		out.History = &struct {
			Undo []historyEntry `json:"undo"`
			Redo []historyEntry `json:"redo"`
		}{Undo: undo, Redo: redo}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("serializing state: %w", err)
	}

	if !fields.Has(FieldHistory) {
		if data, err = sjson.DeleteBytes(data, FieldHistory); err != nil {
			return nil, fmt.Errorf("stripping history: %w", err)
		}
	}
	if !fields.Has(FieldSelection) {
		if data, err = sjson.DeleteBytes(data, FieldSelection); err != nil {
			return nil, fmt.Errorf("stripping selection: %w", err)
		}
	}
	return data, nil
}

// StateFromSerialized rebuilds a state from a snapshot, re-bound to a fresh
// configuration. The configuration's Doc and Extensions always win over the
// snapshot's; only the slices named by fields are restored from it. A
// snapshot produced by Serialize with the same field set round-trips.
func StateFromSerialized(data []byte, cfg StateConfig, fields FieldSet) (*EditorState, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrBadSnapshot
	}
	if fields == nil {
		fields = DefaultFields
	}

	if cfg.Selection == nil && fields.Has(FieldSelection) {
		if sel := gjson.GetBytes(data, FieldSelection); sel.Exists() {
			restored := Selection{
				Anchor: int(sel.Get("anchor").Int()),
				Head:   int(sel.Get("head").Int()),
			}
			cfg.Selection = &restored
		}
	}

	st := NewState(cfg)

	if fields.Has(FieldHistory) && st.history != nil {
		if hist := gjson.GetBytes(data, FieldHistory); hist.Exists() {
			var stacks struct {
				Undo []historyEntry `json:"undo"`
				Redo []historyEntry `json:"redo"`
			}
			if err := json.Unmarshal([]byte(hist.Raw), &stacks); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
			}
			st.history.restore(stacks.Undo, stacks.Redo)
		}
	}
	return st, nil
}
