package engine

// Extension is an opaque, composable value contributing behavior or
// settings to an editor state. Extensions are inert data; they take effect
// only when a state is built from them or a compartment is reconfigured to
// hold them.
//
// Where two extensions set the same facet, the first one in extension order
// wins. Callers therefore list higher-priority extensions first.
type Extension interface {
	ext()
}

// extList groups extensions. Nesting is flattened in order.
type extList []Extension

func (extList) ext() {}

// Extensions combines zero or more extensions into one. A nil entry is
// skipped; Extensions() is the canonical empty extension.
func Extensions(exts ...Extension) Extension {
	out := make(extList, 0, len(exts))
	for _, e := range exts {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// facetID identifies a primitive engine setting carried by an extension.
type facetID int

const (
	facetTabSize facetID = iota
	facetIndentUnit
	facetEditable
	facetTheme
)

// facetExt carries a primitive setting value.
type facetExt struct {
	id    facetID
	value any
}

func (facetExt) ext() {}

// TabSize sets the display width of a tab character.
func TabSize(n int) Extension {
	return facetExt{id: facetTabSize, value: n}
}

// IndentUnit sets the string inserted per indentation level, for example
// "\t" or two spaces.
func IndentUnit(unit string) Extension {
	return facetExt{id: facetIndentUnit, value: unit}
}

// Editable controls whether the document accepts user edits. Programmatic
// transactions are always permitted.
func Editable(editable bool) Extension {
	return facetExt{id: facetEditable, value: editable}
}

// Theme contributes style declarations, keyed by selector. Multiple theme
// extensions merge, earlier entries winning on key conflicts.
func Theme(styles map[string]string) Extension {
	return facetExt{id: facetTheme, value: styles}
}

// historyExt installs undo/redo tracking on the state.
type historyExt struct {
	maxEntries int
}

func (historyExt) ext() {}

// DefaultHistoryLimit bounds the undo stack when History is used.
const DefaultHistoryLimit = 1000

// History installs undo/redo tracking with the default entry limit.
func History() Extension {
	return historyExt{maxEntries: DefaultHistoryLimit}
}

// HistoryWithLimit installs undo/redo tracking with a custom entry limit.
func HistoryWithLimit(maxEntries int) Extension {
	if maxEntries <= 0 {
		maxEntries = DefaultHistoryLimit
	}
	return historyExt{maxEntries: maxEntries}
}

// opaqueExt is a named value the engine carries but does not interpret:
// language supports, setup bundles, completion sources, linters.
type opaqueExt struct {
	name    string
	payload any
}

func (opaqueExt) ext() {}

// Opaque wraps a host-supplied value as an extension. The name identifies
// the value for inspection and debugging; the payload is never interpreted
// by the engine.
func Opaque(name string, payload any) Extension {
	return opaqueExt{name: name, payload: payload}
}

// Keymap wraps a named keybinding set. Bindings themselves live with the
// host; the engine only tracks the set's presence and order.
func Keymap(name string) Extension {
	return Opaque("keymap:"+name, nil)
}

// OpaqueName returns the name of an Opaque extension and true, or "" and
// false for any other extension kind.
func OpaqueName(e Extension) (string, bool) {
	o, ok := e.(opaqueExt)
	if !ok {
		return "", false
	}
	return o.name, true
}

// OpaquePayload returns the payload of an Opaque extension, or nil.
func OpaquePayload(e Extension) any {
	if o, ok := e.(opaqueExt); ok {
		return o.payload
	}
	return nil
}
