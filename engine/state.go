package engine

// Default facet values used when no extension sets them.
const (
	DefaultTabSize    = 4
	DefaultIndentUnit = "\t"
)

// StateConfig describes how to build an editor state.
type StateConfig struct {
	// Doc is the initial document text.
	Doc string

	// Selection is the initial selection. Nil places the cursor at the
	// document start.
	Selection *Selection

	// Extensions is the state's extension list, highest priority first.
	Extensions []Extension
}

// EditorState holds one document's complete editor state: text, selection,
// the configured extension tree with current per-compartment contents, the
// derived primitive settings, and (when installed) undo history.
//
// A state is owned by at most one View at a time. All mutation goes through
// View.Dispatch; the state's own methods are read-only.
type EditorState struct {
	doc       string
	selection Selection

	// root is the extension list as configured; compartment slots within
	// it are indirected through compartments.
	root         []Extension
	compartments map[*Compartment]Extension

	// Derived facet values.
	tabSize    int
	indentUnit string
	editable   bool
	theme      map[string]string

	history *historyStore
}

// NewState builds a state from the given configuration.
func NewState(cfg StateConfig) *EditorState {
	st := &EditorState{
		doc:          cfg.Doc,
		root:         cfg.Extensions,
		compartments: make(map[*Compartment]Extension),
	}
	if cfg.Selection != nil {
		st.selection = cfg.Selection.clamp(cfg.Doc)
	}
	st.collectCompartments(cfg.Extensions)
	st.recompute()
	return st
}

// collectCompartments records the initial content of every compartment slot
// in the extension tree. The first occurrence of a compartment wins; a
// compartment appears at most once in a well-formed configuration.
func (st *EditorState) collectCompartments(exts []Extension) {
	for _, e := range exts {
		switch v := e.(type) {
		case extList:
			st.collectCompartments(v)
		case compartmentContent:
			if _, ok := st.compartments[v.comp]; !ok {
				st.compartments[v.comp] = v.inner
			}
		}
	}
}

// recompute re-derives facet values and history installation from the
// extension tree, reading compartment slots through their current contents.
func (st *EditorState) recompute() {
	st.tabSize = 0
	st.indentUnit = ""
	st.editable = true
	st.theme = nil

	var (
		tabSet, indentSet, editSet bool
		historyLimit               int
		historyWanted              bool
	)

	var walk func(e Extension)
	walk = func(e Extension) {
		switch v := e.(type) {
		case extList:
			for _, inner := range v {
				walk(inner)
			}
		case compartmentContent:
			walk(st.compartments[v.comp])
		case facetExt:
			switch v.id {
			case facetTabSize:
				if !tabSet {
					st.tabSize, tabSet = v.value.(int), true
				}
			case facetIndentUnit:
				if !indentSet {
					st.indentUnit, indentSet = v.value.(string), true
				}
			case facetEditable:
				if !editSet {
					st.editable, editSet = v.value.(bool), true
				}
			case facetTheme:
				styles, _ := v.value.(map[string]string)
				for k, val := range styles {
					if st.theme == nil {
						st.theme = make(map[string]string)
					}
					if _, ok := st.theme[k]; !ok {
						st.theme[k] = val
					}
				}
			}
		case historyExt:
			if !historyWanted {
				historyWanted = true
				historyLimit = v.maxEntries
			}
		}
	}
	for _, e := range st.root {
		walk(e)
	}

	if !tabSet {
		st.tabSize = DefaultTabSize
	}
	if !indentSet {
		st.indentUnit = DefaultIndentUnit
	}

	switch {
	case historyWanted && st.history == nil:
		st.history = newHistoryStore(historyLimit)
	case !historyWanted:
		st.history = nil
	}
}

// applyEffect reconfigures one compartment slot and re-derives facets.
func (st *EditorState) applyEffect(e StateEffect) error {
	if _, ok := st.compartments[e.Compartment]; !ok {
		return ErrUnknownCompartment
	}
	st.compartments[e.Compartment] = e.Content
	st.recompute()
	return nil
}

// Doc returns the document text.
func (st *EditorState) Doc() string { return st.doc }

// Selection returns the current selection.
func (st *EditorState) Selection() Selection { return st.selection }

// TabSize returns the effective tab display width.
func (st *EditorState) TabSize() int { return st.tabSize }

// IndentUnit returns the effective indentation unit string.
func (st *EditorState) IndentUnit() string { return st.indentUnit }

// Editable reports whether user edits are accepted.
func (st *EditorState) Editable() bool { return st.editable }

// Theme returns the merged style declarations. The returned map is shared;
// callers must not mutate it.
func (st *EditorState) Theme() map[string]string { return st.theme }

// CompartmentContent returns the current content of a compartment slot and
// whether the compartment is part of this state.
func (st *EditorState) CompartmentContent(c *Compartment) (Extension, bool) {
	e, ok := st.compartments[c]
	return e, ok
}

// Extensions returns the state's top-level extension list as configured.
// The returned slice is shared; callers must not mutate it.
func (st *EditorState) Extensions() []Extension { return st.root }

// HistoryDepth returns the number of undoable entries, or 0 when history is
// not installed.
func (st *EditorState) HistoryDepth() int {
	if st.history == nil {
		return 0
	}
	return st.history.undoDepth()
}
