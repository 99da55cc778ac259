package engine

import "sync"

// Surface is the host attachment point for a view: whatever the lifecycle
// adapter mounts the editor onto. The engine only ever asks it for focus.
type Surface interface {
	Focus()
}

// ViewUpdate is delivered to update listeners after every committed change
// to a view's state.
type ViewUpdate struct {
	// Transaction is the committed transaction, or nil when the whole
	// state was replaced via SetState.
	Transaction *Transaction

	// StateReplaced is true for SetState updates (document swaps).
	StateReplaced bool

	// State is the view's state after the update.
	State *EditorState
}

// UpdateListener observes committed view updates.
type UpdateListener func(ViewUpdate)

// ViewConfig configures a new View.
type ViewConfig struct {
	State   *EditorState
	Surface Surface
}

// View is a live editor instance: one state attached to one surface.
// Dispatch applies transactions atomically; SetState replaces the entire
// state (used by document swaps). A view is created once per mount and
// destroyed exactly once; Destroy is idempotent.
//
// Thread-safety: all methods are safe for concurrent use. Listeners are
// invoked outside the view lock, one update at a time per caller.
type View struct {
	mu        sync.Mutex
	state     *EditorState
	surface   Surface
	listeners map[uint64]UpdateListener
	nextID    uint64
	focused   bool
	destroyed bool
}

// NewView creates a view over the given state.
func NewView(cfg ViewConfig) *View {
	st := cfg.State
	if st == nil {
		st = NewState(StateConfig{})
	}
	return &View{
		state:     st,
		surface:   cfg.Surface,
		listeners: make(map[uint64]UpdateListener),
	}
}

// State returns the current state, or nil after Destroy.
func (v *View) State() *EditorState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Doc returns the current document text, or "" after Destroy.
func (v *View) Doc() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == nil {
		return ""
	}
	return v.state.doc
}

// AddUpdateListener registers a listener and returns its removal function.
func (v *View) AddUpdateListener(fn UpdateListener) func() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.nextID++
	id := v.nextID
	v.listeners[id] = fn
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.listeners, id)
	}
}

// Dispatch applies the spec atomically: changes, then effects, then
// selection. On any validation error nothing is applied. Listeners are
// notified exactly once per successful dispatch.
func (v *View) Dispatch(spec TransactionSpec) (*Transaction, error) {
	v.mu.Lock()
	if v.destroyed {
		v.mu.Unlock()
		return nil, ErrViewDestroyed
	}
	st := v.state

	newDoc, inverse, err := applyChanges(st.doc, spec.Changes)
	if err != nil {
		v.mu.Unlock()
		return nil, err
	}

	// Validate effects before mutating anything.
	for _, e := range spec.Effects {
		if _, ok := st.compartments[e.Compartment]; !ok {
			v.mu.Unlock()
			return nil, ErrUnknownCompartment
		}
	}

	tr := &Transaction{
		Changes:     normalizeChanges(spec.Changes),
		Effects:     spec.Effects,
		StartDoc:    st.doc,
		NewDoc:      newDoc,
		DocChanged:  newDoc != st.doc,
		Annotations: spec.Annotations,
	}

	selBefore := st.selection
	st.doc = newDoc
	for _, e := range spec.Effects {
		st.compartments[e.Compartment] = e.Content
	}
	if len(spec.Effects) > 0 {
		st.recompute()
	}

	if spec.Selection != nil {
		st.selection = spec.Selection.clamp(newDoc)
	} else {
		st.selection = selBefore.clamp(newDoc)
	}
	tr.SelectionChanged = st.selection != selBefore

	if tr.DocChanged && !spec.skipHistory && st.history != nil {
		st.history.push(historyEntry{
			Undo:      inverse,
			Redo:      tr.Changes,
			SelBefore: selBefore,
			SelAfter:  st.selection,
		})
	}

	listeners := v.collectListenersLocked()
	update := ViewUpdate{Transaction: tr, State: st}
	v.mu.Unlock()

	for _, fn := range listeners {
		fn(update)
	}
	return tr, nil
}

// SetState replaces the view's entire state. No history entry is recorded;
// the incoming state carries its own history. Listeners observe a
// StateReplaced update.
func (v *View) SetState(st *EditorState) error {
	v.mu.Lock()
	if v.destroyed {
		v.mu.Unlock()
		return ErrViewDestroyed
	}
	if st == nil {
		st = NewState(StateConfig{})
	}
	v.state = st

	listeners := v.collectListenersLocked()
	update := ViewUpdate{StateReplaced: true, State: st}
	v.mu.Unlock()

	for _, fn := range listeners {
		fn(update)
	}
	return nil
}

// Focus asks the surface for focus and marks the view focused.
func (v *View) Focus() {
	v.mu.Lock()
	if v.destroyed {
		v.mu.Unlock()
		return
	}
	v.focused = true
	surface := v.surface
	v.mu.Unlock()

	if surface != nil {
		surface.Focus()
	}
}

// HasFocus reports whether Focus has been requested on a live view.
func (v *View) HasFocus() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.focused && !v.destroyed
}

// Destroyed reports whether the view has been destroyed.
func (v *View) Destroyed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.destroyed
}

// Destroy releases the view. Idempotent; further Dispatch and SetState
// calls fail with ErrViewDestroyed.
func (v *View) Destroy() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.destroyed {
		return
	}
	v.destroyed = true
	v.state = nil
	v.surface = nil
	v.listeners = nil
	v.focused = false
}

func (v *View) collectListenersLocked() []UpdateListener {
	out := make([]UpdateListener, 0, len(v.listeners))
	for _, fn := range v.listeners {
		out = append(out, fn)
	}
	return out
}

// normalizeChanges returns the changes sorted by From ascending.
func normalizeChanges(changes []Change) []Change {
	if len(changes) == 0 {
		return nil
	}
	out := make([]Change, len(changes))
	copy(out, changes)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].From < out[j-1].From; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
