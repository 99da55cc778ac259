package engine

import "sync"

// historyEntry records one undoable transaction. Undo holds the inverse
// changes (coordinates in the post-transaction document); Redo holds the
// original changes (coordinates in the pre-transaction document, which is
// exactly the document after an undo).
type historyEntry struct {
	Undo      []Change  `json:"undo"`
	Redo      []Change  `json:"redo"`
	SelBefore Selection `json:"sel_before"`
	SelAfter  Selection `json:"sel_after"`
}

// historyStore manages undo/redo stacks for one state.
type historyStore struct {
	mu sync.Mutex

	undoStack []historyEntry
	redoStack []historyEntry

	maxEntries int
}

func newHistoryStore(maxEntries int) *historyStore {
	if maxEntries <= 0 {
		maxEntries = DefaultHistoryLimit
	}
	return &historyStore{maxEntries: maxEntries}
}

// push records an entry and clears the redo stack.
func (h *historyStore) push(e historyEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = append(h.undoStack, e)
	h.redoStack = nil

	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = append([]historyEntry(nil), h.undoStack[excess:]...)
	}
}

func (h *historyStore) popUndo() (historyEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return historyEntry{}, false
	}
	e := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, e)
	return e, true
}

func (h *historyStore) popRedo() (historyEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return historyEntry{}, false
	}
	e := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, e)
	return e, true
}

// restoreUndo puts an entry back after a failed undo dispatch.
func (h *historyStore) restoreUndo() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redoStack) == 0 {
		return
	}
	e := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, e)
}

// restoreRedo puts an entry back after a failed redo dispatch.
func (h *historyStore) restoreRedo() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undoStack) == 0 {
		return
	}
	e := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, e)
}

func (h *historyStore) undoDepth() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

func (h *historyStore) snapshot() (undo, redo []historyEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	undo = append([]historyEntry(nil), h.undoStack...)
	redo = append([]historyEntry(nil), h.redoStack...)
	return undo, redo
}

func (h *historyStore) restore(undo, redo []historyEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undoStack = append([]historyEntry(nil), undo...)
	h.redoStack = append([]historyEntry(nil), redo...)
}

// Undo reverts the view's most recent recorded transaction.
func Undo(v *View) error {
	st := v.State()
	if st == nil || st.history == nil {
		return ErrNoHistory
	}

	entry, ok := st.history.popUndo()
	if !ok {
		return ErrNothingToUndo
	}

	sel := entry.SelBefore
	_, err := v.Dispatch(TransactionSpec{
		Changes:     entry.Undo,
		Selection:   &sel,
		skipHistory: true,
	})
	if err != nil {
		st.history.restoreUndo()
		return err
	}
	return nil
}

// Redo re-applies the view's most recently undone transaction.
func Redo(v *View) error {
	st := v.State()
	if st == nil || st.history == nil {
		return ErrNoHistory
	}

	entry, ok := st.history.popRedo()
	if !ok {
		return ErrNothingToRedo
	}

	sel := entry.SelAfter
	_, err := v.Dispatch(TransactionSpec{
		Changes:     entry.Redo,
		Selection:   &sel,
		skipHistory: true,
	})
	if err != nil {
		st.history.restoreRedo()
		return err
	}
	return nil
}
