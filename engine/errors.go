package engine

import "errors"

// Errors returned by engine operations.
var (
	// ErrRangeInvalid indicates a change range is outside the document or
	// has end before start.
	ErrRangeInvalid = errors.New("invalid change range")

	// ErrChangesOverlap indicates two changes in one transaction overlap.
	ErrChangesOverlap = errors.New("changes overlap")

	// ErrViewDestroyed indicates an operation on a destroyed view.
	ErrViewDestroyed = errors.New("view is destroyed")

	// ErrUnknownCompartment indicates a reconfigure effect targeted a
	// compartment that is not part of the current state.
	ErrUnknownCompartment = errors.New("compartment not present in state")

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrNoHistory indicates the state was built without the History
	// extension.
	ErrNoHistory = errors.New("history extension not installed")

	// ErrBadSnapshot indicates serialized state that cannot be decoded.
	ErrBadSnapshot = errors.New("malformed state snapshot")
)
