package tether

import (
	"errors"
	"fmt"
)

// Errors returned by binding operations. Resolution and swap failures wrap
// these sentinels; use errors.Is to classify.
var (
	// ErrInvalidConfig indicates a configuration that fails validation:
	// missing config, an unrecognized setup name, a string language with
	// no language map, or a language key absent from the map.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrResolution indicates a lazily loaded facet implementation failed
	// to resolve. The editor remains in its last committed state.
	ErrResolution = errors.New("extension resolution failed")

	// ErrSwap indicates the incoming document's extensions failed to
	// resolve during a document swap. The outgoing document is untouched.
	ErrSwap = errors.New("document swap failed")

	// ErrDestroyed indicates an update against a destroyed editor.
	ErrDestroyed = errors.New("editor is destroyed")
)

func invalidConfigf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func resolutionErr(facet Facet, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrResolution, facet, err)
}

func swapErr(id string, err error) error {
	return fmt.Errorf("%w: document %q: %w", ErrSwap, id, err)
}
