// Package preset supplies the opaque extension bundles the binding layer
// installs: setup bundles, autocompletion, linting, keymaps, and the
// factory types for string-keyed language maps.
//
// Every bundle constructor takes a context because real implementations of
// these bundles load lazily and may resolve slowly; callers treat them as
// suspension points and never assume synchronous completion.
package preset

import (
	"context"
	"time"

	"github.com/editkit/tether/engine"
)

// LanguageFactory produces a language-support extension, synchronously or
// after a slow load. Used as the value type of a language map.
type LanguageFactory func(ctx context.Context) (engine.Extension, error)

// AutocompleteOptions configures the autocompletion bundle. The zero value
// selects defaults.
type AutocompleteOptions struct {
	// ActivateOnTyping opens the completion list as the user types.
	ActivateOnTyping bool

	// MaxRenderedOptions bounds the visible list. 0 means the bundle
	// default.
	MaxRenderedOptions int

	// DefaultKeymap installs the bundle's completion keybindings.
	DefaultKeymap bool
}

// Diagnostic is one lint finding over a byte range of the document.
type Diagnostic struct {
	From     int    `json:"from"`
	To       int    `json:"to"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// LintSource computes diagnostics for a document. Supplied by the caller;
// the binding layer only wires it into the linter bundle.
type LintSource func(ctx context.Context, doc string) ([]Diagnostic, error)

// LintOptions configures the linter bundle.
type LintOptions struct {
	// Delay is the idle time before the source is re-run after an edit.
	Delay time.Duration
}

// Basic returns the full-featured setup bundle: history, default keymap,
// and the standard editing conveniences, as one opaque extension.
func Basic(ctx context.Context) (engine.Extension, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return engine.Extensions(
		engine.History(),
		DefaultKeymap(),
		engine.Opaque("setup:line-numbers", nil),
		engine.Opaque("setup:bracket-matching", nil),
		engine.Opaque("setup:highlight-active-line", nil),
	), nil
}

// Minimal returns the reduced setup bundle: history and the default keymap
// only.
func Minimal(ctx context.Context) (engine.Extension, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return engine.Extensions(
		engine.History(),
		DefaultKeymap(),
	), nil
}

// Autocompletion returns the completion bundle configured by opts.
func Autocompletion(ctx context.Context, opts AutocompleteOptions) (engine.Extension, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return engine.Opaque("autocomplete", opts), nil
}

// Linter returns a linting bundle wired to the given source. The source is
// carried opaquely; the engine host invokes it on its own schedule.
func Linter(ctx context.Context, source LintSource, opts LintOptions) (engine.Extension, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return engine.Opaque("lint", lintPayload{Source: source, Options: opts}), nil
}

// lintPayload is the opaque payload of a Linter extension.
type lintPayload struct {
	Source  LintSource
	Options LintOptions
}

// DefaultKeymap returns the core keybinding set.
func DefaultKeymap() engine.Extension {
	return engine.Keymap("default")
}
