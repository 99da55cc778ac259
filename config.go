package tether

import (
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/editkit/tether/engine"
	"github.com/editkit/tether/preset"
)

// Setup selects one of the named setup bundles.
type Setup string

const (
	// SetupNone installs no setup bundle.
	SetupNone Setup = ""
	// SetupBasic installs the full-featured bundle.
	SetupBasic Setup = "basic"
	// SetupMinimal installs the reduced bundle.
	SetupMinimal Setup = "minimal"
)

// NotifyMode selects the rate-limiting policy for text-change
// notifications.
type NotifyMode string

const (
	// NotifyImmediate delivers every notification as it happens.
	NotifyImmediate NotifyMode = ""
	// NotifyDebounce delivers on the trailing edge of a quiet period.
	NotifyDebounce NotifyMode = "debounce"
	// NotifyThrottle delivers at most once per window.
	NotifyThrottle NotifyMode = "throttle"
)

// NotifyConfig configures text-change notification delivery. Changing mode
// or duration takes effect starting with the next change event.
type NotifyConfig struct {
	Mode     NotifyMode
	Duration time.Duration
}

// Config is the declarative description of the desired editor state,
// supplied in full on every lifecycle tick. Optional fields left at their
// zero value mean "not configured"; see each field.
//
// Configs are treated as immutable per update: the caller hands one in and
// must not mutate it afterwards.
type Config struct {
	// Value is the document text. Always meaningful; the empty string is
	// an empty document.
	Value string

	// Setup selects a named setup bundle, or none.
	Setup Setup

	// Language is a pre-resolved language support value, used as-is when
	// non-nil. Takes precedence over Lang.
	Language engine.Extension

	// Lang is a string key resolved through LangMap. Setting Lang without
	// LangMap, or to a key the map lacks, fails validation.
	Lang string

	// LangMap maps language keys to factories. Factories may resolve
	// slowly; they are awaited during reconciliation.
	LangMap map[string]preset.LanguageFactory

	// UseTabs selects tab indentation; otherwise TabSize spaces.
	UseTabs bool

	// TabSize is the tab display width and space-indent width.
	// Defaults to 2.
	TabSize int

	// ReadOnly disables user editing. Defaults to editable.
	ReadOnly bool

	// Cursor, when non-nil, positions the selection head (and requests
	// focus) at the given byte offset.
	Cursor *int

	// Autocomplete enables the completion bundle. Nil disables it; a
	// pointer to the zero value enables it with defaults.
	Autocomplete *preset.AutocompleteOptions

	// Theme is an optional pre-built theme extension.
	Theme engine.Extension

	// Styles is an optional inline style map converted into a theme
	// extension. Hex color values are normalized during validation.
	Styles map[string]string

	// Lint wires a diagnostics source into the linter bundle. Nil
	// disables linting.
	Lint preset.LintSource

	// LintOptions configures the linter bundle when Lint is set.
	LintOptions preset.LintOptions

	// Extensions are caller-supplied extras, installed at the highest
	// priority so they are never shadowed.
	Extensions []engine.Extension

	// Store, when non-nil, receives a Publication after every committed
	// initialization, update, and swap.
	Store *Store

	// Notify selects text-change notification rate limiting.
	Notify NotifyConfig

	// DocumentID is the optional document identity key. A differing
	// value between two updates is exactly a document swap.
	DocumentID string

	// PersistFields names the state slices carried across document
	// swaps. Defaults to undo history only.
	PersistFields []string
}

// normalize validates cfg and returns a fully defaulted copy. It runs once
// per update, before any resolver; resolvers and the reconciler only ever
// see normalized configs.
func normalize(cfg *Config) (*Config, error) {
	if cfg == nil {
		return nil, invalidConfigf("configuration is required")
	}

	out := *cfg

	switch out.Setup {
	case SetupNone, SetupBasic, SetupMinimal:
	default:
		return nil, invalidConfigf("unknown setup %q", out.Setup)
	}

	if out.Language == nil && out.Lang != "" {
		if out.LangMap == nil {
			return nil, invalidConfigf("lang %q given but langMap is required", out.Lang)
		}
		if _, ok := out.LangMap[out.Lang]; !ok {
			return nil, invalidConfigf("language %q not in langMap", out.Lang)
		}
	}

	if out.TabSize <= 0 {
		out.TabSize = 2
	}

	switch out.Notify.Mode {
	case NotifyImmediate, NotifyDebounce, NotifyThrottle:
	default:
		return nil, invalidConfigf("unknown notify mode %q", out.Notify.Mode)
	}
	if out.Notify.Mode != NotifyImmediate && out.Notify.Duration <= 0 {
		return nil, invalidConfigf("notify mode %q requires a positive duration", out.Notify.Mode)
	}

	if len(out.Styles) > 0 {
		out.Styles = normalizeStyles(out.Styles)
	}

	if out.PersistFields == nil {
		out.PersistFields = engine.DefaultFields
	}

	return &out, nil
}

// normalizeStyles copies the style map, rewriting parseable hex colors to
// canonical lowercase form. Unparseable values pass through untouched; the
// engine's theme handling treats them as opaque declarations.
func normalizeStyles(styles map[string]string) map[string]string {
	out := make(map[string]string, len(styles))
	for k, v := range styles {
		if strings.HasPrefix(v, "#") {
			if c, err := colorful.Hex(v); err == nil {
				out[k] = strings.ToLower(c.Hex())
				continue
			}
		}
		out[k] = v
	}
	return out
}

// persistFields converts the configured field names to the engine's
// selector type.
func persistFields(cfg *Config) engine.FieldSet {
	return engine.FieldSet(cfg.PersistFields)
}

// cursorSelection returns the initial selection for a config, defaulting
// to the document start.
func cursorSelection(cfg *Config) *engine.Selection {
	if cfg.Cursor == nil {
		return nil
	}
	sel := engine.Cursor(*cfg.Cursor)
	return &sel
}
