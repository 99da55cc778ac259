package tether

import (
	"maps"
	"reflect"

	"github.com/editkit/tether/engine"
)

// facetState classifies one facet's transition between two configurations.
type facetState int

const (
	facetUnchanged facetState = iota
	facetChanged              // relevant fields differ; re-resolve
	facetCleared              // fields went from present to absent
)

// diffFacets compares two normalized configs facet by facet. Primitive and
// option-struct fields use structural equality; functions and opaque
// engine values use identity, since deep comparison is unsafe for them.
func diffFacets(old, new *Config) [numFacets]facetState {
	var out [numFacets]facetState
	for f := Facet(0); f < Facet(numFacets); f++ {
		if facetEqual(f, old, new) {
			continue
		}
		if facetPresent(f, old) && !facetPresent(f, new) {
			out[f] = facetCleared
		} else {
			out[f] = facetChanged
		}
	}
	return out
}

// facetPresent reports whether any field feeding the facet is set.
// Indentation and read-only are always present: their resolvers produce a
// non-empty default regardless of configuration.
func facetPresent(f Facet, cfg *Config) bool {
	switch f {
	case FacetUserExtensions:
		return len(cfg.Extensions) > 0
	case FacetAutocomplete:
		return cfg.Autocomplete != nil
	case FacetSetup:
		return cfg.Setup != SetupNone
	case FacetLanguage:
		return cfg.Language != nil || cfg.Lang != ""
	case FacetTheme:
		return cfg.Theme != nil || len(cfg.Styles) > 0
	case FacetIndent, FacetReadOnly:
		return true
	case FacetLint:
		return cfg.Lint != nil
	default:
		return false
	}
}

// facetEqual reports whether the facet's relevant fields are unchanged
// between old and new.
func facetEqual(f Facet, old, new *Config) bool {
	switch f {
	case FacetUserExtensions:
		if len(old.Extensions) != len(new.Extensions) {
			return false
		}
		for i := range old.Extensions {
			if !sameValue(old.Extensions[i], new.Extensions[i]) {
				return false
			}
		}
		return true
	case FacetAutocomplete:
		if (old.Autocomplete == nil) != (new.Autocomplete == nil) {
			return false
		}
		return old.Autocomplete == nil || *old.Autocomplete == *new.Autocomplete
	case FacetSetup:
		return old.Setup == new.Setup
	case FacetLanguage:
		return old.Lang == new.Lang && sameValue(old.Language, new.Language)
	case FacetTheme:
		return sameValue(old.Theme, new.Theme) && maps.Equal(old.Styles, new.Styles)
	case FacetIndent:
		return old.UseTabs == new.UseTabs && old.TabSize == new.TabSize
	case FacetReadOnly:
		return old.ReadOnly == new.ReadOnly
	case FacetLint:
		return sameFunc(old.Lint, new.Lint) && old.LintOptions == new.LintOptions
	default:
		return true
	}
}

// sameValue compares two possibly opaque values. Reference kinds compare
// by identity; comparable values compare structurally; anything else is
// treated as changed.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		if va.Len() != vb.Len() {
			return false
		}
		return va.Len() == 0 || va.Pointer() == vb.Pointer()
	}
	if va.Comparable() {
		return a == b
	}
	return false
}

func sameFunc(a, b any) bool {
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	aNil := !av.IsValid() || av.IsNil()
	bNil := !bv.IsValid() || bv.IsNil()
	if aNil || bNil {
		return aNil == bNil
	}
	return av.Pointer() == bv.Pointer()
}

// cursorChanged reports whether the new config supplies a cursor position
// differing from the old config's.
func cursorChanged(old, new *Config) bool {
	if new.Cursor == nil {
		return false
	}
	return old.Cursor == nil || *old.Cursor != *new.Cursor
}

// annotationSwap marks transactions and state replacements caused by a
// document-identity change rather than an edit.
const annotationSwap = "tether.swap"

// buildUpdateSpec assembles the single transaction for one reconciliation
// pass: at most one full-document replace, at most one selection set, and
// one reconfigure effect per dirty facet.
func buildUpdateSpec(view *engine.View, cs *compartmentSet, old, new *Config,
	effects map[Facet]engine.Extension, cleared []Facet, swap bool) engine.TransactionSpec {

	var spec engine.TransactionSpec

	if doc := view.Doc(); new.Value != doc {
		spec.Changes = []engine.Change{{From: 0, To: len(doc), Insert: new.Value}}
	}
	if cursorChanged(old, new) {
		sel := engine.Cursor(*new.Cursor)
		spec.Selection = &sel
	}

	for _, f := range assemblyOrder {
		if ext, ok := effects[f]; ok {
			spec.Effects = append(spec.Effects, cs.compartment(f).Reconfigure(ext))
		}
	}
	for _, f := range cleared {
		spec.Effects = append(spec.Effects, cs.compartment(f).Reconfigure(engine.Extensions()))
	}

	if swap {
		spec.Annotations = map[string]any{annotationSwap: true}
	}
	return spec
}
