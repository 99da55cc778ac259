package tether

// Facet identifies one independently configurable aspect of editor
// behavior. Each facet is backed by exactly one compartment for the
// lifetime of a mounted editor.
type Facet int

const (
	// FacetUserExtensions holds caller-supplied extra extensions.
	FacetUserExtensions Facet = iota
	// FacetAutocomplete holds the completion bundle.
	FacetAutocomplete
	// FacetSetup holds the named setup bundle.
	FacetSetup
	// FacetLanguage holds the language support value.
	FacetLanguage
	// FacetTheme holds theme and inline style extensions.
	FacetTheme
	// FacetIndent holds tab width and indent unit settings.
	FacetIndent
	// FacetReadOnly holds the editability setting.
	FacetReadOnly
	// FacetLint holds the linter bundle.
	FacetLint

	numFacets int = iota
)

// String returns the facet's diagnostic name.
func (f Facet) String() string {
	switch f {
	case FacetUserExtensions:
		return "user-extensions"
	case FacetAutocomplete:
		return "autocomplete"
	case FacetSetup:
		return "setup"
	case FacetLanguage:
		return "language"
	case FacetTheme:
		return "theme"
	case FacetIndent:
		return "indent"
	case FacetReadOnly:
		return "read-only"
	case FacetLint:
		return "lint"
	default:
		return "unknown"
	}
}

// assemblyOrder lists facets in installation order. Earlier entries take
// priority when extensions compete for the same setting: user extensions
// are never shadowed by a bundle, bundles are not shadowed by the
// lower-priority settings facets. The core keymap is installed between
// setup and language (see assemble).
var assemblyOrder = [numFacets]Facet{
	FacetUserExtensions,
	FacetAutocomplete,
	FacetSetup,
	FacetLanguage,
	FacetTheme,
	FacetIndent,
	FacetReadOnly,
	FacetLint,
}

// ClearPolicy decides what happens to a facet's compartment when every
// field feeding the facet disappears from the configuration.
type ClearPolicy int

const (
	// ClearRemove empties the compartment, reverting the facet to the
	// engine's built-in behavior.
	ClearRemove ClearPolicy = iota

	// ClearDefault re-runs the facet's resolver against the new
	// configuration, installing the facet's own default. Used for facets
	// whose natural default is non-empty.
	ClearDefault
)

// defaultClearPolicies: indentation and read-only have non-empty natural
// defaults; everything else reverts to empty on removal.
func defaultClearPolicies() [numFacets]ClearPolicy {
	var p [numFacets]ClearPolicy
	p[FacetIndent] = ClearDefault
	p[FacetReadOnly] = ClearDefault
	return p
}
