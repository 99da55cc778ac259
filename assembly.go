package tether

import (
	"github.com/editkit/tether/engine"
	"github.com/editkit/tether/preset"
)

// compartmentSet owns the one-compartment-per-facet identities for a
// mounted editor. Created at mount, destroyed with the instance; a facet's
// compartment never changes, only its content does.
type compartmentSet struct {
	comps [numFacets]*engine.Compartment
}

func newCompartmentSet() *compartmentSet {
	cs := &compartmentSet{}
	for i := range cs.comps {
		cs.comps[i] = engine.NewCompartment(Facet(i).String())
	}
	return cs
}

func (cs *compartmentSet) compartment(f Facet) *engine.Compartment {
	return cs.comps[f]
}

// facetOf reports which facet a compartment backs.
func (cs *compartmentSet) facetOf(c *engine.Compartment) (Facet, bool) {
	for i, comp := range cs.comps {
		if comp == c {
			return Facet(i), true
		}
	}
	return 0, false
}

// assemble builds the ordered extension list for a state: every facet's
// resolved content wrapped in its compartment, in assemblyOrder, with the
// core keymap installed between the setup bundle and language support.
func (cs *compartmentSet) assemble(resolved map[Facet]engine.Extension) []engine.Extension {
	exts := make([]engine.Extension, 0, numFacets+1)
	for _, f := range assemblyOrder {
		content := resolved[f]
		if content == nil {
			content = engine.Extensions()
		}
		exts = append(exts, cs.comps[f].Of(content))
		if f == FacetSetup {
			exts = append(exts, preset.DefaultKeymap())
		}
	}
	return exts
}
