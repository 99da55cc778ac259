package tether

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/editkit/tether/engine"
	"github.com/editkit/tether/preset"
)

// A resolver computes one facet's extension value from the entire
// normalized configuration. Resolvers are pure with respect to the live
// editor; the reconciler installs their outputs afterwards. A resolver may
// suspend on lazily loaded implementations, which is why every one takes a
// context.
type resolver func(ctx context.Context, cfg *Config) (engine.Extension, error)

var resolvers = [numFacets]resolver{
	FacetUserExtensions: resolveUserExtensions,
	FacetAutocomplete:   resolveAutocomplete,
	FacetSetup:          resolveSetup,
	FacetLanguage:       resolveLanguage,
	FacetTheme:          resolveTheme,
	FacetIndent:         resolveIndent,
	FacetReadOnly:       resolveReadOnly,
	FacetLint:           resolveLint,
}

func resolveSetup(ctx context.Context, cfg *Config) (engine.Extension, error) {
	switch cfg.Setup {
	case SetupNone:
		return engine.Extensions(), nil
	case SetupBasic:
		ext, err := preset.Basic(ctx)
		if err != nil {
			return nil, resolutionErr(FacetSetup, err)
		}
		return ext, nil
	case SetupMinimal:
		ext, err := preset.Minimal(ctx)
		if err != nil {
			return nil, resolutionErr(FacetSetup, err)
		}
		return ext, nil
	default:
		// Unreachable after normalize, kept for direct resolver use.
		return nil, invalidConfigf("unknown setup %q", cfg.Setup)
	}
}

func resolveLanguage(ctx context.Context, cfg *Config) (engine.Extension, error) {
	if cfg.Language != nil {
		return cfg.Language, nil
	}
	if cfg.Lang == "" {
		return engine.Extensions(), nil
	}
	if cfg.LangMap == nil {
		return nil, invalidConfigf("lang %q given but langMap is required", cfg.Lang)
	}
	factory, ok := cfg.LangMap[cfg.Lang]
	if !ok {
		return nil, invalidConfigf("language %q not in langMap", cfg.Lang)
	}
	ext, err := factory(ctx)
	if err != nil {
		return nil, resolutionErr(FacetLanguage, err)
	}
	if ext == nil {
		ext = engine.Extensions()
	}
	return ext, nil
}

// resolveIndent always produces both indentation effects: the numeric tab
// width and the indent unit string derived from UseTabs and TabSize.
func resolveIndent(_ context.Context, cfg *Config) (engine.Extension, error) {
	unit := strings.Repeat(" ", cfg.TabSize)
	if cfg.UseTabs {
		unit = "\t"
	}
	return engine.Extensions(
		engine.TabSize(cfg.TabSize),
		engine.IndentUnit(unit),
	), nil
}

func resolveTheme(_ context.Context, cfg *Config) (engine.Extension, error) {
	var parts []engine.Extension
	if cfg.Theme != nil {
		parts = append(parts, cfg.Theme)
	}
	if len(cfg.Styles) > 0 {
		parts = append(parts, engine.Theme(cfg.Styles))
	}
	return engine.Extensions(parts...), nil
}

func resolveReadOnly(_ context.Context, cfg *Config) (engine.Extension, error) {
	return engine.Editable(!cfg.ReadOnly), nil
}

func resolveAutocomplete(ctx context.Context, cfg *Config) (engine.Extension, error) {
	if cfg.Autocomplete == nil {
		return engine.Extensions(), nil
	}
	ext, err := preset.Autocompletion(ctx, *cfg.Autocomplete)
	if err != nil {
		return nil, resolutionErr(FacetAutocomplete, err)
	}
	return ext, nil
}

func resolveLint(ctx context.Context, cfg *Config) (engine.Extension, error) {
	if cfg.Lint == nil {
		return engine.Extensions(), nil
	}
	ext, err := preset.Linter(ctx, cfg.Lint, cfg.LintOptions)
	if err != nil {
		return nil, resolutionErr(FacetLint, err)
	}
	return ext, nil
}

func resolveUserExtensions(_ context.Context, cfg *Config) (engine.Extension, error) {
	return engine.Extensions(cfg.Extensions...), nil
}

// resolveFacets runs the given facets' resolvers concurrently against cfg
// and joins the results. Any failure aborts the whole batch; wall-clock
// cost is bounded by the slowest resolver, not the sum.
func resolveFacets(ctx context.Context, cfg *Config, facets []Facet) (map[Facet]engine.Extension, error) {
	results := make([]engine.Extension, numFacets)

	g, gctx := errgroup.WithContext(ctx)
	for _, f := range facets {
		g.Go(func() error {
			ext, err := resolvers[f](gctx, cfg)
			if err != nil {
				return err
			}
			results[f] = ext
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[Facet]engine.Extension, len(facets))
	for _, f := range facets {
		out[f] = results[f]
	}
	return out, nil
}

// allFacets lists every facet, used for initial mounts and document swaps
// where the full extension list is resolved fresh.
func allFacets() []Facet {
	out := make([]Facet, numFacets)
	for i := range out {
		out[i] = Facet(i)
	}
	return out
}
