package icons

import (
	"errors"
	"strings"

	"hubview/internal/logging"
	"hubview/internal/types"
)

const DefaultPlaceholder = "nf-md-help_circle_outline"

type Options struct {
	Glyphs Glyphs
	// Strict makes unresolved icons an error instead of a placeholder.
	Strict      bool
	Placeholder string
	Logger      logging.Logger
}

type Resolver struct {
	glyphs      Glyphs
	strict      bool
	placeholder string
	logger      logging.Logger
	warned      map[string]struct{}
}

func NewResolver(opts Options) *Resolver {
	glyphs := opts.Glyphs
	if glyphs == nil {
		glyphs = Builtin()
	}
	placeholder := strings.TrimSpace(opts.Placeholder)
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return &Resolver{
		glyphs:      glyphs,
		strict:      opts.Strict,
		placeholder: placeholder,
		logger:      logging.OrNop(opts.Logger),
		warned:      map[string]struct{}{},
	}
}

// Resolve returns the glyph for an entity or a *LookupError.
func (r *Resolver) Resolve(entity types.Entity, state *types.State, catalog types.IconCatalog) (string, error) {
	symbol, ok := Symbol(entity, state, catalog)
	if !ok {
		return "", &LookupError{EntityID: entity.EntityID, Reason: "no icon for domain " + entity.Domain()}
	}
	name, ok := GlyphName(symbol)
	if !ok {
		return "", &LookupError{EntityID: entity.EntityID, Symbol: symbol, Reason: "unsupported icon set"}
	}
	glyph, ok := r.glyphs.Lookup(name)
	if !ok {
		return "", &LookupError{EntityID: entity.EntityID, Symbol: symbol, GlyphName: name, Reason: "glyph not in table"}
	}
	return glyph, nil
}

// Glyph resolves like Resolve, but outside strict mode a failure yields the
// placeholder glyph and a warning logged once per entity.
func (r *Resolver) Glyph(entity types.Entity, state *types.State, catalog types.IconCatalog) (string, error) {
	glyph, err := r.Resolve(entity, state, catalog)
	if err == nil {
		return glyph, nil
	}
	var lookupErr *LookupError
	if r.strict || !errors.As(err, &lookupErr) {
		return "", err
	}
	if _, seen := r.warned[entity.EntityID]; !seen {
		r.warned[entity.EntityID] = struct{}{}
		r.logger.Warn("icon_unresolved",
			logging.F("entity_id", entity.EntityID),
			logging.F("symbol", lookupErr.Symbol),
			logging.F("glyph", lookupErr.GlyphName),
			logging.F("reason", lookupErr.Reason),
		)
	}
	return r.Placeholder(), nil
}

// Placeholder is the glyph shown for unresolved icons.
func (r *Resolver) Placeholder() string {
	if glyph, ok := r.glyphs.Lookup(r.placeholder); ok {
		return glyph
	}
	return "?"
}

func (r *Resolver) Strict() bool { return r.strict }
