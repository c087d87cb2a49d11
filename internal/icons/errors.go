package icons

import "fmt"

// LookupError reports an entity whose icon could not be turned into a glyph.
type LookupError struct {
	EntityID  string
	Symbol    string
	GlyphName string
	Reason    string
}

func (e *LookupError) Error() string {
	switch {
	case e.GlyphName != "":
		return fmt.Sprintf("icon for %s: %s (%s -> %s)", e.EntityID, e.Reason, e.Symbol, e.GlyphName)
	case e.Symbol != "":
		return fmt.Sprintf("icon for %s: %s (%s)", e.EntityID, e.Reason, e.Symbol)
	default:
		return fmt.Sprintf("icon for %s: %s", e.EntityID, e.Reason)
	}
}
