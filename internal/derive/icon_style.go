package derive

import "hubview/internal/types"

// IconStyle is how an entity's glyph is tinted.
type IconStyle struct {
	Off   bool
	Color *types.RGB
}

// StyleIcon dims glyphs of entities that are off and tints those reporting
// an rgb_color.
func StyleIcon(state *types.State) IconStyle {
	if state == nil {
		return IconStyle{}
	}
	if value, ok := state.Value(); ok && value == "off" {
		return IconStyle{Off: true}
	}
	if rgb, ok := state.Attributes.RGBColor(); ok {
		return IconStyle{Color: &rgb}
	}
	return IconStyle{}
}
