package icons

import (
	"strings"

	"hubview/internal/types"
)

// Material Design names with no Nerd Font counterpart.
var symbolOverrides = map[string]string{
	"mdi:button-pointer":  "nf-md-gesture_tap_button",
	"mdi:radiobox-blank":  "nf-fa-toggle_off",
	"mdi:radiobox-marked": "nf-fa-toggle_on",
}

// Default icons the hub's frontend hardcodes per domain.
var fallbackDomainIcons = map[string]string{
	"ai_task":                 "mdi:star-four-points",
	"air_quality":             "mdi:air-filter",
	"alert":                   "mdi:alert",
	"automation":              "mdi:robot",
	"calendar":                "mdi:calendar",
	"climate":                 "mdi:thermostat",
	"configurator":            "mdi:cog",
	"conversation":            "mdi:forum-outline",
	"counter":                 "mdi:counter",
	"date":                    "mdi:calendar",
	"datetime":                "mdi:calendar-clock",
	"demo":                    "mdi:home-assistant",
	"device_tracker":          "mdi:account",
	"google_assistant":        "mdi:google-assistant",
	"group":                   "mdi:google-circles-communities",
	"homeassistant":           "mdi:home-assistant",
	"homekit":                 "mdi:home-automation",
	"image_processing":        "mdi:image-filter-frames",
	"image":                   "mdi:image",
	"input_boolean":           "mdi:toggle-switch",
	"input_button":            "mdi:button-pointer",
	"input_datetime":          "mdi:calendar-clock",
	"input_number":            "mdi:ray-vertex",
	"input_select":            "mdi:format-list-bulleted",
	"input_text":              "mdi:form-textbox",
	"lawn_mower":              "mdi:robot-mower",
	"light":                   "mdi:lightbulb",
	"notify":                  "mdi:comment-alert",
	"number":                  "mdi:ray-vertex",
	"persistent_notification": "mdi:bell",
	"person":                  "mdi:account",
	"plant":                   "mdi:flower",
	"proximity":               "mdi:apple-safari",
	"remote":                  "mdi:remote",
	"scene":                   "mdi:palette",
	"schedule":                "mdi:calendar-clock",
	"script":                  "mdi:script-text",
	"select":                  "mdi:format-list-bulleted",
	"sensor":                  "mdi:eye",
	"simple_alarm":            "mdi:bell",
	"siren":                   "mdi:bullhorn",
	"stt":                     "mdi:microphone-message",
	"sun":                     "mdi:white-balance-sunny",
	"text":                    "mdi:form-textbox",
	"time":                    "mdi:clock",
	"timer":                   "mdi:timer-outline",
	"template":                "mdi:code-braces",
	"todo":                    "mdi:clipboard-list",
	"tts":                     "mdi:speaker-message",
	"vacuum":                  "mdi:robot-vacuum",
	"wake_word":               "mdi:chat-sleep",
	"weather":                 "mdi:weather-partly-cloudy",
	"zone":                    "mdi:map-marker-radius",
}

// Symbol picks the symbolic icon name for an entity: its own override, the
// integration's bundle for its translation key, the catalog entry for its
// domain, then the hardcoded defaults. state may be nil.
func Symbol(entity types.Entity, state *types.State, catalog types.IconCatalog) (string, bool) {
	if icon := entity.IconOverride(); icon != "" {
		return icon, true
	}
	if state != nil {
		if icon := state.Attributes.Icon(); icon != "" {
			return icon, true
		}
	}
	if bundle, ok := catalog.Entity(entity); ok {
		if icon := bundleSymbol(bundle, state); icon != "" {
			return icon, true
		}
	}
	if icon := catalogSymbol(entity.Domain(), state, catalog.Domains); icon != "" {
		return icon, true
	}
	return fallbackSymbol(entity.EntityID)
}

// catalogSymbol reads the domain's bundle for the entity's device class when
// the catalog has one, else the "_" bundle, preferring the per-state icon.
func catalogSymbol(domain string, state *types.State, catalog types.DomainIcons) string {
	resources := catalog[domain]
	if len(resources) == 0 {
		return ""
	}
	bundle, ok := types.IconResource{}, false
	if state != nil {
		if deviceClass := state.Attributes.DeviceClass(); deviceClass != "" {
			bundle, ok = resources[deviceClass]
		}
	}
	if !ok {
		bundle, ok = resources[types.DefaultIconResource]
	}
	if !ok {
		return ""
	}
	return bundleSymbol(bundle, state)
}

func bundleSymbol(bundle types.IconResource, state *types.State) string {
	if state != nil {
		if value, known := state.Value(); known {
			if icon := strings.TrimSpace(bundle.State[value]); icon != "" {
				return icon
			}
		}
	}
	return strings.TrimSpace(bundle.Default)
}

func fallbackSymbol(entityID string) (string, bool) {
	switch {
	case strings.HasPrefix(entityID, "input_datetime"):
		return "mdi:clock", true
	case strings.HasPrefix(entityID, "sun"):
		return "mdi:white-balance-sunny", true
	}
	icon, ok := fallbackDomainIcons[types.Domain(entityID)]
	return icon, ok
}

// GlyphName translates a symbolic name to a Nerd Font glyph name:
// "mdi:foo-bar" becomes "nf-md-foo_bar" unless an override exists.
func GlyphName(symbol string) (string, bool) {
	if name, ok := symbolOverrides[symbol]; ok {
		return name, true
	}
	set, name, found := strings.Cut(symbol, ":")
	if !found || set != "mdi" || name == "" {
		return "", false
	}
	return "nf-md-" + strings.ReplaceAll(name, "-", "_"), true
}
