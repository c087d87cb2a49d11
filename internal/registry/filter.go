package registry

import (
	"strings"

	"hubview/internal/types"
)

// Domains whose entities are never shown, either because they are disabled
// for this view or hidden the same way the hub's own dashboard hides them.
var (
	disabledDomains = setOf("stt", "tts", "event", "automation", "update", "device_tracker",
		"weather", "assist_satellite", "script")
	hiddenDomains = setOf("device_tracker", "persistent_notification", "todo", "assist_satellite",
		"automation", "configurator", "event", "geo_location", "notify", "script", "sun", "tag",
		"zone", "ai_task")
	hiddenPlatforms  = setOf("backup", "mobile_app")
	hiddenCategories = setOf("diagnostic", "config")
)

// Visible reports whether an entity belongs in the view.
func Visible(e types.Entity) bool {
	if strings.TrimSpace(e.EntityID) == "" {
		return false
	}
	if e.Hidden() || e.Disabled() {
		return false
	}
	if _, ok := hiddenCategories[e.Category()]; ok {
		return false
	}
	if _, ok := hiddenPlatforms[e.Platform]; ok {
		return false
	}
	domain := e.Domain()
	if _, ok := disabledDomains[domain]; ok {
		return false
	}
	if _, ok := hiddenDomains[domain]; ok {
		return false
	}
	return true
}

// FilterVisible keeps visible entities in their original order.
func FilterVisible(entities []types.Entity) []types.Entity {
	out := make([]types.Entity, 0, len(entities))
	for _, entity := range entities {
		if Visible(entity) {
			out = append(out, entity)
		}
	}
	return out
}

func setOf(values ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, value := range values {
		out[value] = struct{}{}
	}
	return out
}
