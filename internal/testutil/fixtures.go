package testutil

import "hubview/internal/hub"

// SeedHome registers a small home on the fake hub: one area, one device,
// a light, a button, a sensor and a diagnostic entity that must be filtered.
func SeedHome(h *FakeHub) {
	h.Respond(hub.CommandGetConfig, map[string]any{
		"version":       "2025.1.0",
		"location_name": "Home",
		"components":    []string{"light", "light.hue", "sensor", "button", "hue"},
	})
	h.Handle(hub.CommandGetIcons, func(cmd map[string]any) Reply {
		if cmd["category"] == hub.IconCategoryEntityComponent {
			return Ok(map[string]any{"resources": map[string]any{
				"light":  map[string]any{"_": map[string]any{"default": "mdi:lightbulb", "state": map[string]any{"off": "mdi:lightbulb-off"}}},
				"button": map[string]any{"_": map[string]any{"default": "mdi:button-pointer"}},
				"sensor": map[string]any{"_": map[string]any{"default": "mdi:eye"}},
			}})
		}
		if cmd["integration"] == "hue" {
			return Ok(map[string]any{"resources": map[string]any{
				"hue": map[string]any{"light": map[string]any{"room": map[string]any{"default": "mdi:lightbulb-group"}}},
			}})
		}
		return Ok(map[string]any{"resources": map[string]any{}})
	})
	h.Respond(hub.CommandListEntities, []map[string]any{
		{"entity_id": "light.kitchen", "device_id": "dev-1", "original_name": "Light", "platform": "hue"},
		{"entity_id": "button.doorbell", "platform": "esphome", "name": "Doorbell"},
		{"entity_id": "sensor.power", "platform": "esphome", "original_name": "Power"},
		{"entity_id": "sensor.signal", "platform": "esphome", "entity_category": "diagnostic"},
	})
	h.Respond(hub.CommandListAreas, []map[string]any{
		{"area_id": "kitchen", "name": "Kitchen"},
	})
	h.Respond(hub.CommandListDevices, []map[string]any{
		{"id": "dev-1", "area_id": "kitchen", "name": "Ceiling"},
	})
	h.Respond(hub.CommandGetStates, []map[string]any{
		{"entity_id": "light.kitchen", "state": "off", "attributes": map[string]any{}, "last_changed": "2025-01-01T00:00:00+00:00"},
		{"entity_id": "button.doorbell", "state": "unknown", "attributes": map[string]any{}},
		{"entity_id": "sensor.power", "state": "120", "attributes": map[string]any{"state_class": "measurement", "unit_of_measurement": "W"}},
		{"entity_id": "sensor.signal", "state": "-60", "attributes": map[string]any{}},
	})
	h.Respond(hub.CommandSubscribeEntities, nil)
	h.Respond(hub.CommandCallService, map[string]any{"context": map[string]any{"id": "ctx"}})
}
