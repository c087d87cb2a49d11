package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubview/internal/icons"
	"hubview/internal/types"
)

func ptr(value string) *string { return &value }

func fixture() ([]types.Area, []types.Device, []types.Entity) {
	areas := []types.Area{
		{AreaID: ptr("kitchen"), Name: "Kitchen"},
		{AreaID: nil, Name: "Nowhere"},
		{AreaID: ptr("office"), Name: "Office"},
	}
	devices := []types.Device{
		{ID: "dev-oven", AreaID: ptr("kitchen"), Name: ptr("Oven")},
		{ID: "dev-plug", Name: ptr("Smart Plug")},
	}
	entities := []types.Entity{
		{EntityID: "sensor.oven_temperature", DeviceID: ptr("dev-oven")},
		{EntityID: "light.desk", AreaID: ptr("office")},
		{EntityID: "switch.smart_plug", DeviceID: ptr("dev-plug")},
		{EntityID: "input_boolean.guest_mode"},
		{EntityID: "light.porch"},
		{EntityID: "input_boolean.away"},
	}
	return areas, devices, entities
}

func TestGroupEntitiesOrderAndPartition(t *testing.T) {
	areas, devices, entities := fixture()
	groups := GroupEntities(areas, devices, entities)

	assert.Equal(t, []string{"Kitchen", "Office", "Smart Plug", "Input Boolean", "Light"}, groups.Labels())
	assert.Equal(t, len(entities), groups.Len())

	seen := map[string]int{}
	for _, group := range groups {
		require.NotEmpty(t, group.Entities, group.Label)
		for _, entity := range group.Entities {
			seen[entity.EntityID]++
		}
	}
	for _, entity := range entities {
		assert.Equal(t, 1, seen[entity.EntityID], entity.EntityID)
	}

	assert.Equal(t, "sensor.oven_temperature", groups[0].Entities[0].EntityID, "area inherited through device")
	assert.Equal(t, "input_boolean.guest_mode", groups[3].Entities[0].EntityID)
	assert.Equal(t, "input_boolean.away", groups[3].Entities[1].EntityID)
}

func TestGroupEntitiesIsDeterministic(t *testing.T) {
	areas, devices, entities := fixture()
	assert.Equal(t, GroupEntities(areas, devices, entities), GroupEntities(areas, devices, entities))
}

func TestGroupEntitiesMergesSharedLabels(t *testing.T) {
	areas := []types.Area{{AreaID: ptr("lounge"), Name: "Lounge"}}
	devices := []types.Device{{ID: "d1", Name: ptr("Lounge")}}
	entities := []types.Entity{
		{EntityID: "light.lamp", AreaID: ptr("lounge")},
		{EntityID: "media_player.tv", DeviceID: ptr("d1")},
	}
	groups := GroupEntities(areas, devices, entities)
	require.Len(t, groups, 1)
	assert.Equal(t, "Lounge", groups[0].Label)
	assert.Len(t, groups[0].Entities, 2)
}

func TestGroupEntitiesFallsBackToIDs(t *testing.T) {
	areas := []types.Area{{AreaID: ptr("garage")}}
	devices := []types.Device{{ID: "dev-9"}}
	entities := []types.Entity{
		{EntityID: "cover.door", AreaID: ptr("garage")},
		{EntityID: "sensor.x", DeviceID: ptr("dev-9")},
	}
	assert.Equal(t, []string{"garage", "dev-9"}, GroupEntities(areas, devices, entities).Labels())
}

func TestRenderState(t *testing.T) {
	now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	cases := []struct {
		name        string
		entityID    string
		raw         *string
		stateClass  string
		deviceClass string
		unit        string
		want        string
	}{
		{"button press", "button.x", nil, "", "", "", "Press"},
		{"input button press", "input_button.x", ptr("2025-01-01"), "", "", "", "Press"},
		{"absent", "sensor.x", nil, "", "", "", ""},
		{"empty", "sensor.x", ptr(""), "measurement", "", "W", ""},
		{"unavailable", "sensor.x", ptr("unavailable"), "measurement", "", "W", "unavailable"},
		{"unknown", "light.x", ptr("unknown"), "", "", "", "unknown"},
		{"duration", "sensor.x", ptr("3600"), "measurement", "duration", "s", "1 hour"},
		{"duration minutes", "sensor.x", ptr("300"), "total_increasing", "duration", "s", "5 minutes"},
		{"timestamp today", "sensor.x", ptr("2025-06-15T08:30:00+00:00"), "", "timestamp", "", "today"},
		{"timestamp yesterday", "sensor.x", ptr("2025-06-14T23:59:59.123456+00:00"), "", "timestamp", "", "yesterday"},
		{"timestamp month", "sensor.x", ptr("2025-05-01T00:00:00+00:00"), "", "timestamp", "", "May 01"},
		{"timestamp far", "sensor.x", ptr("2024-01-03T00:00:00+00:00"), "", "timestamp", "", "Jan 03 2024"},
		{"integer", "sensor.power", ptr("1234"), "measurement", "power", "W", "1,234.00W"},
		{"float", "sensor.temp", ptr("21.456"), "measurement", "temperature", "°C", "21.46°C"},
		{"unit only", "sensor.esphome", ptr("7"), "", "", "%", "7.00%"},
		{"not numeric", "sensor.mode", ptr("eco"), "measurement", "", "", "eco"},
		{"no classes no unit", "sensor.count", ptr("12"), "", "", "", "12"},
		{"light on", "light.x", ptr("on"), "", "", "", icons.ToggleOn},
		{"switch off", "switch.x", ptr("off"), "", "", "", icons.ToggleOff},
		{"fan on verbatim", "fan.x", ptr("on"), "", "", "", "on"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RenderState(tc.entityID, tc.raw, tc.stateClass, tc.deviceClass, tc.unit))
		})
	}
}

func TestRenderEntityStateUsesAttributes(t *testing.T) {
	state := &types.State{
		EntityID:   "sensor.uptime",
		State:      ptr("7200"),
		Attributes: types.Attributes{"state_class": "measurement", "device_class": "duration", "unit_of_measurement": "s"},
	}
	assert.Equal(t, "2 hours", RenderEntityState("sensor.uptime", state))
	assert.Equal(t, "Press", RenderEntityState("button.restart", nil))
}

func TestStateDisplayClass(t *testing.T) {
	cases := map[string]DisplayClass{
		"Press":        ClassButton,
		"unavailable":  ClassUnavailable,
		"unknown":      ClassUnavailable,
		"off":          ClassOff,
		"closed":       ClassOff,
		"on":           ClassOn,
		"open":         ClassOn,
		"21.46°C":      ClassDefault,
		icons.ToggleOn: ClassDefault,
	}
	for rendered, want := range cases {
		assert.Equal(t, want, StateDisplayClass(rendered), rendered)
	}
}

func TestEntityName(t *testing.T) {
	device := &types.Device{ID: "d1", Name: ptr("Living Room Lamp")}
	cases := []struct {
		name   string
		entity types.Entity
		device *types.Device
		want   string
	}{
		{"explicit name", types.Entity{EntityID: "light.x", Name: ptr("Reading")}, device, "Reading"},
		{"device and original", types.Entity{EntityID: "light.x", OriginalName: ptr("Bulb")}, device, "Living Room Lamp Bulb"},
		{"object equals device", types.Entity{EntityID: "light.living_room_lamp"}, device, "Living Room Lamp"},
		{"strip device prefix", types.Entity{EntityID: "sensor.living_room_lamp_power_usage"}, device, "Power Usage"},
		{"original without device", types.Entity{EntityID: "sun.sun", OriginalName: ptr("Sun")}, nil, "Sun"},
		{"prettified", types.Entity{EntityID: "input_boolean.guest_mode"}, nil, "Guest Mode"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EntityName(tc.entity, tc.device))
		})
	}
}

func TestStyleIcon(t *testing.T) {
	assert.Equal(t, IconStyle{}, StyleIcon(nil))
	assert.Equal(t, IconStyle{Off: true}, StyleIcon(&types.State{State: ptr("off"), Attributes: types.Attributes{"rgb_color": []any{1.0, 2.0, 3.0}}}))

	style := StyleIcon(&types.State{State: ptr("on"), Attributes: types.Attributes{"rgb_color": []any{255.0, 10.0, 0.0}}})
	require.NotNil(t, style.Color)
	assert.Equal(t, types.RGB{R: 255, G: 10}, *style.Color)
}

func TestHumanizeDomain(t *testing.T) {
	assert.Equal(t, "Input Boolean", HumanizeDomain("input_boolean"))
	assert.Equal(t, "Zigbee2Mqtt", HumanizeDomain("zigbee2mqtt"))
}
