package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubview/internal/derive"
	"hubview/internal/icons"
	"hubview/internal/registry"
	"hubview/internal/types"
)

func ptr(value string) *string { return &value }

func loadedRegistry() *registry.Registry {
	reg := registry.New()
	reg.SetConfig(types.Config{})
	reg.SetIcons(types.IconCatalog{Domains: types.DomainIcons{"light": {"_": {Default: "mdi:lightbulb", State: map[string]string{"off": "mdi:lightbulb-off"}}}}})
	reg.SetAreas([]types.Area{{AreaID: ptr("kitchen"), Name: "Kitchen"}})
	reg.SetDevices([]types.Device{{ID: "d1", AreaID: ptr("kitchen"), Name: ptr("Ceiling")}})
	reg.SetEntities([]types.Entity{
		{EntityID: "light.ceiling", DeviceID: ptr("d1"), OriginalName: ptr("Light")},
		{EntityID: "button.doorbell"},
		{EntityID: "sensor.power", OriginalName: ptr("Power")},
	})
	reg.SetStates([]types.State{
		{EntityID: "light.ceiling", State: ptr("off")},
		{EntityID: "sensor.power", State: ptr("1500"), Attributes: types.Attributes{"state_class": "measurement", "unit_of_measurement": "W"}},
	})
	return reg
}

func TestBuildModel(t *testing.T) {
	reg := loadedRegistry()
	model, err := NewBuilder(nil).Build(reg)
	require.NoError(t, err)

	require.Len(t, model.Groups, 3)
	assert.Equal(t, "Kitchen", model.Groups[0].Label)
	assert.Equal(t, "Button", model.Groups[1].Label)
	assert.Equal(t, "Sensor", model.Groups[2].Label)
	assert.Equal(t, 3, model.Len())

	light, ok := model.Entity("light.ceiling")
	require.True(t, ok)
	assert.Equal(t, "Ceiling Light", light.Name)
	assert.Equal(t, icons.ToggleOff, light.State)
	assert.Equal(t, "off", light.StateRaw)
	assert.Equal(t, "\U000F0336", light.Glyph)
	assert.True(t, light.Icon.Off)
	assert.Equal(t, ActionToggle, light.Action)

	button, _ := model.Entity("button.doorbell")
	assert.Equal(t, "Press", button.State)
	assert.Equal(t, derive.ClassButton, button.Class)
	assert.Equal(t, ActionPress, button.Action)

	power, _ := model.Entity("sensor.power")
	assert.Equal(t, "1,500.00W", power.State)
	assert.Equal(t, Action(""), power.Action)
}

func TestBuildRequiresLoadedRegistry(t *testing.T) {
	_, err := NewBuilder(nil).Build(registry.New())
	assert.Error(t, err)
}

func TestBuildStrictIconFailure(t *testing.T) {
	reg := loadedRegistry()
	reg.SetEntities(append(reg.Entities.Value(), types.Entity{EntityID: "mystery.thing"}))
	_, err := NewBuilder(icons.NewResolver(icons.Options{Strict: true})).Build(reg)
	var lookupErr *icons.LookupError
	require.ErrorAs(t, err, &lookupErr)
}

func TestPatchIsCopyOnWriteAndIdempotent(t *testing.T) {
	reg := loadedRegistry()
	builder := NewBuilder(nil)
	before, err := builder.Build(reg)
	require.NoError(t, err)

	reg.ApplyEvent(types.EntityEvent{Changes: map[string]types.EntityChange{
		"light.ceiling": {Set: &types.EntityDiff{State: ptr("on"), Attributes: map[string]any{"rgb_color": []any{10.0, 20.0, 30.0}}}},
	}})
	after, err := builder.Patch(before, reg, []string{"light.ceiling", "light.unknown"})
	require.NoError(t, err)

	assert.Equal(t, before.Version+1, after.Version)
	old, _ := before.Entity("light.ceiling")
	assert.Equal(t, icons.ToggleOff, old.State, "previous model must be untouched")
	patched, _ := after.Entity("light.ceiling")
	assert.Equal(t, icons.ToggleOn, patched.State)
	assert.Equal(t, "\U000F0335", patched.Glyph)
	require.NotNil(t, patched.Icon.Color)
	assert.Equal(t, types.RGB{R: 10, G: 20, B: 30}, *patched.Icon.Color)

	rebuilt, err := builder.Build(reg)
	require.NoError(t, err)
	assert.Equal(t, rebuilt.Groups, after.Groups, "patch must match a full rebuild")

	again, err := builder.Patch(after, reg, []string{"light.ceiling"})
	require.NoError(t, err)
	assert.Equal(t, after.Groups, again.Groups)

	unchanged, err := builder.Patch(after, reg, []string{"light.unknown"})
	require.NoError(t, err)
	assert.Equal(t, after.Version, unchanged.Version)
}

func TestIntentService(t *testing.T) {
	intent, ok := IntentFor("light.kitchen")
	require.True(t, ok)
	domain, service, err := intent.Service()
	require.NoError(t, err)
	assert.Equal(t, "light", domain)
	assert.Equal(t, "toggle", service)

	intent, ok = IntentFor("input_button.ring")
	require.True(t, ok)
	_, service, err = intent.Service()
	require.NoError(t, err)
	assert.Equal(t, "press", service)

	_, ok = IntentFor("sensor.power")
	assert.False(t, ok)

	_, _, err = Intent{EntityID: "button.x", Action: ActionToggle}.Service()
	assert.Error(t, err)
	_, _, err = Intent{EntityID: "sensor.x", Action: ActionPress}.Service()
	assert.Error(t, err)
}
