package icons

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubview/internal/logging"
	"hubview/internal/types"
)

func ptr(value string) *string { return &value }

func TestBuiltinGlyphsCoverFallbacks(t *testing.T) {
	glyphs := Builtin()
	for domain, symbol := range fallbackDomainIcons {
		name, ok := GlyphName(symbol)
		require.True(t, ok, domain)
		_, ok = glyphs.Lookup(name)
		assert.True(t, ok, "missing glyph %s for domain %s", name, domain)
	}
	for _, name := range symbolOverrides {
		_, ok := glyphs.Lookup(name)
		assert.True(t, ok, name)
	}
	on, _ := glyphs.Lookup("nf-fa-toggle_on")
	assert.Equal(t, ToggleOn, on)
	_, ok := glyphs.Lookup(DefaultPlaceholder)
	assert.True(t, ok)
}

func TestGlyphName(t *testing.T) {
	cases := map[string]string{
		"mdi:lightbulb":           "nf-md-lightbulb",
		"mdi:white-balance-sunny": "nf-md-white_balance_sunny",
		"mdi:button-pointer":      "nf-md-gesture_tap_button",
		"mdi:radiobox-marked":     "nf-fa-toggle_on",
	}
	for symbol, want := range cases {
		got, ok := GlyphName(symbol)
		require.True(t, ok, symbol)
		assert.Equal(t, want, got)
	}
	_, ok := GlyphName("hue:bulb-flood")
	assert.False(t, ok)
	_, ok = GlyphName("lightbulb")
	assert.False(t, ok)
}

func TestSymbolPrecedence(t *testing.T) {
	catalog := types.IconCatalog{Domains: types.DomainIcons{
		"light": {"_": {Default: "mdi:lightbulb", State: map[string]string{"off": "mdi:lightbulb-off"}}},
		"sensor": {
			"_":           {Default: "mdi:eye"},
			"temperature": {Default: "mdi:thermometer"},
		},
	}}
	off := &types.State{State: ptr("off")}

	symbol, _ := Symbol(types.Entity{EntityID: "light.a", Icon: ptr("mdi:lamp")}, off, catalog)
	assert.Equal(t, "mdi:lamp", symbol, "entity override first")

	symbol, _ = Symbol(types.Entity{EntityID: "light.a"}, &types.State{State: ptr("on"), Attributes: types.Attributes{"icon": "mdi:fan"}}, catalog)
	assert.Equal(t, "mdi:fan", symbol, "state icon attribute second")

	symbol, _ = Symbol(types.Entity{EntityID: "light.a"}, off, catalog)
	assert.Equal(t, "mdi:lightbulb-off", symbol, "per-state catalog icon")

	symbol, _ = Symbol(types.Entity{EntityID: "light.a"}, nil, catalog)
	assert.Equal(t, "mdi:lightbulb", symbol)

	symbol, _ = Symbol(types.Entity{EntityID: "sensor.t"}, &types.State{State: ptr("21"), Attributes: types.Attributes{"device_class": "temperature"}}, catalog)
	assert.Equal(t, "mdi:thermometer", symbol)

	symbol, _ = Symbol(types.Entity{EntityID: "input_datetime.alarm"}, nil, types.IconCatalog{})
	assert.Equal(t, "mdi:clock", symbol)

	symbol, _ = Symbol(types.Entity{EntityID: "sun.sun"}, nil, types.IconCatalog{})
	assert.Equal(t, "mdi:white-balance-sunny", symbol)

	symbol, _ = Symbol(types.Entity{EntityID: "vacuum.robbie"}, nil, types.IconCatalog{})
	assert.Equal(t, "mdi:robot-vacuum", symbol)

	_, ok := Symbol(types.Entity{EntityID: "mystery.thing"}, nil, types.IconCatalog{})
	assert.False(t, ok)
}

func TestSymbolUsesIntegrationTranslationKey(t *testing.T) {
	hue := types.DomainIcons{"sensor": {
		"motion_sensitivity": {Default: "mdi:motion-sensor", State: map[string]string{"high": "mdi:motion-sensor-off"}},
	}}
	catalog := types.IconCatalog{
		Domains:  types.DomainIcons{"sensor": {"_": {Default: "mdi:eye"}}},
		Entities: types.EntityIcons{"hue": hue},
	}
	entity := types.Entity{EntityID: "sensor.hall", Platform: "hue", TranslationKey: ptr("motion_sensitivity")}

	symbol, _ := Symbol(entity, nil, catalog)
	assert.Equal(t, "mdi:motion-sensor", symbol)

	symbol, _ = Symbol(entity, &types.State{State: ptr("high")}, catalog)
	assert.Equal(t, "mdi:motion-sensor-off", symbol)

	entity.Platform = "zha"
	symbol, _ = Symbol(entity, nil, catalog)
	assert.Equal(t, "mdi:eye", symbol, "other integrations fall back to the domain bundle")

	symbol, _ = Symbol(types.Entity{EntityID: "sensor.hall", Platform: "hue"}, nil, catalog)
	assert.Equal(t, "mdi:eye", symbol, "no translation key")
}

func TestResolverStrictReturnsLookupError(t *testing.T) {
	r := NewResolver(Options{Strict: true})

	glyph, err := r.Glyph(types.Entity{EntityID: "light.kitchen"}, nil, types.IconCatalog{})
	require.NoError(t, err)
	assert.Equal(t, "\U000F0335", glyph)

	_, err = r.Glyph(types.Entity{EntityID: "mystery.thing"}, nil, types.IconCatalog{})
	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, "mystery.thing", lookupErr.EntityID)

	_, err = r.Glyph(types.Entity{EntityID: "light.x", Icon: ptr("mdi:not-a-real-icon")}, nil, types.IconCatalog{})
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, "nf-md-not_a_real_icon", lookupErr.GlyphName)
}

func TestResolverLenientUsesPlaceholder(t *testing.T) {
	var buf bytes.Buffer
	r := NewResolver(Options{Logger: logging.New(&buf, logging.Warn)})

	for i := 0; i < 2; i++ {
		glyph, err := r.Glyph(types.Entity{EntityID: "light.x", Icon: ptr("custom:thing")}, nil, types.IconCatalog{})
		require.NoError(t, err)
		assert.Equal(t, r.Placeholder(), glyph)
	}
	assert.Equal(t, 1, strings.Count(buf.String(), "icon_unresolved"))
}

func TestLoadGlyphsMergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glyphs.toml")
	require.NoError(t, os.WriteFile(path, []byte("[glyphs]\nnf-md-lightbulb = \"L\"\nnf-md-custom = \"C\"\n"), 0o600))

	glyphs, err := LoadGlyphs(path)
	require.NoError(t, err)
	assert.Equal(t, "L", glyphs["nf-md-lightbulb"])
	assert.Equal(t, "C", glyphs["nf-md-custom"])
	assert.Equal(t, "\U000F0004", glyphs["nf-md-account"])

	assert.NotEqual(t, "L", Builtin()["nf-md-lightbulb"], "builtin table must not be mutated")

	_, err = LoadGlyphs(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestResolverStrictResolvesSensorIcons(t *testing.T) {
	r := NewResolver(Options{Strict: true})
	want := map[string]rune{
		"mdi:brightness-5": 0xF00DE,
		"mdi:sine-wave":    0xF095B,
		"mdi:current-ac":   0xF1480,
		"mdi:molecule-co2": 0xF07E4,
		"mdi:wifi":         0xF05A9,
		"mdi:cellphone":    0xF011C,
		"mdi:battery-50":   0xF007E,
		"mdi:update":       0xF06B0,
		"mdi:sofa":         0xF04B9,
		"mdi:bed":          0xF02E3,
	}
	for symbol, code := range want {
		glyph, err := r.Glyph(types.Entity{EntityID: "sensor.x", Icon: ptr(symbol)}, nil, types.IconCatalog{})
		require.NoError(t, err, symbol)
		assert.Equal(t, string(code), glyph, symbol)
	}

	for _, symbol := range []string{
		"mdi:thermometer", "mdi:water-percent", "mdi:flash", "mdi:lightning-bolt", "mdi:gauge",
		"mdi:door-open", "mdi:door-closed", "mdi:window-open", "mdi:window-closed", "mdi:motion-sensor-off",
		"mdi:battery-charging", "mdi:battery-outline", "mdi:lock-open", "mdi:home-outline", "mdi:weather-windy",
	} {
		_, err := r.Glyph(types.Entity{EntityID: "sensor.x", Icon: ptr(symbol)}, nil, types.IconCatalog{})
		assert.NoError(t, err, symbol)
	}
}

func TestResolverStrictResolvesDeviceClassBundles(t *testing.T) {
	r := NewResolver(Options{Strict: true})
	catalog := types.IconCatalog{Domains: types.DomainIcons{"sensor": {
		"_":               {Default: "mdi:eye"},
		"illuminance":     {Default: "mdi:brightness-5"},
		"frequency":       {Default: "mdi:sine-wave"},
		"carbon_dioxide":  {Default: "mdi:molecule-co2"},
		"signal_strength": {Default: "mdi:wifi"},
	}}}
	state := &types.State{State: ptr("300"), Attributes: types.Attributes{"device_class": "illuminance"}}

	glyph, err := r.Glyph(types.Entity{EntityID: "sensor.lux"}, state, catalog)
	require.NoError(t, err)
	assert.Equal(t, "\U000F00DE", glyph)

	state.Attributes["device_class"] = "signal_strength"
	glyph, err = r.Glyph(types.Entity{EntityID: "sensor.rssi"}, state, catalog)
	require.NoError(t, err)
	assert.Equal(t, "\U000F05A9", glyph)
}

func TestLoadGlyphsReadsGlyphNamesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glyphnames.json")
	data := `{
  "METADATA": {"version": "3.4.0"},
  "nf-md-ab_testing": {"char": "x", "code": "f01c9"},
  "nf-md-lightbulb": {"char": "L", "code": ""}
}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	glyphs, err := LoadGlyphs(path)
	require.NoError(t, err)
	assert.Equal(t, "\U000F01C9", glyphs["nf-md-ab_testing"])
	assert.Equal(t, "L", glyphs["nf-md-lightbulb"], "char is used when the code is missing")
	assert.NotContains(t, glyphs, "METADATA")

	require.NoError(t, os.WriteFile(path, []byte("[glyphs]"), 0o600))
	_, err = LoadGlyphs(path)
	assert.Error(t, err)
}

func TestParseGlyphNamesFiltersPrefixes(t *testing.T) {
	data := []byte(`{"nf-md-bed": {"code": "f02e3"}, "nf-fa-toggle_on": {"code": "f205"}, "nf-dev-go": {"code": "e627"}}`)

	glyphs, err := ParseGlyphNames(data, "nf-md-", "nf-fa-")
	require.NoError(t, err)
	assert.Equal(t, Glyphs{"nf-md-bed": "\U000F02E3", "nf-fa-toggle_on": ToggleOn}, glyphs)

	all, err := ParseGlyphNames(data)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	var buf bytes.Buffer
	require.NoError(t, EncodeGlyphs(&buf, glyphs))
	decoded, err := parseGlyphs(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, glyphs, decoded)
}
