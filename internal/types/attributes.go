package types

import (
	"maps"
	"math"
	"strings"
)

// Attributes is the open attribute map attached to a state.
type Attributes map[string]any

func (a Attributes) Clone() Attributes {
	if a == nil {
		return Attributes{}
	}
	return maps.Clone(a)
}

func (a Attributes) String(key string) string {
	if a == nil {
		return ""
	}
	value, ok := a[key].(string)
	if !ok {
		return ""
	}
	return value
}

func (a Attributes) DeviceClass() string       { return a.String("device_class") }
func (a Attributes) StateClass() string        { return a.String("state_class") }
func (a Attributes) UnitOfMeasurement() string { return a.String("unit_of_measurement") }
func (a Attributes) FriendlyName() string      { return a.String("friendly_name") }
func (a Attributes) Icon() string              { return strings.TrimSpace(a.String("icon")) }

// RGB is an 8-bit colour triple.
type RGB struct {
	R, G, B uint8
}

// RGBColor decodes the rgb_color attribute. JSON numbers arrive as float64;
// anything with fewer than three numeric components is ignored.
func (a Attributes) RGBColor() (RGB, bool) {
	raw, ok := a["rgb_color"].([]any)
	if !ok || len(raw) < 3 {
		return RGB{}, false
	}
	var parts [3]uint8
	for i := range parts {
		value, ok := raw[i].(float64)
		if !ok {
			return RGB{}, false
		}
		parts[i] = uint8(math.Max(0, math.Min(255, math.Round(value))))
	}
	return RGB{R: parts[0], G: parts[1], B: parts[2]}, true
}
