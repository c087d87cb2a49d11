package derive

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"hubview/internal/icons"
	"hubview/internal/types"
)

const pressLabel = "Press"

// now is swapped in tests.
var now = time.Now

// RenderState turns a raw state into display text. Rules apply in order and
// the first match wins; anything unmatched is returned verbatim.
func RenderState(entityID string, raw *string, stateClass, deviceClass, unit string) string {
	domain := types.Domain(entityID)
	if domain == "button" || domain == "input_button" {
		return pressLabel
	}
	if raw == nil || *raw == "" {
		return ""
	}
	value := *raw
	if value == "unknown" || value == "unavailable" {
		return value
	}

	countable := stateClass == "measurement" || stateClass == "total_increasing"
	if countable && deviceClass == "duration" && unit == "s" {
		if text, ok := renderDuration(value); ok {
			return text
		}
	}
	if deviceClass == "timestamp" {
		if text, ok := renderTimestamp(value, now()); ok {
			return text
		}
	}
	if countable || (deviceClass == "" && stateClass == "" && unit != "") {
		if text, ok := renderNumber(value, unit); ok {
			return text
		}
	}

	if domain == "light" || domain == "switch" {
		switch value {
		case "on":
			return icons.ToggleOn
		case "off":
			return icons.ToggleOff
		}
	}
	return value
}

// RenderEntityState renders the registry state of an entity.
func RenderEntityState(entityID string, state *types.State) string {
	if state == nil {
		return RenderState(entityID, nil, "", "", "")
	}
	attrs := state.Attributes
	return RenderState(entityID, state.State, attrs.StateClass(), attrs.DeviceClass(), attrs.UnitOfMeasurement())
}

func renderDuration(value string) (string, bool) {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return "", false
	}
	base := time.Unix(0, 0)
	delta := time.Duration(seconds * float64(time.Second))
	return strings.TrimSpace(humanize.RelTime(base, base.Add(delta), "", "")), true
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// renderTimestamp names the calendar day relative to today: "today",
// "yesterday" and "tomorrow", otherwise "Jan 02", with the year added when
// the date is about five months or more away.
func renderTimestamp(value string, reference time.Time) (string, bool) {
	value = strings.TrimSpace(value)
	var parsed time.Time
	var err error
	for _, layout := range timestampLayouts {
		parsed, err = time.ParseInLocation(layout, value, reference.Location())
		if err == nil {
			break
		}
	}
	if err != nil {
		return "", false
	}
	parsed = parsed.In(reference.Location())
	day := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(reference.Year(), reference.Month(), reference.Day(), 0, 0, 0, 0, time.UTC)
	days := int(day.Sub(today).Hours() / 24)

	switch days {
	case 0:
		return "today", true
	case 1:
		return "tomorrow", true
	case -1:
		return "yesterday", true
	}
	if days < 0 {
		days = -days
	}
	if days >= 152 {
		return parsed.Format("Jan 02 2006"), true
	}
	return parsed.Format("Jan 02"), true
}

// renderNumber tries an integer then a float, formatted with thousands
// separators and two decimals, with the unit appended directly.
func renderNumber(value, unit string) (string, bool) {
	value = strings.TrimSpace(value)
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return humanize.FormatFloat("#,###.##", float64(n)) + unit, true
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return humanize.FormatFloat("#,###.##", f) + unit, true
	}
	return "", false
}
