package derive

type DisplayClass string

const (
	ClassButton      DisplayClass = "button"
	ClassUnavailable DisplayClass = "unavailable"
	ClassOff         DisplayClass = "off"
	ClassOn          DisplayClass = "on"
	ClassDefault     DisplayClass = "default"
)

// StateDisplayClass maps a rendered state to its visual class.
func StateDisplayClass(rendered string) DisplayClass {
	switch rendered {
	case pressLabel:
		return ClassButton
	case "unavailable", "unknown":
		return ClassUnavailable
	case "off", "closed":
		return ClassOff
	case "on", "open":
		return ClassOn
	default:
		return ClassDefault
	}
}
