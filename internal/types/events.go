package types

// EntityEvent is the compressed payload of a subscribe_entities event.
type EntityEvent struct {
	Additions map[string]EntityDiff   `json:"a,omitempty"`
	Changes   map[string]EntityChange `json:"c,omitempty"`
	Removals  []string                `json:"r,omitempty"`
}

// EntityDiff carries the compressed state fields. Additions carry a full
// record; changes carry only what moved.
type EntityDiff struct {
	State       *string        `json:"s"`
	Attributes  map[string]any `json:"a,omitempty"`
	LastChanged *float64       `json:"lc,omitempty"`
	LastUpdated *float64       `json:"lu,omitempty"`
}

// EntityChange wraps the fields set ("+") and the attributes removed ("-").
type EntityChange struct {
	Set    *EntityDiff    `json:"+,omitempty"`
	Remove *EntityRemoval `json:"-,omitempty"`
}

type EntityRemoval struct {
	Attributes []string `json:"a,omitempty"`
}

func (e EntityEvent) Empty() bool {
	return len(e.Additions) == 0 && len(e.Changes) == 0 && len(e.Removals) == 0
}
