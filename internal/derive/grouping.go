package derive

import (
	"strings"
	"unicode"

	"hubview/internal/types"
)

type Group struct {
	Label    string
	Entities []types.Entity
}

// Groups is the ordered display partition: areas, then devices, then
// domains. Each entity appears in exactly one group and no group is empty.
type Groups []Group

// GroupEntities partitions entities. An entity belongs to its own area, or
// its device's area; entities left over go to their device, and the rest to
// their domain. Groups sharing a label are merged.
func GroupEntities(areas []types.Area, devices []types.Device, entities []types.Entity) Groups {
	deviceArea := make(map[string]string, len(devices))
	for _, device := range devices {
		deviceArea[device.ID] = device.AreaRef()
	}

	b := newGroupBuilder(len(entities))
	for _, area := range areas {
		areaID := area.Ref()
		if areaID == "" {
			continue
		}
		for _, entity := range entities {
			if b.placed(entity) || areaOf(entity, deviceArea) != areaID {
				continue
			}
			b.add(area.Label(), entity)
		}
	}
	for _, device := range devices {
		for _, entity := range entities {
			if b.placed(entity) || entity.DeviceRef() != device.ID {
				continue
			}
			b.add(device.DisplayName(), entity)
		}
	}
	for _, entity := range entities {
		if b.placed(entity) {
			continue
		}
		b.add(HumanizeDomain(entity.Domain()), entity)
	}
	return b.groups
}

func areaOf(entity types.Entity, deviceArea map[string]string) string {
	if area := entity.AreaRef(); area != "" {
		return area
	}
	if device := entity.DeviceRef(); device != "" {
		return deviceArea[device]
	}
	return ""
}

type groupBuilder struct {
	groups Groups
	index  map[string]int
	seen   map[string]struct{}
}

func newGroupBuilder(size int) *groupBuilder {
	return &groupBuilder{index: map[string]int{}, seen: make(map[string]struct{}, size)}
}

func (b *groupBuilder) placed(entity types.Entity) bool {
	_, ok := b.seen[entity.EntityID]
	return ok
}

func (b *groupBuilder) add(label string, entity types.Entity) {
	b.seen[entity.EntityID] = struct{}{}
	i, ok := b.index[label]
	if !ok {
		i = len(b.groups)
		b.index[label] = i
		b.groups = append(b.groups, Group{Label: label})
	}
	b.groups[i].Entities = append(b.groups[i].Entities, entity)
}

// Labels returns group labels in display order.
func (g Groups) Labels() []string {
	out := make([]string, 0, len(g))
	for _, group := range g {
		out = append(out, group.Label)
	}
	return out
}

// Len counts entities across all groups.
func (g Groups) Len() int {
	total := 0
	for _, group := range g {
		total += len(group.Entities)
	}
	return total
}

// HumanizeDomain turns "input_boolean" into "Input Boolean".
func HumanizeDomain(domain string) string {
	return titleCase(strings.ReplaceAll(domain, "_", " "))
}

// titleCase upper-cases a letter that follows a non-letter and lower-cases
// every other letter.
func titleCase(value string) string {
	var out strings.Builder
	out.Grow(len(value))
	prevLetter := false
	for _, r := range value {
		if unicode.IsLetter(r) {
			if prevLetter {
				out.WriteRune(unicode.ToLower(r))
			} else {
				out.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		out.WriteRune(r)
		prevLetter = false
	}
	return out.String()
}
