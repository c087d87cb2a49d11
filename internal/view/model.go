package view

import (
	"errors"
	"time"

	"hubview/internal/derive"
	"hubview/internal/icons"
	"hubview/internal/registry"
	"hubview/internal/types"
)

// Entity is one rendered row.
type Entity struct {
	EntityID    string
	Name        string
	Glyph       string
	Icon        derive.IconStyle
	StateRaw    string
	State       string
	Class       derive.DisplayClass
	Action      Action
	LastChanged time.Time
}

type Group struct {
	Label    string
	Entities []Entity
}

// Model is an immutable snapshot of the display. Patch returns a new Model
// and never mutates the receiver, so a Model can be shared across goroutines.
type Model struct {
	Groups  []Group
	Version int
	index   map[string]position
}

type position struct {
	group int
	row   int
}

func (m Model) Entity(entityID string) (Entity, bool) {
	pos, ok := m.index[entityID]
	if !ok {
		return Entity{}, false
	}
	return m.Groups[pos.group].Entities[pos.row], true
}

// Len counts rows across groups.
func (m Model) Len() int {
	return len(m.index)
}

func (m Model) Empty() bool {
	return len(m.Groups) == 0
}

// Builder derives Models from a registry.
type Builder struct {
	resolver *icons.Resolver
}

func NewBuilder(resolver *icons.Resolver) *Builder {
	if resolver == nil {
		resolver = icons.NewResolver(icons.Options{})
	}
	return &Builder{resolver: resolver}
}

// Build derives the full model. The registry must be fully loaded.
func (b *Builder) Build(reg *registry.Registry) (Model, error) {
	if !reg.Ready() {
		return Model{}, errors.New("registry is not loaded")
	}
	grouped := derive.GroupEntities(reg.Areas.Value(), reg.Devices.Value(), reg.Entities.Value())
	model := Model{
		Groups:  make([]Group, 0, len(grouped)),
		Version: 1,
		index:   make(map[string]position, grouped.Len()),
	}
	for gi, group := range grouped {
		rows := make([]Entity, 0, len(group.Entities))
		for ri, entity := range group.Entities {
			row, err := b.entity(reg, entity)
			if err != nil {
				return Model{}, err
			}
			rows = append(rows, row)
			model.index[entity.EntityID] = position{group: gi, row: ri}
		}
		model.Groups = append(model.Groups, Group{Label: group.Label, Entities: rows})
	}
	return model, nil
}

// Patch re-derives the rows for entityIDs. Ids not in the model are ignored.
// Groups without changes are shared with the previous model.
func (b *Builder) Patch(model Model, reg *registry.Registry, entityIDs []string) (Model, error) {
	next := Model{
		Groups:  append([]Group(nil), model.Groups...),
		Version: model.Version,
		index:   model.index,
	}
	copied := map[int]bool{}
	changed := false
	for _, entityID := range entityIDs {
		pos, ok := model.index[entityID]
		if !ok {
			continue
		}
		entity, ok := reg.Entity(entityID)
		if !ok {
			continue
		}
		row, err := b.entity(reg, entity)
		if err != nil {
			return model, err
		}
		if !copied[pos.group] {
			group := next.Groups[pos.group]
			group.Entities = append([]Entity(nil), group.Entities...)
			next.Groups[pos.group] = group
			copied[pos.group] = true
		}
		next.Groups[pos.group].Entities[pos.row] = row
		changed = true
	}
	if !changed {
		return model, nil
	}
	next.Version++
	return next, nil
}

func (b *Builder) entity(reg *registry.Registry, entity types.Entity) (Entity, error) {
	var state *types.State
	if current, ok := reg.State(entity.EntityID); ok {
		state = &current
	}
	glyph, err := b.resolver.Glyph(entity, state, reg.Icons.Value())
	if err != nil {
		return Entity{}, err
	}
	var device *types.Device
	if owner, ok := reg.DeviceOf(entity); ok {
		device = &owner
	}
	rendered := derive.RenderEntityState(entity.EntityID, state)
	row := Entity{
		EntityID: entity.EntityID,
		Name:     derive.EntityName(entity, device),
		Glyph:    glyph,
		Icon:     derive.StyleIcon(state),
		State:    rendered,
		Class:    derive.StateDisplayClass(rendered),
	}
	if action, ok := ActionFor(entity.EntityID); ok {
		row.Action = action
	}
	if state != nil {
		row.StateRaw, _ = state.Value()
		row.LastChanged = state.LastChanged
	}
	return row, nil
}
