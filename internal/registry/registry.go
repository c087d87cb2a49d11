package registry

import (
	"hubview/internal/types"
)

// Registry is the in-memory copy of the hub's tables. It is owned by a single
// goroutine and is not safe for concurrent use.
type Registry struct {
	Config   Section[types.Config]
	Icons    Section[types.IconCatalog]
	Entities Section[[]types.Entity]
	Areas    Section[[]types.Area]
	Devices  Section[[]types.Device]
	States   Section[map[string]types.State]

	entityIndex map[string]int
	deviceIndex map[string]int
}

func New() *Registry {
	return &Registry{
		entityIndex: map[string]int{},
		deviceIndex: map[string]int{},
	}
}

func (r *Registry) SetConfig(cfg types.Config) {
	r.Config = Loaded(cfg)
}

func (r *Registry) SetIcons(catalog types.IconCatalog) {
	r.Icons = Loaded(catalog)
}

func (r *Registry) SetEntities(entities []types.Entity) {
	r.entityIndex = make(map[string]int, len(entities))
	for i, entity := range entities {
		r.entityIndex[entity.EntityID] = i
	}
	r.Entities = Loaded(entities)
}

func (r *Registry) SetAreas(areas []types.Area) {
	r.Areas = Loaded(areas)
}

func (r *Registry) SetDevices(devices []types.Device) {
	r.deviceIndex = make(map[string]int, len(devices))
	for i, device := range devices {
		r.deviceIndex[device.ID] = i
	}
	r.Devices = Loaded(devices)
}

// SetStates replaces every state with the snapshot list.
func (r *Registry) SetStates(states []types.State) {
	byID := make(map[string]types.State, len(states))
	for _, state := range states {
		if state.EntityID == "" {
			continue
		}
		byID[state.EntityID] = state
	}
	r.States = Loaded(byID)
}

// Ready reports whether every table has been loaded.
func (r *Registry) Ready() bool {
	return r.Config.IsLoaded() && r.Icons.IsLoaded() && r.Entities.IsLoaded() &&
		r.Areas.IsLoaded() && r.Devices.IsLoaded() && r.States.IsLoaded()
}

func (r *Registry) Entity(entityID string) (types.Entity, bool) {
	i, ok := r.entityIndex[entityID]
	if !ok {
		return types.Entity{}, false
	}
	return r.Entities.Value()[i], true
}

func (r *Registry) Device(deviceID string) (types.Device, bool) {
	if deviceID == "" {
		return types.Device{}, false
	}
	i, ok := r.deviceIndex[deviceID]
	if !ok {
		return types.Device{}, false
	}
	return r.Devices.Value()[i], true
}

// DeviceOf returns the device owning entity, if any.
func (r *Registry) DeviceOf(entity types.Entity) (types.Device, bool) {
	return r.Device(entity.DeviceRef())
}

func (r *Registry) State(entityID string) (types.State, bool) {
	state, ok := r.States.Value()[entityID]
	return state, ok
}

// EntityIDs lists visible entity ids in registry order.
func (r *Registry) EntityIDs() []string {
	entities := r.Entities.Value()
	ids := make([]string, 0, len(entities))
	for _, entity := range entities {
		ids = append(ids, entity.EntityID)
	}
	return ids
}
