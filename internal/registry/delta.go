package registry

import (
	"math"
	"sort"
	"time"

	"hubview/internal/types"
)

// DeltaResult lists what one delta cycle did. Changed holds entity ids whose
// state was written, sorted.
type DeltaResult struct {
	Changed []string
	Skipped []string
}

// ApplyEvent applies one subscription event as a single batch. When the event
// carries additions, its changes are ignored for the cycle. Records without a
// state value, or with an empty one, are skipped.
func (r *Registry) ApplyEvent(event types.EntityEvent) DeltaResult {
	if !r.States.IsLoaded() {
		r.States = Loaded(map[string]types.State{})
	}
	states := r.States.Value()
	var result DeltaResult

	if len(event.Additions) > 0 {
		for entityID, diff := range event.Additions {
			if !hasState(diff.State) {
				result.Skipped = append(result.Skipped, entityID)
				continue
			}
			states[entityID] = stateFromAddition(entityID, diff)
			result.Changed = append(result.Changed, entityID)
		}
		return result.sorted()
	}

	for entityID, change := range event.Changes {
		if change.Set == nil || !hasState(change.Set.State) {
			result.Skipped = append(result.Skipped, entityID)
			continue
		}
		current, ok := states[entityID]
		if ok {
			current = current.Clone()
		} else {
			current = types.State{EntityID: entityID, Attributes: types.Attributes{}}
		}
		states[entityID] = mergeChange(current, change)
		result.Changed = append(result.Changed, entityID)
	}
	return result.sorted()
}

func hasState(value *string) bool {
	return value != nil && *value != ""
}

func stateFromAddition(entityID string, diff types.EntityDiff) types.State {
	value := *diff.State
	state := types.State{
		EntityID:   entityID,
		State:      &value,
		Attributes: types.Attributes(diff.Attributes).Clone(),
	}
	if diff.LastChanged != nil {
		state.LastChanged = epochTime(*diff.LastChanged)
		state.LastUpdated = state.LastChanged
	}
	if diff.LastUpdated != nil {
		state.LastUpdated = epochTime(*diff.LastUpdated)
	}
	return state
}

// mergeChange writes the changed fields over state. Attributes merge key by
// key; removed attribute keys are deleted.
func mergeChange(state types.State, change types.EntityChange) types.State {
	set := change.Set
	value := *set.State
	state.State = &value
	if state.Attributes == nil {
		state.Attributes = types.Attributes{}
	}
	for key, attr := range set.Attributes {
		state.Attributes[key] = attr
	}
	if change.Remove != nil {
		for _, key := range change.Remove.Attributes {
			delete(state.Attributes, key)
		}
	}
	if set.LastChanged != nil {
		state.LastChanged = epochTime(*set.LastChanged)
		state.LastUpdated = state.LastChanged
	}
	if set.LastUpdated != nil {
		state.LastUpdated = epochTime(*set.LastUpdated)
	}
	return state
}

func epochTime(seconds float64) time.Time {
	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC()
}

func (d DeltaResult) sorted() DeltaResult {
	sort.Strings(d.Changed)
	sort.Strings(d.Skipped)
	return d
}
