package view

import (
	"fmt"

	"hubview/internal/types"
)

type Action string

const (
	ActionPress  Action = "press"
	ActionToggle Action = "toggle"
)

var domainActions = map[string]Action{
	"button":        ActionPress,
	"input_button":  ActionPress,
	"light":         ActionToggle,
	"switch":        ActionToggle,
	"input_boolean": ActionToggle,
	"fan":           ActionToggle,
}

// Intent is a user request to act on one entity.
type Intent struct {
	EntityID string
	Action   Action
}

// ActionFor returns the action an entity supports, if any.
func ActionFor(entityID string) (Action, bool) {
	action, ok := domainActions[types.Domain(entityID)]
	return action, ok
}

// IntentFor builds the default intent for an entity.
func IntentFor(entityID string) (Intent, bool) {
	action, ok := ActionFor(entityID)
	if !ok {
		return Intent{}, false
	}
	return Intent{EntityID: entityID, Action: action}, true
}

// Service returns the hub service call for the intent. Actions the entity's
// domain does not support are rejected.
func (i Intent) Service() (domain, service string, err error) {
	domain = types.Domain(i.EntityID)
	supported, ok := domainActions[domain]
	if !ok {
		return "", "", fmt.Errorf("entity %s does not accept actions", i.EntityID)
	}
	if i.Action != supported {
		return "", "", fmt.Errorf("entity %s accepts %s, not %s", i.EntityID, supported, i.Action)
	}
	return domain, string(i.Action), nil
}
