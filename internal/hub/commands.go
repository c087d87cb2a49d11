package hub

const (
	CommandGetConfig         = "get_config"
	CommandGetIcons          = "frontend/get_icons"
	CommandListEntities      = "config/entity_registry/list"
	CommandListAreas         = "config/area_registry/list"
	CommandListDevices       = "config/device_registry/list"
	CommandGetStates         = "get_states"
	CommandSubscribeEntities = "subscribe_entities"
	CommandCallService       = "call_service"
)

const (
	IconCategoryEntityComponent = "entity_component"
	IconCategoryEntity          = "entity"
)

func GetConfig() Command {
	return Command{Type: CommandGetConfig}
}

// GetIcons asks for the icon catalog of one category, optionally scoped to
// an integration.
func GetIcons(category, integration string) Command {
	fields := map[string]any{"category": category}
	if integration != "" {
		fields["integration"] = integration
	}
	return Command{Type: CommandGetIcons, Fields: fields}
}

func ListEntities() Command {
	return Command{Type: CommandListEntities}
}

func ListAreas() Command {
	return Command{Type: CommandListAreas}
}

func ListDevices() Command {
	return Command{Type: CommandListDevices}
}

func GetStates() Command {
	return Command{Type: CommandGetStates}
}

func SubscribeEntities(entityIDs []string) Command {
	ids := append([]string{}, entityIDs...)
	return Command{
		Type:   CommandSubscribeEntities,
		Fields: map[string]any{"include": map[string]any{"entities": ids}},
	}
}

// CallService targets a single entity with an empty service_data payload.
func CallService(domain, service, entityID string) Command {
	return Command{
		Type: CommandCallService,
		Fields: map[string]any{
			"domain":       domain,
			"service":      service,
			"service_data": map[string]any{},
			"target":       map[string]any{"entity_id": entityID},
		},
	}
}
