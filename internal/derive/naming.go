package derive

import (
	"strings"

	"hubview/internal/types"
)

// EntityName picks the label shown for an entity: its own name, then the
// device name joined with the integration's name, then a name derived from
// the entity id.
func EntityName(entity types.Entity, device *types.Device) string {
	if name := trimmed(entity.Name); name != "" {
		return name
	}
	original := trimmed(entity.OriginalName)
	if device == nil {
		if original != "" {
			return original
		}
		return prettifyEntityID(entity.EntityID, "")
	}
	deviceName := trimmed(device.NameByUser)
	if deviceName == "" {
		deviceName = trimmed(device.Name)
	}
	if original != "" && deviceName != "" {
		return deviceName + " " + original
	}
	return prettifyEntityID(entity.EntityID, deviceName)
}

// prettifyEntityID strips the device prefix from the object id and title
// cases what is left. An object id equal to the device name yields the device
// name itself.
func prettifyEntityID(entityID, deviceName string) string {
	_, object, found := strings.Cut(entityID, ".")
	if !found {
		object = entityID
	}
	if deviceName != "" {
		idified := strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(deviceName))
		if object == idified {
			return deviceName
		}
		object = strings.ReplaceAll(object, idified+"_", "")
	}
	return titleCase(strings.ReplaceAll(object, "_", " "))
}

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
