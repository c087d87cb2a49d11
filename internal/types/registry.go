package types

import (
	"strings"
	"time"
)

// Entity is one row of the hub's entity registry.
type Entity struct {
	EntityID       string  `json:"entity_id"`
	ID             string  `json:"id,omitempty"`
	DeviceID       *string `json:"device_id"`
	AreaID         *string `json:"area_id"`
	Name           *string `json:"name"`
	OriginalName   *string `json:"original_name"`
	Icon           *string `json:"icon"`
	DisabledBy     *string `json:"disabled_by"`
	HiddenBy       *string `json:"hidden_by"`
	EntityCategory *string `json:"entity_category"`
	Platform       string  `json:"platform"`
	TranslationKey *string `json:"translation_key"`
}

func (e Entity) Domain() string {
	return Domain(e.EntityID)
}

// ObjectID returns the part of the entity id after the domain.
func (e Entity) ObjectID() string {
	_, object, _ := strings.Cut(e.EntityID, ".")
	return object
}

func (e Entity) DeviceRef() string {
	return deref(e.DeviceID)
}

func (e Entity) AreaRef() string {
	return deref(e.AreaID)
}

func (e Entity) IconOverride() string {
	return strings.TrimSpace(deref(e.Icon))
}

func (e Entity) Category() string {
	return deref(e.EntityCategory)
}

func (e Entity) Hidden() bool {
	return deref(e.HiddenBy) != ""
}

func (e Entity) Disabled() bool {
	return deref(e.DisabledBy) != ""
}

type Device struct {
	ID         string  `json:"id"`
	AreaID     *string `json:"area_id"`
	Name       *string `json:"name"`
	NameByUser *string `json:"name_by_user"`
}

func (d Device) AreaRef() string {
	return deref(d.AreaID)
}

// DisplayName prefers the user-assigned name, then the integration name,
// then the device id.
func (d Device) DisplayName() string {
	if name := strings.TrimSpace(deref(d.NameByUser)); name != "" {
		return name
	}
	if name := strings.TrimSpace(deref(d.Name)); name != "" {
		return name
	}
	return d.ID
}

type Area struct {
	AreaID *string `json:"area_id"`
	Name   string  `json:"name"`
}

func (a Area) Ref() string {
	return deref(a.AreaID)
}

// Label returns the area name, falling back to its id.
func (a Area) Label() string {
	if name := strings.TrimSpace(a.Name); name != "" {
		return name
	}
	return a.Ref()
}

type State struct {
	EntityID    string     `json:"entity_id"`
	State       *string    `json:"state"`
	Attributes  Attributes `json:"attributes"`
	LastChanged time.Time  `json:"last_changed"`
	LastUpdated time.Time  `json:"last_updated"`
}

// Value reports the raw state string and whether one is present.
func (s State) Value() (string, bool) {
	if s.State == nil {
		return "", false
	}
	return *s.State, true
}

// Clone returns a copy whose attribute map can be mutated independently.
func (s State) Clone() State {
	out := s
	if s.State != nil {
		value := *s.State
		out.State = &value
	}
	out.Attributes = s.Attributes.Clone()
	return out
}

type Config struct {
	Version      string   `json:"version"`
	LocationName string   `json:"location_name"`
	TimeZone     string   `json:"time_zone"`
	Components   []string `json:"components"`
}

// IconResource is the icon bundle for one resource type of a domain.
type IconResource struct {
	Default string            `json:"default"`
	State   map[string]string `json:"state,omitempty"`
}

// IconResources maps a resource type to its bundle. For a domain, "_" is the
// default and other keys are device classes; for an integration's entities,
// keys are translation keys.
type IconResources map[string]IconResource

// DomainIcons maps a domain to its icon resources.
type DomainIcons map[string]IconResources

// EntityIcons maps an integration to its domains' translation-key bundles.
type EntityIcons map[string]DomainIcons

// IconCatalog holds both frontend/get_icons catalogs: the entity_component
// bundles per domain and the entity bundles per integration.
type IconCatalog struct {
	Domains  DomainIcons
	Entities EntityIcons
}

// Entity returns the bundle an integration registered for the entity's
// translation key.
func (c IconCatalog) Entity(entity Entity) (IconResource, bool) {
	key := deref(entity.TranslationKey)
	if key == "" || entity.Platform == "" {
		return IconResource{}, false
	}
	bundle, ok := c.Entities[entity.Platform][entity.Domain()][key]
	return bundle, ok
}

const DefaultIconResource = "_"

// ComponentIconsResult is the reply to a get_icons request for the
// entity_component category: domain, then resource type.
type ComponentIconsResult struct {
	Resources DomainIcons `json:"resources"`
}

// EntityIconsResult is the reply to a get_icons request for the entity
// category: integration, then domain, then translation key.
type EntityIconsResult struct {
	Resources EntityIcons `json:"resources"`
}

// Domain returns the prefix of an entity id before the first dot.
func Domain(entityID string) string {
	domain, _, _ := strings.Cut(entityID, ".")
	return domain
}

// StringPtr is a convenience for building registry rows in code and tests.
func StringPtr(value string) *string {
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
