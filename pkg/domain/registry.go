package domain

import "maps"

// RegistryName names one of the external collections kept in sync with the scene.
type RegistryName string

const (
	RegistryDevices     RegistryName = "devices"
	RegistryZones       RegistryName = "zones"
	RegistryRooms       RegistryName = "rooms"
	RegistryTitleBlocks RegistryName = "title_blocks"
)

// Registries lists every registry a workspace maintains.
func Registries() []RegistryName {
	return []RegistryName{RegistryDevices, RegistryZones, RegistryRooms, RegistryTitleBlocks}
}

// Record is a registry entry. Registries are keyed by EntityID; the remaining fields
// are the bookkeeping a layer list or sidebar shows for the entity.
type Record struct {
	EntityID EntityID          `json:"entity_id"`
	Kind     Kind              `json:"kind"`
	Name     string            `json:"name,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// NewRecord builds the registry record describing e.
func NewRecord(e *Entity) Record {
	name := e.LabelText
	if name == "" {
		name = e.Text
	}
	return Record{
		EntityID: e.ID,
		Kind:     e.Kind,
		Name:     name,
		Fields:   maps.Clone(e.Fields),
	}
}
