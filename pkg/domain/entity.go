package domain

import "maps"

// EntityID identifies an entity in the scene. Identity, not value, is what registries
// and commands key on.
type EntityID string

// Point is a scene coordinate.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Entity is a scene object. It carries semantic attributes only; rendering state is
// owned by the host canvas.
//
// Relations to other entities are non-owning ID references (Owner, Label, Endpoints).
// The scene governs lifetime, so an entity never keeps another one alive.
type Entity struct {
	ID   EntityID `json:"id"`
	Kind Kind     `json:"kind"`

	// Transient is set by the inserting tool for previews and helpers that must never
	// reach the history.
	Transient bool `json:"transient,omitempty"`

	// Finalized is false while a region polygon is still being drawn.
	Finalized bool `json:"finalized"`

	Position Point   `json:"position"`
	Points   []Point `json:"points,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
	Angle    float64 `json:"angle,omitempty"`
	Hidden   bool    `json:"hidden,omitempty"`

	// Text is the displayed text of text entities and labels.
	Text string `json:"text,omitempty"`

	// LabelText is the stored label of devices and regions, used to synthesize a
	// replacement label when the label entity is missing.
	LabelText string `json:"label_text,omitempty"`

	// Fields holds per-field device attributes (model, channel, range, ...).
	Fields map[string]string `json:"fields,omitempty"`

	// Coverage marks the entity as coverage-bearing: it owns a derived overlay that is
	// recomputed after structural changes.
	Coverage bool `json:"coverage,omitempty"`

	Owner     EntityID    `json:"owner,omitempty"`     // Owning entity of a label, overlay or handle
	Label     EntityID    `json:"label,omitempty"`     // Associated label of a device or region
	Endpoints [2]EntityID `json:"endpoints,omitempty"` // Wall nodes joined by a wall edge
}

// Field returns a per-field attribute or the empty string.
func (e *Entity) Field(name string) string {
	if e.Fields == nil {
		return ""
	}
	return e.Fields[name]
}

// SetField sets a per-field attribute.
func (e *Entity) SetField(name, value string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[name] = value
}

// Copy returns a detached value copy of the entity, suitable for snapshots.
func (e *Entity) Copy() Entity {
	out := *e
	if e.Points != nil {
		out.Points = append([]Point(nil), e.Points...)
	}
	out.Fields = maps.Clone(e.Fields)
	return out
}

// Opposite returns the endpoint of a wall edge that is not node.
func (e *Entity) Opposite(node EntityID) (EntityID, bool) {
	switch node {
	case e.Endpoints[0]:
		return e.Endpoints[1], true
	case e.Endpoints[1]:
		return e.Endpoints[0], true
	}
	return "", false
}

// IDs extracts the identities of a list of entities.
func IDs(entities []*Entity) []EntityID {
	ids := make([]EntityID, 0, len(entities))
	for _, e := range entities {
		if e != nil {
			ids = append(ids, e.ID)
		}
	}
	return ids
}
