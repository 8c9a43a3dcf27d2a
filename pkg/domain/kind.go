package domain

import "fmt"

// Kind is the closed set of entity kinds. It is assigned when the entity is created
// and never inferred from visual properties.
type Kind string

const (
	KindShape      Kind = "shape"       // Free-form shape (rect, circle, line, arrow)
	KindText       Kind = "text"        // Free text annotation
	KindImage      Kind = "image"       // Placed raster image (not the background)
	KindDevice     Kind = "device"      // Composite device (icon + per-field attributes)
	KindZone       Kind = "zone"        // Region polygon listed in the zones registry
	KindRoom       Kind = "room"        // Region polygon listed in the rooms registry
	KindTitleBlock Kind = "title_block" // Title block frame listed in its own registry
	KindWallNode   Kind = "wall_node"   // Wall graph vertex
	KindWallEdge   Kind = "wall_edge"   // Wall graph segment between two vertices
	KindLabel      Kind = "label"       // Label owned by a device or a region
	KindOverlay    Kind = "overlay"     // Derived coverage overlay owned by a device
	KindHandle     Kind = "handle"      // Resize/rotate affordance owned by an entity
	KindBackground Kind = "background"  // Imported background image
	KindGuide      Kind = "guide"       // Construction preview used mid-draw
	KindAggregate  Kind = "aggregate"   // Drawing-mode aggregate (line+text, line+triangle)
)

var allKinds = []Kind{
	KindShape, KindText, KindImage, KindDevice,
	KindZone, KindRoom, KindTitleBlock,
	KindWallNode, KindWallEdge,
	KindLabel, KindOverlay, KindHandle, KindBackground, KindGuide, KindAggregate,
}

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// ParseKind converts a kind name into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range allKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	_, err := ParseKind(string(k))
	return err == nil
}

// IsRegion reports whether the kind is a polygon region with an associated label.
func (k Kind) IsRegion() bool {
	switch k {
	case KindZone, KindRoom, KindTitleBlock:
		return true
	}
	return false
}

// Registry returns the registry a kind must be listed in while present in the scene.
func (k Kind) Registry() (RegistryName, bool) {
	switch k {
	case KindDevice:
		return RegistryDevices, true
	case KindZone:
		return RegistryZones, true
	case KindRoom:
		return RegistryRooms, true
	case KindTitleBlock:
		return RegistryTitleBlocks, true
	case KindShape, KindText, KindImage, KindWallNode, KindWallEdge,
		KindLabel, KindOverlay, KindHandle, KindBackground, KindGuide, KindAggregate:
		return "", false
	}
	return "", false
}

// IsDerived reports whether entities of this kind always travel as related entities
// of another one and are never the primary of a tracked command.
func (k Kind) IsDerived() bool {
	switch k {
	case KindLabel, KindOverlay, KindHandle:
		return true
	}
	return false
}

// IsTransient reports whether entities of this kind are never subject to history.
func (k Kind) IsTransient() bool {
	switch k {
	case KindOverlay, KindHandle, KindBackground, KindGuide:
		return true
	}
	return false
}

// HasLabel reports whether entities of this kind carry an associated label entity.
func (k Kind) HasLabel() bool {
	return k == KindDevice || k.IsRegion()
}
