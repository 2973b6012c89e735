package geometry

import (
	"fmt"

	"github.com/Faultbox/quadgl/internal/engine/gpu"
)

// Attribute describes one vertex shader input inside the interleaved vertex store.
type Attribute struct {
	Location   uint32
	Components int
	Type       gpu.ComponentType
	Normalized bool
	Stride     int // bytes between consecutive vertices
	Offset     int // bytes from the start of a vertex
}

// Size returns the byte size of one attribute value.
func (a Attribute) Size() int {
	return a.Components * a.Type.Size()
}

// LayoutError reports the first attribute of a layout that cannot be recorded.
type LayoutError struct {
	Index     int
	Attribute Attribute
	Reason    string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("invalid vertex layout: attribute %d (location %d): %s", e.Index, e.Attribute.Location, e.Reason)
}

// ValidateLayout checks that every attribute fits inside its stride and that
// locations are unique.
func ValidateLayout(layout []Attribute) error {
	if len(layout) == 0 {
		return &LayoutError{Index: -1, Reason: "layout has no attributes"}
	}

	seen := make(map[uint32]bool, len(layout))
	for i, a := range layout {
		fail := func(format string, args ...any) error {
			return &LayoutError{Index: i, Attribute: a, Reason: fmt.Sprintf(format, args...)}
		}
		switch {
		case a.Components < 1 || a.Components > 4:
			return fail("component count %d outside 1..4", a.Components)
		case a.Type.Size() == 0:
			return fail("unknown component type %d", int(a.Type))
		case a.Stride <= 0:
			return fail("stride %d must be positive", a.Stride)
		case a.Offset < 0:
			return fail("negative offset %d", a.Offset)
		case a.Offset+a.Size() > a.Stride:
			return fail("offset %d + size %d exceeds stride %d", a.Offset, a.Size(), a.Stride)
		case seen[a.Location]:
			return fail("duplicate location")
		}
		seen[a.Location] = true
	}
	return nil
}

// vertexCount is the number of whole vertices every attribute can address.
func vertexCount(vertexBytes int, layout []Attribute) int {
	count := -1
	for _, a := range layout {
		if n := vertexBytes / a.Stride; count < 0 || n < count {
			count = n
		}
	}
	if count < 0 {
		return 0
	}
	return count
}
