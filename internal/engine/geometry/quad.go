package geometry

import "github.com/Faultbox/quadgl/internal/engine/gpu"

// QuadVertices holds four vertices of position (x, y, z) followed by color (r, g, b).
var QuadVertices = []float32{
	// Position        // Color
	0.5, 0.5, 0.0, 1.0, 0.0, 0.0, // top right
	0.5, -0.5, 0.0, 0.0, 1.0, 0.0, // bottom right
	-0.5, -0.5, 0.0, 1.0, 1.0, 1.0, // bottom left
	-0.5, 0.5, 0.0, 0.0, 0.0, 1.0, // top left
}

// QuadIndices splits the quad into two triangles.
var QuadIndices = []uint32{
	0, 1, 3,
	1, 2, 3,
}

// PositionColorLayout is three float position components at location 0 and three
// float color components at location 1, interleaved with a 24 byte stride.
func PositionColorLayout() []Attribute {
	const stride = 6 * 4
	return []Attribute{
		{Location: 0, Components: 3, Type: gpu.Float, Stride: stride, Offset: 0},
		{Location: 1, Components: 3, Type: gpu.Float, Stride: stride, Offset: 3 * 4},
	}
}

// NewQuad uploads the colored quad.
func NewQuad(dev gpu.Device) (*Buffer, error) {
	return New(dev, Float32Bytes(QuadVertices), QuadIndices, PositionColorLayout())
}
