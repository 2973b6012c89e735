package geometry

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/quadgl/internal/engine/gpu"
	"github.com/Faultbox/quadgl/internal/engine/gpu/gputest"
)

func TestValidateLayout(t *testing.T) {
	f := gpu.Float
	tests := []struct {
		name   string
		layout []Attribute
		ok     bool
	}{
		{"position color stride 24", PositionColorLayout(), true},
		{"empty", nil, false},
		{"overflows stride", []Attribute{{Location: 0, Components: 3, Type: f, Stride: 24, Offset: 16}}, false},
		{"exactly fills stride", []Attribute{{Location: 0, Components: 4, Type: f, Stride: 16, Offset: 0}}, true},
		{"zero stride", []Attribute{{Location: 0, Components: 3, Type: f, Stride: 0}}, false},
		{"five components", []Attribute{{Location: 0, Components: 5, Type: f, Stride: 20}}, false},
		{"negative offset", []Attribute{{Location: 0, Components: 1, Type: f, Stride: 4, Offset: -4}}, false},
		{"unknown type", []Attribute{{Location: 0, Components: 1, Type: gpu.ComponentType(42), Stride: 4}}, false},
		{"duplicate location", []Attribute{
			{Location: 1, Components: 3, Type: f, Stride: 24, Offset: 0},
			{Location: 1, Components: 3, Type: f, Stride: 24, Offset: 12},
		}, false},
		{"normalized bytes", []Attribute{
			{Location: 0, Components: 2, Type: f, Stride: 12, Offset: 0},
			{Location: 1, Components: 4, Type: gpu.UnsignedByte, Normalized: true, Stride: 12, Offset: 8},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLayout(tt.layout)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var le *LayoutError
			assert.True(t, errors.As(err, &le), "got %v", err)
		})
	}
}

func TestNewRejectsBadLayoutBeforeAllocating(t *testing.T) {
	dev := gputest.New()
	layout := []Attribute{{Location: 0, Components: 3, Type: gpu.Float, Stride: 8, Offset: 0}}

	b, err := New(dev, Float32Bytes(QuadVertices), QuadIndices, layout)
	require.Error(t, err)
	assert.Nil(t, b)

	var le *LayoutError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, 0, le.Index)
	assert.Empty(t, dev.Calls)
}

func TestNewRejectsOutOfRangeIndex(t *testing.T) {
	dev := gputest.New()

	_, err := New(dev, Float32Bytes(QuadVertices), []uint32{0, 1, 4}, PositionColorLayout())

	var ie *IndexRangeError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 2, ie.Position)
	assert.Equal(t, uint32(4), ie.Index)
	assert.Equal(t, 4, ie.VertexCount)
	assert.Empty(t, dev.Calls)
}

func TestNewRejectsEmpty(t *testing.T) {
	dev := gputest.New()

	_, err := New(dev, nil, QuadIndices, PositionColorLayout())
	assert.ErrorIs(t, err, ErrEmptyGeometry)

	_, err = New(dev, Float32Bytes(QuadVertices), nil, PositionColorLayout())
	assert.ErrorIs(t, err, ErrEmptyGeometry)
}

func TestNewQuadUploads(t *testing.T) {
	dev := gputest.New()

	b, err := NewQuad(dev)
	require.NoError(t, err)
	defer b.Release()

	assert.Equal(t, 4, b.VertexCount())
	assert.Equal(t, 6, b.IndexCount())
	assert.Equal(t, PositionColorLayout(), b.Layout())

	va := b.VertexArray()
	ebo := dev.ElementBuffer(va)
	require.NotZero(t, ebo)
	assert.Equal(t, Uint32Bytes(QuadIndices), dev.BufferContents(ebo))
	assert.Equal(t, gpu.StaticDraw, dev.Usages[ebo])

	attribs := dev.Attribs(va)
	require.Len(t, attribs, 2)
	assert.Equal(t, 0, attribs[0].Offset)
	assert.Equal(t, 12, attribs[1].Offset)
	for _, a := range attribs {
		assert.True(t, a.Enabled)
		assert.Equal(t, 24, a.Stride)
		assert.Equal(t, 3, a.Components)
		assert.Equal(t, Float32Bytes(QuadVertices), dev.BufferContents(a.Buffer))
		assert.Equal(t, gpu.StaticDraw, dev.Usages[a.Buffer])
	}

	// Construction leaves nothing bound.
	assert.Zero(t, dev.CurrentVertexArray())
	assert.Empty(t, dev.Faults)
}

func TestDrawQuadUsesFullIndexCount(t *testing.T) {
	dev := gputest.New()
	b, err := NewQuad(dev)
	require.NoError(t, err)
	defer b.Release()

	require.NoError(t, b.Bind())
	require.NoError(t, b.DrawAll(gpu.Triangles))
	require.NoError(t, b.Unbind())

	require.Len(t, dev.Draws, 1)
	draw := dev.Draws[0]
	assert.Equal(t, gpu.Triangles, draw.Mode)
	assert.Equal(t, len(QuadIndices), draw.Count)
	assert.Equal(t, 6, draw.Count, "two triangles")
	assert.Equal(t, b.VertexArray(), draw.VertexArray)
	assert.Zero(t, dev.CurrentVertexArray())
	assert.Empty(t, dev.Faults)
}

func TestFullGeometryDrawProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		vertices := 1 + rng.Intn(32)
		data := make([]float32, vertices*6)
		indices := make([]uint32, 1+rng.Intn(96))
		for j := range indices {
			indices[j] = uint32(rng.Intn(vertices))
		}

		dev := gputest.New()
		b, err := New(dev, Float32Bytes(data), indices, PositionColorLayout())
		require.NoError(t, err)
		require.NoError(t, b.Bind())
		require.NoError(t, b.DrawAll(gpu.Triangles))

		require.Len(t, dev.Draws, 1)
		require.Equal(t, len(indices), dev.Draws[0].Count, "case %d", i)
		require.Empty(t, dev.Faults)
		b.Release()
	}
}

func TestDrawRejectsBadCounts(t *testing.T) {
	if panicsOnMisuse() {
		t.Skip("built with gldebug")
	}
	dev := gputest.New()
	b, err := NewQuad(dev)
	require.NoError(t, err)
	defer b.Release()
	require.NoError(t, b.Bind())

	for _, count := range []int{0, -1, 7} {
		var de *DrawRangeError
		assert.True(t, errors.As(b.Draw(gpu.Triangles, count), &de), "count %d", count)
	}
	assert.Empty(t, dev.Draws)
}

func TestDrawRequiresBind(t *testing.T) {
	if panicsOnMisuse() {
		t.Skip("built with gldebug")
	}
	dev := gputest.New()
	b, err := NewQuad(dev)
	require.NoError(t, err)
	defer b.Release()

	assert.ErrorIs(t, b.DrawAll(gpu.Triangles), ErrNotBound)
	assert.Empty(t, dev.Draws)
}

func TestReleaseIdempotent(t *testing.T) {
	if panicsOnMisuse() {
		t.Skip("built with gldebug")
	}
	dev := gputest.New()
	b, err := NewQuad(dev)
	require.NoError(t, err)
	require.NoError(t, b.Bind())

	b.Release()
	b.Release()

	assert.Equal(t, 0, dev.LiveBuffers())
	assert.Equal(t, 0, dev.LiveVertexArrays())
	for h, n := range dev.Deleted {
		assert.Equal(t, 1, n, "handle %d", h)
	}
	assert.Len(t, dev.Deleted, 3)
	assert.Empty(t, dev.Faults)

	assert.ErrorIs(t, b.Bind(), gpu.ErrUseAfterRelease)
	assert.ErrorIs(t, b.Unbind(), gpu.ErrUseAfterRelease)
	assert.ErrorIs(t, b.Draw(gpu.Triangles, 6), gpu.ErrUseAfterRelease)
	assert.ErrorIs(t, b.DrawAll(gpu.Triangles), gpu.ErrUseAfterRelease)
	assert.Zero(t, b.VertexArray())
}

func TestFloat32Bytes(t *testing.T) {
	b := Float32Bytes([]float32{1, -2.5})
	require.Len(t, b, 8)
	assert.Equal(t, Float32Bytes([]float32{1}), b[:4])
	assert.Empty(t, Float32Bytes(nil))
	assert.Len(t, Uint32Bytes([]uint32{1, 2, 3}), 12)
}

func panicsOnMisuse() (panics bool) {
	defer func() {
		if recover() != nil {
			panics = true
		}
	}()
	_ = gpu.Misuse(errors.New("probe"))
	return false
}
