// Package geometry uploads indexed vertex data to the GPU and draws it.
package geometry

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/quadgl/internal/engine/gpu"
	"github.com/Faultbox/quadgl/internal/logger"
)

var (
	// ErrEmptyGeometry is returned when there are no vertices or no indices.
	ErrEmptyGeometry = errors.New("geometry: no vertices or indices")

	// ErrNotBound is reported when drawing while another vertex array is bound.
	ErrNotBound = errors.New("geometry: buffer is not bound")
)

// IndexRangeError reports an index that addresses a vertex past the vertex store.
type IndexRangeError struct {
	Position    int
	Index       uint32
	VertexCount int
}

func (e *IndexRangeError) Error() string {
	return fmt.Sprintf("geometry: index %d at position %d out of range for %d vertices", e.Index, e.Position, e.VertexCount)
}

// DrawRangeError reports a draw count outside 1..IndexCount.
type DrawRangeError struct {
	Count      int
	IndexCount int
}

func (e *DrawRangeError) Error() string {
	return fmt.Sprintf("geometry: draw of %d indices, buffer holds %d", e.Count, e.IndexCount)
}

// Buffer owns a vertex store, an index store and the vertex array recording the
// attribute layout. It is not safe for concurrent use.
type Buffer struct {
	dev         gpu.Device
	vao         gpu.VertexArrayHandle
	vbo         gpu.BufferHandle
	ebo         gpu.BufferHandle
	layout      []Attribute
	vertexCount int
	indexCount  int
	released    bool
	log         *zap.Logger
}

// New validates the layout and indices, then uploads vertices and indices with a
// static usage hint and records layout in a new vertex array.
// Nothing is allocated on the GPU unless validation passes.
func New(dev gpu.Device, vertices []byte, indices []uint32, layout []Attribute) (*Buffer, error) {
	if err := ValidateLayout(layout); err != nil {
		return nil, err
	}
	if len(vertices) == 0 || len(indices) == 0 {
		return nil, ErrEmptyGeometry
	}
	vcount := vertexCount(len(vertices), layout)
	for i, idx := range indices {
		if int64(idx) >= int64(vcount) {
			return nil, &IndexRangeError{Position: i, Index: idx, VertexCount: vcount}
		}
	}

	b := &Buffer{
		dev:         dev,
		layout:      append([]Attribute(nil), layout...),
		vertexCount: vcount,
		indexCount:  len(indices),
		log:         logger.Named("geometry"),
	}
	if err := b.upload(vertices, indices); err != nil {
		b.Release()
		return nil, err
	}

	b.log.Debug("geometry buffer created",
		zap.Uint32("vao", uint32(b.vao)),
		zap.Uint32("vbo", uint32(b.vbo)),
		zap.Uint32("ebo", uint32(b.ebo)),
		zap.Int("vertices", b.vertexCount),
		zap.Int("indices", b.indexCount),
	)
	return b, nil
}

func (b *Buffer) upload(vertices []byte, indices []uint32) error {
	if b.vao = b.dev.CreateVertexArray(); b.vao == 0 {
		return errors.New("geometry: allocating vertex array")
	}
	// The vertex array must be bound before the index store so it captures it.
	b.dev.BindVertexArray(b.vao)

	if b.vbo = b.dev.CreateBuffer(); b.vbo == 0 {
		return errors.New("geometry: allocating vertex store")
	}
	b.dev.BindBuffer(gpu.ArrayBuffer, b.vbo)
	b.dev.BufferData(gpu.ArrayBuffer, vertices, gpu.StaticDraw)

	if b.ebo = b.dev.CreateBuffer(); b.ebo == 0 {
		return errors.New("geometry: allocating index store")
	}
	b.dev.BindBuffer(gpu.ElementArrayBuffer, b.ebo)
	b.dev.BufferData(gpu.ElementArrayBuffer, Uint32Bytes(indices), gpu.StaticDraw)

	for _, a := range b.layout {
		b.dev.VertexAttribPointer(a.Location, a.Components, a.Type, a.Normalized, a.Stride, a.Offset)
		b.dev.EnableVertexAttribArray(a.Location)
	}

	b.dev.BindBuffer(gpu.ArrayBuffer, 0)
	b.dev.BindVertexArray(0)
	return nil
}

// IndexCount returns the number of indices uploaded.
func (b *Buffer) IndexCount() int { return b.indexCount }

// VertexCount returns the number of vertices the layout addresses.
func (b *Buffer) VertexCount() int { return b.vertexCount }

// Layout returns a copy of the attribute layout.
func (b *Buffer) Layout() []Attribute {
	return append([]Attribute(nil), b.layout...)
}

// VertexArray returns the vertex array handle, or 0 after Release.
func (b *Buffer) VertexArray() gpu.VertexArrayHandle { return b.vao }

// Bind makes the buffer's vertex array current.
func (b *Buffer) Bind() error {
	if b.released {
		return gpu.Misuse(fmt.Errorf("geometry: bind: %w", gpu.ErrUseAfterRelease))
	}
	b.dev.BindVertexArray(b.vao)
	return nil
}

// Unbind clears the vertex array binding.
func (b *Buffer) Unbind() error {
	if b.released {
		return gpu.Misuse(fmt.Errorf("geometry: unbind: %w", gpu.ErrUseAfterRelease))
	}
	b.dev.BindVertexArray(0)
	return nil
}

// Draw issues an indexed draw of the first count indices. The buffer must be bound
// and count must be within 1..IndexCount.
func (b *Buffer) Draw(kind gpu.Primitive, count int) error {
	if b.released {
		return gpu.Misuse(fmt.Errorf("geometry: draw: %w", gpu.ErrUseAfterRelease))
	}
	if count <= 0 || count > b.indexCount {
		return gpu.Misuse(&DrawRangeError{Count: count, IndexCount: b.indexCount})
	}
	if b.dev.CurrentVertexArray() != b.vao {
		return gpu.Misuse(ErrNotBound)
	}
	b.dev.DrawElements(kind, count, 0)
	return nil
}

// DrawAll draws every uploaded index.
func (b *Buffer) DrawAll(kind gpu.Primitive) error {
	return b.Draw(kind, b.indexCount)
}

// Release deletes the vertex array and both stores. Calling it again does nothing.
func (b *Buffer) Release() {
	if b.released {
		return
	}
	b.released = true

	if b.vao != 0 && b.dev.CurrentVertexArray() == b.vao {
		b.dev.BindVertexArray(0)
	}
	if b.vao != 0 {
		b.dev.DeleteVertexArray(b.vao)
		b.vao = 0
	}
	if b.vbo != 0 {
		b.dev.DeleteBuffer(b.vbo)
		b.vbo = 0
	}
	if b.ebo != 0 {
		b.dev.DeleteBuffer(b.ebo)
		b.ebo = 0
	}
	b.log.Debug("geometry buffer released")
}
