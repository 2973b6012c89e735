package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/quadgl/internal/engine/geometry"
	"github.com/Faultbox/quadgl/internal/engine/gpu"
	"github.com/Faultbox/quadgl/internal/engine/gpu/gputest"
	"github.com/Faultbox/quadgl/internal/engine/shader"
)

func TestQuadFrame(t *testing.T) {
	dev := gputest.New()
	r := New(dev, Config{Width: 800, Height: 600, ClearColor: [4]float32{0.2, 0.3, 0.3, 1}})

	prog, err := shader.New(dev, shader.Builtin())
	require.NoError(t, err)
	defer prog.Release()

	quad, err := geometry.NewQuad(dev)
	require.NoError(t, err)
	defer quad.Release()

	dev.Calls = nil
	r.Begin()
	require.NoError(t, r.Draw(prog, quad))

	require.Len(t, dev.Draws, 1)
	draw := dev.Draws[0]
	assert.Equal(t, gpu.Triangles, draw.Mode)
	assert.Equal(t, 6, draw.Count)
	assert.Equal(t, prog.Handle(), draw.Program)
	assert.Equal(t, quad.VertexArray(), draw.VertexArray)
	assert.Zero(t, dev.CurrentVertexArray())

	assert.Equal(t, []string{"Clear", "UseProgram", "BindVertexArray", "DrawElements", "BindVertexArray"},
		withoutQueries(dev.Calls))
	assert.Empty(t, dev.Faults)
}

func TestInvalidProgramSkipsDraw(t *testing.T) {
	dev := gputest.New()
	r := New(dev, Config{Width: 800, Height: 600})

	prog, err := shader.New(dev, shader.Strings(shader.QuadVertex, "#version 330 core\nvoid main() {"))
	require.Error(t, err)

	quad, err := geometry.NewQuad(dev)
	require.NoError(t, err)
	defer quad.Release()

	r.Begin()
	assert.NoError(t, r.Draw(prog, quad))
	assert.Empty(t, dev.Draws)
}

func TestResizeAndWireframe(t *testing.T) {
	dev := gputest.New()
	r := New(dev, Config{Width: 800, Height: 600, Wireframe: true})

	assert.Equal(t, [4]int{0, 0, 800, 600}, dev.ViewportRect())
	assert.Equal(t, gpu.Line, dev.PolygonMode())
	assert.True(t, r.Wireframe())

	r.Resize(1024, 768)
	assert.Equal(t, [4]int{0, 0, 1024, 768}, dev.ViewportRect())
	w, h := r.Size()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 768, h)

	r.SetWireframe(false)
	assert.Equal(t, gpu.Fill, dev.PolygonMode())
}

// withoutQueries drops state reads so the sequence shows only commands.
func withoutQueries(calls []string) []string {
	var out []string
	for _, c := range calls {
		switch c {
		case "CurrentProgram", "CurrentVertexArray":
			continue
		}
		out = append(out, c)
	}
	return out
}
