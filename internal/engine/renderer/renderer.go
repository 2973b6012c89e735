// Package renderer owns per-frame GL state: viewport, clear color and polygon mode,
// and runs the draw sequence for one program and one geometry buffer.
package renderer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/quadgl/internal/engine/geometry"
	"github.com/Faultbox/quadgl/internal/engine/gpu"
	"github.com/Faultbox/quadgl/internal/engine/shader"
	"github.com/Faultbox/quadgl/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor [4]float32
	Wireframe  bool
}

// Renderer handles frame-level OpenGL state.
type Renderer struct {
	config Config
	dev    gpu.Device
}

// New creates a renderer on dev.
// IMPORTANT: Must be called AFTER the OpenGL context is current!
func New(dev gpu.Device, cfg Config) *Renderer {
	r := &Renderer{
		config: cfg,
		dev:    dev,
	}

	c := cfg.ClearColor
	dev.ClearColor(c[0], c[1], c[2], c[3])
	dev.Viewport(0, 0, cfg.Width, cfg.Height)
	r.SetWireframe(cfg.Wireframe)

	return r
}

// Resize handles framebuffer size changes.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	r.dev.Viewport(0, 0, width, height)
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the current viewport size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// SetWireframe switches between filled and outlined polygons.
func (r *Renderer) SetWireframe(on bool) {
	r.config.Wireframe = on
	if on {
		r.dev.SetPolygonMode(gpu.Line)
	} else {
		r.dev.SetPolygonMode(gpu.Fill)
	}
}

// Wireframe reports whether wireframe mode is on.
func (r *Renderer) Wireframe() bool { return r.config.Wireframe }

// Begin starts a new frame.
func (r *Renderer) Begin() {
	r.dev.Clear()
}

// Draw activates prog, binds geo, draws every index as triangles and unbinds.
// With an invalid program the draw is skipped and the frame goes on.
func (r *Renderer) Draw(prog *shader.Program, geo *geometry.Buffer) error {
	prog.Use()
	if !prog.Valid() {
		return nil
	}
	if err := geo.Bind(); err != nil {
		return fmt.Errorf("binding geometry: %w", err)
	}
	if err := geo.DrawAll(gpu.Triangles); err != nil {
		return fmt.Errorf("drawing geometry: %w", err)
	}
	return geo.Unbind()
}
