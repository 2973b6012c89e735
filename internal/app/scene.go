package app

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/quadgl/internal/config"
	"github.com/Faultbox/quadgl/internal/engine/geometry"
	"github.com/Faultbox/quadgl/internal/engine/gpu"
	"github.com/Faultbox/quadgl/internal/engine/input"
	"github.com/Faultbox/quadgl/internal/engine/renderer"
	"github.com/Faultbox/quadgl/internal/engine/shader"
	"github.com/Faultbox/quadgl/internal/logger"
)

// pulseUniform is the fragment brightness factor animated each frame.
const pulseUniform = "uPulse"

// Scene owns the GPU resources of the quad demo: one program, one geometry buffer
// and the renderer drawing them.
type Scene struct {
	dev      gpu.Device
	renderer *renderer.Renderer
	program  *shader.Program
	quad     *geometry.Buffer
	pulse    bool
	log      *zap.Logger
}

// ShaderSource picks the program sources from cfg: a WGSL module first, then a
// GLSL file pair, else the embedded shaders.
func ShaderSource(cfg config.ShaderConfig) shader.Source {
	switch {
	case cfg.WGSL != "":
		return shader.WGSLModule(cfg.WGSL, cfg.VertexEntry, cfg.FragmentEntry)
	case cfg.Vertex != "" && cfg.Fragment != "":
		return shader.Files(cfg.Vertex, cfg.Fragment)
	default:
		return shader.Builtin()
	}
}

// NewScene builds the program and uploads the quad on dev. A program that fails
// to build is kept in its invalid state so the window stays up and can be fixed
// by a reload; geometry failures are fatal.
func NewScene(dev gpu.Device, cfg *config.Config, width, height int) (*Scene, error) {
	s := &Scene{
		dev: dev,
		renderer: renderer.New(dev, renderer.Config{
			Width:      width,
			Height:     height,
			ClearColor: cfg.Render.ClearColor,
			Wireframe:  cfg.Render.Wireframe,
		}),
		pulse: cfg.Render.Pulse,
		log:   logger.Named("scene"),
	}

	src := ShaderSource(cfg.Shaders)
	prog, err := shader.New(dev, src)
	if err != nil {
		s.log.Error("shader program failed to build", zap.Stringer("source", src), zap.Error(err))
	}
	s.program = prog

	s.quad, err = geometry.NewQuad(dev)
	if err != nil {
		s.program.Release()
		return nil, fmt.Errorf("failed to upload quad: %w", err)
	}
	return s, nil
}

// Program returns the current shader program.
func (s *Scene) Program() *shader.Program { return s.program }

// Renderer returns the scene renderer.
func (s *Scene) Renderer() *renderer.Renderer { return s.renderer }

// HandleInput applies the frame's resize and wireframe toggle.
func (s *Scene) HandleInput(in *input.Input) {
	if w, h, ok := in.Resized(); ok {
		s.renderer.Resize(w, h)
	}
	if in.IsKeyPressed(input.KeyW) {
		s.renderer.SetWireframe(!s.renderer.Wireframe())
		s.log.Info("wireframe toggled", zap.Bool("on", s.renderer.Wireframe()))
	}
}

// Reload rebuilds the program from its sources. On failure the previous program
// stays in use.
func (s *Scene) Reload() {
	next, err := shader.Rebuild(s.dev, s.program)
	if err != nil {
		s.log.Warn("shader reload failed, keeping previous program", zap.Error(err))
		return
	}
	s.program = next
	s.log.Info("shader program reloaded", zap.Stringer("source", next.Source()))
}

// Frame clears the framebuffer and draws the quad. elapsed drives the pulse.
func (s *Scene) Frame(elapsed time.Duration) error {
	s.renderer.Begin()
	if s.program.Valid() && s.program.HasUniform(pulseUniform) {
		s.program.Use()
		s.program.SetFloat(pulseUniform, s.pulseValue(elapsed))
	}
	return s.renderer.Draw(s.program, s.quad)
}

// pulseValue oscillates between 0.75 and 1 with a two second period.
func (s *Scene) pulseValue(elapsed time.Duration) float32 {
	if !s.pulse {
		return 1
	}
	t := float32(elapsed.Seconds())
	return 0.875 + 0.125*math32.Sin(t*math32.Pi)
}

// Close releases the geometry and the program.
func (s *Scene) Close() {
	if s.quad != nil {
		s.quad.Release()
	}
	if s.program != nil {
		s.program.Release()
	}
}
