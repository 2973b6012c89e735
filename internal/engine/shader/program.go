// Package shader builds GPU programs from vertex/fragment source pairs.
//
// A Program moves through Loading, Compiling and Linking exactly once and ends Valid
// or Invalid. An Invalid program holds no GPU handle and keeps the error that caused
// it; there is no retry, build a new Program from corrected sources instead.
package shader

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/quadgl/internal/engine/gpu"
	"github.com/Faultbox/quadgl/internal/logger"
)

// State is the construction state of a Program.
type State int

const (
	StateUnconstructed State = iota
	StateLoading
	StateCompiling
	StateLinking
	StateValid
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateUnconstructed:
		return "unconstructed"
	case StateLoading:
		return "loading"
	case StateCompiling:
		return "compiling"
	case StateLinking:
		return "linking"
	case StateValid:
		return "valid"
	case StateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Program owns one linked GPU program.
type Program struct {
	dev      gpu.Device
	source   Source
	handle   gpu.ProgramHandle
	state    State
	err      error
	released bool
	warned   bool
	uniforms map[string]int32
	log      *zap.Logger
}

// New loads, compiles and links src on dev.
//
// The returned Program is never nil. When err is non-nil the program is Invalid,
// holds no handle, and Err reports the same error. Both stages are always compiled
// and checked; if both fail the error joins the vertex and fragment CompileErrors.
func New(dev gpu.Device, src Source) (*Program, error) {
	p := &Program{
		dev:      dev,
		source:   src,
		uniforms: make(map[string]int32),
		log:      logger.Named("shader"),
	}

	if err := p.build(); err != nil {
		p.state = StateInvalid
		p.err = err
		p.log.Error("shader program build failed",
			zap.String("source", src.String()),
			zap.Error(err),
		)
		return p, err
	}

	p.state = StateValid
	p.log.Debug("shader program created",
		zap.String("source", src.String()),
		zap.Uint32("program", uint32(p.handle)),
	)
	return p, nil
}

func (p *Program) build() error {
	p.state = StateLoading
	vsrc, vErr := p.source.Vertex.Load(gpu.StageVertex)
	fsrc, fErr := p.source.Fragment.Load(gpu.StageFragment)
	if err := errors.Join(vErr, fErr); err != nil {
		return err
	}

	p.state = StateCompiling
	vs, vErr := p.compile(gpu.StageVertex, p.source.Vertex.Origin(), vsrc)
	fs, fErr := p.compile(gpu.StageFragment, p.source.Fragment.Origin(), fsrc)
	// Stage objects are never needed past this function.
	defer p.dev.DeleteShader(vs)
	defer p.dev.DeleteShader(fs)
	if err := errors.Join(vErr, fErr); err != nil {
		return err
	}

	p.state = StateLinking
	handle, err := p.link(vs, fs)
	if err != nil {
		return err
	}
	p.handle = handle
	return nil
}

// compile returns a compiled stage, or 0 and a CompileError. Failed stages are deleted.
func (p *Program) compile(stage gpu.Stage, origin, src string) (gpu.ShaderHandle, error) {
	sh := p.dev.CreateShader(stage)
	p.dev.CompileShader(sh, src)
	if ok, infoLog := p.dev.ShaderCompiled(sh); !ok {
		p.dev.DeleteShader(sh)
		p.log.Error("shader compilation failed",
			zap.Stringer("stage", stage),
			zap.String("path", origin),
			zap.String("log", infoLog),
		)
		return 0, &CompileError{Stage: stage, Path: origin, Log: infoLog}
	}
	return sh, nil
}

func (p *Program) link(vs, fs gpu.ShaderHandle) (gpu.ProgramHandle, error) {
	prog := p.dev.CreateProgram()
	p.dev.AttachShader(prog, vs)
	p.dev.AttachShader(prog, fs)
	p.dev.LinkProgram(prog)
	ok, infoLog := p.dev.ProgramLinked(prog)
	p.dev.DetachShader(prog, vs)
	p.dev.DetachShader(prog, fs)

	if !ok {
		p.dev.DeleteProgram(prog)
		p.log.Error("shader program linking failed", zap.String("log", infoLog))
		return 0, &LinkError{Log: infoLog}
	}
	return prog, nil
}

// Valid reports whether the program linked and has not been released.
func (p *Program) Valid() bool {
	return p.state == StateValid && !p.released
}

// State returns the construction state.
func (p *Program) State() State { return p.state }

// Err returns the construction error of an Invalid program.
func (p *Program) Err() error { return p.err }

// Handle returns the program object, or 0 when invalid or released.
func (p *Program) Handle() gpu.ProgramHandle {
	if !p.Valid() {
		return 0
	}
	return p.handle
}

// Source returns the sources the program was built from.
func (p *Program) Source() Source { return p.source }

// Use makes the program current. An invalid program logs once and does nothing.
func (p *Program) Use() {
	if p.released {
		_ = gpu.Misuse(fmt.Errorf("shader: use: %w", gpu.ErrUseAfterRelease))
		return
	}
	if !p.Valid() {
		if !p.warned {
			p.warned = true
			p.log.Warn("using invalid shader program; draws will not render correctly",
				zap.Error(p.err),
			)
		}
		return
	}
	p.dev.UseProgram(p.handle)
}

// UniformLocation resolves name in the program, returning gpu.NoUniform when the
// program does not declare it or is not valid. Results are cached.
func (p *Program) UniformLocation(name string) int32 {
	if !p.Valid() {
		return gpu.NoUniform
	}
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := p.dev.UniformLocation(p.handle, name)
	p.uniforms[name] = loc
	return loc
}

// HasUniform reports whether name resolves to an active uniform.
func (p *Program) HasUniform(name string) bool {
	return p.UniformLocation(name) != gpu.NoUniform
}

// SetBool writes a bool uniform. The program must be current.
func (p *Program) SetBool(name string, v bool) {
	var i int32
	if v {
		i = 1
	}
	if loc, ok := p.activeLocation(name); ok {
		p.dev.Uniform1i(loc, i)
	}
}

// SetInt writes an int uniform. The program must be current.
func (p *Program) SetInt(name string, v int32) {
	if loc, ok := p.activeLocation(name); ok {
		p.dev.Uniform1i(loc, v)
	}
}

// SetFloat writes a float uniform. The program must be current.
func (p *Program) SetFloat(name string, v float32) {
	if loc, ok := p.activeLocation(name); ok {
		p.dev.Uniform1f(loc, v)
	}
}

// activeLocation resolves name for a write. Unknown names are a silent no-op.
func (p *Program) activeLocation(name string) (int32, bool) {
	if p.released {
		_ = gpu.Misuse(fmt.Errorf("shader: set %q: %w", name, gpu.ErrUseAfterRelease))
		return gpu.NoUniform, false
	}
	if !p.Valid() {
		return gpu.NoUniform, false
	}
	if p.dev.CurrentProgram() != p.handle {
		_ = gpu.Misuse(fmt.Errorf("set %q: %w", name, ErrNotActive))
		return gpu.NoUniform, false
	}
	loc := p.UniformLocation(name)
	return loc, loc != gpu.NoUniform
}

// Release deletes the program object. Calling it again does nothing.
func (p *Program) Release() {
	if p.released {
		return
	}
	p.released = true
	if p.handle != 0 {
		if p.dev.CurrentProgram() == p.handle {
			p.dev.UseProgram(0)
		}
		p.dev.DeleteProgram(p.handle)
		p.log.Debug("shader program released", zap.Uint32("program", uint32(p.handle)))
		p.handle = 0
	}
}
