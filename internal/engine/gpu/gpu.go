// Package gpu describes the slice of the OpenGL API the engine drives.
//
// Device is implemented by glcore (go-gl, real context) and gputest (recording fake).
// A Device is bound to the OS thread that owns the current context and must not be
// used from any other goroutine.
package gpu

import "errors"

// ErrNoContext is returned when GL entry points cannot be resolved.
var ErrNoContext = errors.New("gpu: no current rendering context")

// Handle types. Zero is never a live object.
type (
	ShaderHandle      uint32
	ProgramHandle     uint32
	BufferHandle      uint32
	VertexArrayHandle uint32
)

// NoUniform is the location returned for names the program does not declare.
const NoUniform int32 = -1

// Stage is a programmable pipeline stage.
type Stage int

const (
	StageVertex Stage = iota
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// BufferTarget selects the binding point of a buffer object.
type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

// Usage is the driver hint passed with buffer uploads.
type Usage int

const (
	StaticDraw Usage = iota
	DynamicDraw
	StreamDraw
)

// Primitive is the topology of an indexed draw.
type Primitive int

const (
	Triangles Primitive = iota
	TriangleStrip
	TriangleFan
	Lines
	LineStrip
	Points
)

func (p Primitive) String() string {
	switch p {
	case Triangles:
		return "triangles"
	case TriangleStrip:
		return "triangle_strip"
	case TriangleFan:
		return "triangle_fan"
	case Lines:
		return "lines"
	case LineStrip:
		return "line_strip"
	case Points:
		return "points"
	default:
		return "unknown"
	}
}

// ComponentType is the scalar type of one vertex attribute component.
type ComponentType int

const (
	Float ComponentType = iota
	HalfFloat
	Int
	UnsignedInt
	Short
	UnsignedShort
	Byte
	UnsignedByte
)

// Size returns the byte width of one component, or 0 for an unknown type.
func (c ComponentType) Size() int {
	switch c {
	case Float, Int, UnsignedInt:
		return 4
	case HalfFloat, Short, UnsignedShort:
		return 2
	case Byte, UnsignedByte:
		return 1
	default:
		return 0
	}
}

func (c ComponentType) String() string {
	switch c {
	case Float:
		return "float"
	case HalfFloat:
		return "half_float"
	case Int:
		return "int"
	case UnsignedInt:
		return "unsigned_int"
	case Short:
		return "short"
	case UnsignedShort:
		return "unsigned_short"
	case Byte:
		return "byte"
	case UnsignedByte:
		return "unsigned_byte"
	default:
		return "unknown"
	}
}

// PolygonMode controls rasterization of filled primitives.
type PolygonMode int

const (
	Fill PolygonMode = iota
	Line
)

// Device is the set of GL operations used by the shader and geometry packages.
//
// Calls that mutate the driver's binding table are UseProgram, BindBuffer and
// BindVertexArray. CurrentProgram and CurrentVertexArray report that table.
type Device interface {
	// Shader stages.
	CreateShader(stage Stage) ShaderHandle
	CompileShader(sh ShaderHandle, source string)
	ShaderCompiled(sh ShaderHandle) (ok bool, log string)
	DeleteShader(sh ShaderHandle)

	// Programs.
	CreateProgram() ProgramHandle
	AttachShader(p ProgramHandle, sh ShaderHandle)
	DetachShader(p ProgramHandle, sh ShaderHandle)
	LinkProgram(p ProgramHandle)
	ProgramLinked(p ProgramHandle) (ok bool, log string)
	DeleteProgram(p ProgramHandle)
	UseProgram(p ProgramHandle)
	CurrentProgram() ProgramHandle

	// Uniforms. Uniform writes target the current program.
	UniformLocation(p ProgramHandle, name string) int32
	Uniform1i(loc int32, v int32)
	Uniform1f(loc int32, v float32)

	// Buffers and vertex arrays.
	CreateBuffer() BufferHandle
	BindBuffer(target BufferTarget, b BufferHandle)
	BufferData(target BufferTarget, data []byte, usage Usage)
	DeleteBuffer(b BufferHandle)
	CreateVertexArray() VertexArrayHandle
	BindVertexArray(va VertexArrayHandle)
	CurrentVertexArray() VertexArrayHandle
	DeleteVertexArray(va VertexArrayHandle)
	VertexAttribPointer(loc uint32, components int, typ ComponentType, normalized bool, stride, offset int)
	EnableVertexAttribArray(loc uint32)

	// Frame.
	Viewport(x, y, width, height int)
	ClearColor(r, g, b, a float32)
	Clear()
	SetPolygonMode(mode PolygonMode)
	DrawElements(mode Primitive, count int, offset int)
	ReadPixels(x, y, width, height int) []byte
}

// ErrUseAfterRelease is returned by any operation on a released resource.
var ErrUseAfterRelease = errors.New("gpu: use after release")
