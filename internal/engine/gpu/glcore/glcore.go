// Package glcore implements gpu.Device on an OpenGL 4.1 core context via go-gl.
package glcore

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/quadgl/internal/engine/gpu"
	"github.com/Faultbox/quadgl/internal/logger"
)

// ProcAddressFunc resolves a GL entry point from the window system.
type ProcAddressFunc func(name string) unsafe.Pointer

// Device issues GL calls against the context current on the calling thread.
type Device struct {
	version  string
	renderer string
}

var _ gpu.Device = (*Device)(nil)

// New loads GL entry points through procAddr.
// IMPORTANT: the context must already be current on this thread.
func New(procAddr ProcAddressFunc) (*Device, error) {
	if procAddr == nil {
		return nil, gpu.ErrNoContext
	}
	if err := gl.InitWithProcAddrFunc(procAddr); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	d := &Device{
		version:  gl.GoStr(gl.GetString(gl.VERSION)),
		renderer: gl.GoStr(gl.GetString(gl.RENDERER)),
	}
	logger.Info("OpenGL initialized",
		zap.String("version", d.version),
		zap.String("renderer", d.renderer),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))),
	)
	return d, nil
}

// Version returns the GL_VERSION string of the context.
func (d *Device) Version() string { return d.version }

// Renderer returns the GL_RENDERER string of the context.
func (d *Device) Renderer() string { return d.renderer }

func (d *Device) CreateShader(stage gpu.Stage) gpu.ShaderHandle {
	return gpu.ShaderHandle(gl.CreateShader(shaderType(stage)))
}

func (d *Device) CompileShader(sh gpu.ShaderHandle, source string) {
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(uint32(sh), 1, csource, nil)
	free()
	gl.CompileShader(uint32(sh))
}

func (d *Device) ShaderCompiled(sh gpu.ShaderHandle) (bool, string) {
	var status int32
	gl.GetShaderiv(uint32(sh), gl.COMPILE_STATUS, &status)
	if status != gl.FALSE {
		return true, ""
	}
	var logLen int32
	gl.GetShaderiv(uint32(sh), gl.INFO_LOG_LENGTH, &logLen)
	return false, readLog(logLen, func(buf *uint8) {
		gl.GetShaderInfoLog(uint32(sh), logLen, nil, buf)
	})
}

func (d *Device) DeleteShader(sh gpu.ShaderHandle) {
	gl.DeleteShader(uint32(sh))
}

func (d *Device) CreateProgram() gpu.ProgramHandle {
	return gpu.ProgramHandle(gl.CreateProgram())
}

func (d *Device) AttachShader(p gpu.ProgramHandle, sh gpu.ShaderHandle) {
	gl.AttachShader(uint32(p), uint32(sh))
}

func (d *Device) DetachShader(p gpu.ProgramHandle, sh gpu.ShaderHandle) {
	gl.DetachShader(uint32(p), uint32(sh))
}

func (d *Device) LinkProgram(p gpu.ProgramHandle) {
	gl.LinkProgram(uint32(p))
}

func (d *Device) ProgramLinked(p gpu.ProgramHandle) (bool, string) {
	var status int32
	gl.GetProgramiv(uint32(p), gl.LINK_STATUS, &status)
	if status != gl.FALSE {
		return true, ""
	}
	var logLen int32
	gl.GetProgramiv(uint32(p), gl.INFO_LOG_LENGTH, &logLen)
	return false, readLog(logLen, func(buf *uint8) {
		gl.GetProgramInfoLog(uint32(p), logLen, nil, buf)
	})
}

func (d *Device) DeleteProgram(p gpu.ProgramHandle) {
	gl.DeleteProgram(uint32(p))
}

func (d *Device) UseProgram(p gpu.ProgramHandle) {
	gl.UseProgram(uint32(p))
}

func (d *Device) CurrentProgram() gpu.ProgramHandle {
	var id int32
	gl.GetIntegerv(gl.CURRENT_PROGRAM, &id)
	return gpu.ProgramHandle(id)
}

func (d *Device) UniformLocation(p gpu.ProgramHandle, name string) int32 {
	return gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
}

func (d *Device) Uniform1i(loc int32, v int32) {
	gl.Uniform1i(loc, v)
}

func (d *Device) Uniform1f(loc int32, v float32) {
	gl.Uniform1f(loc, v)
}

func (d *Device) CreateBuffer() gpu.BufferHandle {
	var b uint32
	gl.GenBuffers(1, &b)
	return gpu.BufferHandle(b)
}

func (d *Device) BindBuffer(target gpu.BufferTarget, b gpu.BufferHandle) {
	gl.BindBuffer(bufferTarget(target), uint32(b))
}

func (d *Device) BufferData(target gpu.BufferTarget, data []byte, usage gpu.Usage) {
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = gl.Ptr(data)
	}
	gl.BufferData(bufferTarget(target), len(data), ptr, bufferUsage(usage))
}

func (d *Device) DeleteBuffer(b gpu.BufferHandle) {
	id := uint32(b)
	gl.DeleteBuffers(1, &id)
}

func (d *Device) CreateVertexArray() gpu.VertexArrayHandle {
	var va uint32
	gl.GenVertexArrays(1, &va)
	return gpu.VertexArrayHandle(va)
}

func (d *Device) BindVertexArray(va gpu.VertexArrayHandle) {
	gl.BindVertexArray(uint32(va))
}

func (d *Device) CurrentVertexArray() gpu.VertexArrayHandle {
	var id int32
	gl.GetIntegerv(gl.VERTEX_ARRAY_BINDING, &id)
	return gpu.VertexArrayHandle(id)
}

func (d *Device) DeleteVertexArray(va gpu.VertexArrayHandle) {
	id := uint32(va)
	gl.DeleteVertexArrays(1, &id)
}

func (d *Device) VertexAttribPointer(loc uint32, components int, typ gpu.ComponentType, normalized bool, stride, offset int) {
	gl.VertexAttribPointer(loc, int32(components), componentType(typ), normalized, int32(stride), gl.PtrOffset(offset))
}

func (d *Device) EnableVertexAttribArray(loc uint32) {
	gl.EnableVertexAttribArray(loc)
}

func (d *Device) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (d *Device) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (d *Device) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *Device) SetPolygonMode(mode gpu.PolygonMode) {
	if mode == gpu.Line {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		return
	}
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
}

// DrawElements draws count unsigned-int indices starting at byte offset.
func (d *Device) DrawElements(mode gpu.Primitive, count int, offset int) {
	gl.DrawElements(primitive(mode), int32(count), gl.UNSIGNED_INT, gl.PtrOffset(offset))
}

// ReadPixels reads RGBA bytes from the current read framebuffer, bottom row first.
func (d *Device) ReadPixels(x, y, width, height int) []byte {
	pixels := make([]byte, width*height*4)
	if len(pixels) == 0 {
		return pixels
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(int32(x), int32(y), int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

func readLog(logLen int32, fetch func(buf *uint8)) string {
	if logLen <= 0 {
		return ""
	}
	buf := make([]byte, logLen)
	fetch(&buf[0])
	return strings.TrimRight(string(buf), "\x00")
}
