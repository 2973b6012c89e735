// Package gputest provides a recording gpu.Device for tests that run without a GPU.
//
// The fake keeps the driver's binding table, checks GLSL sources for basic shape
// (#version, main, balanced delimiters, #error directives), matches fragment inputs
// against vertex outputs at link time and records every fault a real driver would
// report as GL_INVALID_* or undefined behavior.
package gputest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Faultbox/quadgl/internal/engine/gpu"
)

// DrawCall is one recorded DrawElements.
type DrawCall struct {
	Mode        gpu.Primitive
	Count       int
	Offset      int
	Program     gpu.ProgramHandle
	VertexArray gpu.VertexArrayHandle
}

// Attrib is one recorded vertex attribute pointer.
type Attrib struct {
	Location   uint32
	Components int
	Type       gpu.ComponentType
	Normalized bool
	Stride     int
	Offset     int
	Buffer     gpu.BufferHandle
	Enabled    bool
}

type shaderObj struct {
	stage    gpu.Stage
	source   string
	compiled bool
	log      string
	decls    []decl
}

type programObj struct {
	attached []gpu.ShaderHandle
	linked   bool
	log      string
	uniforms map[string]int32
	values   map[int32]any
}

type vertexArrayObj struct {
	elements gpu.BufferHandle
	attribs  map[uint32]*Attrib
}

// Device is an in-memory gpu.Device. The zero value is not usable; call New.
type Device struct {
	next uint32

	shaders      map[gpu.ShaderHandle]*shaderObj
	programs     map[gpu.ProgramHandle]*programObj
	buffers      map[gpu.BufferHandle][]byte
	vertexArrays map[gpu.VertexArrayHandle]*vertexArrayObj

	program     gpu.ProgramHandle
	vertexArray gpu.VertexArrayHandle
	arrayBuffer gpu.BufferHandle

	clear    [4]float32
	viewport [4]int
	polygon  gpu.PolygonMode

	// Calls lists every Device method invoked, in order.
	Calls []string
	// Draws lists every DrawElements invocation.
	Draws []DrawCall
	// Faults lists driver errors and undefined behavior, e.g. double deletes.
	Faults []string
	// Deleted counts deletions per handle value, across all object kinds.
	Deleted map[uint32]int
	// Usages records the usage hint of each buffer upload.
	Usages map[gpu.BufferHandle]gpu.Usage
}

var _ gpu.Device = (*Device)(nil)

// New returns an empty device.
func New() *Device {
	return &Device{
		shaders:      make(map[gpu.ShaderHandle]*shaderObj),
		programs:     make(map[gpu.ProgramHandle]*programObj),
		buffers:      make(map[gpu.BufferHandle][]byte),
		vertexArrays: make(map[gpu.VertexArrayHandle]*vertexArrayObj),
		Deleted:      make(map[uint32]int),
		Usages:       make(map[gpu.BufferHandle]gpu.Usage),
	}
}

func (d *Device) call(name string) { d.Calls = append(d.Calls, name) }

func (d *Device) fault(format string, args ...any) {
	d.Faults = append(d.Faults, fmt.Sprintf(format, args...))
}

func (d *Device) id() uint32 {
	d.next++
	return d.next
}

// LiveShaders returns the number of shader objects not yet deleted.
func (d *Device) LiveShaders() int { return len(d.shaders) }

// LivePrograms returns the number of program objects not yet deleted.
func (d *Device) LivePrograms() int { return len(d.programs) }

// LiveBuffers returns the number of buffer objects not yet deleted.
func (d *Device) LiveBuffers() int { return len(d.buffers) }

// LiveVertexArrays returns the number of vertex arrays not yet deleted.
func (d *Device) LiveVertexArrays() int { return len(d.vertexArrays) }

// BufferContents returns a copy of the data uploaded to b.
func (d *Device) BufferContents(b gpu.BufferHandle) []byte {
	return append([]byte(nil), d.buffers[b]...)
}

// Attribs returns the attribute pointers recorded in va, keyed by location.
func (d *Device) Attribs(va gpu.VertexArrayHandle) map[uint32]Attrib {
	out := make(map[uint32]Attrib)
	if obj, ok := d.vertexArrays[va]; ok {
		for loc, a := range obj.attribs {
			out[loc] = *a
		}
	}
	return out
}

// ElementBuffer returns the index buffer captured by va.
func (d *Device) ElementBuffer(va gpu.VertexArrayHandle) gpu.BufferHandle {
	if obj, ok := d.vertexArrays[va]; ok {
		return obj.elements
	}
	return 0
}

// UniformValue returns the last value written to the named uniform of p.
func (d *Device) UniformValue(p gpu.ProgramHandle, name string) (any, bool) {
	prog, ok := d.programs[p]
	if !ok {
		return nil, false
	}
	loc, ok := prog.uniforms[name]
	if !ok {
		return nil, false
	}
	v, ok := prog.values[loc]
	return v, ok
}

// ViewportRect returns the last viewport rectangle.
func (d *Device) ViewportRect() [4]int { return d.viewport }

// PolygonMode returns the current polygon mode.
func (d *Device) PolygonMode() gpu.PolygonMode { return d.polygon }

// --- shaders ---

func (d *Device) CreateShader(stage gpu.Stage) gpu.ShaderHandle {
	d.call("CreateShader")
	h := gpu.ShaderHandle(d.id())
	d.shaders[h] = &shaderObj{stage: stage}
	return h
}

func (d *Device) CompileShader(sh gpu.ShaderHandle, source string) {
	d.call("CompileShader")
	obj, ok := d.shaders[sh]
	if !ok {
		d.fault("CompileShader: unknown shader %d", sh)
		return
	}
	obj.source = source
	obj.log = checkSource(source)
	obj.compiled = obj.log == ""
	if obj.compiled {
		obj.decls = parseDecls(source)
	}
}

func (d *Device) ShaderCompiled(sh gpu.ShaderHandle) (bool, string) {
	d.call("ShaderCompiled")
	obj, ok := d.shaders[sh]
	if !ok {
		d.fault("ShaderCompiled: unknown shader %d", sh)
		return false, ""
	}
	return obj.compiled, obj.log
}

func (d *Device) DeleteShader(sh gpu.ShaderHandle) {
	d.call("DeleteShader")
	if sh == 0 {
		return
	}
	if _, ok := d.shaders[sh]; !ok {
		d.fault("DeleteShader: shader %d already deleted", sh)
		return
	}
	delete(d.shaders, sh)
	d.Deleted[uint32(sh)]++
}

// --- programs ---

func (d *Device) CreateProgram() gpu.ProgramHandle {
	d.call("CreateProgram")
	h := gpu.ProgramHandle(d.id())
	d.programs[h] = &programObj{values: make(map[int32]any)}
	return h
}

func (d *Device) AttachShader(p gpu.ProgramHandle, sh gpu.ShaderHandle) {
	d.call("AttachShader")
	prog, ok := d.programs[p]
	if !ok {
		d.fault("AttachShader: unknown program %d", p)
		return
	}
	obj, ok := d.shaders[sh]
	if !ok {
		d.fault("AttachShader: unknown shader %d", sh)
		return
	}
	if !obj.compiled {
		d.fault("AttachShader: shader %d failed to compile", sh)
	}
	prog.attached = append(prog.attached, sh)
}

func (d *Device) DetachShader(p gpu.ProgramHandle, sh gpu.ShaderHandle) {
	d.call("DetachShader")
	prog, ok := d.programs[p]
	if !ok {
		d.fault("DetachShader: unknown program %d", p)
		return
	}
	for i, h := range prog.attached {
		if h == sh {
			prog.attached = append(prog.attached[:i], prog.attached[i+1:]...)
			return
		}
	}
	d.fault("DetachShader: shader %d not attached to %d", sh, p)
}

func (d *Device) LinkProgram(p gpu.ProgramHandle) {
	d.call("LinkProgram")
	prog, ok := d.programs[p]
	if !ok {
		d.fault("LinkProgram: unknown program %d", p)
		return
	}
	prog.linked = false
	prog.uniforms = nil

	var vert, frag *shaderObj
	for _, sh := range prog.attached {
		obj, ok := d.shaders[sh]
		if !ok || !obj.compiled {
			prog.log = "error: linking with uncompiled/unspecialized shader"
			return
		}
		switch obj.stage {
		case gpu.StageVertex:
			vert = obj
		case gpu.StageFragment:
			frag = obj
		}
	}
	if vert == nil || frag == nil {
		prog.log = "error: program requires a vertex and a fragment shader"
		return
	}

	outs := make(map[string]string)
	for _, dc := range vert.decls {
		if dc.qualifier == "out" {
			outs[dc.name] = dc.typ
		}
	}
	for _, dc := range frag.decls {
		if dc.qualifier != "in" {
			continue
		}
		typ, ok := outs[dc.name]
		if !ok {
			prog.log = fmt.Sprintf("error: fragment shader input `%s' has no matching vertex shader output", dc.name)
			return
		}
		if typ != dc.typ {
			prog.log = fmt.Sprintf("error: `%s' declared as type `%s' but output as type `%s'", dc.name, dc.typ, typ)
			return
		}
	}

	prog.uniforms = make(map[string]int32)
	for _, obj := range []*shaderObj{vert, frag} {
		for _, dc := range obj.decls {
			if dc.qualifier != "uniform" {
				continue
			}
			if _, seen := prog.uniforms[dc.name]; !seen {
				prog.uniforms[dc.name] = int32(len(prog.uniforms))
			}
		}
	}
	prog.linked = true
	prog.log = ""
}

func (d *Device) ProgramLinked(p gpu.ProgramHandle) (bool, string) {
	d.call("ProgramLinked")
	prog, ok := d.programs[p]
	if !ok {
		d.fault("ProgramLinked: unknown program %d", p)
		return false, ""
	}
	return prog.linked, prog.log
}

func (d *Device) DeleteProgram(p gpu.ProgramHandle) {
	d.call("DeleteProgram")
	if p == 0 {
		return
	}
	if _, ok := d.programs[p]; !ok {
		d.fault("DeleteProgram: program %d already deleted", p)
		return
	}
	delete(d.programs, p)
	d.Deleted[uint32(p)]++
	if d.program == p {
		d.program = 0
	}
}

func (d *Device) UseProgram(p gpu.ProgramHandle) {
	d.call("UseProgram")
	if p != 0 {
		prog, ok := d.programs[p]
		if !ok {
			d.fault("UseProgram: unknown program %d", p)
			return
		}
		if !prog.linked {
			d.fault("UseProgram: program %d is not linked", p)
			return
		}
	}
	d.program = p
}

func (d *Device) CurrentProgram() gpu.ProgramHandle {
	d.call("CurrentProgram")
	return d.program
}

// --- uniforms ---

func (d *Device) UniformLocation(p gpu.ProgramHandle, name string) int32 {
	d.call("UniformLocation")
	prog, ok := d.programs[p]
	if !ok || !prog.linked {
		d.fault("UniformLocation: program %d is not linked", p)
		return gpu.NoUniform
	}
	if loc, ok := prog.uniforms[name]; ok {
		return loc
	}
	return gpu.NoUniform
}

func (d *Device) setUniform(loc int32, v any) {
	if loc == gpu.NoUniform {
		return
	}
	prog, ok := d.programs[d.program]
	if !ok {
		d.fault("Uniform: no current program")
		return
	}
	prog.values[loc] = v
}

func (d *Device) Uniform1i(loc int32, v int32) {
	d.call("Uniform1i")
	d.setUniform(loc, v)
}

func (d *Device) Uniform1f(loc int32, v float32) {
	d.call("Uniform1f")
	d.setUniform(loc, v)
}

// --- buffers ---

func (d *Device) CreateBuffer() gpu.BufferHandle {
	d.call("CreateBuffer")
	h := gpu.BufferHandle(d.id())
	d.buffers[h] = nil
	return h
}

func (d *Device) BindBuffer(target gpu.BufferTarget, b gpu.BufferHandle) {
	d.call("BindBuffer")
	if b != 0 {
		if _, ok := d.buffers[b]; !ok {
			d.fault("BindBuffer: unknown buffer %d", b)
			return
		}
	}
	switch target {
	case gpu.ArrayBuffer:
		d.arrayBuffer = b
	case gpu.ElementArrayBuffer:
		va, ok := d.vertexArrays[d.vertexArray]
		if !ok {
			d.fault("BindBuffer: element buffer bound with no vertex array")
			return
		}
		va.elements = b
	}
}

func (d *Device) bound(target gpu.BufferTarget) gpu.BufferHandle {
	if target == gpu.ArrayBuffer {
		return d.arrayBuffer
	}
	if va, ok := d.vertexArrays[d.vertexArray]; ok {
		return va.elements
	}
	return 0
}

func (d *Device) BufferData(target gpu.BufferTarget, data []byte, usage gpu.Usage) {
	d.call("BufferData")
	b := d.bound(target)
	if b == 0 {
		d.fault("BufferData: no buffer bound to target %d", target)
		return
	}
	d.buffers[b] = append([]byte(nil), data...)
	d.Usages[b] = usage
}

func (d *Device) DeleteBuffer(b gpu.BufferHandle) {
	d.call("DeleteBuffer")
	if b == 0 {
		return
	}
	if _, ok := d.buffers[b]; !ok {
		d.fault("DeleteBuffer: buffer %d already deleted", b)
		return
	}
	delete(d.buffers, b)
	d.Deleted[uint32(b)]++
	if d.arrayBuffer == b {
		d.arrayBuffer = 0
	}
}

func (d *Device) CreateVertexArray() gpu.VertexArrayHandle {
	d.call("CreateVertexArray")
	h := gpu.VertexArrayHandle(d.id())
	d.vertexArrays[h] = &vertexArrayObj{attribs: make(map[uint32]*Attrib)}
	return h
}

func (d *Device) BindVertexArray(va gpu.VertexArrayHandle) {
	d.call("BindVertexArray")
	if va != 0 {
		if _, ok := d.vertexArrays[va]; !ok {
			d.fault("BindVertexArray: unknown vertex array %d", va)
			return
		}
	}
	d.vertexArray = va
}

func (d *Device) CurrentVertexArray() gpu.VertexArrayHandle {
	d.call("CurrentVertexArray")
	return d.vertexArray
}

func (d *Device) DeleteVertexArray(va gpu.VertexArrayHandle) {
	d.call("DeleteVertexArray")
	if va == 0 {
		return
	}
	if _, ok := d.vertexArrays[va]; !ok {
		d.fault("DeleteVertexArray: vertex array %d already deleted", va)
		return
	}
	delete(d.vertexArrays, va)
	d.Deleted[uint32(va)]++
	if d.vertexArray == va {
		d.vertexArray = 0
	}
}

func (d *Device) VertexAttribPointer(loc uint32, components int, typ gpu.ComponentType, normalized bool, stride, offset int) {
	d.call("VertexAttribPointer")
	va, ok := d.vertexArrays[d.vertexArray]
	if !ok {
		d.fault("VertexAttribPointer: no vertex array bound")
		return
	}
	if d.arrayBuffer == 0 {
		d.fault("VertexAttribPointer: no array buffer bound")
		return
	}
	a := va.attribs[loc]
	if a == nil {
		a = &Attrib{}
		va.attribs[loc] = a
	}
	*a = Attrib{
		Location:   loc,
		Components: components,
		Type:       typ,
		Normalized: normalized,
		Stride:     stride,
		Offset:     offset,
		Buffer:     d.arrayBuffer,
		Enabled:    a.Enabled,
	}
}

func (d *Device) EnableVertexAttribArray(loc uint32) {
	d.call("EnableVertexAttribArray")
	va, ok := d.vertexArrays[d.vertexArray]
	if !ok {
		d.fault("EnableVertexAttribArray: no vertex array bound")
		return
	}
	a := va.attribs[loc]
	if a == nil {
		a = &Attrib{Location: loc}
		va.attribs[loc] = a
	}
	a.Enabled = true
}

// --- frame ---

func (d *Device) Viewport(x, y, width, height int) {
	d.call("Viewport")
	d.viewport = [4]int{x, y, width, height}
}

func (d *Device) ClearColor(r, g, b, a float32) {
	d.call("ClearColor")
	d.clear = [4]float32{r, g, b, a}
}

func (d *Device) Clear() { d.call("Clear") }

func (d *Device) SetPolygonMode(mode gpu.PolygonMode) {
	d.call("SetPolygonMode")
	d.polygon = mode
}

func (d *Device) DrawElements(mode gpu.Primitive, count int, offset int) {
	d.call("DrawElements")
	va, ok := d.vertexArrays[d.vertexArray]
	if !ok {
		d.fault("DrawElements: no vertex array bound")
		return
	}
	if va.elements == 0 {
		d.fault("DrawElements: vertex array %d has no element buffer", d.vertexArray)
		return
	}
	if avail := len(d.buffers[va.elements]) / 4; offset/4+count > avail {
		d.fault("DrawElements: %d indices requested, %d available", count, avail)
	}
	d.Draws = append(d.Draws, DrawCall{
		Mode:        mode,
		Count:       count,
		Offset:      offset,
		Program:     d.program,
		VertexArray: d.vertexArray,
	})
}

// ReadPixels returns the clear color for every pixel.
func (d *Device) ReadPixels(x, y, width, height int) []byte {
	d.call("ReadPixels")
	px := make([]byte, width*height*4)
	for i := 0; i < len(px); i += 4 {
		for c := 0; c < 4; c++ {
			px[i+c] = byte(d.clear[c]*255 + 0.5)
		}
	}
	return px
}

// --- GLSL shape checks ---

type decl struct {
	qualifier string
	typ       string
	name      string
}

var declRe = regexp.MustCompile(`^\s*(?:layout\s*\([^)]*\)\s*)?(?:flat\s+|smooth\s+|noperspective\s+)?(in|out|uniform)\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*(?:\[\s*\d*\s*\])?\s*;`)

func parseDecls(source string) []decl {
	var out []decl
	for _, line := range strings.Split(source, "\n") {
		m := declRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out = append(out, decl{qualifier: m[1], typ: m[2], name: m[3]})
	}
	return out
}

// checkSource returns a driver-style info log, or "" when source looks compilable.
func checkSource(source string) string {
	lines := strings.Split(source, "\n")

	first := ""
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			first = t
			break
		}
	}
	if !strings.HasPrefix(first, "#version") {
		return "0:1(1): error: missing #version directive"
	}

	braces, parens := 0, 0
	for i, l := range lines {
		t := strings.TrimSpace(l)
		if strings.HasPrefix(t, "#error") {
			return fmt.Sprintf("0:%d(1): error: %s", i+1, strings.TrimSpace(strings.TrimPrefix(t, "#error")))
		}
		for col, r := range l {
			switch r {
			case '{':
				braces++
			case '}':
				braces--
			case '(':
				parens++
			case ')':
				parens--
			}
			if braces < 0 || parens < 0 {
				return fmt.Sprintf("0:%d(%d): error: syntax error, unexpected '%c'", i+1, col+1, r)
			}
		}
	}
	if braces != 0 || parens != 0 {
		return fmt.Sprintf("0:%d(1): error: syntax error, unexpected end of file", len(lines))
	}
	if !strings.Contains(source, "void main") {
		return "0:1(1): error: entry point main not found"
	}
	return ""
}
