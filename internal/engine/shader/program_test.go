package shader

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/quadgl/internal/engine/gpu"
	"github.com/Faultbox/quadgl/internal/engine/gpu/gputest"
)

const passthroughVert = `#version 330 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aColor;
out vec3 color;
void main() {
    gl_Position = vec4(aPos, 1.0);
    color = aColor;
}
`

const colorFrag = `#version 330 core
in vec3 color;
out vec4 FragColor;
uniform float uPulse;
uniform int uMode;
uniform bool uInvert;
void main() {
    FragColor = vec4(color * uPulse, 1.0);
}
`

const brokenVert = `#version 330 core
void main() {
    gl_Position = vec4(0.0;
}
`

const brokenFrag = `#version 330 core
out vec4 FragColor;
void main() {
    FragColor = vec4(1.0);
`

func TestValidProgram(t *testing.T) {
	dev := gputest.New()

	p, err := New(dev, Strings(passthroughVert, colorFrag))
	require.NoError(t, err)

	assert.True(t, p.Valid())
	assert.Equal(t, StateValid, p.State())
	assert.NotZero(t, p.Handle())
	assert.NoError(t, p.Err())

	// Stage objects are gone once linked; only the program remains.
	assert.Equal(t, 0, dev.LiveShaders())
	assert.Equal(t, 1, dev.LivePrograms())
	assert.Empty(t, dev.Faults)
}

func TestBuiltinProgram(t *testing.T) {
	dev := gputest.New()

	p, err := New(dev, Builtin())
	require.NoError(t, err)
	assert.True(t, p.HasUniform("uPulse"))
}

func TestFromFiles(t *testing.T) {
	dev := gputest.New()

	p, err := New(dev, Files(filepath.Join("testdata", "quad.vert"), filepath.Join("testdata", "quad.frag")))
	require.NoError(t, err)
	assert.True(t, p.Valid())
}

func TestCompileErrorIsolation(t *testing.T) {
	tests := []struct {
		name      string
		vertex    string
		fragment  string
		stages    []gpu.Stage
		firstSeen gpu.Stage
	}{
		{"vertex broken", brokenVert, colorFrag, []gpu.Stage{gpu.StageVertex}, gpu.StageVertex},
		{"fragment broken", passthroughVert, brokenFrag, []gpu.Stage{gpu.StageFragment}, gpu.StageFragment},
		{"both broken", brokenVert, brokenFrag, []gpu.Stage{gpu.StageVertex, gpu.StageFragment}, gpu.StageVertex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := gputest.New()

			p, err := New(dev, Strings(tt.vertex, tt.fragment))
			require.Error(t, err)
			require.NotNil(t, p)

			var ce *CompileError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.firstSeen, ce.Stage)
			assert.Contains(t, ce.Log, "error")

			assert.Equal(t, tt.stages, compileErrorStages(err))
			assert.False(t, p.Valid())
			assert.Equal(t, StateInvalid, p.State())
			assert.Zero(t, p.Handle())
			assert.Equal(t, err, p.Err())

			// Both stages reached the compiler, and nothing failed was attached.
			assert.Equal(t, 2, countCalls(dev, "CompileShader"))
			assert.Zero(t, countCalls(dev, "LinkProgram"))
			assert.Equal(t, 0, dev.LiveShaders())
			assert.Equal(t, 0, dev.LivePrograms())
			assert.Empty(t, dev.Faults)
		})
	}
}

func TestLinkError(t *testing.T) {
	dev := gputest.New()
	frag := strings.ReplaceAll(colorFrag, "color", "vertexColor")

	p, err := New(dev, Strings(passthroughVert, frag))
	require.Error(t, err)

	var le *LinkError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, le.Log, "vertexColor")
	assert.False(t, p.Valid())
	assert.Zero(t, p.Handle())
	assert.Equal(t, 0, dev.LivePrograms())
	assert.Equal(t, 0, dev.LiveShaders())
}

func TestSourceLoadError(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.frag")

	dev := gputest.New()
	p, err := New(dev, Source{
		Vertex:   File(filepath.Join("testdata", "quad.vert")),
		Fragment: File(missing),
	})
	require.Error(t, err)

	var le *SourceLoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, missing, le.Path)
	assert.Equal(t, gpu.StageFragment, le.Stage)
	assert.Equal(t, StateInvalid, p.State())

	// Loading failed, so nothing was compiled.
	assert.Zero(t, countCalls(dev, "CreateShader"))
}

func TestEmptySource(t *testing.T) {
	dev := gputest.New()

	_, err := New(dev, Strings("  \n", colorFrag))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptySource)
	assert.Zero(t, countCalls(dev, "CreateShader"))
}

func TestBrokenFileReportsPath(t *testing.T) {
	dev := gputest.New()
	path := filepath.Join("testdata", "broken.vert")

	_, err := New(dev, Source{Vertex: File(path), Fragment: Inline(colorFrag)})

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, path, ce.Path)
	assert.Contains(t, err.Error(), path)
}

func TestUniforms(t *testing.T) {
	dev := gputest.New()
	p, err := New(dev, Strings(passthroughVert, colorFrag))
	require.NoError(t, err)

	p.Use()
	require.Equal(t, p.Handle(), dev.CurrentProgram())

	p.SetFloat("uPulse", 0.5)
	p.SetInt("uMode", 3)
	p.SetBool("uInvert", true)
	p.SetFloat("uUnknown", 1)

	v, ok := dev.UniformValue(p.Handle(), "uPulse")
	require.True(t, ok)
	assert.Equal(t, float32(0.5), v)

	v, ok = dev.UniformValue(p.Handle(), "uMode")
	require.True(t, ok)
	assert.Equal(t, int32(3), v)

	v, ok = dev.UniformValue(p.Handle(), "uInvert")
	require.True(t, ok)
	assert.Equal(t, int32(1), v)

	assert.True(t, p.HasUniform("uPulse"))
	assert.False(t, p.HasUniform("uUnknown"))
	assert.Equal(t, gpu.NoUniform, p.UniformLocation("uUnknown"))
	assert.Empty(t, dev.Faults)
}

func TestUniformLocationCached(t *testing.T) {
	dev := gputest.New()
	p, err := New(dev, Strings(passthroughVert, colorFrag))
	require.NoError(t, err)

	p.UniformLocation("uPulse")
	p.UniformLocation("uPulse")
	p.UniformLocation("uMissing")
	p.UniformLocation("uMissing")
	assert.Equal(t, 2, countCalls(dev, "UniformLocation"))
}

func TestSetRequiresActiveProgram(t *testing.T) {
	if gpuPanicsOnMisuse() {
		t.Skip("built with gldebug")
	}
	dev := gputest.New()
	p, err := New(dev, Strings(passthroughVert, colorFrag))
	require.NoError(t, err)

	p.SetFloat("uPulse", 0.25)

	_, ok := dev.UniformValue(p.Handle(), "uPulse")
	assert.False(t, ok)
	assert.Zero(t, countCalls(dev, "Uniform1f"))
}

func TestInvalidProgramUseIsNoop(t *testing.T) {
	dev := gputest.New()
	p, _ := New(dev, Strings(brokenVert, colorFrag))

	p.Use()
	p.Use()
	p.SetFloat("uPulse", 1)

	assert.Zero(t, countCalls(dev, "UseProgram"))
	assert.Zero(t, countCalls(dev, "Uniform1f"))
	assert.Zero(t, dev.CurrentProgram())
}

func TestRelease(t *testing.T) {
	dev := gputest.New()
	p, err := New(dev, Strings(passthroughVert, colorFrag))
	require.NoError(t, err)
	handle := p.Handle()
	p.Use()

	p.Release()
	p.Release()

	assert.False(t, p.Valid())
	assert.Zero(t, p.Handle())
	assert.Equal(t, 1, dev.Deleted[uint32(handle)])
	assert.Zero(t, dev.CurrentProgram())
	assert.Empty(t, dev.Faults)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "valid", StateValid.String())
	assert.Equal(t, "invalid", StateInvalid.String())
	assert.Equal(t, "linking", StateLinking.String())
}

func countCalls(dev *gputest.Device, name string) int {
	n := 0
	for _, c := range dev.Calls {
		if c == name {
			n++
		}
	}
	return n
}

func compileErrorStages(err error) []gpu.Stage {
	var stages []gpu.Stage
	var walk func(error)
	walk = func(err error) {
		if ce, ok := err.(*CompileError); ok {
			stages = append(stages, ce.Stage)
			return
		}
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				walk(e)
			}
		}
	}
	walk(err)
	return stages
}

func gpuPanicsOnMisuse() (panics bool) {
	defer func() {
		if recover() != nil {
			panics = true
		}
	}()
	_ = gpu.Misuse(errors.New("probe"))
	return false
}
