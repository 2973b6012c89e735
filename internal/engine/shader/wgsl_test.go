package shader

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/quadgl/internal/engine/gpu"
)

func TestTranslateWGSL(t *testing.T) {
	tests := []struct {
		name  string
		entry string
		stage gpu.Stage
	}{
		{"vertex by name", "vs_main", gpu.StageVertex},
		{"fragment by name", "fs_main", gpu.StageFragment},
		{"first vertex", "", gpu.StageVertex},
		{"first fragment", "", gpu.StageFragment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := TranslateWGSL(QuadWGSL, tt.entry, tt.stage)
			require.NoError(t, err)
			assert.Contains(t, out, "#version 330")
			assert.Contains(t, out, "void main()")
		})
	}
}

func TestTranslateWGSLWrongStage(t *testing.T) {
	_, err := TranslateWGSL(QuadWGSL, "fs_main", gpu.StageVertex)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fs_main")
}

func TestTranslateWGSLMissingEntry(t *testing.T) {
	_, err := TranslateWGSL(QuadWGSL, "main", gpu.StageVertex)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestTranslateWGSLSyntaxError(t *testing.T) {
	_, err := TranslateWGSL("@vertex fn vs_main( -> {", "", gpu.StageVertex)
	assert.Error(t, err)
}

func TestWGSLSourceLoadError(t *testing.T) {
	src := WGSLModule(filepath.Join("testdata", "quad.wgsl"), "vs_main", "nope")

	_, err := src.Fragment.Load(gpu.StageFragment)
	require.Error(t, err)

	var le *SourceLoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, gpu.StageFragment, le.Stage)
	assert.Contains(t, le.Path, "quad.wgsl#nope")

	vs, err := src.Vertex.Load(gpu.StageVertex)
	require.NoError(t, err)
	assert.Contains(t, vs, "#version 330")
}

func TestSourcePaths(t *testing.T) {
	assert.Equal(t, []string{"a.vert", "a.frag"}, Files("a.vert", "a.frag").Paths())
	assert.Equal(t, []string{"q.wgsl"}, WGSLModule("q.wgsl", "", "").Paths())
	assert.Empty(t, Builtin().Paths())
}
