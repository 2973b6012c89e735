package shader

import _ "embed"

// QuadVertex passes position through and forwards the per-vertex color.
//
//go:embed glsl/quad.vert
var QuadVertex string

// QuadFragment outputs the interpolated color scaled by the uPulse uniform.
//
//go:embed glsl/quad.frag
var QuadFragment string

// QuadWGSL is the same pipeline as a WGSL module with vs_main and fs_main entry points.
//
//go:embed glsl/quad.wgsl
var QuadWGSL string

// Builtin returns the embedded quad shader pair.
func Builtin() Source {
	return Strings(QuadVertex, QuadFragment)
}
