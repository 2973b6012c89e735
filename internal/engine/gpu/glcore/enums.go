package glcore

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/quadgl/internal/engine/gpu"
)

func shaderType(s gpu.Stage) uint32 {
	if s == gpu.StageFragment {
		return gl.FRAGMENT_SHADER
	}
	return gl.VERTEX_SHADER
}

func bufferTarget(t gpu.BufferTarget) uint32 {
	if t == gpu.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func bufferUsage(u gpu.Usage) uint32 {
	switch u {
	case gpu.DynamicDraw:
		return gl.DYNAMIC_DRAW
	case gpu.StreamDraw:
		return gl.STREAM_DRAW
	default:
		return gl.STATIC_DRAW
	}
}

func primitive(p gpu.Primitive) uint32 {
	switch p {
	case gpu.TriangleStrip:
		return gl.TRIANGLE_STRIP
	case gpu.TriangleFan:
		return gl.TRIANGLE_FAN
	case gpu.Lines:
		return gl.LINES
	case gpu.LineStrip:
		return gl.LINE_STRIP
	case gpu.Points:
		return gl.POINTS
	default:
		return gl.TRIANGLES
	}
}

func componentType(c gpu.ComponentType) uint32 {
	switch c {
	case gpu.HalfFloat:
		return gl.HALF_FLOAT
	case gpu.Int:
		return gl.INT
	case gpu.UnsignedInt:
		return gl.UNSIGNED_INT
	case gpu.Short:
		return gl.SHORT
	case gpu.UnsignedShort:
		return gl.UNSIGNED_SHORT
	case gpu.Byte:
		return gl.BYTE
	case gpu.UnsignedByte:
		return gl.UNSIGNED_BYTE
	default:
		return gl.FLOAT
	}
}
