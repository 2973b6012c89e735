package geometry

import (
	"encoding/binary"
	"math"
)

// Float32Bytes returns v in the host byte order expected by the GL driver.
func Float32Bytes(v []float32) []byte {
	out := make([]byte, 4*len(v))
	for i, f := range v {
		binary.NativeEndian.PutUint32(out[4*i:], math.Float32bits(f))
	}
	return out
}

// Uint32Bytes returns v in host byte order.
func Uint32Bytes(v []uint32) []byte {
	out := make([]byte, 4*len(v))
	for i, u := range v {
		binary.NativeEndian.PutUint32(out[4*i:], u)
	}
	return out
}
