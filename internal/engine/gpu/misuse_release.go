//go:build !gldebug

package gpu

const panicOnMisuse = false
