package gpu

import (
	"go.uber.org/zap"

	"github.com/Faultbox/quadgl/internal/logger"
)

// Misuse reports a programming error such as drawing from a released buffer.
// It always logs; in binaries built with the gldebug tag it also panics.
// The error is returned unchanged so callers can propagate it.
func Misuse(err error) error {
	if err == nil {
		return nil
	}
	logger.Error("gpu misuse", zap.Error(err), zap.Stack("stack"))
	if panicOnMisuse {
		panic(err)
	}
	return err
}
