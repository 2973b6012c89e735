package shader

import (
	"errors"
	"fmt"

	"github.com/Faultbox/quadgl/internal/engine/gpu"
)

var (
	// ErrEmptySource is the cause of a SourceLoadError for a blank stage.
	ErrEmptySource = errors.New("source is empty")

	// ErrNotActive is reported when a uniform is written while another program is current.
	ErrNotActive = errors.New("shader: program is not the active program")
)

// SourceLoadError reports a stage source that could not be read or translated.
type SourceLoadError struct {
	Stage gpu.Stage
	Path  string
	Err   error
}

func (e *SourceLoadError) Error() string {
	return fmt.Sprintf("loading %s shader %s: %v", e.Stage, e.Path, e.Err)
}

func (e *SourceLoadError) Unwrap() error { return e.Err }

// CompileError carries the driver info log of a stage that failed to compile.
type CompileError struct {
	Stage gpu.Stage
	Path  string
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiling %s shader %s: %s", e.Stage, e.Path, e.Log)
}

// LinkError carries the driver info log of a failed program link.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return "linking program: " + e.Log
}
