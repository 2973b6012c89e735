// Package window creates the OS window and the OpenGL context the engine renders into.
package window

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/Faultbox/quadgl/internal/engine/input"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// Backend names accepted in Config.Backend.
const (
	BackendSDL  = "sdl"
	BackendGLFW = "glfw"
)

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
	Backend    string
}

// Window is a window with a current OpenGL 4.1 core context.
type Window interface {
	// PollEvents pumps the window system and pushes this frame's events into in.
	PollEvents(in *input.Input)
	// SwapBuffers presents the back buffer; may block on vsync.
	SwapBuffers()
	// FramebufferSize returns the drawable size in pixels.
	FramebufferSize() (width, height int)
	// ProcAddress resolves a GL entry point for the current context.
	ProcAddress(name string) unsafe.Pointer
	SetTitle(title string)
	// Close destroys the context and the window.
	Close()
}

// New opens a window on the configured backend. An empty backend selects SDL2.
func New(cfg Config) (Window, error) {
	switch cfg.Backend {
	case "", BackendSDL:
		w, err := newSDL(cfg)
		if err != nil {
			return nil, err
		}
		return w, nil
	case BackendGLFW:
		w, err := newGLFW(cfg)
		if err != nil {
			return nil, err
		}
		return w, nil
	default:
		return nil, fmt.Errorf("unknown window backend %q", cfg.Backend)
	}
}
