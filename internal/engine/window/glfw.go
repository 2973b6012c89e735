package window

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/Faultbox/quadgl/internal/engine/input"
	"github.com/Faultbox/quadgl/internal/logger"
)

// glfwWindow wraps a GLFW window. GLFW reports events through callbacks, which are
// queued here and handed out on the next PollEvents.
type glfwWindow struct {
	config  Config
	handle  *glfw.Window
	pending []input.Event
}

func newGLFW(cfg Config) (*glfwWindow, error) {
	logger.Info("initializing GLFW")
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfwInit failed: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	var monitor *glfw.Monitor
	if cfg.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	handle, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("glfwCreateWindow failed: %w", err)
	}
	handle.MakeContextCurrent()

	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	w := &glfwWindow{config: cfg, handle: handle}
	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.pending = append(w.pending, input.Event{
			Type:   input.EventFramebufferResize,
			Width:  width,
			Height: height,
		})
	})
	handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		switch action {
		case glfw.Press:
			w.pending = append(w.pending, input.Event{Type: input.EventKeyDown, Key: glfwKey(key)})
		case glfw.Release:
			w.pending = append(w.pending, input.Event{Type: input.EventKeyUp, Key: glfwKey(key)})
		}
	})

	logger.Info("window created",
		zap.String("backend", BackendGLFW),
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
	)
	return w, nil
}

func (w *glfwWindow) PollEvents(in *input.Input) {
	in.Reset()
	glfw.PollEvents()
	for _, e := range w.pending {
		in.Push(e)
	}
	w.pending = w.pending[:0]
	if w.handle.ShouldClose() {
		in.Push(input.Event{Type: input.EventQuit})
	}
}

func glfwKey(k glfw.Key) input.Key {
	switch k {
	case glfw.KeyEscape:
		return input.KeyEscape
	case glfw.KeyF12:
		return input.KeyF12
	case glfw.KeyW:
		return input.KeyW
	case glfw.KeyR:
		return input.KeyR
	default:
		return input.KeyUnknown
	}
}

func (w *glfwWindow) SwapBuffers() {
	w.handle.SwapBuffers()
}

func (w *glfwWindow) FramebufferSize() (int, int) {
	return w.handle.GetFramebufferSize()
}

func (w *glfwWindow) ProcAddress(name string) unsafe.Pointer {
	return glfw.GetProcAddress(name)
}

func (w *glfwWindow) SetTitle(title string) {
	w.handle.SetTitle(title)
}

func (w *glfwWindow) Close() {
	logger.Info("closing window", zap.String("backend", BackendGLFW))
	w.handle.Destroy()
	glfw.Terminate()
}
