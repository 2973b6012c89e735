package window

import (
	"fmt"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/quadgl/internal/engine/input"
	"github.com/Faultbox/quadgl/internal/logger"
)

// sdlWindow wraps an SDL2 window and its OpenGL context.
type sdlWindow struct {
	config    Config
	sdlWindow *sdl.Window
	glContext sdl.GLContext
}

func newSDL(cfg Config) (*sdlWindow, error) {
	w := &sdlWindow{
		config: cfg,
	}

	logger.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	// Set OpenGL attributes BEFORE creating window
	// We want OpenGL 4.1 Core Profile (max supported on macOS)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	var err error
	w.sdlWindow, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width),
		int32(cfg.Height),
		flags,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.glContext, err = w.sdlWindow.GLCreateContext()
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	interval := 0
	if cfg.VSync {
		interval = 1
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		logger.Warn("failed to set swap interval", zap.Int("interval", interval), zap.Error(err))
	}

	logger.Info("window created",
		zap.String("backend", BackendSDL),
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
	)
	return w, nil
}

func (w *sdlWindow) PollEvents(in *input.Input) {
	in.Reset()
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			in.Push(input.Event{Type: input.EventQuit})

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				width, height := w.FramebufferSize()
				in.Push(input.Event{
					Type:   input.EventFramebufferResize,
					Width:  width,
					Height: height,
				})
			}

		case *sdl.KeyboardEvent:
			if e.Repeat != 0 {
				continue
			}
			ev := input.Event{Type: input.EventKeyDown, Key: sdlKey(e.Keysym.Scancode)}
			if e.Type == sdl.KEYUP {
				ev.Type = input.EventKeyUp
			}
			in.Push(ev)
		}
	}
}

func sdlKey(sc sdl.Scancode) input.Key {
	switch sc {
	case sdl.SCANCODE_ESCAPE:
		return input.KeyEscape
	case sdl.SCANCODE_F12:
		return input.KeyF12
	case sdl.SCANCODE_W:
		return input.KeyW
	case sdl.SCANCODE_R:
		return input.KeyR
	default:
		return input.KeyUnknown
	}
}

func (w *sdlWindow) SwapBuffers() {
	w.sdlWindow.GLSwap()
}

func (w *sdlWindow) FramebufferSize() (int, int) {
	width, height := w.sdlWindow.GLGetDrawableSize()
	return int(width), int(height)
}

func (w *sdlWindow) ProcAddress(name string) unsafe.Pointer {
	return sdl.GLGetProcAddress(name)
}

func (w *sdlWindow) SetTitle(title string) {
	w.sdlWindow.SetTitle(title)
}

func (w *sdlWindow) Close() {
	logger.Info("closing window", zap.String("backend", BackendSDL))

	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}

	sdl.Quit()
}
