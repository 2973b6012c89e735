// Package app wires the window, GPU device and scene into the main loop.
package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/quadgl/internal/config"
	"github.com/Faultbox/quadgl/internal/engine/debug"
	"github.com/Faultbox/quadgl/internal/engine/gpu/glcore"
	"github.com/Faultbox/quadgl/internal/engine/input"
	"github.com/Faultbox/quadgl/internal/engine/shader"
	"github.com/Faultbox/quadgl/internal/engine/window"
	"github.com/Faultbox/quadgl/internal/logger"
)

// App is the main application instance.
type App struct {
	config  *config.Config
	running bool
	window  window.Window
	device  *glcore.Device
	scene   *Scene
	input   *input.Input
	watcher *shader.Watcher
	capture *debug.ScreenshotCapture
	log     *zap.Logger
}

// New opens the window, loads OpenGL and builds the scene.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		config:  cfg,
		input:   input.New(),
		capture: debug.NewScreenshotCapture(cfg.Capture.Dir, "quad"),
		log:     logger.Named("app"),
	}
	a.log.Info("initializing",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.String("backend", cfg.Window.Backend),
	)

	// Create window (this also creates the OpenGL context)
	var err error
	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Backend:    cfg.Window.Backend,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// GL entry points can only be loaded once a context is current
	a.device, err = glcore.New(a.window.ProcAddress)
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to load OpenGL: %w", err)
	}

	width, height := a.window.FramebufferSize()
	a.scene, err = NewScene(a.device, cfg, width, height)
	if err != nil {
		a.window.Close()
		return nil, err
	}

	if cfg.Shaders.HotReload {
		paths := a.scene.Program().Source().Paths()
		if len(paths) == 0 {
			a.log.Info("hot reload requested but shaders are embedded; ignoring")
		} else if a.watcher, err = shader.NewWatcher(paths...); err != nil {
			a.log.Warn("shader hot reload unavailable", zap.Error(err))
			a.watcher = nil
		}
	}

	a.log.Info("initialized successfully")
	return a, nil
}

// Run runs the main loop until the window is closed or Escape is pressed.
func (a *App) Run() error {
	a.running = true

	start := time.Now()
	lastTime := start
	frameCount := 0
	fpsTimer := start

	a.log.Info("starting main loop")

	for a.running {
		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		// 1. Process input
		a.window.PollEvents(a.input)
		if a.input.QuitRequested() || a.input.IsKeyPressed(input.KeyEscape) {
			a.running = false
			break
		}
		a.scene.HandleInput(a.input)

		// 2. Shader reload, manual or from the watcher
		reload := a.input.IsKeyPressed(input.KeyR)
		if a.watcher != nil && a.watcher.Poll() {
			reload = true
		}
		if reload {
			a.scene.Reload()
		}

		// 3. Render
		if err := a.scene.Frame(now.Sub(start)); err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		if a.input.IsKeyPressed(input.KeyF12) {
			a.screenshot()
		}

		// 4. Present (swap buffers)
		a.window.SwapBuffers()

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frameCount), zap.Duration("dt", dt))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// screenshot saves the frame just rendered, before it is presented.
func (a *App) screenshot() {
	width, height := a.scene.Renderer().Size()
	path, err := a.capture.Capture(a.device, width, height)
	if err != nil {
		a.log.Error("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

// Close releases GPU resources before destroying the context.
func (a *App) Close() {
	a.log.Info("closing")

	if a.scene != nil {
		a.scene.Close()
	}
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.log.Warn("closing shader watcher", zap.Error(err))
		}
	}
	if a.window != nil {
		a.window.Close()
	}
}
