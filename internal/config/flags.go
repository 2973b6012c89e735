package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagBackend    = flag.String("backend", "", "Window backend (sdl or glfw)")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagVertex     = flag.String("vertex", "", "Vertex shader GLSL file")
	flagFragment   = flag.String("fragment", "", "Fragment shader GLSL file")
	flagWGSL       = flag.String("wgsl", "", "WGSL module providing both shader stages")
	flagHotReload  = flag.Bool("hot-reload", false, "Rebuild shaders when their files change")
	flagWireframe  = flag.Bool("wireframe", false, "Start in wireframe mode")
	flagSaveConfig = flag.String("save-config", "", "Write the effective config to this path and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagBackend != "" {
		cfg.Window.Backend = *flagBackend
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagVertex != "" {
		cfg.Shaders.Vertex = *flagVertex
	}
	if *flagFragment != "" {
		cfg.Shaders.Fragment = *flagFragment
	}
	if *flagWGSL != "" {
		cfg.Shaders.WGSL = *flagWGSL
	}
	if *flagHotReload {
		cfg.Shaders.HotReload = true
	}
	if *flagWireframe {
		cfg.Render.Wireframe = true
	}
}

// SaveConfigPath returns the --save-config destination, if any.
func SaveConfigPath() string {
	return *flagSaveConfig
}
