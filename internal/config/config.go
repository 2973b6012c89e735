// Package config handles application configuration loading and management.
package config

// Config holds all application settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Shaders ShaderConfig  `yaml:"shaders"`
	Render  RenderConfig  `yaml:"render"`
	Capture CaptureConfig `yaml:"capture"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	Backend    string `yaml:"backend"` // "sdl" or "glfw"
}

// ShaderConfig selects the shader sources. With no paths set the embedded
// GLSL pair is used; WGSL takes precedence over Vertex/Fragment.
type ShaderConfig struct {
	Vertex        string `yaml:"vertex"`
	Fragment      string `yaml:"fragment"`
	WGSL          string `yaml:"wgsl"`
	VertexEntry   string `yaml:"vertex_entry"`
	FragmentEntry string `yaml:"fragment_entry"`
	HotReload     bool   `yaml:"hot_reload"`
}

// RenderConfig holds per-frame rendering settings.
type RenderConfig struct {
	ClearColor [4]float32 `yaml:"clear_color"`
	Wireframe  bool       `yaml:"wireframe"`
	Pulse      bool       `yaml:"pulse"`
}

// CaptureConfig holds screenshot settings.
type CaptureConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "quadgl",
			Width:      800,
			Height:     600,
			Fullscreen: false,
			VSync:      true,
			Backend:    "sdl",
		},
		Shaders: ShaderConfig{
			VertexEntry:   "vs_main",
			FragmentEntry: "fs_main",
		},
		Render: RenderConfig{
			ClearColor: [4]float32{0.2, 0.3, 0.3, 1.0},
			Wireframe:  false,
			Pulse:      true,
		},
		Capture: CaptureConfig{
			Dir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
