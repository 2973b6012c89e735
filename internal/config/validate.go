package config

import (
	"errors"
	"fmt"
)

// Validate reports settings that cannot start the application.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	switch c.Window.Backend {
	case "", "sdl", "glfw":
	default:
		errs = append(errs, fmt.Errorf("unknown window backend %q", c.Window.Backend))
	}
	if c.Shaders.WGSL == "" && (c.Shaders.Vertex == "") != (c.Shaders.Fragment == "") {
		errs = append(errs, errors.New("shaders.vertex and shaders.fragment must be set together"))
	}
	for i, v := range c.Render.ClearColor {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("render.clear_color[%d] = %g outside 0..1", i, v))
		}
	}
	return errors.Join(errs...)
}
