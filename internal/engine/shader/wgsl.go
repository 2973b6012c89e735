package shader

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/ir"

	"github.com/Faultbox/quadgl/internal/engine/gpu"
)

// TranslateWGSL compiles one entry point of a WGSL module to GLSL 3.30 core.
func TranslateWGSL(source, entry string, stage gpu.Stage) (string, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return "", fmt.Errorf("wgsl: %w", err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return "", fmt.Errorf("wgsl: lowering: %w", err)
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return "", fmt.Errorf("wgsl: validation: %w", err)
	}
	if len(verrs) > 0 {
		return "", fmt.Errorf("wgsl: validation failed: %w", verrs[0])
	}

	entry, err = resolveEntryPoint(module, entry, stage)
	if err != nil {
		return "", err
	}

	out, _, err := glsl.Compile(module, glsl.Options{
		LangVersion: glsl.Version330,
		EntryPoint:  entry,
	})
	if err != nil {
		return "", fmt.Errorf("wgsl: %w", err)
	}
	return out, nil
}

func resolveEntryPoint(module *ir.Module, entry string, stage gpu.Stage) (string, error) {
	want := ir.StageVertex
	if stage == gpu.StageFragment {
		want = ir.StageFragment
	}
	for _, ep := range module.EntryPoints {
		if entry == "" {
			if ep.Stage == want {
				return ep.Name, nil
			}
			continue
		}
		if ep.Name != entry {
			continue
		}
		if ep.Stage != want {
			return "", fmt.Errorf("wgsl: entry point %q is not a %s entry point", ep.Name, stage)
		}
		return ep.Name, nil
	}
	if entry != "" {
		return "", fmt.Errorf("wgsl: entry point %q not found", entry)
	}
	return "", fmt.Errorf("wgsl: no %s entry point", stage)
}
