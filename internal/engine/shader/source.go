package shader

import (
	"fmt"
	"os"
	"strings"

	"github.com/Faultbox/quadgl/internal/engine/gpu"
)

type textKind int

const (
	kindInline textKind = iota
	kindFile
	kindWGSL
)

// Text is the source of one stage: inline GLSL, a GLSL file, or an entry point of a
// WGSL file translated to GLSL at load time.
type Text struct {
	kind  textKind
	path  string
	text  string
	entry string
}

// File returns a stage source read from a GLSL file.
func File(path string) Text {
	return Text{kind: kindFile, path: path}
}

// Inline returns a stage source held in memory.
func Inline(src string) Text {
	return Text{kind: kindInline, text: src}
}

// WGSL returns a stage source translated from the named entry point of a WGSL file.
// An empty entry selects the first entry point of the requested stage.
func WGSL(path, entry string) Text {
	return Text{kind: kindWGSL, path: path, entry: entry}
}

// Origin names where the text comes from, for diagnostics.
func (t Text) Origin() string {
	switch t.kind {
	case kindFile:
		return t.path
	case kindWGSL:
		if t.entry != "" {
			return t.path + "#" + t.entry
		}
		return t.path
	default:
		return "<inline>"
	}
}

// Path returns the file backing the text, or "" for inline sources.
func (t Text) Path() string { return t.path }

// Load returns the GLSL text for stage.
func (t Text) Load(stage gpu.Stage) (string, error) {
	var (
		src string
		err error
	)
	switch t.kind {
	case kindFile:
		src, err = readFile(t.path)
	case kindWGSL:
		src, err = readFile(t.path)
		if err == nil {
			src, err = TranslateWGSL(src, t.entry, stage)
		}
	default:
		src = t.text
	}
	if err == nil && strings.TrimSpace(src) == "" {
		err = ErrEmptySource
	}
	if err != nil {
		return "", &SourceLoadError{Stage: stage, Path: t.Origin(), Err: err}
	}
	return src, nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Source is a vertex/fragment pair.
type Source struct {
	Vertex   Text
	Fragment Text
}

// Files returns a Source backed by two GLSL files.
func Files(vertexPath, fragmentPath string) Source {
	return Source{Vertex: File(vertexPath), Fragment: File(fragmentPath)}
}

// Strings returns a Source held in memory.
func Strings(vertex, fragment string) Source {
	return Source{Vertex: Inline(vertex), Fragment: Inline(fragment)}
}

// WGSLModule returns a Source translating both stages from one WGSL file.
func WGSLModule(path, vertexEntry, fragmentEntry string) Source {
	return Source{Vertex: WGSL(path, vertexEntry), Fragment: WGSL(path, fragmentEntry)}
}

// Paths returns the files the source depends on, without duplicates.
func (s Source) Paths() []string {
	var out []string
	for _, t := range []Text{s.Vertex, s.Fragment} {
		if t.path == "" {
			continue
		}
		if len(out) == 1 && out[0] == t.path {
			continue
		}
		out = append(out, t.path)
	}
	return out
}

func (s Source) String() string {
	return fmt.Sprintf("%s + %s", s.Vertex.Origin(), s.Fragment.Origin())
}
