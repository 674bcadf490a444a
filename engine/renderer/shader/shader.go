package shader

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Stage identifies a programmable pipeline stage.
type Stage int

const (
	// StageVertex is the vertex stage of a render pipeline.
	StageVertex Stage = iota

	// StageFragment is the fragment stage of a render pipeline.
	StageFragment
)

// String implements fmt.Stringer.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// shader is the implementation of the Shader interface.
// It holds a fully resolved WGSL program with both stage entry points in one source.
type shader struct {
	key            string
	source         string
	vertexEntry    string
	fragmentEntry  string
	moduleDescript *wgpu.ShaderModuleDescriptor
}

// Shader is a resolved WGSL program ready for pipeline creation.
// All @import directives have been expanded; the source declares both a @vertex and a @fragment entry point.
type Shader interface {
	// Key returns the logical name the shader was loaded under.
	//
	// Returns:
	//   - string: the shader's name
	Key() string

	// Source returns the resolved WGSL source. Pipelines are cached by this value.
	//
	// Returns:
	//   - string: the WGSL source code
	Source() string

	// EntryPoint returns the entry point function name for the given stage.
	//
	// Parameters:
	//   - stage: the pipeline stage
	//
	// Returns:
	//   - string: the function name, or "" if the source has none for that stage
	EntryPoint(stage Stage) string

	// Module returns the wgpu.ShaderModuleDescriptor for this shader.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader wraps resolved WGSL source as a Shader.
//
// Parameters:
//   - key: the logical shader name
//   - source: fully resolved WGSL source
//
// Returns:
//   - Shader: the shader
//   - error: ErrMissingEntryPoint if the source lacks a vertex or fragment entry point
func NewShader(key, source string) (Shader, error) {
	s := &shader{
		key:           key,
		source:        source,
		vertexEntry:   parseEntryPoint(source, StageVertex),
		fragmentEntry: parseEntryPoint(source, StageFragment),
	}
	if s.vertexEntry == "" {
		return nil, fmt.Errorf("shader %q: %s: %w", key, StageVertex, ErrMissingEntryPoint)
	}
	if s.fragmentEntry == "" {
		return nil, fmt.Errorf("shader %q: %s: %w", key, StageFragment, ErrMissingEntryPoint)
	}
	s.moduleDescript = &wgpu.ShaderModuleDescriptor{
		Label: key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint(stage Stage) string {
	switch stage {
	case StageVertex:
		return s.vertexEntry
	case StageFragment:
		return s.fragmentEntry
	default:
		return ""
	}
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.moduleDescript
}
