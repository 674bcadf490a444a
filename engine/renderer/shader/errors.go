package shader

import (
	"errors"
	"fmt"
)

var (
	// ErrShaderNotFound is returned when a shader or one of its imports does not exist.
	ErrShaderNotFound = errors.New("shader not found")

	// ErrImportCycle is returned when a shader transitively imports itself.
	ErrImportCycle = errors.New("import cycle")

	// ErrMissingEntryPoint is returned when a resolved program lacks a vertex or fragment entry point.
	ErrMissingEntryPoint = errors.New("missing entry point")
)

// ResolutionError reports a failure to resolve a shader or one of its imports.
type ResolutionError struct {
	// Shader is the logical name that was requested.
	Shader string
	// Import is the resolved path that failed, equal to Shader when the root itself failed.
	Import string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if e.Import == "" || e.Import == e.Shader {
		return fmt.Sprintf("resolve shader %q: %v", e.Shader, e.Err)
	}
	return fmt.Sprintf("resolve shader %q: import %q: %v", e.Shader, e.Import, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}
