package shader

import "go.uber.org/zap"

// LibraryBuilderOption is a functional option used to configure a Library during construction.
type LibraryBuilderOption func(*library)

// WithModule registers an in-memory module under name. Modules shadow files of the same name.
//
// Parameters:
//   - name: logical name used in @import directives, without extension
//   - source: the WGSL source of the module
//
// Returns:
//   - LibraryBuilderOption: option function to apply
func WithModule(name, source string) LibraryBuilderOption {
	return func(l *library) {
		l.modules[name] = source
	}
}

// WithLogger sets the logger used for resolution warnings.
//
// Parameters:
//   - log: the logger; nil keeps the no-op default
//
// Returns:
//   - LibraryBuilderOption: option function to apply
func WithLogger(log *zap.SugaredLogger) LibraryBuilderOption {
	return func(l *library) {
		if log != nil {
			l.log = log
		}
	}
}
