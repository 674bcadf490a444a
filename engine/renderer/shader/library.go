package shader

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"sync"

	"github.com/DatBlindArcher/bin-thrower/engine/camera"
	"go.uber.org/zap"
)

// Logical names of the shaders shipped with the game.
const (
	// ShaderDefault is the lit material used for level geometry.
	ShaderDefault = "default"
	// ShaderBall is the lit material used for projectiles.
	ShaderBall = "defaultb"
	// ShaderDebug draws physics debug lines.
	ShaderDebug = "debug"
	// ModuleScene is the built-in module declaring the shared scene uniform at group 0, binding 0.
	ModuleScene = "scene"
)

const wgslExt = ".wgsl"

//go:embed assets
var assets embed.FS

// Assets returns the embedded shader tree rooted at its top directory.
//
// Returns:
//   - fs.FS: file system holding the built-in .wgsl sources
func Assets() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(fmt.Sprintf("shader: embedded assets: %v", err))
	}
	return sub
}

// sceneModuleSource is the scene struct plus its binding declaration.
var sceneModuleSource = camera.GPUSceneUniformSource + "\n@group(0) @binding(0) var<uniform> scene: Scene;\n"

// library is the implementation of the Library interface.
type library struct {
	mu *sync.Mutex

	fsys    fs.FS
	modules map[string]string
	cache   map[string]Shader
	log     *zap.SugaredLogger
}

// Library loads WGSL programs by logical name and expands their @import directives.
//
// An import is a line of the form @import 'path'. Paths resolve relative to the importing file's directory;
// a leading / resolves from the root, a leading ./ is ignored and the .wgsl extension is optional.
// Each file is included at most once per program and cycles are rejected. Parent-directory (../) imports
// are not supported: the line is dropped and a warning is logged.
type Library interface {
	// Source resolves the named program and returns its expanded WGSL.
	//
	// Parameters:
	//   - name: logical shader name, e.g. "default" or "lib/lighting"
	//
	// Returns:
	//   - string: the expanded source
	//   - error: a *ResolutionError if the program or an import is missing or cyclic
	Source(name string) (string, error)

	// Shader resolves the named program and wraps it as a Shader. Results are cached by name.
	//
	// Parameters:
	//   - name: logical shader name
	//
	// Returns:
	//   - Shader: the resolved shader
	//   - error: a *ResolutionError, or ErrMissingEntryPoint if the program lacks a stage
	Shader(name string) (Shader, error)
}

var _ Library = &library{}

// NewLibrary creates a Library reading .wgsl files from fsys. The scene module is always available
// under ModuleScene and takes precedence over a file with the same name.
//
// Parameters:
//   - fsys: file system with shader sources, typically Assets() or os.DirFS
//   - options: functional options to configure the library
//
// Returns:
//   - Library: the shader library
func NewLibrary(fsys fs.FS, options ...LibraryBuilderOption) Library {
	l := &library{
		mu:      &sync.Mutex{},
		fsys:    fsys,
		modules: map[string]string{ModuleScene: sceneModuleSource},
		cache:   make(map[string]Shader),
		log:     zap.NewNop().Sugar(),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *library) Source(name string) (string, error) {
	root := strings.TrimSuffix(strings.TrimPrefix(name, "/"), wgslExt)

	var sb strings.Builder
	included := make(map[string]struct{})
	if err := l.expand(root, root, nil, included, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (l *library) Shader(name string) (Shader, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if s, ok := l.cache[name]; ok {
		return s, nil
	}
	src, err := l.Source(name)
	if err != nil {
		return nil, err
	}
	s, err := NewShader(name, src)
	if err != nil {
		return nil, &ResolutionError{Shader: name, Err: err}
	}
	l.cache[name] = s
	return s, nil
}

// expand writes the source of name into out, recursively replacing import lines.
func (l *library) expand(root, name string, stack []string, included map[string]struct{}, out *strings.Builder) error {
	if slices.Contains(stack, name) {
		chain := strings.Join(append(stack, name), " -> ")
		return &ResolutionError{Shader: root, Import: name, Err: fmt.Errorf("%w: %s", ErrImportCycle, chain)}
	}
	if _, ok := included[name]; ok {
		return nil
	}
	included[name] = struct{}{}

	src, err := l.read(name)
	if err != nil {
		return &ResolutionError{Shader: root, Import: name, Err: err}
	}

	dir := ""
	if i := strings.LastIndex(name, "/"); i >= 0 {
		dir = name[:i+1]
	}
	stack = append(stack, name)

	for line := range strings.SplitSeq(src, "\n") {
		match := importRegex.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if match == nil {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}

		target, ok := importPath(match[1], dir)
		if !ok {
			l.log.Warnw("parent directory imports are not supported, dropping import",
				"shader", name, "import", match[1])
			continue
		}
		if err := l.expand(root, target, stack, included, out); err != nil {
			return err
		}
	}
	return nil
}

func (l *library) read(name string) (string, error) {
	if src, ok := l.modules[name]; ok {
		return src, nil
	}
	if l.fsys == nil {
		return "", ErrShaderNotFound
	}
	data, err := fs.ReadFile(l.fsys, name+wgslExt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrShaderNotFound, err)
	}
	return string(data), nil
}

// importPath maps an import argument to a logical name relative to dir. It reports false for ../ paths.
func importPath(p, dir string) (string, bool) {
	p = strings.TrimSuffix(p, wgslExt)

	if rooted, ok := strings.CutPrefix(p, "/"); ok {
		return rooted, true
	}
	if strings.HasPrefix(p, "../") {
		return "", false
	}
	p = strings.TrimPrefix(p, "./")
	return dir + p, true
}
