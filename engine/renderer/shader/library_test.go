package shader

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func file(src string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(src)}
}

func TestLibrary_ResolvesRelativeRootedAndDotPaths(t *testing.T) {
	fsys := fstest.MapFS{
		"main.wgsl":             file("@import 'lib/a'\nmain body"),
		"lib/a.wgsl":            file("@import './b.wgsl'\n@import '/top'\na body"),
		"lib/b.wgsl":            file("b body"),
		"top.wgsl":              file("top body"),
		"materials/metal.wgsl":  file("@import 'inner'\nmetal"),
		"materials/inner.wgsl":  file("inner"),
		"materials/unused.wgsl": file("unused"),
	}
	lib := NewLibrary(fsys)

	src, err := lib.Source("main")
	require.NoError(t, err)
	assert.Equal(t, "b body\ntop body\na body\nmain body\n", src)

	src, err = lib.Source("materials/metal.wgsl")
	require.NoError(t, err)
	assert.Equal(t, "inner\nmetal\n", src)
}

func TestLibrary_IncludesEachFileOnce(t *testing.T) {
	fsys := fstest.MapFS{
		"a.wgsl":      file("@import 'common'\n@import 'b'\na"),
		"b.wgsl":      file("@import 'common'\nb"),
		"common.wgsl": file("common"),
	}
	src, err := NewLibrary(fsys).Source("a")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(src, "common"))
	assert.Equal(t, "common\nb\na\n", src)
}

func TestLibrary_RejectsCycles(t *testing.T) {
	fsys := fstest.MapFS{
		"a.wgsl": file("@import 'b'"),
		"b.wgsl": file("@import 'a'"),
	}
	_, err := NewLibrary(fsys).Source("a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImportCycle)

	var re *ResolutionError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "a", re.Shader)
	assert.Equal(t, "a", re.Import)
}

func TestLibrary_MissingImportIsResolutionError(t *testing.T) {
	fsys := fstest.MapFS{
		"a.wgsl": file("@import 'nope'\na"),
	}
	_, err := NewLibrary(fsys).Source("a")
	assert.ErrorIs(t, err, ErrShaderNotFound)

	var re *ResolutionError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "nope", re.Import)
	assert.Contains(t, re.Error(), `import "nope"`)

	_, err = NewLibrary(fsys).Source("missing")
	assert.ErrorIs(t, err, ErrShaderNotFound)
}

func TestLibrary_ParentImportIsDroppedWithWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	fsys := fstest.MapFS{
		"dir/a.wgsl": file("@import '../b'\na"),
		"b.wgsl":     file("b"),
	}
	src, err := NewLibrary(fsys, WithLogger(zap.New(core).Sugar())).Source("dir/a")
	require.NoError(t, err)
	assert.Equal(t, "a\n", src)
	assert.Equal(t, 1, logs.FilterMessageSnippet("parent directory").Len())
}

func TestLibrary_ImportMustBeWholeLine(t *testing.T) {
	fsys := fstest.MapFS{
		"a.wgsl": file("// @import 'b'\n  @import 'b'  \n"),
		"b.wgsl": file("b"),
	}
	src, err := NewLibrary(fsys).Source("a")
	require.NoError(t, err)
	assert.Equal(t, "// @import 'b'\nb\n\n", src)
}

func TestLibrary_ModulesShadowFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"a.wgsl":     file("@import '/extra'\n@import '/scene'"),
		"extra.wgsl": file("from file"),
	}
	src, err := NewLibrary(fsys, WithModule("extra", "from module")).Source("a")
	require.NoError(t, err)
	assert.Contains(t, src, "from module")
	assert.NotContains(t, src, "from file")
	assert.Contains(t, src, "var<uniform> scene: Scene;")
}

func TestLibrary_ShaderEntryPointsAndCache(t *testing.T) {
	fsys := fstest.MapFS{
		"prog.wgsl": file("/* @vertex fn fake() */\n@vertex\nfn vs() {}\n@fragment fn fs() {}\n"),
		"half.wgsl": file("@vertex fn vs() {}\n"),
	}
	lib := NewLibrary(fsys)

	s, err := lib.Shader("prog")
	require.NoError(t, err)
	assert.Equal(t, "vs", s.EntryPoint(StageVertex))
	assert.Equal(t, "fs", s.EntryPoint(StageFragment))
	assert.Equal(t, "prog", s.Module().Label)

	again, err := lib.Shader("prog")
	require.NoError(t, err)
	assert.Same(t, s, again)

	_, err = lib.Shader("half")
	assert.ErrorIs(t, err, ErrMissingEntryPoint)
}

func TestLibrary_EmbeddedAssetsResolve(t *testing.T) {
	lib := NewLibrary(Assets())
	for _, name := range []string{ShaderDefault, ShaderBall, ShaderDebug} {
		s, err := lib.Shader(name)
		require.NoError(t, err, name)
		assert.Equal(t, 1, strings.Count(s.Source(), "struct Scene"), name)
		assert.NotContains(t, s.Source(), "@import", name)
	}

	def, err := lib.Shader(ShaderDefault)
	require.NoError(t, err)
	assert.Equal(t, "vert", def.EntryPoint(StageVertex))
	assert.Equal(t, "frag", def.EntryPoint(StageFragment))
}
