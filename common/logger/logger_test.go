package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_WritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.log")
	l := New("warn", DefaultFileConfig(path), false)

	l.Infow("dropped", "k", 1)
	l.Warnw("kept", "score", 3)
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.Contains(out, `"msg":"kept"`), out)
	assert.True(t, strings.Contains(out, `"score":3`), out)
	assert.False(t, strings.Contains(out, "dropped"), out)
}

func TestDefaultLogger(t *testing.T) {
	assert.NotNil(t, L())

	path := filepath.Join(t.TempDir(), "default.log")
	l := New("debug", DefaultFileConfig(path), false)
	SetDefault(l)
	t.Cleanup(func() { SetDefault(New("info", FileConfig{}, false)) })

	Named("renderer").Debug("hello")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"logger":"renderer"`)
}
