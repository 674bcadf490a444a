package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProvider_Options(t *testing.T) {
	p := NewBindGroupProvider("entity params", WithBufferSize(0, 16), WithBufferSize(1, 32), WithIndexCount(36))

	assert.Equal(t, "entity params", p.Label())
	assert.Equal(t, uint64(16), p.BufferSize(0))
	assert.Equal(t, uint64(32), p.BufferSize(1))
	assert.Equal(t, uint64(0), p.BufferSize(2))
	assert.Equal(t, 36, p.IndexCount())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
}

func TestBindGroupProvider_ReleaseWithoutGPUResources(t *testing.T) {
	p := NewBindGroupProvider("empty")
	assert.False(t, p.Released())

	p.Release()
	assert.True(t, p.Released())
	assert.Empty(t, p.Buffers())
	assert.Nil(t, p.VertexBuffer())
	assert.Nil(t, p.IndexBuffer())
}
