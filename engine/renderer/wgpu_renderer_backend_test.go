package renderer

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// recordingEncoder stands in for the frame command encoder and records timestamp writes.
type recordingEncoder struct {
	querySets []*wgpu.QuerySet
	indices   []uint32
	failAt    int
}

func (e *recordingEncoder) WriteTimestamp(querySet *wgpu.QuerySet, queryIndex uint32) error {
	if e.failAt > 0 && len(e.indices)+1 == e.failAt {
		return errors.New("query set destroyed")
	}
	e.querySets = append(e.querySets, querySet)
	e.indices = append(e.indices, queryIndex)
	return nil
}

// frameTimestampWrites runs the timestamp part of one frame: the write before the main pass and the one after it.
func frameTimestampWrites(b *wgpuRendererBackendImpl, enc *recordingEncoder, requested bool) {
	b.frameTimestamps = b.mainPassTimestamps(requested)
	b.writeTimestamp(enc, 0)
	b.writeTimestamp(enc, 1)
}

func TestWGPUBackend_MainPassTimestampWrites(t *testing.T) {
	tests := []struct {
		name      string
		requested bool
		supported bool
		pending   bool
		want      []uint32
	}{
		{name: "slot empty", requested: true, supported: true, want: []uint32{0, 1}},
		{name: "readback in flight", requested: true, supported: true, pending: true},
		{name: "not requested", supported: true},
		{name: "adapter without timestamps", requested: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &wgpuRendererBackendImpl{log: zap.NewNop().Sugar(), readbackPending: tt.pending}
			if tt.supported {
				b.querySet = &wgpu.QuerySet{}
			}
			enc := &recordingEncoder{}

			frameTimestampWrites(b, enc, tt.requested)

			assert.Equal(t, tt.want, enc.indices)
			for _, qs := range enc.querySets {
				assert.Same(t, b.querySet, qs)
			}
			assert.Equal(t, tt.want != nil, b.frameTimestamps)
		})
	}
}

func TestWGPUBackend_FailedTimestampWriteSkipsResolve(t *testing.T) {
	b := &wgpuRendererBackendImpl{log: zap.NewNop().Sugar(), querySet: &wgpu.QuerySet{}}
	enc := &recordingEncoder{failAt: 1}

	frameTimestampWrites(b, enc, true)

	assert.Empty(t, enc.indices)
	assert.False(t, b.frameTimestamps)
}
