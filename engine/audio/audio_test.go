package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, s beep.Streamer) [][2]float64 {
	t.Helper()
	var out [][2]float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			break
		}
		require.Less(t, len(out), 1<<20, "stream never ended")
	}
	require.NoError(t, s.Err())
	return out
}

func TestTone_StopsAfterDuration(t *testing.T) {
	rate := beep.SampleRate(44100)
	samples := drain(t, newTone(100*time.Millisecond, rate, 440))
	assert.Len(t, samples, rate.N(100*time.Millisecond))
	for _, s := range samples {
		assert.InDelta(t, 0, s[0], 1)
		assert.Equal(t, s[0], s[1])
	}
}

func TestChime_IsBoundedAndFades(t *testing.T) {
	rate := beep.SampleRate(44100)
	samples := drain(t, NewChime(rate, 1))
	require.Len(t, samples, rate.N(250*time.Millisecond))

	peak := func(part [][2]float64) float64 {
		var m float64
		for _, s := range part {
			m = max(m, s[0], -s[0])
		}
		return m
	}
	n := len(samples)
	head, tail := peak(samples[:n/4]), peak(samples[3*n/4:])
	assert.LessOrEqual(t, head, 1.0)
	assert.Greater(t, head, 0.1)
	assert.Less(t, tail, head/2)
	// Attack starts from silence.
	assert.Equal(t, 0.0, samples[0][0])
}

func TestChime_ZeroVolumeIsSilent(t *testing.T) {
	for _, s := range drain(t, NewChime(beep.SampleRate(22050), 0)) {
		assert.Equal(t, 0.0, s[0])
	}
}

func TestNullPlayer(t *testing.T) {
	p := NewNullPlayer()
	p.PlayScore()
	p.Close()
}
