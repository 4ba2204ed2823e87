package audio

import (
	"math/rand"
	"time"

	"github.com/faiface/beep"
)

// BufferDuration is the length of one noise buffer.
const BufferDuration = time.Second

// NoiseBuffer is a block of mono white noise samples in [-1, 1]. It is not
// modified after it is queued.
type NoiseBuffer []float32

// NewNoiseBuffer fills sampleRate.N(d) samples independently and uniformly from rng.
func NewNoiseBuffer(rng *rand.Rand, sampleRate beep.SampleRate, d time.Duration) NoiseBuffer {
	buf := make(NoiseBuffer, sampleRate.N(d))
	for i := range buf {
		buf[i] = float32(rng.Float64()*2 - 1)
	}
	return buf
}

// Streamer plays the buffer once on both channels.
func (b NoiseBuffer) Streamer() beep.Streamer {
	return &bufferStreamer{samples: b}
}

type bufferStreamer struct {
	samples NoiseBuffer
	pos     int
}

func (s *bufferStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	n = ToStereo(s.samples[s.pos:], samples)
	s.pos += n
	return n, true
}

func (s *bufferStreamer) Err() error {
	return nil
}
