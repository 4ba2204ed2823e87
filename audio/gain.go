package audio

import (
	"math"
	"sync/atomic"

	"github.com/faiface/beep"
)

// AudibleLevel is the gain applied while the noise is audible.
const AudibleLevel = 0.1

// GainNode scales its input by a single level. The level can be changed from
// any goroutine while the audio thread is streaming; changes apply instantly.
type GainNode struct {
	Streamer beep.Streamer
	level    atomic.Uint64
}

// NewGainNode returns a muted gain stage over s.
func NewGainNode(s beep.Streamer) *GainNode {
	return &GainNode{Streamer: s}
}

func (g *GainNode) Level() float64 {
	return math.Float64frombits(g.level.Load())
}

func (g *GainNode) Set(level float64) {
	g.level.Store(math.Float64bits(level))
}

// Audible reports whether the level is non-zero.
func (g *GainNode) Audible() bool {
	return g.Level() != 0
}

// Toggle switches between muted and AudibleLevel and reports whether the
// node is now audible.
func (g *GainNode) Toggle() bool {
	for {
		old := g.level.Load()
		next := AudibleLevel
		if math.Float64frombits(old) != 0 {
			next = 0
		}
		if g.level.CompareAndSwap(old, math.Float64bits(next)) {
			return next != 0
		}
	}
}

func (g *GainNode) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = g.Streamer.Stream(samples)
	gain := g.Level()
	for i := range samples[:n] {
		samples[i][0] *= gain
		samples[i][1] *= gain
	}
	return n, ok
}

func (g *GainNode) Err() error {
	return g.Streamer.Err()
}
