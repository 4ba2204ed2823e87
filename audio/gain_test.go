package audio

import (
	"sync"
	"testing"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
)

func constant(v float64) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{v, v}
		}
		return len(samples), true
	})
}

func TestGainStartsMuted(t *testing.T) {
	g := NewGainNode(constant(1))
	assert.Equal(t, 0.0, g.Level())
	assert.False(t, g.Audible())

	frames := make([][2]float64, 16)
	n, ok := g.Stream(frames)
	assert.Equal(t, 16, n)
	assert.True(t, ok)
	for _, f := range frames {
		assert.Equal(t, [2]float64{0, 0}, f)
	}
}

func TestGainToggle(t *testing.T) {
	g := NewGainNode(constant(1))

	assert.True(t, g.Toggle())
	assert.Equal(t, AudibleLevel, g.Level())

	frames := make([][2]float64, 4)
	g.Stream(frames)
	assert.Equal(t, [2]float64{AudibleLevel, AudibleLevel}, frames[0])

	assert.False(t, g.Toggle())
	assert.Equal(t, 0.0, g.Level())
}

func TestGainToggleTwiceRestores(t *testing.T) {
	g := NewGainNode(constant(1))
	for _, start := range []float64{0, AudibleLevel} {
		g.Set(start)
		g.Toggle()
		g.Toggle()
		assert.Equal(t, start, g.Level())
	}
}

func TestGainToggleConcurrent(t *testing.T) {
	g := NewGainNode(constant(1))
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Toggle()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0.0, g.Level(), "an even number of toggles ends muted")
}
