package audio

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestQueueStreamsSilenceWhenEmpty(t *testing.T) {
	q := NewQueue()
	frames := [][2]float64{{1, 1}, {1, 1}}
	n, ok := q.Stream(frames)
	assert.Equal(t, 2, n)
	assert.True(t, ok)
	assert.Equal(t, [][2]float64{{0, 0}, {0, 0}}, frames)
	assert.Zero(t, q.Stats().Silence, "silence before the first buffer is not an underrun")
}

func TestQueuePlaysBuffersBackToBack(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	a := NewNoiseBuffer(rng, 1000, BufferDuration)
	b := NewNoiseBuffer(rng, 1000, BufferDuration)

	q := NewQueue()
	q.Enqueue(a)
	q.Enqueue(b)
	assert.Equal(t, 2, q.Pending())

	// An odd chunk size makes buffer boundaries fall inside a chunk.
	var got []float32
	frames := make([][2]float64, 333)
	for len(got) < len(a)+len(b) {
		n, _ := q.Stream(frames)
		for _, f := range frames[:n] {
			got = append(got, float32(f[0]))
		}
	}
	got = got[:len(a)+len(b)]
	assert.Equal(t, append(append([]float32{}, a...), b...), got)

	stats := q.Stats()
	assert.Equal(t, int64(2), stats.Finished)
	assert.Equal(t, int64(2000), stats.Played)
	assert.Zero(t, stats.Pending)
	assert.NotZero(t, stats.Silence)

	select {
	case <-q.Ended():
	default:
		t.Fatal("finishing a buffer must signal Ended")
	}
}

func TestLoopKeepsLookahead(t *testing.T) {
	q := NewQueue()
	l := NewLoop(q, rand.New(rand.NewSource(6)), 1000, zap.NewNop())
	l.Fill()
	assert.Equal(t, 2, q.Pending())
	assert.Equal(t, int64(2), l.Generated())

	l.Fill()
	assert.Equal(t, int64(2), l.Generated(), "a full queue is left alone")
}

func TestLoopIsGapless(t *testing.T) {
	const rate = 1000
	q := NewQueue()
	l := NewLoop(q, rand.New(rand.NewSource(7)), rate, zap.NewNop(), WithBufferDuration(100*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.Eventually(t, func() bool { return q.Pending() == 2 }, time.Second, time.Millisecond)

	// Pull ten buffers worth of audio in small chunks, giving the loop time
	// to refill between chunks the way a device callback would.
	// The last buffer is only retired on the pull after its final sample,
	// hence the extra chunk.
	frames := make([][2]float64, 25)
	for pulled := 0; pulled <= 10*rate/10; pulled += len(frames) {
		q.Stream(frames)
		require.Eventually(t, func() bool { return q.Pending() == 2 }, time.Second, time.Millisecond)
	}

	stats := q.Stats()
	assert.Zero(t, stats.Silence)
	assert.Equal(t, int64(10), stats.Finished)
	assert.Equal(t, int64(12), l.Generated())

	cancel()
	assert.NoError(t, <-done)
}

func TestLoopLookaheadOption(t *testing.T) {
	q := NewQueue()
	l := NewLoop(q, rand.New(rand.NewSource(8)), 100, zap.NewNop(), WithLookahead(3))
	l.Fill()
	assert.Equal(t, 4, q.Pending())

	l = NewLoop(NewQueue(), rand.New(rand.NewSource(8)), 100, zap.NewNop(), WithLookahead(-1))
	l.Fill()
	assert.Equal(t, int64(1), l.Generated())
}
