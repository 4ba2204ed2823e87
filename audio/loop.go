package audio

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLookahead is the number of buffers kept queued behind the one playing.
const DefaultLookahead = 1

// Loop keeps a Queue supplied with fresh noise buffers for as long as its
// context lives. A buffer finishing wakes the loop, which tops the queue back
// up to one playing buffer plus the lookahead.
type Loop struct {
	queue     *Queue
	rng       *rand.Rand
	rate      beep.SampleRate
	duration  time.Duration
	lookahead int
	log       *zap.Logger
	generated atomic.Int64
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithLookahead sets how many buffers are queued behind the playing one.
func WithLookahead(n int) LoopOption {
	return func(l *Loop) { l.lookahead = max(n, 0) }
}

// WithBufferDuration overrides BufferDuration.
func WithBufferDuration(d time.Duration) LoopOption {
	return func(l *Loop) { l.duration = d }
}

// NewLoop returns a loop feeding q. rng is only used from the loop goroutine.
func NewLoop(q *Queue, rng *rand.Rand, rate beep.SampleRate, log *zap.Logger, opts ...LoopOption) *Loop {
	l := &Loop{
		queue:     q,
		rng:       rng,
		rate:      rate,
		duration:  BufferDuration,
		lookahead: DefaultLookahead,
		log:       log,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Generated returns the number of buffers produced so far.
func (l *Loop) Generated() int64 {
	return l.generated.Load()
}

// Fill tops the queue up without waiting. Run calls it; it is exported so
// the queue can be primed before the sink starts pulling.
func (l *Loop) Fill() {
	for l.queue.Pending() < 1+l.lookahead {
		l.enqueue()
	}
}

// Run blocks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.Fill()
	l.log.Info("noise loop started",
		zap.Int("sampleRate", int(l.rate)),
		zap.Duration("bufferDuration", l.duration),
		zap.Int("lookahead", l.lookahead))
	for {
		select {
		case <-ctx.Done():
			stats := l.queue.Stats()
			l.log.Info("noise loop stopped",
				zap.Int64("generated", l.Generated()),
				zap.Int64("finished", stats.Finished),
				zap.Int64("silentSamples", stats.Silence))
			return nil
		case <-l.queue.Ended():
			l.Fill()
		}
	}
}

func (l *Loop) enqueue() {
	buf := NewNoiseBuffer(l.rng, l.rate, l.duration)
	l.queue.Enqueue(buf)
	n := l.generated.Add(1)
	if ce := l.log.Check(zapcore.DebugLevel, "noise buffer queued"); ce != nil {
		stats := Analyze(buf)
		ce.Write(
			zap.Int64("buffer", n),
			zap.Int("samples", len(buf)),
			zap.Float64("mean", stats.Mean),
			zap.Float64("peak", stats.Peak),
			zap.Float64("flatness", stats.Flatness))
	}
}
