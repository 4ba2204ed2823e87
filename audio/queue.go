package audio

import (
	"sync"

	"github.com/faiface/beep"
)

// QueueStats is a snapshot of queue counters.
type QueueStats struct {
	Pending  int   // buffers queued, including the one playing
	Finished int64 // buffers played to the end
	Played   int64 // samples streamed from buffers
	Silence  int64 // samples of silence streamed because the queue ran dry after the first buffer
}

// Queue plays noise buffers back to back. It never ends: when it runs dry it
// streams silence until more buffers arrive. Each finished buffer wakes
// Ended().
type Queue struct {
	mu        sync.Mutex
	streamers []beep.Streamer
	ended     chan struct{}
	started   bool
	stats     QueueStats
}

func NewQueue() *Queue {
	return &Queue{ended: make(chan struct{}, 1)}
}

// Enqueue appends buf after the buffers already queued.
func (q *Queue) Enqueue(buf NoiseBuffer) {
	s := beep.Seq(buf.Streamer(), beep.Callback(q.finished))
	q.mu.Lock()
	q.streamers = append(q.streamers, s)
	q.started = true
	q.mu.Unlock()
}

// Ended is signalled after buffers finish playing. Signals coalesce, so a
// receiver should check Pending rather than count wakeups.
func (q *Queue) Ended() <-chan struct{} {
	return q.ended
}

// Pending returns the number of buffers not yet finished.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.streamers)
}

func (q *Queue) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	stats := q.stats
	stats.Pending = len(q.streamers)
	return stats
}

// finished runs on the audio thread with q.mu held and must not block.
func (q *Queue) finished() {
	q.stats.Finished++
	select {
	case q.ended <- struct{}{}:
	default:
	}
}

func (q *Queue) Stream(samples [][2]float64) (n int, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	filled := 0
	for filled < len(samples) && len(q.streamers) > 0 {
		sn, sok := q.streamers[0].Stream(samples[filled:])
		filled += sn
		q.stats.Played += int64(sn)
		if !sok {
			q.streamers[0] = nil
			q.streamers = q.streamers[1:]
		}
	}
	if filled < len(samples) {
		clear(samples[filled:])
		if q.started {
			q.stats.Silence += int64(len(samples) - filled)
		}
	}
	return len(samples), true
}

func (q *Queue) Err() error {
	return nil
}
