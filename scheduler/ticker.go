// Package scheduler drives fixed rate work such as the redraw loop.
//
// Missed ticks are dropped: when a tick handler overruns, the ticks that would
// have fired meanwhile collapse into a single pending tick, so a slow frame
// never causes a burst of catch-up frames.
package scheduler

import "time"

// Ticker delivers ticks on C until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Period returns the tick interval for the given rate.
func Period(fps int) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Second / time.Duration(fps)
}

type timeTicker struct {
	t *time.Ticker
}

// NewTicker returns a Ticker backed by time.Ticker, whose one slot channel
// implements the drop policy.
func NewTicker(fps int) Ticker {
	return &timeTicker{t: time.NewTicker(Period(fps))}
}

func (t *timeTicker) C() <-chan time.Time { return t.t.C }
func (t *timeTicker) Stop()               { t.t.Stop() }

// ManualTicker fires only when Tick is called. It follows the same drop
// policy as NewTicker.
type ManualTicker struct {
	c       chan time.Time
	stopped chan struct{}
}

func NewManualTicker() *ManualTicker {
	return &ManualTicker{
		c:       make(chan time.Time, 1),
		stopped: make(chan struct{}),
	}
}

// Tick queues a tick at now. It reports false when a tick is already pending
// or the ticker is stopped.
func (m *ManualTicker) Tick(now time.Time) bool {
	select {
	case <-m.stopped:
		return false
	default:
	}
	select {
	case m.c <- now:
		return true
	default:
		return false
	}
}

func (m *ManualTicker) C() <-chan time.Time { return m.c }

func (m *ManualTicker) Stop() {
	select {
	case <-m.stopped:
	default:
		close(m.stopped)
	}
}
