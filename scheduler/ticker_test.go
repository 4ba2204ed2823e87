package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriod(t *testing.T) {
	assert.Equal(t, 41666666*time.Nanosecond, Period(24))
	assert.Equal(t, time.Second/60, Period(60))
	assert.Zero(t, Period(0))
}

func TestTimeTickerFires(t *testing.T) {
	tk := NewTicker(200)
	defer tk.Stop()
	select {
	case <-tk.C():
	case <-time.After(time.Second):
		t.Fatal("ticker did not fire")
	}
}

func TestManualTickerDropsMissedTicks(t *testing.T) {
	m := NewManualTicker()
	now := time.Unix(100, 0)

	assert.True(t, m.Tick(now))
	assert.False(t, m.Tick(now.Add(time.Millisecond)), "second tick collapses into the pending one")
	assert.Equal(t, now, <-m.C())

	assert.True(t, m.Tick(now.Add(2*time.Millisecond)))
	m.Stop()
	m.Stop()
	assert.False(t, m.Tick(now.Add(3*time.Millisecond)))
}
