package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/pkg/errors"
)

// We'll be using portaudio for audio output by default.
// macos:	brew install portaudio
// debian:	sudo apt-get install portaudio19-dev
// windows:	pacman -S mingw-w64-x86_64-portaudio

// ErrNoAudioDevice is returned when the host has no output device.
var ErrNoAudioDevice = errors.New("no audio output device")

// Sink is the destination of the audio graph. It pulls samples from the
// streamer passed to Start on its own schedule.
type Sink interface {
	// SampleRate is the rate the sink consumes samples at. It is known before Start.
	SampleRate() beep.SampleRate
	Start(src beep.Streamer) error
	Close() error
}

// NullSink consumes samples in real time and discards them.
type NullSink struct {
	rate     beep.SampleRate
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
	pulled   atomic.Int64
}

func NewNullSink(sampleRate beep.SampleRate) *NullSink {
	return &NullSink{
		rate:     sampleRate,
		interval: 10 * time.Millisecond,
		stopCh:   make(chan struct{}),
	}
}

func (s *NullSink) SampleRate() beep.SampleRate { return s.rate }

func (s *NullSink) Start(src beep.Streamer) error {
	frames := make([][2]float64, s.rate.N(s.interval))
	if len(frames) == 0 {
		return errors.Errorf("sample rate %d too low for a %s pull interval", s.rate, s.interval)
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				n, _ := src.Stream(frames)
				s.pulled.Add(int64(n))
			}
		}
	}()
	return nil
}

// Pulled returns the number of samples consumed so far.
func (s *NullSink) Pulled() int64 {
	return s.pulled.Load()
}

func (s *NullSink) Close() error {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.wg.Wait()
	return nil
}
