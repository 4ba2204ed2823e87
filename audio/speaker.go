package audio

import (
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/pkg/errors"
)

// SpeakerSink plays the graph through beep's speaker package. The rate is
// configured because the driver cannot be asked for it.
type SpeakerSink struct {
	rate    beep.SampleRate
	latency time.Duration
	started bool
}

func NewSpeakerSink(rate beep.SampleRate) *SpeakerSink {
	return &SpeakerSink{rate: rate, latency: 100 * time.Millisecond}
}

func (s *SpeakerSink) SampleRate() beep.SampleRate {
	return s.rate
}

func (s *SpeakerSink) Start(src beep.Streamer) error {
	if err := speaker.Init(s.rate, s.rate.N(s.latency)); err != nil {
		return errors.Wrap(err, "failed to initialize speaker")
	}
	speaker.Play(src)
	s.started = true
	return nil
}

func (s *SpeakerSink) Close() error {
	if s.started {
		speaker.Close()
		s.started = false
	}
	return nil
}
