package audio

import (
	"github.com/faiface/beep"
	"github.com/gordonklaus/portaudio"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// PortAudioSink plays the graph on the default output device as a mono
// float32 stream at the device's default sample rate.
type PortAudioSink struct {
	device      *portaudio.DeviceInfo
	sampleRate  beep.SampleRate
	stream      *portaudio.Stream
	src         beep.Streamer
	frames      [][2]float64
	log         *zap.Logger
	isStreaming bool
}

// NewPortAudioSink initializes portaudio and selects the default output device.
func NewPortAudioSink(log *zap.Logger) (*PortAudioSink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize portaudio")
	}

	host, err := portaudio.DefaultHostApi()
	if err != nil {
		portaudio.Terminate()
		return nil, errors.Wrap(err, "failed to query default host api")
	}
	if host.DefaultOutputDevice == nil {
		portaudio.Terminate()
		return nil, ErrNoAudioDevice
	}

	log.Info("audio output device",
		zap.String("host", host.Name),
		zap.String("device", host.DefaultOutputDevice.Name),
		zap.Float64("sampleRate", host.DefaultOutputDevice.DefaultSampleRate))

	return &PortAudioSink{
		device:     host.DefaultOutputDevice,
		sampleRate: beep.SampleRate(host.DefaultOutputDevice.DefaultSampleRate),
		log:        log,
	}, nil
}

func (s *PortAudioSink) SampleRate() beep.SampleRate {
	return s.sampleRate
}

// process runs on the portaudio callback thread.
func (s *PortAudioSink) process(out []float32) {
	if cap(s.frames) < len(out) {
		s.frames = make([][2]float64, len(out))
	}
	frames := s.frames[:len(out)]
	n, ok := s.src.Stream(frames)
	if !ok {
		n = 0
	}
	written := ToMono(frames[:n], out)
	clear(out[written:])
}

func (s *PortAudioSink) Start(src beep.Streamer) error {
	s.src = src

	params := portaudio.HighLatencyParameters(nil, s.device)
	params.Output.Channels = 1
	params.SampleRate = float64(s.sampleRate)

	stream, err := portaudio.OpenStream(params, s.process)
	if err != nil {
		return errors.Wrap(err, "failed to open audio stream")
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return errors.Wrap(err, "failed to start audio stream")
	}
	s.stream = stream
	s.isStreaming = true
	return nil
}

func (s *PortAudioSink) Close() error {
	if !s.isStreaming {
		return portaudio.Terminate()
	}
	s.isStreaming = false
	if err := s.stream.Stop(); err != nil {
		s.log.Warn("failed to stop audio stream", zap.Error(err))
	}
	if err := s.stream.Close(); err != nil {
		portaudio.Terminate()
		return errors.Wrap(err, "failed to close audio stream")
	}
	return portaudio.Terminate()
}
