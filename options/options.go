package options

import (
	"flag"

	"github.com/pkg/errors"
)

// ToyOptions holds the command line configuration. Fields are pointers so they
// can be bound directly to flags.
type ToyOptions struct {
	Help        *bool
	Width       *int
	Height      *int
	FPS         *int
	ScaleFactor *int
	GLES        *bool
	Audio       *string // "portaudio", "speaker" or "null"
	SampleRate  *int    // used by sinks that cannot query the device
	Seed        *int64  // 0 selects a time based seed
	LogLevel    *string
	Development *bool
}

// Audio backends understood by the controller.
const (
	AudioPortAudio = "portaudio"
	AudioSpeaker   = "speaker"
	AudioNull      = "null"
)

// Defaults returns options populated with the values used when no flags are given.
func Defaults() *ToyOptions {
	return &ToyOptions{
		Help:        ptr(false),
		Width:       ptr(1280),
		Height:      ptr(720),
		FPS:         ptr(24),
		ScaleFactor: ptr(2),
		GLES:        ptr(false),
		Audio:       ptr(AudioPortAudio),
		SampleRate:  ptr(44100),
		Seed:        ptr(int64(0)),
		LogLevel:    ptr("info"),
		Development: ptr(false),
	}
}

// Bind registers every option on fs, using the current values as defaults.
func (o *ToyOptions) Bind(fs *flag.FlagSet) {
	fs.BoolVar(o.Help, "help", *o.Help, "Show help message")
	fs.IntVar(o.Width, "width", *o.Width, "Initial window width")
	fs.IntVar(o.Height, "height", *o.Height, "Initial window height")
	fs.IntVar(o.FPS, "fps", *o.FPS, "Redraw rate in frames per second")
	fs.IntVar(o.ScaleFactor, "scale", *o.ScaleFactor, "Divide the window size by this factor for the render target")
	fs.BoolVar(o.GLES, "gles", *o.GLES, "Translate shaders to ESSL instead of GLSL 4.10")
	fs.StringVar(o.Audio, "audio", *o.Audio, "Audio backend: portaudio, speaker or null")
	fs.IntVar(o.SampleRate, "samplerate", *o.SampleRate, "Sample rate for the speaker and null backends")
	fs.Int64Var(o.Seed, "seed", *o.Seed, "Noise seed (0 for time based)")
	fs.StringVar(o.LogLevel, "loglevel", *o.LogLevel, "Log level: debug, info, warn, error")
	fs.BoolVar(o.Development, "dev", *o.Development, "Human readable development logging")
}

// Validate checks the options for values the pipelines cannot work with.
func (o *ToyOptions) Validate() error {
	if *o.Width <= 0 || *o.Height <= 0 {
		return errors.Errorf("invalid window size %dx%d", *o.Width, *o.Height)
	}
	if *o.FPS <= 0 {
		return errors.Errorf("invalid fps %d", *o.FPS)
	}
	if *o.ScaleFactor <= 0 {
		return errors.Errorf("invalid scale factor %d", *o.ScaleFactor)
	}
	if *o.SampleRate <= 0 {
		return errors.Errorf("invalid sample rate %d", *o.SampleRate)
	}
	switch *o.Audio {
	case AudioPortAudio, AudioSpeaker, AudioNull:
	default:
		return errors.Errorf("unknown audio backend %q", *o.Audio)
	}
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
