package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/faiface/beep"
	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/noisetoy/audio"
	"github.com/richinsley/noisetoy/controller"
	"github.com/richinsley/noisetoy/glfwcontext"
	"github.com/richinsley/noisetoy/logger"
	"github.com/richinsley/noisetoy/options"
	"github.com/richinsley/noisetoy/renderer"
	"go.uber.org/zap"
)

func init() {
	// GLFW and the GL context must stay on the main thread.
	runtime.LockOSThread()
}

func newSink(opts *options.ToyOptions, log *zap.Logger) (audio.Sink, error) {
	switch *opts.Audio {
	case options.AudioSpeaker:
		return audio.NewSpeakerSink(beep.SampleRate(*opts.SampleRate)), nil
	case options.AudioNull:
		return audio.NewNullSink(beep.SampleRate(*opts.SampleRate)), nil
	default:
		return audio.NewPortAudioSink(log)
	}
}

func run(opts *options.ToyOptions, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := controller.Deps{
		Device: renderer.NewGLDevice(*opts.GLES, log.Named("gl")),
	}

	if err := glfwcontext.InitGraphics(log); err != nil {
		log.Error("graphics unavailable", zap.Error(err))
	} else {
		defer glfwcontext.TerminateGraphics(log)
		win, err := glfwcontext.New(opts, log.Named("window"))
		if err != nil {
			log.Error("failed to create window", zap.Error(err))
		} else {
			deps.Context = win
		}
	}

	sink, err := newSink(opts, log.Named("audio"))
	if err != nil {
		log.Error("failed to open audio output", zap.String("backend", *opts.Audio), zap.Error(err))
	} else {
		deps.Sink = sink
	}

	c := controller.New(opts, log, deps)
	if win, ok := deps.Context.(*glfwcontext.Context); ok {
		win.RegisterKeyCallback(glfw.KeySpace, func() { c.Toggle() })
		win.RegisterClickCallback(func() { c.Toggle() })
	}

	if err := c.Start(ctx); err != nil {
		return err
	}
	defer c.Shutdown()

	log.Info("running", zap.Int("fps", *opts.FPS), zap.String("audio", *opts.Audio))
	return c.Run(ctx)
}

func main() {
	opts := options.Defaults()
	opts.Bind(flag.CommandLine)
	flag.Parse()

	if *opts.Help {
		fmt.Println("noisetoy: animated noise with a toggleable white noise soundtrack")
		fmt.Println("Click the window or press space to toggle the sound, escape to quit.")
		flag.PrintDefaults()
		return
	}

	if err := opts.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := logger.New(logger.Config{Level: *opts.LogLevel, Development: *opts.Development})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(opts, log); err != nil {
		log.Error("exiting", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}
