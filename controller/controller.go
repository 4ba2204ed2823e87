// Package controller wires the graphics and audio pipelines together, owns the
// redraw loop and exposes the volume toggle.
package controller

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/richinsley/noisetoy/audio"
	"github.com/richinsley/noisetoy/graphics"
	"github.com/richinsley/noisetoy/options"
	"github.com/richinsley/noisetoy/renderer"
	"github.com/richinsley/noisetoy/scheduler"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNothingToRun is returned by Start when neither pipeline came up.
var ErrNothingToRun = errors.New("neither graphics nor audio could be started")

// Deps are the platform services the controller runs on. Context and Sink may
// be nil, which disables the corresponding pipeline.
type Deps struct {
	Context graphics.Context
	Device  renderer.Device
	Sink    audio.Sink
	Ticker  scheduler.Ticker
	Rand    *rand.Rand
	Now     func() time.Time
	// PipelineOptions are passed to renderer.NewPipeline.
	PipelineOptions []renderer.Option
	LoopOptions     []audio.LoopOption
}

// Controller is the single owner of both pipelines for the process lifetime.
type Controller struct {
	log      *zap.Logger
	gfx      graphics.Context
	pipeline *renderer.Pipeline
	sink     audio.Sink
	queue    *audio.Queue
	gain     *audio.GainNode
	loop     *audio.Loop
	rng      *rand.Rand
	loopOpts []audio.LoopOption
	ticker   scheduler.Ticker
	now      func() time.Time

	group      *errgroup.Group
	stopAudio  context.CancelFunc
	graphicsOn bool
	audioOn    bool
	frames     atomic.Int64
}

func New(opts *options.ToyOptions, log *zap.Logger, deps Deps) *Controller {
	if deps.Ticker == nil {
		deps.Ticker = scheduler.NewTicker(*opts.FPS)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Rand == nil {
		seed := *opts.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		deps.Rand = rand.New(rand.NewSource(seed))
	}
	if deps.Device == nil {
		deps.Device = renderer.NewSoftDevice()
	}
	queue := audio.NewQueue()
	return &Controller{
		log:      log,
		gfx:      deps.Context,
		pipeline: renderer.NewPipeline(deps.Device, *opts.ScaleFactor, log.Named("renderer"), deps.PipelineOptions...),
		sink:     deps.Sink,
		queue:    queue,
		gain:     audio.NewGainNode(queue),
		rng:      deps.Rand,
		loopOpts: deps.LoopOptions,
		ticker:   deps.Ticker,
		now:      deps.Now,
	}
}

// Start brings up audio and then graphics. A failure in one pipeline is
// logged and leaves the other running.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.startAudio(ctx); err != nil {
		c.log.Error("audio disabled", zap.Error(err))
	}
	if err := c.startGraphics(); err != nil {
		c.log.Error("Unable to initialize OpenGL. Your system may not support it.", zap.Error(err))
	}
	if !c.audioOn && !c.graphicsOn {
		return ErrNothingToRun
	}
	return nil
}

func (c *Controller) startAudio(ctx context.Context) error {
	if c.sink == nil {
		return audio.ErrNoAudioDevice
	}
	c.loop = audio.NewLoop(c.queue, c.rng, c.sink.SampleRate(), c.log.Named("noise"), c.loopOpts...)
	c.loop.Fill()
	if err := c.sink.Start(c.gain); err != nil {
		if cerr := c.sink.Close(); cerr != nil {
			c.log.Warn("failed to close audio sink", zap.Error(cerr))
		}
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.stopAudio = cancel
	c.group, loopCtx = errgroup.WithContext(loopCtx)
	c.group.Go(func() error {
		return c.loop.Run(loopCtx)
	})
	c.audioOn = true
	return nil
}

func (c *Controller) startGraphics() error {
	if err := c.pipeline.Initialize(c.gfx); err != nil {
		return err
	}
	c.graphicsOn = true
	if err := c.pipeline.Build(); err != nil {
		c.log.Warn("rendering disabled, the surface stays black", zap.Error(err))
	}
	return nil
}

// Run drives the redraw loop until the window closes or ctx is cancelled.
// Without a window it only waits for ctx. A window whose pipeline failed to
// initialize still has its events pumped so input keeps working.
func (c *Controller) Run(ctx context.Context) error {
	if c.gfx == nil {
		<-ctx.Done()
		return nil
	}
	defer c.ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.ticker.C():
			if c.gfx.ShouldClose() {
				c.log.Info("window closed", zap.Int64("frames", c.frames.Load()))
				return nil
			}
			if !c.graphicsOn {
				c.gfx.EndFrame()
				continue
			}
			c.Frame()
		}
	}
}

// Frame resizes, renders and presents one frame.
func (c *Controller) Frame() {
	w, h := c.gfx.GetFramebufferSize()
	c.pipeline.Resize(w, h)
	c.pipeline.Render(renderer.PhaseAt(c.now()))
	c.gfx.EndFrame()
	c.frames.Add(1)
}

// Toggle flips the output between muted and audible and reports whether it
// is now audible. Noise generation is unaffected.
func (c *Controller) Toggle() bool {
	audible := c.gain.Toggle()
	c.log.Info("volume toggled", zap.Bool("audible", audible), zap.Float64("gain", c.gain.Level()))
	return audible
}

// Gain returns the current output level.
func (c *Controller) Gain() float64 {
	return c.gain.Level()
}

// Frames returns the number of frames drawn.
func (c *Controller) Frames() int64 {
	return c.frames.Load()
}

// Surface returns the render target geometry.
func (c *Controller) Surface() graphics.Surface {
	return c.pipeline.Surface()
}

// Queue exposes the playback queue for diagnostics.
func (c *Controller) Queue() *audio.Queue {
	return c.queue
}

// Shutdown stops the audio loop, closes the sink and releases graphics resources.
func (c *Controller) Shutdown() {
	if c.audioOn {
		if err := c.sink.Close(); err != nil {
			c.log.Warn("failed to close audio sink", zap.Error(err))
		}
		c.stopAudio()
		if err := c.group.Wait(); err != nil {
			c.log.Warn("noise loop failed", zap.Error(err))
		}
		c.audioOn = false
	}
	if c.graphicsOn {
		c.pipeline.Shutdown()
		c.graphicsOn = false
	}
	if c.gfx != nil {
		c.gfx.Shutdown()
		c.gfx = nil
	}
}
