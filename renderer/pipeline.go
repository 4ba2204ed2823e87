package renderer

import (
	"time"

	"github.com/pkg/errors"
	"github.com/richinsley/noisetoy/graphics"
	"github.com/richinsley/noisetoy/shader"
	"github.com/richinsley/noisetoy/translator"
	"go.uber.org/zap"
)

// QuadVertices is the full screen quad in triangle fan order.
var QuadVertices = []float32{
	-1, -1,
	1, -1,
	1, 1,
	-1, 1,
}

// QuadVertexCount is the number of vertices drawn per frame.
const QuadVertexCount = 4

// PhaseEpoch is subtracted from wall clock milliseconds to get the time uniform.
const PhaseEpoch = 1510000000000

// PhaseAt returns the time uniform for the given instant.
func PhaseAt(t time.Time) float32 {
	return float32(t.UnixMilli() - PhaseEpoch)
}

// TranslateFunc converts WebGL2 shader source for the current driver.
type TranslateFunc func(source, stage string, gles bool) (*translator.Translated, error)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTranslator replaces the shader translator.
func WithTranslator(f TranslateFunc) Option {
	return func(p *Pipeline) { p.translate = f }
}

// Pipeline draws the noise pattern into a half resolution target and presents it.
type Pipeline struct {
	device    Device
	surface   *graphics.Surface
	log       *zap.Logger
	translate TranslateFunc
	gles      bool

	ready     bool // a context was acquired
	enabled   bool // the program built; false means frames are cleared to black
	allocated bool // the render target matches the surface
	program   uint32
	timeLoc int32
}

func NewPipeline(device Device, scale int, log *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		device:    device,
		surface:   graphics.NewSurface(scale),
		log:       log,
		translate: translator.Translate,
		timeLoc:   -1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Surface returns the current render target geometry.
func (p *Pipeline) Surface() graphics.Surface {
	return *p.surface
}

// Enabled reports whether frames are drawn with the noise program.
func (p *Pipeline) Enabled() bool {
	return p.enabled
}

// Initialize acquires the drawing context. Without one nothing is rendered.
func (p *Pipeline) Initialize(ctx graphics.Context) error {
	if ctx == nil {
		return ErrNoGraphicsContext
	}
	ctx.MakeCurrent()
	if err := p.device.Init(); err != nil {
		return errors.Wrapf(ErrNoGraphicsContext, "%v", err)
	}
	p.gles = ctx.IsGLES()
	p.ready = true
	return nil
}

// Compile compiles one stage. Failures are logged and return handle 0.
func (p *Pipeline) Compile(source string, stage Stage) (uint32, error) {
	handle, err := p.device.CompileShader(source, stage)
	if err != nil {
		p.log.Error("shader compile failed", zap.Stringer("stage", stage), zap.Error(err))
		return 0, err
	}
	return handle, nil
}

// Link links the stages into a program. The stage handles are released either way.
func (p *Pipeline) Link(vertex, fragment uint32) (uint32, error) {
	program, err := p.device.LinkProgram(vertex, fragment)
	p.device.DeleteShader(vertex)
	p.device.DeleteShader(fragment)
	if err != nil {
		p.log.Error("program link failed", zap.Error(err))
		return 0, err
	}
	return program, nil
}

// Build translates, compiles and links the noise program and uploads the quad.
// On failure the pipeline stays disabled and is not retried.
func (p *Pipeline) Build() error {
	if !p.ready {
		return ErrNoGraphicsContext
	}

	fs, err := p.translate(shader.GetNoiseFragmentShader(), "fragment", p.gles)
	if err != nil {
		p.log.Error("noise shader translation failed", zap.Error(err))
		return err
	}

	vertex, err := p.Compile(shader.GenerateVertexShader(p.gles), VertexStage)
	if err != nil {
		return err
	}
	fragment, err := p.Compile(fs.Code, FragmentStage)
	if err != nil {
		p.device.DeleteShader(vertex)
		return err
	}
	program, err := p.Link(vertex, fragment)
	if err != nil {
		return err
	}

	name := shader.TimeUniform
	if mapped, ok := fs.Uniforms[shader.TimeUniform]; ok {
		name = mapped
	}
	timeLoc := p.device.UniformLocation(program, name)
	if timeLoc == -1 {
		p.log.Warn("noise program has no time uniform", zap.String("name", name))
	}

	if err := p.device.UploadQuad(QuadVertices); err != nil {
		p.device.DeleteProgram(program)
		p.log.Error("failed to upload quad", zap.Error(err))
		return err
	}

	p.program = program
	p.timeLoc = timeLoc
	p.enabled = true
	p.log.Info("noise program ready", zap.Uint32("program", program), zap.Int32("timeLoc", timeLoc))
	return nil
}

// Resize fits the render target to the displayed size. The target and the
// viewport are only touched when the scaled size changes. After a failed
// allocation frames are cleared until a later resize allocates successfully.
func (p *Pipeline) Resize(displayWidth, displayHeight int) bool {
	if !p.ready || !p.surface.Fit(displayWidth, displayHeight) {
		return false
	}
	if p.surface.Empty() {
		p.log.Debug("surface is empty", zap.Int("displayWidth", displayWidth), zap.Int("displayHeight", displayHeight))
		return true
	}
	if err := p.device.Allocate(p.surface.Width, p.surface.Height); err != nil {
		p.log.Error("failed to allocate render target", zap.Error(err))
		p.allocated = false
		return true
	}
	p.allocated = true
	p.device.Viewport(p.surface.Width, p.surface.Height)
	p.log.Debug("surface resized", zap.Int("width", p.surface.Width), zap.Int("height", p.surface.Height))
	return true
}

// Render draws one frame at the given phase and presents it. Resize must have
// been called first.
func (p *Pipeline) Render(time float32) {
	if !p.ready || p.surface.Empty() {
		return
	}
	if p.enabled && p.allocated {
		p.device.Draw(p.program, p.timeLoc, time, 0, QuadVertexCount)
	} else {
		p.device.Clear()
	}
	p.device.Present(p.surface.DisplayWidth, p.surface.DisplayHeight)
}

// Shutdown releases the program and every device resource.
func (p *Pipeline) Shutdown() {
	if !p.ready {
		return
	}
	if p.program != 0 {
		p.device.DeleteProgram(p.program)
		p.program = 0
	}
	p.device.Release()
	p.enabled = false
	p.allocated = false
	p.ready = false
}
