package renderer

import (
	"image"
	"image/color"
	"sync"

	"github.com/pkg/errors"
	"github.com/richinsley/noisetoy/noise"
)

// SoftDevice rasterizes the noise stage on the CPU into a grey image. Shader
// sources are accepted as is; the fragment stage is always noise.Shade.
type SoftDevice struct {
	mu       sync.Mutex
	next     uint32
	shaders  map[uint32]Stage
	programs map[uint32]bool
	quad     []float32
	frame    *image.Gray
	width    int
	height   int
	draws    int
	presents int
}

func NewSoftDevice() *SoftDevice {
	return &SoftDevice{
		shaders:  make(map[uint32]Stage),
		programs: make(map[uint32]bool),
	}
}

func (d *SoftDevice) Init() error { return nil }

func (d *SoftDevice) CompileShader(source string, stage Stage) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if source == "" {
		return 0, &CompileError{Stage: stage, Log: "empty source"}
	}
	d.next++
	d.shaders[d.next] = stage
	return d.next, nil
}

func (d *SoftDevice) DeleteShader(handle uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.shaders, handle)
}

func (d *SoftDevice) LinkProgram(vertex, fragment uint32) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if stage, ok := d.shaders[vertex]; !ok || stage != VertexStage {
		return 0, &LinkError{Log: "missing vertex stage"}
	}
	if stage, ok := d.shaders[fragment]; !ok || stage != FragmentStage {
		return 0, &LinkError{Log: "missing fragment stage"}
	}
	d.next++
	d.programs[d.next] = true
	return d.next, nil
}

func (d *SoftDevice) DeleteProgram(program uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.programs, program)
}

func (d *SoftDevice) UniformLocation(program uint32, name string) int32 {
	return 0
}

func (d *SoftDevice) UploadQuad(vertices []float32) error {
	if len(vertices) != QuadVertexCount*2 {
		return errors.Errorf("quad needs %d coordinates, got %d", QuadVertexCount*2, len(vertices))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.quad = append([]float32(nil), vertices...)
	return nil
}

func (d *SoftDevice) Allocate(width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frame = image.NewGray(image.Rect(0, 0, width, height))
	return nil
}

func (d *SoftDevice) Viewport(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.width, d.height = width, height
}

// Draw evaluates every pixel center of the viewport. Row 0 of the image is
// the bottom row, matching fragment coordinates.
func (d *SoftDevice) Draw(program uint32, timeLoc int32, time float32, first, count int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.frame == nil || !d.programs[program] || count < 3 {
		return
	}
	phase := float64(time)
	bounds := d.frame.Bounds()
	for y := 0; y < d.height && y < bounds.Dy(); y++ {
		for x := 0; x < d.width && x < bounds.Dx(); x++ {
			level := noise.Shade(float64(x)+0.5, float64(y)+0.5, phase)
			d.frame.SetGray(x, y, color.Gray{Y: noise.Level8(level)})
		}
	}
	d.draws++
}

func (d *SoftDevice) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.frame != nil {
		clear(d.frame.Pix)
	}
}

func (d *SoftDevice) Present(displayWidth, displayHeight int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.presents++
}

func (d *SoftDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frame = nil
	d.quad = nil
	clear(d.programs)
	clear(d.shaders)
}

// Frame returns a copy of the render target, or nil before Allocate.
func (d *SoftDevice) Frame() *image.Gray {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.frame == nil {
		return nil
	}
	out := image.NewGray(d.frame.Rect)
	copy(out.Pix, d.frame.Pix)
	return out
}

// Stats returns the number of draws and presents so far.
func (d *SoftDevice) Stats() (draws, presents int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draws, d.presents
}
