package renderer

import (
	"errors"
	"testing"
	"time"

	"github.com/richinsley/noisetoy/translator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeContext struct {
	width, height int
	current       int
}

func (c *fakeContext) MakeCurrent()                   { c.current++ }
func (c *fakeContext) Shutdown()                      {}
func (c *fakeContext) ShouldClose() bool              { return false }
func (c *fakeContext) EndFrame()                      {}
func (c *fakeContext) GetFramebufferSize() (int, int) { return c.width, c.height }
func (c *fakeContext) Time() float64                  { return 0 }
func (c *fakeContext) IsGLES() bool                   { return false }

// recordingDevice counts calls and can be told to fail individual steps.
type recordingDevice struct {
	initErr       error
	allocErr      error
	compileErr    map[Stage]error
	linkErr       error
	next          uint32
	deletedShader []uint32
	deletedProg   []uint32
	allocations   [][2]int
	viewports     [][2]int
	draws         []float32
	drawCounts    []int32
	clears        int
	presents      [][2]int
	uploaded      []float32
	released      bool
	uniformName   string
}

func (d *recordingDevice) Init() error { return d.initErr }

func (d *recordingDevice) CompileShader(source string, stage Stage) (uint32, error) {
	if err := d.compileErr[stage]; err != nil {
		return 0, err
	}
	d.next++
	return d.next, nil
}

func (d *recordingDevice) DeleteShader(s uint32) { d.deletedShader = append(d.deletedShader, s) }

func (d *recordingDevice) LinkProgram(v, f uint32) (uint32, error) {
	if d.linkErr != nil {
		return 0, d.linkErr
	}
	d.next++
	return d.next, nil
}

func (d *recordingDevice) DeleteProgram(p uint32) { d.deletedProg = append(d.deletedProg, p) }

func (d *recordingDevice) UniformLocation(program uint32, name string) int32 {
	d.uniformName = name
	return 3
}

func (d *recordingDevice) UploadQuad(v []float32) error { d.uploaded = v; return nil }

func (d *recordingDevice) Allocate(w, h int) error {
	d.allocations = append(d.allocations, [2]int{w, h})
	return d.allocErr
}

func (d *recordingDevice) Viewport(w, h int) { d.viewports = append(d.viewports, [2]int{w, h}) }

func (d *recordingDevice) Draw(program uint32, timeLoc int32, t float32, first, count int32) {
	d.draws = append(d.draws, t)
	d.drawCounts = append(d.drawCounts, count)
}

func (d *recordingDevice) Clear()           { d.clears++ }
func (d *recordingDevice) Present(w, h int) { d.presents = append(d.presents, [2]int{w, h}) }
func (d *recordingDevice) Release()         { d.released = true }

func passthrough(source, stage string, gles bool) (*translator.Translated, error) {
	return &translator.Translated{Code: source, Uniforms: map[string]string{"time": "_utime"}}, nil
}

func newTestPipeline(t *testing.T, d Device) *Pipeline {
	t.Helper()
	return NewPipeline(d, 2, zap.NewNop(), WithTranslator(passthrough))
}

func TestInitializeWithoutContext(t *testing.T) {
	p := newTestPipeline(t, &recordingDevice{})
	err := p.Initialize(nil)
	assert.ErrorIs(t, err, ErrNoGraphicsContext)
	assert.ErrorIs(t, p.Build(), ErrNoGraphicsContext)
	assert.False(t, p.Resize(800, 600))
}

func TestInitializeDriverFailure(t *testing.T) {
	d := &recordingDevice{initErr: errors.New("no GL 4.1")}
	p := newTestPipeline(t, d)
	err := p.Initialize(&fakeContext{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoGraphicsContext)
	assert.Contains(t, err.Error(), "no GL 4.1")
}

func TestBuildUsesMappedTimeUniform(t *testing.T) {
	d := &recordingDevice{}
	p := newTestPipeline(t, d)
	ctx := &fakeContext{}
	require.NoError(t, p.Initialize(ctx))
	require.NoError(t, p.Build())

	assert.Equal(t, 1, ctx.current)
	assert.True(t, p.Enabled())
	assert.Equal(t, "_utime", d.uniformName)
	assert.Equal(t, QuadVertices, d.uploaded)
	assert.Len(t, d.deletedShader, 2, "stages are released after linking")
}

func TestCompileFailureDisablesRendering(t *testing.T) {
	d := &recordingDevice{compileErr: map[Stage]error{
		FragmentStage: &CompileError{Stage: FragmentStage, Log: "0:1: syntax error"},
	}}
	p := newTestPipeline(t, d)
	require.NoError(t, p.Initialize(&fakeContext{}))

	err := p.Build()
	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, FragmentStage, compileErr.Stage)
	assert.False(t, p.Enabled())
	assert.Equal(t, []uint32{1}, d.deletedShader, "the compiled vertex stage is released")

	p.Resize(800, 600)
	p.Render(1)
	assert.Empty(t, d.draws)
	assert.Equal(t, 1, d.clears)
	assert.Len(t, d.presents, 1)
}

func TestLinkFailureDisablesRendering(t *testing.T) {
	d := &recordingDevice{linkErr: &LinkError{Log: "varying mismatch"}}
	p := newTestPipeline(t, d)
	require.NoError(t, p.Initialize(&fakeContext{}))

	err := p.Build()
	var linkErr *LinkError
	require.ErrorAs(t, err, &linkErr)
	assert.False(t, p.Enabled())
	assert.Len(t, d.deletedShader, 2)
}

func TestResizeIsIdempotent(t *testing.T) {
	d := &recordingDevice{}
	p := newTestPipeline(t, d)
	require.NoError(t, p.Initialize(&fakeContext{}))
	require.NoError(t, p.Build())

	assert.True(t, p.Resize(800, 600))
	assert.False(t, p.Resize(800, 600))

	s := p.Surface()
	assert.Equal(t, 400, s.Width)
	assert.Equal(t, 300, s.Height)
	assert.Equal(t, [][2]int{{400, 300}}, d.allocations)
	assert.Equal(t, [][2]int{{400, 300}}, d.viewports)

	assert.True(t, p.Resize(1024, 768))
	assert.Equal(t, [][2]int{{400, 300}, {512, 384}}, d.allocations)
	assert.Equal(t, [][2]int{{400, 300}, {512, 384}}, d.viewports)
}

func TestAllocationFailureRecoversOnNextResize(t *testing.T) {
	d := &recordingDevice{allocErr: errors.New("out of memory")}
	p := newTestPipeline(t, d)
	require.NoError(t, p.Initialize(&fakeContext{}))
	require.NoError(t, p.Build())

	assert.True(t, p.Resize(800, 600))
	assert.Empty(t, d.viewports)
	p.Render(1)
	assert.Empty(t, d.draws)
	assert.Equal(t, 1, d.clears)
	assert.True(t, p.Enabled(), "the program survives a failed allocation")

	d.allocErr = nil
	assert.True(t, p.Resize(640, 480))
	assert.Equal(t, [][2]int{{320, 240}}, d.viewports)
	p.Render(2)
	assert.Equal(t, []float32{2}, d.draws)
}

func TestResizeToEmptySkipsAllocation(t *testing.T) {
	d := &recordingDevice{}
	p := newTestPipeline(t, d)
	require.NoError(t, p.Initialize(&fakeContext{}))
	require.NoError(t, p.Build())

	p.Resize(800, 600)
	assert.True(t, p.Resize(0, 0))
	assert.Len(t, d.allocations, 1)

	p.Render(5)
	assert.Empty(t, d.draws, "minimized windows are not drawn")
}

func TestRenderDrawsFanWithTime(t *testing.T) {
	d := &recordingDevice{}
	p := newTestPipeline(t, d)
	require.NoError(t, p.Initialize(&fakeContext{}))
	require.NoError(t, p.Build())

	p.Resize(800, 600)
	p.Render(42.5)
	p.Render(43.5)

	assert.Equal(t, []float32{42.5, 43.5}, d.draws)
	assert.Equal(t, []int32{QuadVertexCount, QuadVertexCount}, d.drawCounts)
	assert.Equal(t, [][2]int{{800, 600}, {800, 600}}, d.presents)
}

func TestShutdownReleases(t *testing.T) {
	d := &recordingDevice{}
	p := newTestPipeline(t, d)
	require.NoError(t, p.Initialize(&fakeContext{}))
	require.NoError(t, p.Build())

	p.Shutdown()
	assert.True(t, d.released)
	assert.Len(t, d.deletedProg, 1)
	assert.False(t, p.Enabled())
}

func TestPhaseAt(t *testing.T) {
	at := time.UnixMilli(PhaseEpoch + 1000)
	assert.Equal(t, float32(1000), PhaseAt(at))
	assert.Less(t, PhaseAt(at), PhaseAt(at.Add(time.Hour)))
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "vertex", VertexStage.String())
	assert.Equal(t, "fragment", FragmentStage.String())
	assert.Equal(t, "stage(7)", Stage(7).String())
}
