package renderer

import (
	"fmt"

	"github.com/pkg/errors"
)

// Stage identifies a shader stage.
type Stage uint32

const (
	VertexStage Stage = iota
	FragmentStage
)

func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	default:
		return fmt.Sprintf("stage(%d)", uint32(s))
	}
}

// ErrNoGraphicsContext is returned when no drawing context can be acquired.
var ErrNoGraphicsContext = errors.New("no graphics context")

// CompileError carries the driver log of a failed shader compile.
type CompileError struct {
	Stage Stage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader: %s", e.Stage, e.Log)
}

// LinkError carries the driver log of a failed program link.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link program: %s", e.Log)
}

// Device is the set of GPU operations the pipeline drives. Handles are opaque
// driver names; 0 is never a valid handle.
type Device interface {
	// Init loads the driver bindings for the current context.
	Init() error
	CompileShader(source string, stage Stage) (uint32, error)
	DeleteShader(shader uint32)
	LinkProgram(vertex, fragment uint32) (uint32, error)
	DeleteProgram(program uint32)
	// UniformLocation returns -1 when the program has no such uniform.
	UniformLocation(program uint32, name string) int32
	// UploadQuad stores the static full screen quad used by Draw and Present.
	UploadQuad(vertices []float32) error
	// Allocate (re)creates the render target at the given size.
	Allocate(width, height int) error
	Viewport(width, height int)
	// Draw sets the time uniform and draws count vertices of the quad as a triangle fan.
	Draw(program uint32, timeLoc int32, time float32, first, count int32)
	// Clear fills the render target with black.
	Clear()
	// Present shows the render target stretched over the displayed area.
	Present(displayWidth, displayHeight int)
	Release()
}
