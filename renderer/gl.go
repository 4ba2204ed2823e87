package renderer

import (
	"strings"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/pkg/errors"
	"github.com/richinsley/noisetoy/shader"
	"go.uber.org/zap"
)

// Ensures gl.Init() is called only once.
var glInitOnce sync.Once

// GLDevice renders into an offscreen framebuffer and blits it to the window.
type GLDevice struct {
	gles bool
	log  *zap.Logger

	quadVAO     uint32
	quadVBO     uint32
	blitProgram uint32
	blitTexLoc  int32

	fbo       uint32
	textureID uint32
	width     int
	height    int
}

func NewGLDevice(gles bool, log *zap.Logger) *GLDevice {
	return &GLDevice{gles: gles, log: log, blitTexLoc: -1}
}

func (d *GLDevice) Init() error {
	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return errors.Wrap(initErr, "failed to initialize OpenGL")
	}
	d.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))
	return nil
}

func (d *GLDevice) CompileShader(source string, stage Stage) (uint32, error) {
	shaderType := uint32(gl.VERTEX_SHADER)
	if stage == FragmentStage {
		shaderType = gl.FRAGMENT_SHADER
	}
	handle := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(handle, 1, csources, nil)
	free()
	gl.CompileShader(handle)

	var status int32
	gl.GetShaderiv(handle, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(handle, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(handle, logLength, nil, gl.Str(logText))
		gl.DeleteShader(handle)
		return 0, &CompileError{Stage: stage, Log: strings.TrimRight(logText, "\x00")}
	}
	return handle, nil
}

func (d *GLDevice) DeleteShader(handle uint32) {
	if handle != 0 {
		gl.DeleteShader(handle)
	}
}

func (d *GLDevice) LinkProgram(vertex, fragment uint32) (uint32, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, vertex)
	gl.AttachShader(program, fragment)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
		gl.DeleteProgram(program)
		return 0, &LinkError{Log: strings.TrimRight(logText, "\x00")}
	}
	gl.DetachShader(program, vertex)
	gl.DetachShader(program, fragment)
	return program, nil
}

func (d *GLDevice) DeleteProgram(program uint32) {
	if program != 0 {
		gl.DeleteProgram(program)
	}
}

func (d *GLDevice) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

// UploadQuad creates the quad VAO and the blit program that presents the target.
func (d *GLDevice) UploadQuad(vertices []float32) error {
	gl.GenVertexArrays(1, &d.quadVAO)
	gl.GenBuffers(1, &d.quadVBO)
	gl.BindVertexArray(d.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	vertex, err := d.CompileShader(shader.GenerateVertexShader(d.gles), VertexStage)
	if err != nil {
		return errors.Wrap(err, "failed to create blit program")
	}
	fragment, err := d.CompileShader(shader.GetBlitFragmentShader(d.gles), FragmentStage)
	if err != nil {
		d.DeleteShader(vertex)
		return errors.Wrap(err, "failed to create blit program")
	}
	d.blitProgram, err = d.LinkProgram(vertex, fragment)
	d.DeleteShader(vertex)
	d.DeleteShader(fragment)
	if err != nil {
		return errors.Wrap(err, "failed to create blit program")
	}
	d.blitTexLoc = d.UniformLocation(d.blitProgram, "u_texture")
	return nil
}

// Allocate creates the offscreen framebuffer on first use and resizes its
// color texture afterwards.
func (d *GLDevice) Allocate(width, height int) error {
	if d.fbo == 0 {
		gl.GenFramebuffers(1, &d.fbo)
		gl.GenTextures(1, &d.textureID)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, d.fbo)
	gl.BindTexture(gl.TEXTURE_2D, d.textureID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, d.textureID, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return errors.Errorf("offscreen fbo is not complete: 0x%x", status)
	}
	return nil
}

func (d *GLDevice) Viewport(width, height int) {
	d.width, d.height = width, height
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (d *GLDevice) Draw(program uint32, timeLoc int32, time float32, first, count int32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, d.fbo)
	gl.Viewport(0, 0, int32(d.width), int32(d.height))
	gl.UseProgram(program)
	if timeLoc != -1 {
		gl.Uniform1f(timeLoc, time)
	}
	gl.BindVertexArray(d.quadVAO)
	gl.DrawArrays(gl.TRIANGLE_FAN, first, count)
	gl.BindVertexArray(0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (d *GLDevice) Clear() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, d.fbo)
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (d *GLDevice) Present(displayWidth, displayHeight int) {
	gl.Viewport(0, 0, int32(displayWidth), int32(displayHeight))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if d.blitProgram == 0 || d.textureID == 0 {
		return
	}
	gl.UseProgram(d.blitProgram)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, d.textureID)
	if d.blitTexLoc != -1 {
		gl.Uniform1i(d.blitTexLoc, 0)
	}
	gl.BindVertexArray(d.quadVAO)
	gl.DrawArrays(gl.TRIANGLE_FAN, 0, QuadVertexCount)
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (d *GLDevice) Release() {
	if d.fbo != 0 {
		gl.DeleteFramebuffers(1, &d.fbo)
		gl.DeleteTextures(1, &d.textureID)
		d.fbo, d.textureID = 0, 0
	}
	if d.blitProgram != 0 {
		gl.DeleteProgram(d.blitProgram)
		d.blitProgram = 0
	}
	if d.quadVAO != 0 {
		gl.DeleteBuffers(1, &d.quadVBO)
		gl.DeleteVertexArrays(1, &d.quadVAO)
		d.quadVAO, d.quadVBO = 0, 0
	}
}
