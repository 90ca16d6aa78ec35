package main

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/veandco/go-sdl2/sdl"

	"nescore"
	"nescore/internal/log"
	"nescore/internal/ppu"
)

// frontend owns the SDL window, the OpenGL texture the core's framebuffer is
// blitted into every frame, and the audio device samples are queued to.
type frontend struct {
	window  *sdl.Window
	glCtx   sdl.GLContext
	prog    uint32
	texture uint32
	vao     uint32

	audioDev sdl.AudioDeviceID
	cfg      Config
}

func newFrontend(cfg Config) (*frontend, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_JOYSTICK); err != nil {
		return nil, fmt.Errorf("sdl init: %w", err)
	}

	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)

	winW := int32(ppu.ScreenWidth * cfg.Video.Scale)
	winH := int32(ppu.ScreenHeight * cfg.Video.Scale)
	win, err := sdl.CreateWindow("nescore",
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED, winW, winH,
		sdl.WINDOW_OPENGL|sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	glCtx, err := win.GLCreateContext()
	if err != nil {
		return nil, fmt.Errorf("gl context: %w", err)
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	if !cfg.Video.DisableVSync {
		sdl.GLSetSwapInterval(1)
	}

	fe := &frontend{window: win, glCtx: glCtx, cfg: cfg}
	if err := fe.initGL(); err != nil {
		return nil, err
	}
	if !cfg.Audio.DisableAudio {
		if err := fe.initAudio(); err != nil {
			return nil, err
		}
	}
	return fe, nil
}

func (fe *frontend) initGL() error {
	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, ppu.ScreenWidth, ppu.ScreenHeight, 0,
		gl.RGBA, gl.UNSIGNED_BYTE, nil)

	vert, err := compileShader(vertexShaderSrc, gl.VERTEX_SHADER)
	if err != nil {
		return err
	}
	frag, err := compileShader(fragmentShaderSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return err
	}
	prog, err := linkProgram(vert, frag)
	if err != nil {
		return err
	}

	var vao, vbo, ebo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.GenBuffers(1, &ebo)

	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(quadIndices)*4, gl.Ptr(quadIndices), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 5*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, 5*4, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)

	fe.prog, fe.texture, fe.vao = prog, texture, vao
	return nil
}

func (fe *frontend) initAudio() error {
	spec := &sdl.AudioSpec{
		Freq:     int32(fe.cfg.Audio.SampleRate),
		Format:   sdl.AUDIO_S16LSB,
		Channels: 1,
		Samples:  1024,
	}
	dev, err := sdl.OpenAudioDevice("", false, spec, nil, 0)
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	fe.audioDev = dev
	sdl.PauseAudioDevice(dev, false)
	return nil
}

// Draw uploads a 256x240 RGBA framebuffer and renders it as a full-window
// textured quad.
func (fe *frontend) Draw(rgba []byte) {
	if rgba == nil {
		return
	}
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.BindTexture(gl.TEXTURE_2D, fe.texture)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, ppu.ScreenWidth, ppu.ScreenHeight,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&rgba[0]))

	gl.UseProgram(fe.prog)
	gl.BindVertexArray(fe.vao)
	gl.DrawElements(gl.TRIANGLES, int32(len(quadIndices)), gl.UNSIGNED_INT, nil)

	fe.window.GLSwap()
}

// QueueAudio pushes samples produced since the last frame to the audio
// device; it's a no-op if audio output was disabled.
func (fe *frontend) QueueAudio(samples []int16) {
	if fe.audioDev == 0 || len(samples) == 0 {
		return
	}
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}
	if err := sdl.QueueAudio(fe.audioDev, buf); err != nil {
		log.ModEmu.WarnZ("audio queue error").Error("err", err).End()
	}
}

// PollInput drains the SDL event queue, returning false once the user has
// asked to quit, and updates e's controller 1 state from the keyboard.
func (fe *frontend) PollInput(e *nescore.Emu) bool {
	keys := sdl.GetKeyboardState()
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch event.(type) {
		case *sdl.QuitEvent:
			return false
		}
	}

	setButton(e, keys, fe.cfg.Input.A, nescore.ButtonA)
	setButton(e, keys, fe.cfg.Input.B, nescore.ButtonB)
	setButton(e, keys, fe.cfg.Input.Select, nescore.ButtonSelect)
	setButton(e, keys, fe.cfg.Input.Start, nescore.ButtonStart)
	setButton(e, keys, fe.cfg.Input.Up, nescore.ButtonUp)
	setButton(e, keys, fe.cfg.Input.Down, nescore.ButtonDown)
	setButton(e, keys, fe.cfg.Input.Left, nescore.ButtonLeft)
	setButton(e, keys, fe.cfg.Input.Right, nescore.ButtonRight)
	return true
}

func setButton(e *nescore.Emu, keys []uint8, name string, mask uint8) {
	code := sdl.GetScancodeFromName(name)
	if code == sdl.SCANCODE_UNKNOWN {
		return
	}
	if keys[code] != 0 {
		e.ButtonPressed(mask)
	} else {
		e.ButtonReleased(mask)
	}
}

func (fe *frontend) Close() {
	if fe.audioDev != 0 {
		sdl.CloseAudioDevice(fe.audioDev)
	}
	sdl.GLDeleteContext(fe.glCtx)
	fe.window.Destroy()
	sdl.Quit()
}

var quadVertices = []float32{
	1.0, 1.0, 0, 1, 0,
	1.0, -1.0, 0, 1, 1,
	-1.0, -1.0, 0, 0, 1,
	-1.0, 1.0, 0, 0, 0,
}

var quadIndices = []uint32{0, 1, 3, 1, 2, 3}

const vertexShaderSrc = `
#version 330 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec2 aTexCoord;
out vec2 TexCoord;
void main() {
	gl_Position = vec4(aPos, 1.0);
	TexCoord = aTexCoord;
}
` + "\x00"

const fragmentShaderSrc = `
#version 330 core
out vec4 FragColor;
in vec2 TexCoord;
uniform sampler2D ourTexture;
void main() {
	FragColor = texture(ourTexture, TexCoord);
}
` + "\x00"

func compileShader(source string, shaderType uint32) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(source)
	gl.ShaderSource(sh, 1, csrc, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(sh, logLen, nil, &log[0])
		return 0, fmt.Errorf("shader compile error: %s", log)
	}
	return sh, nil
}

func linkProgram(vertexShader, fragmentShader uint32) (uint32, error) {
	prog := gl.CreateProgram()
	gl.AttachShader(prog, vertexShader)
	gl.AttachShader(prog, fragmentShader)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		var glLog [256]byte
		gl.GetProgramInfoLog(prog, int32(len(glLog)), &logLen, &glLog[0])
		return 0, fmt.Errorf("shader link error: %s", glLog[:logLen])
	}

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)
	return prog, nil
}
