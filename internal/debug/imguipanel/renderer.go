package imguipanel

import (
	"fmt"

	"GopherStage/internal/renderer/opengl"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/inkyblackness/imgui-go/v4"
)

const vertexShader = `#version 410 core
uniform mat4 ProjMtx;
in vec2 Position;
in vec2 UV;
in vec4 Color;
out vec2 Frag_UV;
out vec4 Frag_Color;
void main() {
	Frag_UV = UV;
	Frag_Color = Color;
	gl_Position = ProjMtx * vec4(Position.xy, 0, 1);
}
` + "\x00"

const fragmentShader = `#version 410 core
uniform sampler2D Texture;
in vec2 Frag_UV;
in vec4 Frag_Color;
out vec4 Out_Color;
void main() {
	Out_Color = Frag_Color * texture(Texture, Frag_UV.st);
}
` + "\x00"

// glRenderer draws imgui draw lists with the window's OpenGL context.
type glRenderer struct {
	program     uint32
	texture     int32
	projMtx     int32
	position    uint32
	uv          uint32
	color       uint32
	vao         uint32
	vbo         uint32
	ebo         uint32
	fontTexture uint32
}

func newGLRenderer(io imgui.IO) (*glRenderer, error) {
	vs, err := opengl.GenShader(vertexShader, gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("overlay vertex shader: %w", err)
	}
	fs, err := opengl.GenShader(fragmentShader, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return nil, fmt.Errorf("overlay fragment shader: %w", err)
	}
	program, err := opengl.GenShaderProgram(vs, fs)
	if err != nil {
		return nil, fmt.Errorf("overlay program: %w", err)
	}

	r := &glRenderer{program: program}
	r.texture = gl.GetUniformLocation(program, gl.Str("Texture\x00"))
	r.projMtx = gl.GetUniformLocation(program, gl.Str("ProjMtx\x00"))
	r.position = uint32(gl.GetAttribLocation(program, gl.Str("Position\x00")))
	r.uv = uint32(gl.GetAttribLocation(program, gl.Str("UV\x00")))
	r.color = uint32(gl.GetAttribLocation(program, gl.Str("Color\x00")))

	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.GenBuffers(1, &r.ebo)
	r.uploadFonts(io)
	return r, nil
}

func (r *glRenderer) uploadFonts(io imgui.IO) {
	image := io.Fonts().TextureDataRGBA32()

	var last int32
	gl.GetIntegerv(gl.TEXTURE_BINDING_2D, &last)
	gl.GenTextures(1, &r.fontTexture)
	gl.BindTexture(gl.TEXTURE_2D, r.fontTexture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(image.Width), int32(image.Height),
		0, gl.RGBA, gl.UNSIGNED_BYTE, image.Pixels)
	io.Fonts().SetTextureID(imgui.TextureID(r.fontTexture))
	gl.BindTexture(gl.TEXTURE_2D, uint32(last))
}

// render draws data over whatever the frame left in the framebuffer and
// restores the state the scene renderer relies on.
func (r *glRenderer) render(display, framebuffer [2]float32, data imgui.DrawData) {
	fbW, fbH := framebuffer[0], framebuffer[1]
	if fbW <= 0 || fbH <= 0 || display[0] <= 0 || display[1] <= 0 {
		return
	}
	data.ScaleClipRects(imgui.Vec2{X: fbW / display[0], Y: fbH / display[1]})

	var lastProgram, lastTexture, lastVAO, lastArrayBuffer int32
	gl.GetIntegerv(gl.CURRENT_PROGRAM, &lastProgram)
	gl.GetIntegerv(gl.TEXTURE_BINDING_2D, &lastTexture)
	gl.GetIntegerv(gl.VERTEX_ARRAY_BINDING, &lastVAO)
	gl.GetIntegerv(gl.ARRAY_BUFFER_BINDING, &lastArrayBuffer)
	lastBlend := gl.IsEnabled(gl.BLEND)
	lastCull := gl.IsEnabled(gl.CULL_FACE)
	lastDepth := gl.IsEnabled(gl.DEPTH_TEST)
	lastScissor := gl.IsEnabled(gl.SCISSOR_TEST)

	gl.Enable(gl.BLEND)
	gl.BlendEquation(gl.FUNC_ADD)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.CULL_FACE)
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.SCISSOR_TEST)
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)

	gl.Viewport(0, 0, int32(fbW), int32(fbH))
	ortho := [4][4]float32{
		{2.0 / display[0], 0, 0, 0},
		{0, 2.0 / -display[1], 0, 0},
		{0, 0, -1, 0},
		{-1, 1, 0, 1},
	}
	gl.UseProgram(r.program)
	gl.Uniform1i(r.texture, 0)
	gl.UniformMatrix4fv(r.projMtx, 1, false, &ortho[0][0])
	gl.ActiveTexture(gl.TEXTURE0)

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	vertexSize, posOffset, uvOffset, colOffset := imgui.VertexBufferLayout()
	gl.EnableVertexAttribArray(r.position)
	gl.EnableVertexAttribArray(r.uv)
	gl.EnableVertexAttribArray(r.color)
	gl.VertexAttribPointer(r.position, 2, gl.FLOAT, false, int32(vertexSize), gl.PtrOffset(posOffset))
	gl.VertexAttribPointer(r.uv, 2, gl.FLOAT, false, int32(vertexSize), gl.PtrOffset(uvOffset))
	gl.VertexAttribPointer(r.color, 4, gl.UNSIGNED_BYTE, true, int32(vertexSize), gl.PtrOffset(colOffset))

	indexSize := imgui.IndexBufferLayout()
	indexType := uint32(gl.UNSIGNED_SHORT)
	if indexSize == 4 {
		indexType = gl.UNSIGNED_INT
	}

	for _, list := range data.CommandLists() {
		vertices, vertexBytes := list.VertexBuffer()
		gl.BufferData(gl.ARRAY_BUFFER, vertexBytes, vertices, gl.STREAM_DRAW)
		indices, indexBytes := list.IndexBuffer()
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, indexBytes, indices, gl.STREAM_DRAW)

		offset := 0
		for _, cmd := range list.Commands() {
			if cmd.HasUserCallback() {
				cmd.CallUserCallback(list)
				continue
			}
			clip := cmd.ClipRect()
			gl.BindTexture(gl.TEXTURE_2D, uint32(cmd.TextureID()))
			gl.Scissor(int32(clip.X), int32(fbH)-int32(clip.W), int32(clip.Z-clip.X), int32(clip.W-clip.Y))
			gl.DrawElements(gl.TRIANGLES, int32(cmd.ElementCount()), indexType, gl.PtrOffset(offset))
			offset += cmd.ElementCount() * indexSize
		}
	}

	gl.UseProgram(uint32(lastProgram))
	gl.BindTexture(gl.TEXTURE_2D, uint32(lastTexture))
	gl.BindVertexArray(uint32(lastVAO))
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(lastArrayBuffer))
	setEnabled(gl.BLEND, lastBlend)
	setEnabled(gl.CULL_FACE, lastCull)
	setEnabled(gl.DEPTH_TEST, lastDepth)
	setEnabled(gl.SCISSOR_TEST, lastScissor)
}

func setEnabled(capability uint32, on bool) {
	if on {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}

func (r *glRenderer) dispose() {
	gl.DeleteVertexArrays(1, &r.vao)
	gl.DeleteBuffers(1, &r.vbo)
	gl.DeleteBuffers(1, &r.ebo)
	gl.DeleteTextures(1, &r.fontTexture)
	gl.DeleteProgram(r.program)
	*r = glRenderer{}
}
