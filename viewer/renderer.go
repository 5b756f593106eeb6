package viewer

import (
	"github.com/go-gl/gl/v3.1/gles2"
	"github.com/hiromi-mi/glesvnc/gles"
	"github.com/hiromi-mi/glesvnc/matrix"
)

const vertexShader = `
attribute vec4 av4position;
uniform mat4 mvp;
uniform mat4 tex;
varying vec2 vv2tex;
void main() {
	vec4 tmp = tex * av4position;
	vv2tex = vec2(tmp.x, tmp.y);
	gl_Position = mvp * av4position;
}
`

const fragmentShader = `
precision lowp float;
uniform sampler2D texture;
varying vec2 vv2tex;
void main() {
	gl_FragColor = texture2D(texture, vv2tex);
}
`

// GLRenderer draws staged rectangles as a textured quad.
type GLRenderer struct {
	window  *gles.Window
	program *gles.Program

	vertices uint32
	texture  uint32

	// uniforms
	mvp     int32
	tex     int32
	sampler int32
}

// NewGLRenderer compiles the quad program on win, which must be current.
func NewGLRenderer(win *gles.Window) (*GLRenderer, error) {
	r := &GLRenderer{window: win}
	win.Viewport()

	var err error
	r.program, err = gles.NewProgram(vertexShader, fragmentShader)
	if err != nil {
		return nil, err
	}

	position, err := r.program.Attrib("av4position")
	if err != nil {
		r.Destroy()
		return nil, err
	}
	r.mvp = r.program.Uniform("mvp")
	r.tex = r.program.Uniform("tex")
	r.sampler = r.program.Uniform("texture")
	r.program.Use()

	if r.vertices, err = gles.NewBuffer(gles.QuadVertices); err != nil {
		r.Destroy()
		return nil, err
	}
	if err := gles.BindAttrib(r.vertices, position, 3); err != nil {
		r.Destroy()
		return nil, err
	}

	gles2.ActiveTexture(gles2.TEXTURE0)
	if r.texture, err = gles.NewTexture(); err != nil {
		r.Destroy()
		return nil, err
	}

	return r, nil
}

func (r *GLRenderer) MakeCurrent() error {
	return r.window.MakeCurrent()
}

func (r *GLRenderer) Viewport() (int, int) {
	return r.window.Viewport()
}

func (r *GLRenderer) Draw(pixels []byte, texW, texH, bpp int, mvp, tex matrix.Mat4) error {
	var format uint32 = gles2.RGBA
	if bpp == 3 {
		format = gles2.RGB
	}

	gles2.ActiveTexture(gles2.TEXTURE0)
	gles2.BindTexture(gles2.TEXTURE_2D, r.texture)
	if err := gles.CheckError("BindTexture"); err != nil {
		return err
	}

	gles2.TexImage2D(gles2.TEXTURE_2D, 0, int32(format), int32(texW), int32(texH), 0,
		format, gles2.UNSIGNED_BYTE, gles2.Ptr(pixels))
	if err := gles.CheckError("TexImage2D"); err != nil {
		return err
	}

	gles2.Uniform1i(r.sampler, 0)
	gles2.UniformMatrix4fv(r.mvp, 1, false, mvp.Ptr())
	gles2.UniformMatrix4fv(r.tex, 1, false, tex.Ptr())
	if err := gles.CheckError("UniformMatrix4fv"); err != nil {
		return err
	}

	gles2.DrawArrays(gles2.TRIANGLES, 0, gles.QuadVertexCount)
	if err := gles.CheckError("DrawArrays"); err != nil {
		return err
	}

	r.window.Swap()
	return nil
}

func (r *GLRenderer) Destroy() {
	if r.texture != 0 {
		gles.DeleteTexture(r.texture)
		r.texture = 0
	}
	if r.vertices != 0 {
		gles.DeleteBuffer(r.vertices)
		r.vertices = 0
	}
	if r.program != nil {
		r.program.Destroy()
	}
}
