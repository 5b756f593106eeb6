package gles

import (
	"fmt"

	"github.com/go-gl/gl/v3.1/gles2"
)

// QuadVertices are the two triangles covering the unit square, three
// components per vertex.
var QuadVertices = []float32{
	0, 1, 0,
	1, 0, 0,
	0, 0, 0,

	0, 1, 0,
	1, 1, 0,
	1, 0, 0,
}

const QuadVertexCount = 6

// CheckError reports the pending GL error, if any, as an ErrGL naming op.
func CheckError(op string) error {
	if e := gles2.GetError(); e != gles2.NO_ERROR {
		return fmt.Errorf("%w: %s: 0x%08x", ErrGL, op, e)
	}
	return nil
}

// NewBuffer uploads data into a static array buffer.
func NewBuffer(data []float32) (uint32, error) {
	var buf uint32
	gles2.GenBuffers(1, &buf)
	gles2.BindBuffer(gles2.ARRAY_BUFFER, buf)
	gles2.BufferData(gles2.ARRAY_BUFFER, len(data)*4, gles2.Ptr(data), gles2.STATIC_DRAW)
	return buf, CheckError("BufferData")
}

// BindAttrib points attrib at buf with size float components per vertex.
func BindAttrib(buf uint32, attrib uint32, size int32) error {
	gles2.BindBuffer(gles2.ARRAY_BUFFER, buf)
	gles2.VertexAttribPointerWithOffset(attrib, size, gles2.FLOAT, false, 0, 0)
	gles2.EnableVertexAttribArray(attrib)
	return CheckError("VertexAttribPointer")
}

func DeleteBuffer(buf uint32) {
	gles2.DeleteBuffers(1, &buf)
}

// NewTexture creates a 2D texture with linear filtering and clamped edges.
func NewTexture() (uint32, error) {
	var tex uint32
	gles2.GenTextures(1, &tex)
	gles2.BindTexture(gles2.TEXTURE_2D, tex)
	gles2.TexParameteri(gles2.TEXTURE_2D, gles2.TEXTURE_MIN_FILTER, gles2.LINEAR)
	gles2.TexParameteri(gles2.TEXTURE_2D, gles2.TEXTURE_MAG_FILTER, gles2.LINEAR)
	gles2.TexParameteri(gles2.TEXTURE_2D, gles2.TEXTURE_WRAP_S, gles2.CLAMP_TO_EDGE)
	gles2.TexParameteri(gles2.TEXTURE_2D, gles2.TEXTURE_WRAP_T, gles2.CLAMP_TO_EDGE)
	gles2.PixelStorei(gles2.UNPACK_ALIGNMENT, 1)
	return tex, CheckError("TexParameteri")
}

func DeleteTexture(tex uint32) {
	gles2.DeleteTextures(1, &tex)
}
