// Package matrix builds the column-major 4x4 matrices fed to the quad
// shaders.
package matrix

// Mat4 is column-major, the layout UniformMatrix4fv expects without
// transposition.
type Mat4 [16]float32

func Identity() Mat4 {
	var r Mat4
	r[0] = 1
	r[5] = 1
	r[10] = 1
	r[15] = 1
	return r
}

// Placement maps the unit square onto the rectangle at pixel (x, y) of size
// w by h on a screenW by screenH screen. Screen y grows downwards, normalized
// device y grows upwards.
func Placement(x, y, w, h float32, screenW, screenH int) Mat4 {
	sx := 2.0 / float32(screenW)
	sy := 2.0 / float32(screenH)

	var r Mat4
	r[0] = w * sx
	r[5] = -h * sy
	r[10] = 1
	r[12] = -1 + x*sx
	r[13] = 1 - y*sy
	r[15] = 1
	return r
}

// TexCoord scales the unit square into the part of a texW by texH texture
// occupied by a w by h image. The -1 keeps the far edge on the centre of the
// last texel.
func TexCoord(w, h float32, texW, texH int) Mat4 {
	var r Mat4
	r[0] = (w - 1) / float32(texW)
	r[5] = (h - 1) / float32(texH)
	r[10] = 1
	r[15] = 1
	return r
}

// Apply returns m * v.
func (m Mat4) Apply(v [4]float32) [4]float32 {
	var r [4]float32
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			r[row] += m[col*4+row] * v[col]
		}
	}
	return r
}

// Ptr returns the address of the first element for GL uploads.
func (m *Mat4) Ptr() *float32 {
	return &m[0]
}
