// Package texture stages frame buffer rectangles for upload into a power of
// two sized GL ES 2 texture.
package texture

// PowerOfTwo returns the smallest power of two that is >= n. Values below 1
// give 1.
func PowerOfTwo(n int) int {
	result := 1
	for result < n {
		result *= 2
	}
	return result
}

// Size returns the texture dimensions needed to hold a w by h rectangle.
func Size(w, h int) (int, int) {
	return PowerOfTwo(w), PowerOfTwo(h)
}

// BufferLen is the staging buffer length for a w by h desktop.
func BufferLen(w, h, bpp int) int {
	tw, th := Size(w, h)
	return tw * th * bpp
}

// Rect is the dirty region of the frame buffer.
type Rect struct {
	X, Y, W, H int
}

// Repack copies r out of src, whose rows are srcWidth pixels long, into dst
// using a row length of PowerOfTwo(r.W) pixels. Exactly r.W pixels are
// copied per row; the padding on the right of each destination row is left
// alone. It returns the texture width and height used.
func Repack(dst []byte, src []byte, srcWidth int, r Rect, bpp int) (int, int) {
	texW, texH := Size(r.W, r.H)

	strideFrom := srcWidth * bpp
	strideTo := texW * bpp
	row := r.W * bpp

	from := r.Y*strideFrom + r.X*bpp
	to := 0
	for i := 0; i < r.H; i++ {
		copy(dst[to:to+row], src[from:from+row])
		to += strideTo
		from += strideFrom
	}
	return texW, texH
}
