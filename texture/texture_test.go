package texture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPowerOfTwo(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {4, 4}, {5, 8},
		{640, 1024}, {1024, 1024}, {1025, 2048}, {1280, 2048}, {720, 1024},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PowerOfTwo(tt.in), "PowerOfTwo(%d)", tt.in)
	}
}

func TestSizeIsSmallestPowerOfTwo(t *testing.T) {
	for w := 1; w <= 300; w += 7 {
		for h := 1; h <= 300; h += 11 {
			tw, th := Size(w, h)
			for _, p := range []struct{ n, pow int }{{w, tw}, {h, th}} {
				require.GreaterOrEqual(t, p.pow, p.n)
				require.Zero(t, p.pow&(p.pow-1), "%d is not a power of two", p.pow)
				if p.pow > 1 {
					require.Less(t, p.pow/2, p.n)
				}
			}
		}
	}
}

func TestBufferLen(t *testing.T) {
	assert.Equal(t, 2048*1024*4, BufferLen(1280, 720, 4))
	assert.Equal(t, 4*4*3, BufferLen(3, 3, 3))
}

func TestRepack(t *testing.T) {
	const bpp = 2
	srcWidth, srcHeight := 5, 4
	src := make([]byte, srcWidth*srcHeight*bpp)
	for i := range src {
		src[i] = byte(i)
	}

	dst := make([]byte, BufferLen(srcWidth, srcHeight, bpp))
	for i := range dst {
		dst[i] = 0xee
	}

	r := Rect{X: 1, Y: 2, W: 3, H: 2}
	texW, texH := Repack(dst, src, srcWidth, r, bpp)
	assert.Equal(t, 4, texW)
	assert.Equal(t, 2, texH)

	strideTo := texW * bpp
	for row := 0; row < r.H; row++ {
		from := ((r.Y+row)*srcWidth + r.X) * bpp
		assert.Equal(t, src[from:from+r.W*bpp], dst[row*strideTo:row*strideTo+r.W*bpp])

		// padding up to the power of two boundary is untouched
		assert.Equal(t, []byte{0xee, 0xee}, dst[row*strideTo+r.W*bpp:(row+1)*strideTo])
	}
}

func TestRepackReadsOnlyTheRectangle(t *testing.T) {
	const bpp = 4
	srcWidth := 7
	r := Rect{X: 2, Y: 3, W: 5, H: 4}

	// the source ends exactly at the last byte of the rectangle's last row,
	// any read past it would panic
	end := (r.Y+r.H-1)*srcWidth*bpp + r.X*bpp + r.W*bpp
	src := make([]byte, end)
	src[end-1] = 0x42

	dst := make([]byte, BufferLen(r.W, r.H, bpp))
	assert.NotPanics(t, func() {
		Repack(dst, src, srcWidth, r, bpp)
	})

	texW, _ := Size(r.W, r.H)
	last := (r.H-1)*texW*bpp + r.W*bpp - 1
	assert.Equal(t, byte(0x42), dst[last])
}

func TestRepackFullFrame(t *testing.T) {
	const bpp = 3
	w, h := 3, 3
	src := make([]byte, w*h*bpp)
	for i := range src {
		src[i] = byte(i + 1)
	}
	dst := make([]byte, BufferLen(w, h, bpp))

	texW, texH := Repack(dst, src, w, Rect{W: w, H: h}, bpp)
	require.Equal(t, 4, texW)
	require.Equal(t, 4, texH)
	assert.Equal(t, src[:9], dst[:9])
	assert.Equal(t, src[9:18], dst[12:21])
	assert.Equal(t, src[18:27], dst[24:33])
	assert.Equal(t, make([]byte, 12), dst[36:48])
}
