package rfb

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/hiromi-mi/glesvnc/logger"
)

const (
	tightFill  = 0x08
	tightJPEG  = 0x09
	tightBasic = 0x07 // highest basic compression type

	tightExplicitFilter = 0x04

	filterCopy     = 0
	filterPalette  = 1
	filterGradient = 2
)

var ErrTight = errors.New("rfb: bad tight data")

func (c *Client) readTight(r Rect) error {
	compctrl, err := c.r.ReadByte()
	if err != nil {
		return fmt.Errorf("rfb: read tight control: %w", err)
	}
	c.tight.resetzlib(compctrl)

	kind := compctrl >> 4
	switch {
	case kind == tightFill:
		return c.tightFill(r)
	case kind == tightJPEG:
		return c.tightJPEG(r)
	case kind <= tightBasic:
		return c.tightBasic(r, kind)
	}
	return fmt.Errorf("%w: compression control %#x", ErrTight, compctrl)
}

func (c *Client) tightFill(r Rect) error {
	tpixel := make([]byte, c.Format.tightPixelSize())
	if err := c.readFull(tpixel); err != nil {
		return fmt.Errorf("rfb: read tight fill: %w", err)
	}
	pixel := make([]byte, c.Format.BytesPerPixel())
	c.Format.putTightPixel(pixel, tpixel)
	c.fillRect(r, pixel)
	return nil
}

func (c *Client) tightJPEG(r Rect) error {
	l, err := c.GetCompressedlen()
	if err != nil {
		return fmt.Errorf("rfb: read tight jpeg length: %w", err)
	}
	buf := make([]byte, l)
	if err := c.readFull(buf); err != nil {
		return fmt.Errorf("rfb: read tight jpeg: %w", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("rfb: decode tight jpeg: %w", err)
	}
	b := img.Bounds()
	if b.Dx() != r.W || b.Dy() != r.H {
		return fmt.Errorf("%w: jpeg is %dx%d, rectangle %dx%d", ErrTight, b.Dx(), b.Dy(), r.W, r.H)
	}
	c.putImage(r, img)
	return nil
}

func (c *Client) putImage(r Rect, img image.Image) {
	bpp := c.Format.BytesPerPixel()
	stride := c.stride()
	b := img.Bounds()
	for j := 0; j < r.H; j++ {
		off := (r.Y+j)*stride + r.X*bpp
		for i := 0; i < r.W; i++ {
			cr, cg, cb, _ := img.At(b.Min.X+i, b.Min.Y+j).RGBA()
			c.Format.putRGB(c.FrameBuffer[off+i*bpp:], uint8(cr>>8), uint8(cg>>8), uint8(cb>>8))
		}
	}
}

func (c *Client) tightBasic(r Rect, kind byte) error {
	stream := int(kind & 0x03)

	filter := byte(filterCopy)
	if kind&tightExplicitFilter != 0 {
		f, err := c.r.ReadByte()
		if err != nil {
			return fmt.Errorf("rfb: read tight filter: %w", err)
		}
		filter = f
	}

	tsize := c.Format.tightPixelSize()
	bpp := c.Format.BytesPerPixel()

	switch filter {
	case filterCopy:
		data, err := c.ReadBuf(r.W*r.H*tsize, stream)
		if err != nil {
			return fmt.Errorf("rfb: read tight copy: %w", err)
		}
		c.putTightRows(r, data)
		return nil

	case filterGradient:
		if tsize != 3 {
			return fmt.Errorf("%w: gradient filter needs 24 bit colour", ErrTight)
		}
		data, err := c.ReadBuf(r.W*r.H*tsize, stream)
		if err != nil {
			return fmt.Errorf("rfb: read tight gradient: %w", err)
		}
		c.putTightRows(r, gradientFilter(data, r.W, r.H))
		return nil

	case filterPalette:
		n, err := c.r.ReadByte()
		if err != nil {
			return fmt.Errorf("rfb: read tight palette: %w", err)
		}
		colours := int(n) + 1
		raw := make([]byte, colours*tsize)
		if err := c.readFull(raw); err != nil {
			return fmt.Errorf("rfb: read tight palette: %w", err)
		}
		palette := make([]byte, colours*bpp)
		for i := 0; i < colours; i++ {
			c.Format.putTightPixel(palette[i*bpp:], raw[i*tsize:])
		}

		var indices []byte
		if colours == 2 {
			// one bit per pixel, rows padded to a byte
			rowBytes := (r.W + 7) / 8
			packed, err := c.ReadBuf(rowBytes*r.H, stream)
			if err != nil {
				return fmt.Errorf("rfb: read tight mono: %w", err)
			}
			indices = make([]byte, r.W*r.H)
			for j := 0; j < r.H; j++ {
				for i := 0; i < r.W; i++ {
					indices[j*r.W+i] = (packed[j*rowBytes+i/8] >> (7 - i%8)) & 1
				}
			}
		} else {
			indices, err = c.ReadBuf(r.W*r.H, stream)
			if err != nil {
				return fmt.Errorf("rfb: read tight indices: %w", err)
			}
		}

		pix := make([]byte, r.W*r.H*bpp)
		for i, idx := range indices {
			if int(idx) >= colours {
				return fmt.Errorf("%w: palette index %d of %d", ErrTight, idx, colours)
			}
			copy(pix[i*bpp:(i+1)*bpp], palette[int(idx)*bpp:])
		}
		c.putRows(r, pix)
		return nil
	}

	logger.Warn("unknown tight filter %d", filter)
	return fmt.Errorf("%w: filter %d", ErrTight, filter)
}

// putTightRows expands TPIXEL rows into the frame buffer.
func (c *Client) putTightRows(r Rect, data []byte) {
	tsize := c.Format.tightPixelSize()
	if tsize == c.Format.BytesPerPixel() {
		c.putRows(r, data)
		return
	}

	bpp := c.Format.BytesPerPixel()
	stride := c.stride()
	for j := 0; j < r.H; j++ {
		off := (r.Y+j)*stride + r.X*bpp
		for i := 0; i < r.W; i++ {
			src := data[(j*r.W+i)*tsize:]
			c.Format.putTightPixel(c.FrameBuffer[off+i*bpp:], src)
		}
	}
}

// gradientFilter undoes the tight gradient predictor on 24 bit TPIXEL data.
// Each component is predicted from its left, upper and upper-left neighbours,
// missing neighbours count as zero.
func gradientFilter(gradient []byte, W int, H int) []byte {
	colorbuf := make([]byte, 3*W*H)
	at := func(i, j, k int) int {
		if i < 0 || j < 0 {
			return 0
		}
		return int(colorbuf[(j*W+i)*3+k])
	}

	for j := 0; j < H; j++ {
		for i := 0; i < W; i++ {
			for k := 0; k < 3; k++ {
				p := at(i-1, j, k) + at(i, j-1, k) - at(i-1, j-1, k)
				if p < 0 {
					p = 0
				}
				if p > 255 {
					p = 255
				}
				idx := (j*W+i)*3 + k
				colorbuf[idx] = byte(p) + gradient[idx]
			}
		}
	}
	return colorbuf
}
