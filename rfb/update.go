package rfb

import (
	"fmt"
	"io"

	"github.com/hiromi-mi/glesvnc/logger"
)

type rectHeader struct {
	X        uint16
	Y        uint16
	W        uint16
	H        uint16
	Encoding int32
}

func (c *Client) frameBufferUpdate() error {
	var hdr struct {
		Padding uint8
		Count   uint16
	}
	if err := c.read(&hdr); err != nil {
		return fmt.Errorf("rfb: read update: %w", err)
	}

	for i := 0; i < int(hdr.Count); i++ {
		var info rectHeader
		if err := c.read(&info); err != nil {
			return fmt.Errorf("rfb: read rectangle: %w", err)
		}
		rect := Rect{X: int(info.X), Y: int(info.Y), W: int(info.W), H: int(info.H)}
		enc := Encoding(info.Encoding)

		if enc == EncLastRect {
			logger.Debug("last rect")
			break
		}

		switch enc {
		case EncDesktopSize:
			if err := c.resize(rect.W, rect.H); err != nil {
				return err
			}
			continue
		case EncExtendedDesktopSize:
			if err := c.extendedDesktopSize(rect); err != nil {
				return err
			}
			continue
		}

		if err := c.checkRect(rect); err != nil {
			return err
		}

		var err error
		switch enc {
		case EncRaw:
			err = c.readRaw(rect)
		case EncCopyRect:
			err = c.readCopyRect(rect)
		case EncRRE:
			err = c.readRRE(rect)
		case EncZlib:
			err = c.readZlib(rect)
		case EncTight:
			err = c.readTight(rect)
		default:
			return fmt.Errorf("rfb: unsupported encoding %d", enc)
		}
		if err != nil {
			return err
		}

		if c.GotFrameBufferUpdate != nil {
			c.GotFrameBufferUpdate(c, rect.X, rect.Y, rect.W, rect.H)
		}
	}

	if c.FinishedFrameBufferUpdate != nil {
		c.FinishedFrameBufferUpdate(c)
	}

	u := c.UpdateRect
	return c.SendFramebufferUpdateRequest(u.X, u.Y, u.W, u.H, true)
}

func (c *Client) checkRect(r Rect) error {
	bpp := c.Format.BytesPerPixel()
	if r.X+r.W > c.Width || r.Y+r.H > c.Height {
		return fmt.Errorf("%w: %+v on %dx%d", ErrRectOutOfBound, r, c.Width, c.Height)
	}
	if len(c.FrameBuffer) < c.Width*c.Height*bpp {
		return ErrNoFrameBuffer
	}
	return nil
}

func (c *Client) stride() int {
	return c.Width * c.Format.BytesPerPixel()
}

// putRows copies tightly packed rows of rect pixels into the frame buffer.
func (c *Client) putRows(r Rect, pix []byte) {
	bpp := c.Format.BytesPerPixel()
	stride := c.stride()
	row := r.W * bpp
	for j := 0; j < r.H; j++ {
		off := (r.Y+j)*stride + r.X*bpp
		copy(c.FrameBuffer[off:off+row], pix[j*row:(j+1)*row])
	}
}

// fillRect paints every pixel of r with pixel.
func (c *Client) fillRect(r Rect, pixel []byte) {
	bpp := c.Format.BytesPerPixel()
	stride := c.stride()
	for j := 0; j < r.H; j++ {
		off := (r.Y+j)*stride + r.X*bpp
		for i := 0; i < r.W; i++ {
			copy(c.FrameBuffer[off+i*bpp:], pixel[:bpp])
		}
	}
}

func (c *Client) readRaw(r Rect) error {
	pix := make([]byte, r.W*r.H*c.Format.BytesPerPixel())
	if err := c.readFull(pix); err != nil {
		return fmt.Errorf("rfb: read raw: %w", err)
	}
	c.putRows(r, pix)
	return nil
}

func (c *Client) readCopyRect(r Rect) error {
	var src struct {
		X uint16
		Y uint16
	}
	if err := c.read(&src); err != nil {
		return fmt.Errorf("rfb: read copyrect: %w", err)
	}
	from := Rect{X: int(src.X), Y: int(src.Y), W: r.W, H: r.H}
	if err := c.checkRect(from); err != nil {
		return err
	}

	bpp := c.Format.BytesPerPixel()
	stride := c.stride()
	row := r.W * bpp

	// rows are copied in the direction that keeps overlapping regions intact
	if from.Y < r.Y {
		for j := r.H - 1; j >= 0; j-- {
			s := (from.Y+j)*stride + from.X*bpp
			d := (r.Y+j)*stride + r.X*bpp
			copy(c.FrameBuffer[d:d+row], c.FrameBuffer[s:s+row])
		}
		return nil
	}
	for j := 0; j < r.H; j++ {
		s := (from.Y+j)*stride + from.X*bpp
		d := (r.Y+j)*stride + r.X*bpp
		copy(c.FrameBuffer[d:d+row], c.FrameBuffer[s:s+row])
	}
	return nil
}

func (c *Client) readRRE(r Rect) error {
	bpp := c.Format.BytesPerPixel()

	var n uint32
	if err := c.read(&n); err != nil {
		return fmt.Errorf("rfb: read rre: %w", err)
	}
	bg := make([]byte, bpp)
	if err := c.readFull(bg); err != nil {
		return fmt.Errorf("rfb: read rre: %w", err)
	}
	c.fillRect(r, bg)

	pixel := make([]byte, bpp)
	for i := uint32(0); i < n; i++ {
		if err := c.readFull(pixel); err != nil {
			return fmt.Errorf("rfb: read rre subrect: %w", err)
		}
		var sub struct {
			X, Y, W, H uint16
		}
		if err := c.read(&sub); err != nil {
			return fmt.Errorf("rfb: read rre subrect: %w", err)
		}
		sr := Rect{X: r.X + int(sub.X), Y: r.Y + int(sub.Y), W: int(sub.W), H: int(sub.H)}
		if sr.X+sr.W > r.X+r.W || sr.Y+sr.H > r.Y+r.H {
			return fmt.Errorf("%w: rre subrect %+v", ErrRectOutOfBound, sr)
		}
		c.fillRect(sr, pixel)
	}
	return nil
}

func (c *Client) readZlib(r Rect) error {
	var n uint32
	if err := c.read(&n); err != nil {
		return fmt.Errorf("rfb: read zlib: %w", err)
	}
	size := r.W * r.H * c.Format.BytesPerPixel()
	if int64(n) > maxDeflated(size) {
		return fmt.Errorf("%w: %d zlib bytes for %d pixel bytes", ErrTooLarge, n, size)
	}
	compressed := make([]byte, n)
	if err := c.readFull(compressed); err != nil {
		return fmt.Errorf("rfb: read zlib: %w", err)
	}

	pix, err := c.zlib.inflate(compressed, size)
	if err != nil {
		return fmt.Errorf("rfb: zlib: %w", err)
	}
	c.putRows(r, pix)
	return nil
}

// maxDeflated bounds the compressed form of size bytes: stored blocks cost
// five bytes per 64k, plus the header and the sync flush marker.
func maxDeflated(size int) int64 {
	return int64(size) + int64(size)/1024 + 64
}

func (c *Client) extendedDesktopSize(r Rect) error {
	var hdr struct {
		NumScreens uint8
		Padding    [3]byte
	}
	if err := c.read(&hdr); err != nil {
		return fmt.Errorf("rfb: read extended desktop size: %w", err)
	}
	if _, err := io.CopyN(io.Discard, c.r, int64(hdr.NumScreens)*16); err != nil {
		return fmt.Errorf("rfb: read screens: %w", err)
	}

	// y carries the status of a client requested resize, zero is success
	// or a server initiated change
	if r.Y != 0 {
		logger.Warn("resize refused by server: status %d", r.Y)
		return nil
	}
	return c.resize(r.W, r.H)
}

func (c *Client) resize(w, h int) error {
	if w == c.Width && h == c.Height && c.FrameBuffer != nil {
		return nil
	}
	logger.Info("desktop resized to %dx%d", w, h)

	c.Width = w
	c.Height = h
	c.UpdateRect = Rect{W: w, H: h}
	if err := c.allocFrameBuffer(); err != nil {
		return err
	}
	return c.SendFramebufferUpdateRequest(0, 0, w, h, false)
}
