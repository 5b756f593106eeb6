// Package rfb is a small remote framebuffer (VNC) client. Decoded pixels are
// written into Client.FrameBuffer and the embedding program is told about
// them through the callback fields, in the same way libvncclient drives its
// users.
package rfb

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/hiromi-mi/glesvnc/logger"
)

const (
	DefaultPort = 5900

	// displays below this number are offsets from DefaultPort
	maxDisplay = 100

	// upper bound for server supplied strings: cut text, desktop name and
	// failure reasons
	maxTextLength = 1 << 20
)

var (
	ErrNotConnected   = errors.New("rfb: not connected")
	ErrNoFrameBuffer  = errors.New("rfb: no frame buffer")
	ErrRectOutOfBound = errors.New("rfb: rectangle outside frame buffer")
	ErrTooLarge       = errors.New("rfb: length too large")
)

// Rect is a region of the remote desktop in pixels.
type Rect struct {
	X, Y, W, H int
}

type Client struct {
	conn net.Conn
	r    *bufio.Reader

	Width       int
	Height      int
	Format      PixelFormat
	DesktopName string

	// FrameBuffer holds Width*Height*Format.BytesPerPixel() bytes. It is
	// (re)allocated by MallocFrameBuffer whenever the desktop size changes.
	FrameBuffer []byte

	// UpdateRect is the region requested by the incremental update that
	// follows every FramebufferUpdate.
	UpdateRect Rect

	Encodings     []Encoding
	QualityLevel  int
	CompressLevel int
	Shared        bool

	// MallocFrameBuffer is called after ServerInit and after every desktop
	// resize. It must set FrameBuffer. When nil a plain allocation is made.
	MallocFrameBuffer func(c *Client) error

	GotFrameBufferUpdate      func(c *Client, x, y, w, h int)
	FinishedFrameBufferUpdate func(c *Client)

	// GetPassword returns the VNC password, or false to refuse
	// authentication.
	GetPassword func(c *Client) (string, bool)

	GotCutText func(c *Client, text string)
	Bell       func(c *Client)

	zlib  zlibStream
	tight ZlibStreamer
}

// NewClient prepares a client whose pixel format is true colour with
// samplesPerPixel channels of bitsPerSample bits packed into bytesPerPixel
// bytes, red in the lowest bits.
func NewClient(bitsPerSample, samplesPerPixel, bytesPerPixel int) *Client {
	maxv := uint16(1<<uint(bitsPerSample) - 1)
	c := &Client{
		Format: PixelFormat{
			BPP:        uint8(bytesPerPixel * 8),
			Depth:      uint8(bitsPerSample * samplesPerPixel),
			BigEndian:  0,
			TrueColour: 1,
			RedMax:     maxv,
			GreenMax:   maxv,
			BlueMax:    maxv,
			RedShift:   0,
			GreenShift: uint8(bitsPerSample),
			BlueShift:  uint8(bitsPerSample * 2),
		},
		Encodings:     DefaultEncodings,
		QualityLevel:  5,
		CompressLevel: 3,
		Shared:        true,
	}
	return c
}

// ParseAddress turns host, host:display or host::port into a dial address.
func ParseAddress(s string) (string, error) {
	if s == "" {
		return net.JoinHostPort("localhost", strconv.Itoa(DefaultPort)), nil
	}

	if i := strings.Index(s, "::"); i >= 0 {
		host := s[:i]
		if host == "" {
			host = "localhost"
		}
		port, err := strconv.Atoi(s[i+2:])
		if err != nil || port <= 0 || port > 65535 {
			return "", fmt.Errorf("rfb: bad port in %q", s)
		}
		return net.JoinHostPort(host, strconv.Itoa(port)), nil
	}

	i := strings.LastIndex(s, ":")
	if i < 0 {
		return net.JoinHostPort(s, strconv.Itoa(DefaultPort)), nil
	}
	host := s[:i]
	if host == "" {
		host = "localhost"
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil || n < 0 || n > 65535 {
		return "", fmt.Errorf("rfb: bad display in %q", s)
	}
	if n < maxDisplay {
		n += DefaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(n)), nil
}

// Init connects to host, runs the handshake and asks for the first full
// frame.
func (c *Client) Init(ctx context.Context, host string) error {
	addr, err := ParseAddress(host)
	if err != nil {
		return err
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("rfb: dial %s: %w", addr, err)
	}
	logger.Info("connected to %s", addr)

	if err := c.InitConn(conn); err != nil {
		conn.Close()
		return err
	}
	return nil
}

// InitConn runs the handshake over an already established connection.
func (c *Client) InitConn(conn net.Conn) error {
	c.conn = conn
	c.r = bufio.NewReaderSize(conn, 1024*768)

	if err := c.handshake(); err != nil {
		return err
	}

	c.UpdateRect = Rect{W: c.Width, H: c.Height}
	if err := c.allocFrameBuffer(); err != nil {
		return err
	}

	if err := c.SetFormatAndEncodings(); err != nil {
		return err
	}
	return c.SendFramebufferUpdateRequest(0, 0, c.Width, c.Height, false)
}

func (c *Client) allocFrameBuffer() error {
	if c.MallocFrameBuffer != nil {
		return c.MallocFrameBuffer(c)
	}
	c.FrameBuffer = make([]byte, c.Width*c.Height*c.Format.BytesPerPixel())
	return nil
}

// WaitForMessage reports whether a server message is ready to be handled,
// waiting at most timeout. Nothing is consumed from the connection.
func (c *Client) WaitForMessage(timeout time.Duration) (bool, error) {
	if c.conn == nil {
		return false, ErrNotConnected
	}
	if c.r.Buffered() > 0 {
		return true, nil
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return false, fmt.Errorf("rfb: set deadline: %w", err)
	}
	if _, err := c.r.Peek(1); err != nil {
		var ne net.Error
		if !errors.As(err, &ne) || !ne.Timeout() {
			return false, fmt.Errorf("rfb: wait for message: %w", err)
		}
	}

	// a deadline left behind would fail the blocking reads that follow
	if err := c.conn.SetReadDeadline(time.Time{}); err != nil {
		return false, fmt.Errorf("rfb: clear deadline: %w", err)
	}
	return c.r.Buffered() > 0, nil
}

func (c *Client) Close() error {
	c.zlib.close()
	c.tight.close()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
