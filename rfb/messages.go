package rfb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// client to server message types
const (
	msgSetPixelFormat           = 0
	msgSetEncodings             = 2
	msgFramebufferUpdateRequest = 3
	msgKeyEvent                 = 4
	msgPointerEvent             = 5
	msgClientCutText            = 6
)

// pointer button mask bits. buttons 4 and 5 are the scroll wheel.
const (
	Button1Mask uint8 = 1 << iota
	Button2Mask
	Button3Mask
	Button4Mask
	Button5Mask
)

type Encoding int32

const (
	EncRaw                 Encoding = 0
	EncCopyRect            Encoding = 1
	EncRRE                 Encoding = 2
	EncZlib                Encoding = 6
	EncTight               Encoding = 7
	EncQualityLevel0       Encoding = -32
	EncDesktopSize         Encoding = -223
	EncLastRect            Encoding = -224
	EncCompressLevel0      Encoding = -256
	EncExtendedDesktopSize Encoding = -308
)

// DefaultEncodings is the preference order sent with SetEncodings. Quality
// and compression pseudo encodings are appended from the client settings.
var DefaultEncodings = []Encoding{
	EncTight,
	EncZlib,
	EncCopyRect,
	EncRRE,
	EncRaw,
	EncExtendedDesktopSize,
	EncDesktopSize,
	EncLastRect,
}

type setPixelFormat struct {
	Kind    uint8
	Padding [3]byte
	Format  PixelFormat
}

type updateRequest struct {
	Kind        uint8
	Incremental uint8
	X           uint16
	Y           uint16
	W           uint16
	H           uint16
}

type keyEvent struct {
	Kind    uint8
	Down    uint8
	Padding uint16
	Key     uint32
}

type pointerEvent struct {
	Kind   uint8
	Button uint8
	X      uint16
	Y      uint16
}

func (c *Client) writeRequest(u interface{}) error {
	if c.conn == nil {
		return ErrNotConnected
	}
	if err := binary.Write(c.conn, binary.BigEndian, u); err != nil {
		return fmt.Errorf("rfb: write request: %w", err)
	}
	return nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// SetFormatAndEncodings sends the client pixel format followed by the
// encoding preference list.
func (c *Client) SetFormatAndEncodings() error {
	err := c.writeRequest(setPixelFormat{Kind: msgSetPixelFormat, Format: c.Format})
	if err != nil {
		return err
	}

	encodings := make([]int32, 0, len(c.Encodings)+2)
	for _, e := range c.Encodings {
		encodings = append(encodings, int32(e))
	}
	if c.QualityLevel >= 0 && c.QualityLevel <= 9 {
		encodings = append(encodings, int32(EncQualityLevel0)+int32(c.QualityLevel))
	}
	if c.CompressLevel >= 0 && c.CompressLevel <= 9 {
		encodings = append(encodings, int32(EncCompressLevel0)+int32(c.CompressLevel))
	}

	var buf bytes.Buffer
	buf.Write([]byte{msgSetEncodings, 0})
	binary.Write(&buf, binary.BigEndian, uint16(len(encodings)))
	binary.Write(&buf, binary.BigEndian, encodings)

	if c.conn == nil {
		return ErrNotConnected
	}
	if _, err := io.Copy(c.conn, &buf); err != nil {
		return fmt.Errorf("rfb: set encodings: %w", err)
	}
	return nil
}

func (c *Client) SendFramebufferUpdateRequest(x, y, w, h int, incremental bool) error {
	return c.writeRequest(updateRequest{
		Kind:        msgFramebufferUpdateRequest,
		Incremental: boolByte(incremental),
		X:           uint16(x),
		Y:           uint16(y),
		W:           uint16(w),
		H:           uint16(h),
	})
}

func (c *Client) SendKeyEvent(key uint32, down bool) error {
	return c.writeRequest(keyEvent{Kind: msgKeyEvent, Down: boolByte(down), Key: key})
}

// SendPointerEvent clamps negative coordinates to the desktop origin.
func (c *Client) SendPointerEvent(x, y int, buttonMask uint8) error {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return c.writeRequest(pointerEvent{Kind: msgPointerEvent, Button: buttonMask, X: uint16(x), Y: uint16(y)})
}

// SendClientCutText sends Latin-1 text to the server clipboard.
func (c *Client) SendClientCutText(text string) error {
	var buf bytes.Buffer
	buf.Write([]byte{msgClientCutText, 0, 0, 0})
	binary.Write(&buf, binary.BigEndian, uint32(len(text)))
	buf.WriteString(text)
	return c.writeRequest(buf.Bytes())
}
