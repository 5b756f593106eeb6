package rfb

import (
	"errors"
	"fmt"
	"io"

	"github.com/hiromi-mi/glesvnc/logger"
)

// server to client message types
const (
	msgFramebufferUpdate      = 0
	msgSetColourMapEntries    = 1
	msgBell                   = 2
	msgServerCutText          = 3
	msgEndOfContinuousUpdates = 150
)

var ErrUnknownMessage = errors.New("rfb: unknown server message")

// HandleServerMessage reads and processes one server message. Any error
// means the session can not continue.
func (c *Client) HandleServerMessage() error {
	if c.conn == nil {
		return ErrNotConnected
	}

	kind, err := c.r.ReadByte()
	if err != nil {
		return fmt.Errorf("rfb: read message type: %w", err)
	}

	switch kind {
	case msgFramebufferUpdate:
		return c.frameBufferUpdate()
	case msgSetColourMapEntries:
		return c.colourMapEntries()
	case msgBell:
		if c.Bell != nil {
			c.Bell(c)
		} else {
			logger.Debug("bell")
		}
		return nil
	case msgServerCutText:
		return c.serverCutText()
	case msgEndOfContinuousUpdates:
		logger.Debug("end of continuous updates")
		return nil
	}
	return fmt.Errorf("%w: %d", ErrUnknownMessage, kind)
}

// colour maps are only used by 8 bit non true colour formats, which this
// client never asks for. the entries are consumed and dropped.
func (c *Client) colourMapEntries() error {
	var hdr struct {
		Padding    uint8
		FirstColor uint16
		NumColors  uint16
	}
	if err := c.read(&hdr); err != nil {
		return fmt.Errorf("rfb: read colour map: %w", err)
	}
	if _, err := io.CopyN(io.Discard, c.r, int64(hdr.NumColors)*6); err != nil {
		return fmt.Errorf("rfb: read colour map: %w", err)
	}
	logger.Warn("ignoring %d colour map entries", hdr.NumColors)
	return nil
}

func (c *Client) serverCutText() error {
	var hdr struct {
		Padding [3]byte
		Length  uint32
	}
	if err := c.read(&hdr); err != nil {
		return fmt.Errorf("rfb: read cut text: %w", err)
	}
	if hdr.Length > maxTextLength {
		return fmt.Errorf("%w: cut text of %d bytes", ErrTooLarge, hdr.Length)
	}
	text := make([]byte, hdr.Length)
	if err := c.readFull(text); err != nil {
		return fmt.Errorf("rfb: read cut text: %w", err)
	}

	// the wire encoding is Latin-1
	runes := make([]rune, len(text))
	for i, b := range text {
		runes[i] = rune(b)
	}

	if c.GotCutText != nil {
		c.GotCutText(c, string(runes))
	}
	return nil
}
