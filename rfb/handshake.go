package rfb

import (
	"crypto/des"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/hiromi-mi/glesvnc/logger"
)

const (
	secInvalid = 0
	secNone    = 1
	secVNCAuth = 2
)

var (
	ErrAuthFailed          = errors.New("rfb: authentication failed")
	ErrNoPassword          = errors.New("rfb: no password available")
	ErrUnsupportedSecurity = errors.New("rfb: no supported security type")
	ErrBadVersion          = errors.New("rfb: bad protocol version")
)

// Swap DES key first bit <-> last bit
func invertbit(buf []byte) {
	l := len(buf)
	for i := 0; i < l; i++ {
		r := buf[i]
		r = (r&0xf0)>>4 | (r&0x0f)<<4
		r = (r&0xcc)>>2 | (r&0x33)<<2
		r = (r&0xaa)>>1 | (r&0x55)<<1
		buf[i] = r
	}
}

// encryptChallenge answers a VNC authentication challenge. Only the first
// eight bytes of the password take part.
func encryptChallenge(password string, challenge []byte) ([]byte, error) {
	key := make([]byte, 8)
	copy(key, password)
	invertbit(key)

	block, err := des.NewCipher(key)
	if err != nil {
		return nil, err
	}

	resp := make([]byte, 16)
	block.Encrypt(resp[0:8], challenge[0:8])
	block.Encrypt(resp[8:16], challenge[8:16])
	return resp, nil
}

func (c *Client) readFull(buf []byte) error {
	_, err := io.ReadFull(c.r, buf)
	return err
}

func (c *Client) read(v interface{}) error {
	return binary.Read(c.r, binary.BigEndian, v)
}

func (c *Client) readReason() error {
	var n uint32
	if err := c.read(&n); err != nil {
		return err
	}
	if n > maxTextLength {
		return fmt.Errorf("%w: failure reason of %d bytes", ErrTooLarge, n)
	}
	reason := make([]byte, n)
	if err := c.readFull(reason); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s", ErrAuthFailed, reason)
}

func (c *Client) handshake() error {
	minor, err := c.negotiateVersion()
	if err != nil {
		return err
	}

	sec, err := c.negotiateSecurity(minor)
	if err != nil {
		return err
	}

	switch sec {
	case secNone:
		if minor < 8 {
			break
		}
		if err := c.securityResult(minor); err != nil {
			return err
		}
	case secVNCAuth:
		if err := c.vncAuth(); err != nil {
			return err
		}
		if err := c.securityResult(minor); err != nil {
			return err
		}
	}

	if _, err := c.conn.Write([]byte{boolByte(c.Shared)}); err != nil {
		return fmt.Errorf("rfb: client init: %w", err)
	}
	return c.serverInit()
}

func (c *Client) negotiateVersion() (int, error) {
	buf := make([]byte, 12)
	if err := c.readFull(buf); err != nil {
		return 0, fmt.Errorf("rfb: read version: %w", err)
	}

	if string(buf[:4]) != "RFB " || buf[7] != '.' || buf[11] != '\n' {
		return 0, fmt.Errorf("%w: %q", ErrBadVersion, buf)
	}
	major, err1 := strconv.Atoi(string(buf[4:7]))
	minor, err2 := strconv.Atoi(string(buf[8:11]))
	if err1 != nil || err2 != nil || major != 3 {
		return 0, fmt.Errorf("%w: %q", ErrBadVersion, buf)
	}

	switch {
	case minor >= 8:
		minor = 8
	case minor == 7:
	default:
		minor = 3
	}
	logger.Debug("server version %q, using 3.%d", buf, minor)

	if _, err := fmt.Fprintf(c.conn, "RFB 003.%03d\n", minor); err != nil {
		return 0, fmt.Errorf("rfb: write version: %w", err)
	}
	return minor, nil
}

func (c *Client) negotiateSecurity(minor int) (uint32, error) {
	if minor == 3 {
		var sec uint32
		if err := c.read(&sec); err != nil {
			return 0, fmt.Errorf("rfb: read security: %w", err)
		}
		switch sec {
		case secInvalid:
			return 0, c.readReason()
		case secNone, secVNCAuth:
			return sec, nil
		}
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedSecurity, sec)
	}

	var n uint8
	if err := c.read(&n); err != nil {
		return 0, fmt.Errorf("rfb: read security types: %w", err)
	}
	if n == 0 {
		return 0, c.readReason()
	}
	types := make([]byte, n)
	if err := c.readFull(types); err != nil {
		return 0, fmt.Errorf("rfb: read security types: %w", err)
	}

	var chosen uint8
	for _, t := range types {
		if t == secNone {
			chosen = secNone
			break
		}
		if t == secVNCAuth {
			chosen = secVNCAuth
		}
	}
	if chosen == 0 {
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedSecurity, types)
	}

	if _, err := c.conn.Write([]byte{chosen}); err != nil {
		return 0, fmt.Errorf("rfb: write security: %w", err)
	}
	return uint32(chosen), nil
}

func (c *Client) vncAuth() error {
	challenge := make([]byte, 16)
	if err := c.readFull(challenge); err != nil {
		return fmt.Errorf("rfb: read challenge: %w", err)
	}

	if c.GetPassword == nil {
		return ErrNoPassword
	}
	password, ok := c.GetPassword(c)
	if !ok {
		return ErrNoPassword
	}

	resp, err := encryptChallenge(password, challenge)
	if err != nil {
		return fmt.Errorf("rfb: %w", err)
	}
	if _, err := c.conn.Write(resp); err != nil {
		return fmt.Errorf("rfb: write challenge response: %w", err)
	}
	return nil
}

func (c *Client) securityResult(minor int) error {
	var result uint32
	if err := c.read(&result); err != nil {
		return fmt.Errorf("rfb: read security result: %w", err)
	}
	if result == 0 {
		return nil
	}
	if minor >= 8 {
		return c.readReason()
	}
	return ErrAuthFailed
}

func (c *Client) serverInit() error {
	var init struct {
		Width   uint16
		Height  uint16
		Format  PixelFormat
		NameLen uint32
	}
	if err := c.read(&init); err != nil {
		return fmt.Errorf("rfb: read server init: %w", err)
	}
	if init.NameLen > maxTextLength {
		return fmt.Errorf("%w: desktop name of %d bytes", ErrTooLarge, init.NameLen)
	}
	name := make([]byte, init.NameLen)
	if err := c.readFull(name); err != nil {
		return fmt.Errorf("rfb: read desktop name: %w", err)
	}

	c.Width = int(init.Width)
	c.Height = int(init.Height)
	c.DesktopName = string(name)
	logger.Info("desktop %q is %dx%d, %d bpp", c.DesktopName, c.Width, c.Height, init.Format.BPP)
	return nil
}
