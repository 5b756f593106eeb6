package rfb

import (
	"bufio"
	"crypto/des"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	t    *testing.T
	conn net.Conn
}

func (s *fakeServer) write(v interface{}) {
	assert.NoError(s.t, binary.Write(s.conn, binary.BigEndian, v))
}

func (s *fakeServer) read(n int) []byte {
	buf := make([]byte, n)
	_, err := io.ReadFull(s.conn, buf)
	assert.NoError(s.t, err)
	return buf
}

type serverInit struct {
	Width   uint16
	Height  uint16
	Format  PixelFormat
	NameLen uint32
}

// setEncodingsLen is the size of the SetEncodings message sent by a client
// with default settings.
var setEncodingsLen = 4 + 4*(len(DefaultEncodings)+2)

// serve runs the server side of a 3.8 handshake with the given security
// type and drains the messages a client sends straight after ServerInit.
func (s *fakeServer) serve(sec byte, password string, w, h uint16) {
	s.write([]byte("RFB 003.008\n"))
	assert.Equal(s.t, "RFB 003.008\n", string(s.read(12)))

	s.write([]byte{1, sec})
	assert.Equal(s.t, []byte{sec}, s.read(1))

	if sec == secVNCAuth {
		challenge := []byte("0123456789abcdef")
		s.write(challenge)
		resp := s.read(16)

		key := make([]byte, 8)
		copy(key, password)
		invertbit(key)
		block, err := des.NewCipher(key)
		assert.NoError(s.t, err)
		plain := make([]byte, 16)
		block.Decrypt(plain[:8], resp[:8])
		block.Decrypt(plain[8:], resp[8:])
		assert.Equal(s.t, challenge, plain)
	}
	s.write(uint32(0))

	assert.Equal(s.t, []byte{1}, s.read(1))

	name := "test desktop"
	s.write(serverInit{Width: w, Height: h, Format: NewClient(8, 3, 4).Format, NameLen: uint32(len(name))})
	s.write([]byte(name))

	s.read(20)
	s.read(setEncodingsLen)
	req := s.read(10)
	assert.Equal(s.t, byte(msgFramebufferUpdateRequest), req[0])
	assert.Equal(s.t, byte(0), req[1])
}

func connect(t *testing.T, c *Client, sec byte, password string, w, h uint16) *fakeServer {
	clientConn, serverConn := net.Pipe()
	t.Cleanup(func() {
		serverConn.Close()
		c.Close()
	})

	srv := &fakeServer{t: t, conn: serverConn}
	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.serve(sec, password, w, h)
	}()

	require.NoError(t, c.InitConn(clientConn))
	<-done
	return srv
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "localhost:5900"},
		{"example.org", "example.org:5900"},
		{"example.org:1", "example.org:5901"},
		{"example.org:5999", "example.org:5999"},
		{"example.org::5555", "example.org:5555"},
		{":2", "localhost:5902"},
	}
	for _, tt := range tests {
		got, err := ParseAddress(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseAddress("host:abc")
	assert.Error(t, err)
	_, err = ParseAddress("host::0")
	assert.Error(t, err)
}

func TestInvertBit(t *testing.T) {
	buf := []byte{0x01, 0x80, 0xf0, 0xaa}
	invertbit(buf)
	assert.Equal(t, []byte{0x80, 0x01, 0x0f, 0x55}, buf)
}

func TestHandshakeVNCAuth(t *testing.T) {
	c := NewClient(8, 3, 4)
	asked := 0
	c.GetPassword = func(*Client) (string, bool) {
		asked++
		return "secret", true
	}
	var allocated []int
	c.MallocFrameBuffer = func(c *Client) error {
		allocated = append(allocated, c.Width*c.Height)
		c.FrameBuffer = make([]byte, c.Width*c.Height*c.Format.BytesPerPixel())
		return nil
	}

	connect(t, c, secVNCAuth, "secret", 4, 2)

	assert.Equal(t, 1, asked)
	assert.Equal(t, []int{8}, allocated)
	assert.Equal(t, 4, c.Width)
	assert.Equal(t, 2, c.Height)
	assert.Equal(t, "test desktop", c.DesktopName)
	assert.Equal(t, Rect{W: 4, H: 2}, c.UpdateRect)
	assert.Len(t, c.FrameBuffer, 32)
}

func TestHandshakeRefusedPassword(t *testing.T) {
	c := NewClient(8, 3, 4)
	c.GetPassword = func(*Client) (string, bool) { return "", false }

	clientConn, serverConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	srv := &fakeServer{t: t, conn: serverConn}
	go func() {
		srv.write([]byte("RFB 003.008\n"))
		srv.read(12)
		srv.write([]byte{1, secVNCAuth})
		srv.read(1)
		srv.write([]byte("0123456789abcdef"))
	}()

	err := c.InitConn(clientConn)
	assert.True(t, errors.Is(err, ErrNoPassword))
}

func TestHandshakeFailureReason(t *testing.T) {
	c := NewClient(8, 3, 4)

	clientConn, serverConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	srv := &fakeServer{t: t, conn: serverConn}
	go func() {
		srv.write([]byte("RFB 003.008\n"))
		srv.read(12)
		reason := "too many connections"
		srv.write([]byte{0})
		srv.write(uint32(len(reason)))
		srv.write([]byte(reason))
	}()

	err := c.InitConn(clientConn)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuthFailed))
	assert.Contains(t, err.Error(), "too many connections")
}

func TestBadVersion(t *testing.T) {
	c := NewClient(8, 3, 4)

	clientConn, serverConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	go serverConn.Write([]byte("HTTP/1.1 200"))

	err := c.InitConn(clientConn)
	assert.True(t, errors.Is(err, ErrBadVersion))
}

func TestRawUpdate(t *testing.T) {
	c := NewClient(8, 3, 4)
	srv := connect(t, c, secNone, "", 4, 2)

	var got []Rect
	finished := 0
	c.GotFrameBufferUpdate = func(_ *Client, x, y, w, h int) {
		got = append(got, Rect{x, y, w, h})
	}
	c.FinishedFrameBufferUpdate = func(*Client) { finished++ }

	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.write([]byte{msgFramebufferUpdate, 0})
		srv.write(uint16(1))
		srv.write(rectHeader{X: 1, Y: 1, W: 2, H: 1, Encoding: int32(EncRaw)})
		srv.write([]byte{1, 2, 3, 0, 4, 5, 6, 0})

		req := srv.read(10)
		assert.Equal(t, []byte{msgFramebufferUpdateRequest, 1, 0, 0, 0, 0, 0, 4, 0, 2}, req)
	}()

	ready, err := c.WaitForMessage(time.Second)
	require.NoError(t, err)
	require.True(t, ready)
	require.NoError(t, c.HandleServerMessage())
	<-done

	assert.Equal(t, []Rect{{1, 1, 2, 1}}, got)
	assert.Equal(t, 1, finished)

	stride := 4 * 4
	assert.Equal(t, []byte{1, 2, 3, 0, 4, 5, 6, 0}, c.FrameBuffer[stride+4:stride+12])
	assert.Equal(t, make([]byte, 4), c.FrameBuffer[stride:stride+4])
}

func TestDesktopSizeUpdate(t *testing.T) {
	c := NewClient(8, 3, 4)
	allocs := 0
	c.MallocFrameBuffer = func(c *Client) error {
		allocs++
		c.FrameBuffer = make([]byte, c.Width*c.Height*4)
		return nil
	}
	srv := connect(t, c, secNone, "", 4, 2)

	var got []Rect
	c.GotFrameBufferUpdate = func(_ *Client, x, y, w, h int) {
		got = append(got, Rect{x, y, w, h})
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.write([]byte{msgFramebufferUpdate, 0})
		srv.write(uint16(2))
		srv.write(rectHeader{W: 8, H: 6, Encoding: int32(EncDesktopSize)})
		srv.write(rectHeader{Encoding: int32(EncLastRect)})

		full := srv.read(10)
		assert.Equal(t, []byte{msgFramebufferUpdateRequest, 0, 0, 0, 0, 0, 0, 8, 0, 6}, full)
		inc := srv.read(10)
		assert.Equal(t, []byte{msgFramebufferUpdateRequest, 1, 0, 0, 0, 0, 0, 8, 0, 6}, inc)
	}()

	require.NoError(t, c.HandleServerMessage())
	<-done

	assert.Equal(t, 2, allocs)
	assert.Equal(t, 8, c.Width)
	assert.Equal(t, 6, c.Height)
	assert.Len(t, c.FrameBuffer, 8*6*4)
	assert.Empty(t, got)
}

func countingAlloc(allocs *int) func(*Client) error {
	return func(c *Client) error {
		*allocs++
		c.FrameBuffer = make([]byte, c.Width*c.Height*4)
		return nil
	}
}

func TestExtendedDesktopSize(t *testing.T) {
	c := NewClient(8, 3, 4)
	allocs := 0
	c.MallocFrameBuffer = countingAlloc(&allocs)
	srv := connect(t, c, secNone, "", 4, 2)
	require.Equal(t, 1, allocs)

	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.write([]byte{msgFramebufferUpdate, 0})
		srv.write(uint16(1))
		srv.write(rectHeader{W: 8, H: 6, Encoding: int32(EncExtendedDesktopSize)})
		srv.write([]byte{1, 0, 0, 0})
		srv.write(make([]byte, 16))

		full := srv.read(10)
		assert.Equal(t, []byte{msgFramebufferUpdateRequest, 0, 0, 0, 0, 0, 0, 8, 0, 6}, full)
		srv.read(10)
	}()

	require.NoError(t, c.HandleServerMessage())
	<-done

	assert.Equal(t, 2, allocs)
	assert.Equal(t, 8, c.Width)
	assert.Equal(t, 6, c.Height)
	assert.Len(t, c.FrameBuffer, 8*6*4)
}

func TestExtendedDesktopSizeRefused(t *testing.T) {
	c := NewClient(8, 3, 4)
	allocs := 0
	c.MallocFrameBuffer = countingAlloc(&allocs)
	srv := connect(t, c, secNone, "", 4, 2)

	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.write([]byte{msgFramebufferUpdate, 0})
		srv.write(uint16(2))
		// y carries a non zero status: the resize was refused
		srv.write(rectHeader{X: 1, Y: 3, W: 8, H: 6, Encoding: int32(EncExtendedDesktopSize)})
		srv.write([]byte{2, 0, 0, 0})
		srv.write(make([]byte, 2*16))
		// the screens must have been consumed for this to decode
		srv.write(rectHeader{W: 1, H: 1, Encoding: int32(EncRaw)})
		srv.write([]byte{9, 8, 7, 0})

		inc := srv.read(10)
		assert.Equal(t, []byte{msgFramebufferUpdateRequest, 1, 0, 0, 0, 0, 0, 4, 0, 2}, inc)
	}()

	require.NoError(t, c.HandleServerMessage())
	<-done

	assert.Equal(t, 1, allocs)
	assert.Equal(t, 4, c.Width)
	assert.Equal(t, 2, c.Height)
	assert.Equal(t, []byte{9, 8, 7, 0}, c.FrameBuffer[:4])
}

func TestServerCutTextAndBell(t *testing.T) {
	c := NewClient(8, 3, 4)
	srv := connect(t, c, secNone, "", 4, 2)

	var text string
	bells := 0
	c.GotCutText = func(_ *Client, s string) { text = s }
	c.Bell = func(*Client) { bells++ }

	go func() {
		srv.write([]byte{msgBell})
		srv.write([]byte{msgServerCutText, 0, 0, 0})
		srv.write(uint32(4))
		srv.write([]byte{'c', 'a', 'f', 0xe9})
	}()

	require.NoError(t, c.HandleServerMessage())
	require.NoError(t, c.HandleServerMessage())
	assert.Equal(t, 1, bells)
	assert.Equal(t, "café", text)
}

func TestUnknownMessage(t *testing.T) {
	c := NewClient(8, 3, 4)
	srv := connect(t, c, secNone, "", 4, 2)

	go srv.write([]byte{99})

	err := c.HandleServerMessage()
	assert.True(t, errors.Is(err, ErrUnknownMessage))
}

func TestWaitForMessageTimeout(t *testing.T) {
	c := NewClient(8, 3, 4)
	connect(t, c, secNone, "", 4, 2)

	ready, err := c.WaitForMessage(10 * time.Millisecond)
	assert.NoError(t, err)
	assert.False(t, ready)
}

func TestWaitForMessageClosed(t *testing.T) {
	c := NewClient(8, 3, 4)
	srv := connect(t, c, secNone, "", 4, 2)

	srv.conn.Close()
	_, err := c.WaitForMessage(time.Second)
	assert.Error(t, err)
}

// stuckDeadlineConn can set a read deadline but never clear it.
type stuckDeadlineConn struct {
	net.Conn
}

func (c stuckDeadlineConn) SetReadDeadline(t time.Time) error {
	if t.IsZero() {
		return errors.New("deadline stuck")
	}
	return c.Conn.SetReadDeadline(t)
}

func TestWaitForMessageDeadlineNotCleared(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer serverConn.Close()

	c := NewClient(8, 3, 4)
	c.conn = stuckDeadlineConn{clientConn}
	c.r = bufio.NewReader(c.conn)
	defer c.Close()

	go serverConn.Write([]byte{msgBell})

	ready, err := c.WaitForMessage(time.Second)
	assert.Error(t, err)
	assert.False(t, ready)
}

func TestNotConnected(t *testing.T) {
	c := NewClient(8, 3, 4)
	assert.Equal(t, ErrNotConnected, c.SendKeyEvent(KeyReturn, true))
	assert.Equal(t, ErrNotConnected, c.HandleServerMessage())
	_, err := c.WaitForMessage(time.Millisecond)
	assert.Equal(t, ErrNotConnected, err)
}

func TestInputMessages(t *testing.T) {
	c := NewClient(8, 3, 4)
	srv := connect(t, c, secNone, "", 4, 2)

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.Equal(t, []byte{msgKeyEvent, 1, 0, 0, 0, 0, 0xff, 0x0d}, srv.read(8))
		assert.Equal(t, []byte{msgPointerEvent, Button1Mask | Button4Mask, 0, 0, 0, 7}, srv.read(6))
		assert.Equal(t, []byte{msgClientCutText, 0, 0, 0, 0, 0, 0, 2, 'h', 'i'}, srv.read(10))
	}()

	require.NoError(t, c.SendKeyEvent(KeyReturn, true))
	require.NoError(t, c.SendPointerEvent(-3, 7, Button1Mask|Button4Mask))
	require.NoError(t, c.SendClientCutText("hi"))
	<-done
}
