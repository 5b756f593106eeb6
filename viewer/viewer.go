// Package viewer shows a remote desktop in an OpenGL ES 2.0 window. It owns
// the rfb session callbacks, the texture staging buffer and the SDL event
// loop.
package viewer

import (
	"fmt"
	"time"

	"github.com/hiromi-mi/glesvnc/input"
	"github.com/hiromi-mi/glesvnc/logger"
	"github.com/hiromi-mi/glesvnc/matrix"
	"github.com/hiromi-mi/glesvnc/rfb"
	"github.com/hiromi-mi/glesvnc/texture"
	"github.com/veandco/go-sdl2/sdl"
)

// how long the loop blocks on the server when no local event is pending
const waitTimeout = 500 * time.Millisecond

// Remote is the part of the rfb session driven by the viewer.
type Remote interface {
	SetFormatAndEncodings() error
	SendKeyEvent(key uint32, down bool) error
	SendPointerEvent(x, y int, mask uint8) error
	WaitForMessage(timeout time.Duration) (bool, error)
	HandleServerMessage() error
}

// Renderer puts a staged rectangle on screen.
type Renderer interface {
	MakeCurrent() error

	// Viewport resets the viewport to the drawable size and returns it.
	Viewport() (int, int)

	// Draw uploads a texW by texH texture and draws the quad with the given
	// placement and texture coordinate matrices, then swaps.
	Draw(pixels []byte, texW, texH, bpp int, mvp, tex matrix.Mat4) error
}

type Viewer struct {
	client   *rfb.Client
	remote   Remote
	renderer Renderer
	alloc    Allocator
	opts     Options

	// power of two staging buffer, nil when the pixel depth cannot be drawn
	staging []byte

	// rectangles waiting for a redraw event
	pending []rfb.Rect

	// SDL user event type announcing a pending rectangle
	redrawEvent uint32
	wake        func() error

	poll        func() sdl.Event
	clipboard   func(string) error
	askPassword func() (string, error)

	buttons input.Buttons
	chord   *input.Chord

	// last pointer position in window coordinates, used for wheel ticks
	pointerX, pointerY int

	drawableW, drawableH int
}

// New wires a viewer to client. The client callbacks are replaced.
func New(client *rfb.Client, renderer Renderer, opts Options) (*Viewer, error) {
	v := &Viewer{
		client:      client,
		remote:      client,
		renderer:    renderer,
		alloc:       heapAllocator{},
		opts:        opts,
		poll:        sdl.PollEvent,
		clipboard:   sdl.SetClipboardText,
		askPassword: readPassword,
		chord:       input.NewChord(opts.ExitKey),
	}

	v.redrawEvent = sdl.RegisterEvents(1)
	if v.redrawEvent == ^uint32(0) {
		return nil, fmt.Errorf("%w: %v", ErrRegisterEvent, sdl.GetError())
	}
	v.wake = v.pushRedraw

	v.drawableW, v.drawableH = renderer.Viewport()
	v.attach()
	return v, nil
}

func (v *Viewer) attach() {
	v.client.MallocFrameBuffer = v.Resize
	v.client.GotFrameBufferUpdate = v.Update
	v.client.GetPassword = v.Password
	v.client.GotCutText = v.CutText
	v.client.Bell = func(*rfb.Client) {
		logger.Info("bell")
	}
}

// Resize is called whenever the desktop size is known or changes. Old
// buffers are released before the new ones are allocated.
func (v *Viewer) Resize(c *rfb.Client) error {
	width, height := c.Width, c.Height
	bpp := c.Format.BytesPerPixel()

	c.UpdateRect = rfb.Rect{W: width, H: height}

	if c.FrameBuffer != nil {
		v.alloc.Free(c.FrameBuffer)
		c.FrameBuffer = nil
	}
	if v.staging != nil {
		v.alloc.Free(v.staging)
		v.staging = nil
	}

	var err error
	if bpp == 3 || bpp == 4 {
		v.staging, err = v.alloc.Alloc(texture.BufferLen(width, height, bpp))
		if err != nil {
			return fmt.Errorf("texture %dx%d: %w", width, height, err)
		}
	} else {
		logger.Warn("%d bit pixels are not drawn", bpp*8)
	}

	c.FrameBuffer, err = v.alloc.Alloc(width * height * bpp)
	if err != nil {
		return fmt.Errorf("frame buffer %dx%d: %w", width, height, err)
	}

	if err := v.remote.SetFormatAndEncodings(); err != nil {
		return err
	}

	v.Update(c, 0, 0, width, height)
	return nil
}

// Update queues a decoded rectangle and wakes the event loop to draw it. A
// failed wake is only logged, the next redraw event picks the rectangle up.
func (v *Viewer) Update(c *rfb.Client, x, y, w, h int) {
	v.pending = append(v.pending, rfb.Rect{X: x, Y: y, W: w, H: h})
	if err := v.wake(); err != nil {
		logger.Warn("redraw event: %v", err)
	}
}

func (v *Viewer) pushRedraw() error {
	_, err := sdl.PushEvent(&sdl.UserEvent{
		Type:      v.redrawEvent,
		Timestamp: sdl.GetTicks(),
	})
	return err
}

func (v *Viewer) nextRect() (rfb.Rect, bool) {
	if len(v.pending) == 0 {
		return rfb.Rect{}, false
	}
	r := v.pending[0]
	v.pending = v.pending[1:]
	return r, true
}

// Redraw copies r from the frame buffer into the staging buffer and draws
// it at its place on the desktop.
func (v *Viewer) Redraw(r rfb.Rect) error {
	if err := v.renderer.MakeCurrent(); err != nil {
		logger.Warn("%v", err)
		return nil
	}

	c := v.client
	if c.FrameBuffer == nil || v.staging == nil {
		return nil
	}
	if r.W <= 0 || r.H <= 0 || r.X < 0 || r.Y < 0 || r.X+r.W > c.Width || r.Y+r.H > c.Height {
		// queued before a resize shrank the desktop
		logger.Debug("dropping stale rectangle %+v", r)
		return nil
	}

	bpp := c.Format.BytesPerPixel()
	texW, texH := texture.Repack(v.staging, c.FrameBuffer, c.Width, texture.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H}, bpp)

	mvp := matrix.Placement(float32(r.X), float32(r.Y), float32(r.W), float32(r.H), c.Width, c.Height)
	tex := matrix.TexCoord(float32(r.W), float32(r.H), texW, texH)
	return v.renderer.Draw(v.staging, texW, texH, bpp, mvp, tex)
}

// CutText puts server clipboard text on the local clipboard.
func (v *Viewer) CutText(c *rfb.Client, text string) {
	if err := v.clipboard(text); err != nil {
		logger.Warn("clipboard: %v", err)
		return
	}
	logger.Debug("clipboard updated, %d bytes", len(text))
}

// Close releases the frame buffer and staging buffer.
func (v *Viewer) Close() {
	if v.client.FrameBuffer != nil {
		v.alloc.Free(v.client.FrameBuffer)
		v.client.FrameBuffer = nil
	}
	if v.staging != nil {
		v.alloc.Free(v.staging)
		v.staging = nil
	}
}
