package viewer

import (
	"context"
	"errors"
	"fmt"

	"github.com/hiromi-mi/glesvnc/input"
	"github.com/hiromi-mi/glesvnc/logger"
	"github.com/hiromi-mi/glesvnc/rfb"
	"github.com/veandco/go-sdl2/sdl"
)

var ErrRegisterEvent = errors.New("register event")

// HandleEvent reacts to one SDL event. It returns false when the viewer
// should stop.
func (v *Viewer) HandleEvent(event sdl.Event) (bool, error) {
	switch ev := event.(type) {
	case *sdl.QuitEvent:
		return false, nil

	case *sdl.MouseButtonEvent:
		v.buttons.Button(ev.Button, ev.Type == sdl.MOUSEBUTTONDOWN)
		v.pointer(int(ev.X), int(ev.Y))

	case *sdl.MouseMotionEvent:
		v.pointer(int(ev.X), int(ev.Y))

	case *sdl.MouseWheelEvent:
		y := ev.Y
		if ev.Direction == sdl.MOUSEWHEEL_FLIPPED {
			y = -y
		}
		if v.buttons.Wheel(y) {
			v.pointer(v.pointerX, v.pointerY)
		}

	case *sdl.KeyboardEvent:
		return v.key(ev), nil

	case *sdl.WindowEvent:
		v.window(ev)

	case *sdl.UserEvent:
		if ev.Type != v.redrawEvent {
			logger.Debug("ignore SDL event: 0x%x", ev.Type)
			break
		}
		// a wake can be lost when the SDL queue is full, so every redraw
		// event drains the whole queue
		for r, ok := v.nextRect(); ok; r, ok = v.nextRect() {
			if err := v.Redraw(r); err != nil {
				return false, err
			}
		}

	default:
		logger.Debug("ignore SDL event: 0x%x", event.GetType())
	}
	return true, nil
}

// pointer sends the current mask at a window position scaled to the
// desktop. Wheel ticks are dropped from the mask once sent.
func (v *Viewer) pointer(x, y int) {
	v.pointerX, v.pointerY = x, y

	rx := input.Scale(x, v.client.Width, v.drawableW)
	ry := input.Scale(y, v.client.Height, v.drawableH)
	if err := v.remote.SendPointerEvent(rx, ry, v.buttons.Mask()); err != nil {
		logger.Warn("pointer event: %v", err)
	}
	v.buttons.Sent()
}

func (v *Viewer) sendKey(key uint32, down bool) {
	if err := v.remote.SendKeyEvent(key, down); err != nil {
		logger.Warn("key event: %v", err)
	}
}

func (v *Viewer) key(ev *sdl.KeyboardEvent) bool {
	down := ev.Type == sdl.KEYDOWN

	if k, ok := input.Keysym(ev.Keysym.Sym, ev.Keysym.Mod); ok {
		v.sendKey(k, down)
	} else {
		logger.Info("unknown keysym: %d", ev.Keysym.Sym)
	}

	if v.chord.Update(ev.Keysym.Sym, down) {
		logger.Info("exit key chord pressed")
		for _, k := range v.chord.Release() {
			v.sendKey(k, false)
		}
		return false
	}
	return true
}

func (v *Viewer) window(ev *sdl.WindowEvent) {
	switch ev.Event {
	case sdl.WINDOWEVENT_RESIZED:
		if err := v.renderer.MakeCurrent(); err != nil {
			logger.Warn("%v", err)
			return
		}
		v.drawableW, v.drawableH = v.renderer.Viewport()
		logger.Debug("drawable resized to %dx%d", v.drawableW, v.drawableH)
		if v.client.FrameBuffer != nil {
			v.Update(v.client, 0, 0, v.client.Width, v.client.Height)
		}

	case sdl.WINDOWEVENT_MINIMIZED, sdl.WINDOWEVENT_LEAVE, sdl.WINDOWEVENT_FOCUS_LOST:
		for _, k := range v.chord.ReleaseAlt() {
			v.sendKey(k, false)
			if k == rfb.KeyAltR {
				logger.Info("released right Alt key")
			} else {
				logger.Info("released left Alt key")
			}
		}
	}
}

// Run alternates between local events and server messages until the user
// quits, the session ends or ctx is cancelled. Only local failures are
// returned; a broken session ends the loop normally.
func (v *Viewer) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			logger.Info("interrupted")
			return nil
		}

		if ev := v.poll(); ev != nil {
			running, err := v.HandleEvent(ev)
			if err != nil {
				return err
			}
			if !running {
				return nil
			}
			continue
		}

		ready, err := v.remote.WaitForMessage(waitTimeout)
		if err != nil {
			logger.Info("session ended: %v", err)
			return nil
		}
		if !ready {
			continue
		}
		if err := v.remote.HandleServerMessage(); err != nil {
			if errors.Is(err, ErrAlloc) {
				return err
			}
			logger.Info("session ended: %v", err)
			return nil
		}
	}
}

// Connect runs the rfb handshake. The first Resize happens inside it.
func (v *Viewer) Connect(ctx context.Context) error {
	if err := v.client.Init(ctx, v.opts.Host); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	logger.Info("desktop %q is %dx%d", v.client.DesktopName, v.client.Width, v.client.Height)
	return nil
}
