package input

import (
	"github.com/hiromi-mi/glesvnc/rfb"
	"github.com/veandco/go-sdl2/sdl"
)

var buttonMapping = map[uint8]uint8{
	sdl.BUTTON_LEFT:   rfb.Button1Mask,
	sdl.BUTTON_MIDDLE: rfb.Button2Mask,
	sdl.BUTTON_RIGHT:  rfb.Button3Mask,
	sdl.BUTTON_X1:     rfb.Button4Mask,
	sdl.BUTTON_X2:     rfb.Button5Mask,
}

const wheelMask = rfb.Button4Mask | rfb.Button5Mask

// ButtonMask returns the pointer mask bit for an SDL button id.
func ButtonMask(button uint8) (uint8, bool) {
	m, ok := buttonMapping[button]
	return m, ok
}

// Buttons tracks the pointer button mask sent with every PointerEvent.
type Buttons struct {
	mask uint8
}

// Button sets or clears the bit for an SDL button id. Unknown ids leave the
// mask alone.
func (b *Buttons) Button(button uint8, down bool) {
	m, ok := buttonMapping[button]
	if !ok {
		return
	}
	if down {
		b.mask |= m
	} else {
		b.mask &^= m
	}
}

// Wheel turns a vertical scroll amount into a single Button4 (up) or Button5
// (down) tick. It reports whether a tick was produced.
func (b *Buttons) Wheel(y int32) bool {
	switch {
	case y > 0:
		b.mask |= rfb.Button4Mask
	case y < 0:
		b.mask |= rfb.Button5Mask
	default:
		return false
	}
	return true
}

func (b *Buttons) Mask() uint8 {
	return b.mask
}

// Sent must be called after every PointerEvent; wheel ticks never stay held.
func (b *Buttons) Sent() {
	b.mask &^= wheelMask
}

// Scale maps a window coordinate onto the remote desktop.
func Scale(v, desktop, drawable int) int {
	if drawable <= 0 {
		return v
	}
	return v * desktop / drawable
}
