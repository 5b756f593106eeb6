package input

import (
	"github.com/hiromi-mi/glesvnc/rfb"
	"github.com/veandco/go-sdl2/sdl"
)

const DefaultExitKey = 'q'

// Chord watches for the exit combination: the letter together with either
// Ctrl and either Alt.
type Chord struct {
	letter sdl.Keycode

	letterDown bool
	ctrlL      bool
	ctrlR      bool
	altL       bool
	altR       bool
}

// NewChord returns a Chord for a lower case letter. Anything else falls back
// to DefaultExitKey.
func NewChord(letter rune) *Chord {
	if letter < 'a' || letter > 'z' {
		letter = DefaultExitKey
	}
	return &Chord{letter: sdl.Keycode(letter)}
}

// Update records a key transition and reports whether the chord is now held.
func (c *Chord) Update(sym sdl.Keycode, down bool) bool {
	switch sym {
	case sdl.K_RCTRL:
		c.ctrlR = down
	case sdl.K_LCTRL:
		c.ctrlL = down
	case sdl.K_RALT:
		c.altR = down
	case sdl.K_LALT:
		c.altL = down
	case c.letter:
		c.letterDown = down
	}
	return c.Held()
}

func (c *Chord) Held() bool {
	return c.letterDown && (c.ctrlL || c.ctrlR) && (c.altL || c.altR)
}

// Release lists the key-up events to send once the chord fired so the remote
// side does not see stuck modifiers.
func (c *Chord) Release() []uint32 {
	return []uint32{rfb.KeyAltR, rfb.KeyAltL, rfb.KeyControlR, rfb.KeyControlL, uint32(c.letter)}
}

// ReleaseAlt clears any held Alt key and returns the keysyms that need a
// key-up, right before left.
func (c *Chord) ReleaseAlt() []uint32 {
	var keys []uint32
	if c.altR {
		keys = append(keys, rfb.KeyAltR)
		c.altR = false
	}
	if c.altL {
		keys = append(keys, rfb.KeyAltL)
		c.altL = false
	}
	return keys
}
