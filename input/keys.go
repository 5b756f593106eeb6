// Package input translates SDL input into RFB key symbols and pointer masks.
package input

import (
	"github.com/hiromi-mi/glesvnc/rfb"
	"github.com/veandco/go-sdl2/sdl"
)

var keyMapping = map[sdl.Keycode]uint32{
	sdl.K_BACKSPACE: rfb.KeyBackSpace,
	sdl.K_TAB:       rfb.KeyTab,
	sdl.K_CLEAR:     rfb.KeyClear,
	sdl.K_RETURN:    rfb.KeyReturn,
	sdl.K_PAUSE:     rfb.KeyPause,
	sdl.K_ESCAPE:    rfb.KeyEscape,
	sdl.K_SPACE:     rfb.KeySpace,
	sdl.K_DELETE:    rfb.KeyDelete,

	sdl.K_KP_0: rfb.KeyKP(0),
	sdl.K_KP_1: rfb.KeyKP(1),
	sdl.K_KP_2: rfb.KeyKP(2),
	sdl.K_KP_3: rfb.KeyKP(3),
	sdl.K_KP_4: rfb.KeyKP(4),
	sdl.K_KP_5: rfb.KeyKP(5),
	sdl.K_KP_6: rfb.KeyKP(6),
	sdl.K_KP_7: rfb.KeyKP(7),
	sdl.K_KP_8: rfb.KeyKP(8),
	sdl.K_KP_9: rfb.KeyKP(9),

	sdl.K_KP_PERIOD:   rfb.KeyKPDecimal,
	sdl.K_KP_DIVIDE:   rfb.KeyKPDivide,
	sdl.K_KP_MULTIPLY: rfb.KeyKPMultiply,
	sdl.K_KP_MINUS:    rfb.KeyKPSubtract,
	sdl.K_KP_PLUS:     rfb.KeyKPAdd,
	sdl.K_KP_ENTER:    rfb.KeyKPEnter,
	sdl.K_KP_EQUALS:   rfb.KeyKPEqual,

	sdl.K_UP:       rfb.KeyUp,
	sdl.K_DOWN:     rfb.KeyDown,
	sdl.K_RIGHT:    rfb.KeyRight,
	sdl.K_LEFT:     rfb.KeyLeft,
	sdl.K_INSERT:   rfb.KeyInsert,
	sdl.K_HOME:     rfb.KeyHome,
	sdl.K_END:      rfb.KeyEnd,
	sdl.K_PAGEUP:   rfb.KeyPageUp,
	sdl.K_PAGEDOWN: rfb.KeyPageDown,

	sdl.K_F1:  rfb.KeyF(1),
	sdl.K_F2:  rfb.KeyF(2),
	sdl.K_F3:  rfb.KeyF(3),
	sdl.K_F4:  rfb.KeyF(4),
	sdl.K_F5:  rfb.KeyF(5),
	sdl.K_F6:  rfb.KeyF(6),
	sdl.K_F7:  rfb.KeyF(7),
	sdl.K_F8:  rfb.KeyF(8),
	sdl.K_F9:  rfb.KeyF(9),
	sdl.K_F10: rfb.KeyF(10),
	sdl.K_F11: rfb.KeyF(11),
	sdl.K_F12: rfb.KeyF(12),
	sdl.K_F13: rfb.KeyF(13),
	sdl.K_F14: rfb.KeyF(14),
	sdl.K_F15: rfb.KeyF(15),

	sdl.K_NUMLOCKCLEAR: rfb.KeyNumLock,
	sdl.K_CAPSLOCK:     rfb.KeyCapsLock,
	sdl.K_SCROLLLOCK:   rfb.KeyScrollLock,
	sdl.K_RSHIFT:       rfb.KeyShiftR,
	sdl.K_LSHIFT:       rfb.KeyShiftL,
	sdl.K_RCTRL:        rfb.KeyControlR,
	sdl.K_LCTRL:        rfb.KeyControlL,
	sdl.K_RALT:         rfb.KeyAltR,
	sdl.K_LALT:         rfb.KeyAltL,
	sdl.K_LGUI:         rfb.KeySuperL,
	sdl.K_RGUI:         rfb.KeySuperR,
	sdl.K_MODE:         rfb.KeyModeSwitch,
	sdl.K_HELP:         rfb.KeyHelp,
}

// Keysym returns the X keysym for an SDL key. Keys outside the table that fall
// in the Latin-1 range are sent as their own code, which SDL and X11 share.
// With shift held, the digits 1-9 and the letters a-f are adjusted by
// clearing one bit; nothing else is shifted. The second result is false when
// the key has no keysym.
func Keysym(sym sdl.Keycode, mod uint16) (uint32, bool) {
	if k, ok := keyMapping[sym]; ok {
		return k, true
	}
	if sym <= 0 || sym >= 0x100 {
		return 0, false
	}

	k := uint32(sym)
	if mod&sdl.KMOD_SHIFT != 0 {
		switch {
		case k >= '1' && k <= '9':
			k &^= 0x10
		case k >= 'a' && k <= 'f':
			k &^= 0x20
		}
	}
	return k, true
}
