package rfb

// X11 keysyms used by KeyEvent. Latin-1 keys use their character code.
const (
	KeyBackSpace  uint32 = 0xff08
	KeyTab        uint32 = 0xff09
	KeyClear      uint32 = 0xff0b
	KeyReturn     uint32 = 0xff0d
	KeyPause      uint32 = 0xff13
	KeyScrollLock uint32 = 0xff14
	KeyEscape     uint32 = 0xff1b
	KeyDelete     uint32 = 0xffff
	KeySpace      uint32 = 0x0020

	KeyHome     uint32 = 0xff50
	KeyLeft     uint32 = 0xff51
	KeyUp       uint32 = 0xff52
	KeyRight    uint32 = 0xff53
	KeyDown     uint32 = 0xff54
	KeyPageUp   uint32 = 0xff55
	KeyPageDown uint32 = 0xff56
	KeyEnd      uint32 = 0xff57
	KeyInsert   uint32 = 0xff63
	KeyHelp     uint32 = 0xff6a
	KeyNumLock  uint32 = 0xff7f

	KeyModeSwitch uint32 = 0xff7e

	KeyKPEnter    uint32 = 0xff8d
	KeyKPMultiply uint32 = 0xffaa
	KeyKPAdd      uint32 = 0xffab
	KeyKPSubtract uint32 = 0xffad
	KeyKPDecimal  uint32 = 0xffae
	KeyKPDivide   uint32 = 0xffaf
	KeyKP0        uint32 = 0xffb0
	KeyKPEqual    uint32 = 0xffbd

	KeyF1 uint32 = 0xffbe

	KeyShiftL   uint32 = 0xffe1
	KeyShiftR   uint32 = 0xffe2
	KeyControlL uint32 = 0xffe3
	KeyControlR uint32 = 0xffe4
	KeyCapsLock uint32 = 0xffe5
	KeyAltL     uint32 = 0xffe9
	KeyAltR     uint32 = 0xffea
	KeySuperL   uint32 = 0xffeb
	KeySuperR   uint32 = 0xffec
)

// KeyKP returns the keypad digit keysym for n in 0..9.
func KeyKP(n int) uint32 {
	return KeyKP0 + uint32(n)
}

// KeyF returns the function key keysym for n starting at 1.
func KeyF(n int) uint32 {
	return KeyF1 + uint32(n-1)
}
