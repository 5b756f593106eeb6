package rfb

import "encoding/binary"

// PixelFormat is the 16 byte PIXEL_FORMAT structure in wire order.
type PixelFormat struct {
	BPP        uint8
	Depth      uint8
	BigEndian  uint8
	TrueColour uint8
	RedMax     uint16
	GreenMax   uint16
	BlueMax    uint16
	RedShift   uint8
	GreenShift uint8
	BlueShift  uint8
	Padding    [3]byte
}

func (pf PixelFormat) BytesPerPixel() int {
	return int(pf.BPP) / 8
}

// tightPixelSize is the size of a TPIXEL: three bytes when every colour fits
// in a byte of a 32 bit pixel, otherwise a full pixel.
func (pf PixelFormat) tightPixelSize() int {
	if pf.BPP == 32 && pf.Depth == 24 && pf.TrueColour != 0 &&
		pf.RedMax == 0xff && pf.GreenMax == 0xff && pf.BlueMax == 0xff {
		return 3
	}
	return pf.BytesPerPixel()
}

// putRGB stores an 8 bit per channel colour into dst as one pixel of this
// format.
func (pf PixelFormat) putRGB(dst []byte, r, g, b uint8) {
	v := uint32(r)*uint32(pf.RedMax)/255<<pf.RedShift |
		uint32(g)*uint32(pf.GreenMax)/255<<pf.GreenShift |
		uint32(b)*uint32(pf.BlueMax)/255<<pf.BlueShift

	var order binary.ByteOrder = binary.LittleEndian
	if pf.BigEndian != 0 {
		order = binary.BigEndian
	}

	switch pf.BPP {
	case 32:
		order.PutUint32(dst, v)
	case 16:
		order.PutUint16(dst, uint16(v))
	case 8:
		dst[0] = uint8(v)
	}
}

// putTightPixel expands a TPIXEL read from the wire into dst.
func (pf PixelFormat) putTightPixel(dst, src []byte) {
	if pf.tightPixelSize() == 3 {
		pf.putRGB(dst, src[0], src[1], src[2])
		return
	}
	copy(dst, src[:pf.BytesPerPixel()])
}
