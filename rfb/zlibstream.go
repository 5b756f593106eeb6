package rfb

import (
	"fmt"

	"github.com/4kills/go-zlib/native"
)

// zlibStream is one persistent inflate stream. Servers never end the stream,
// each rectangle continues where the previous one stopped and is closed by a
// sync flush, so the inflater keeps its window between calls.
type zlibStream struct {
	d *native.Decompressor
}

// inflate consumes all of compressed and expects exactly size bytes out.
func (s *zlibStream) inflate(compressed []byte, size int) ([]byte, error) {
	if s.d == nil {
		d, err := native.NewDecompressor()
		if err != nil {
			return nil, err
		}
		s.d = d
	}

	_, processed, out, err := s.d.DecompressStream(compressed, make([]byte, 0, size))
	if err != nil {
		return nil, err
	}
	if processed < len(compressed) {
		return nil, fmt.Errorf("inflate stopped after %d of %d bytes", processed, len(compressed))
	}
	if len(out) != size {
		return nil, fmt.Errorf("inflated %d bytes, want %d", len(out), size)
	}
	return out, nil
}

// reset starts a new stream; the next rectangle carries a fresh header.
func (s *zlibStream) reset() {
	if s.d != nil {
		if err := s.d.Reset(); err != nil {
			s.close()
		}
	}
}

func (s *zlibStream) close() {
	if s.d != nil {
		s.d.Close()
		s.d = nil
	}
}

// ZlibStreamer holds the four streams of the tight encoding.
type ZlibStreamer struct {
	ZlibReaders [4]zlibStream
}

// resetzlib drops every stream whose bit is set in the low nibble of the
// compression control byte.
func (s *ZlibStreamer) resetzlib(compctrl byte) {
	for i := 0; i < 4; i++ {
		if compctrl&(1<<i) != 0 {
			s.ZlibReaders[i].reset()
		}
	}
}

func (s *ZlibStreamer) close() {
	for i := range s.ZlibReaders {
		s.ZlibReaders[i].close()
	}
}

// GetCompressedlen reads the one to three byte compact length used by tight.
func (c *Client) GetCompressedlen() (int, error) {
	pad, err := c.r.ReadByte()
	if err != nil {
		return 0, err
	}
	compressedlen := int(pad & 0b01111111)
	if pad&(1<<7) > 0 {
		if pad, err = c.r.ReadByte(); err != nil {
			return 0, err
		}
		compressedlen += int(pad&0b01111111) << 7
		if pad&(1<<7) > 0 {
			if pad, err = c.r.ReadByte(); err != nil {
				return 0, err
			}
			compressedlen += int(pad) << 14
		}
	}
	return compressedlen, nil
}

// ReadBuf reads clen bytes of tight data from stream. Data shorter than 12
// bytes is sent without compression.
func (c *Client) ReadBuf(clen int, stream int) ([]byte, error) {
	if clen < 12 {
		b := make([]byte, clen)
		err := c.readFull(b)
		return b, err
	}

	compressedlen, err := c.GetCompressedlen()
	if err != nil {
		return nil, err
	}
	compressed := make([]byte, compressedlen)
	if err := c.readFull(compressed); err != nil {
		return nil, err
	}
	return c.tight.ZlibReaders[stream].inflate(compressed, clen)
}
