package image

// Layout is the byte order of a captured pixel.
type Layout uint8

const (
	LayoutUnknown Layout = iota
	BGRA                 // B, G, R, A
	BGRx                 // B, G, R, pad
	BGR0                 // B, G, R, zero
	RGBx                 // R, G, B, pad
	RGBA                 // R, G, B, A
	XBGR                 // pad, B, G, R
	RGB                  // R, G, B packed in 3 bytes
)

var layoutNames = [...]string{"unknown", "BGRA", "BGRx", "BGR0", "RGBx", "RGBA", "XBGR", "RGB"}

func (l Layout) String() string {
	if int(l) < len(layoutNames) {
		return layoutNames[l]
	}
	return layoutNames[0]
}

// Stride returns the bytes per pixel of the layout, 0 when not supported.
func (l Layout) Stride() int {
	switch l {
	case BGRA, BGRx, BGR0, RGBx, RGBA, XBGR:
		return 4
	case RGB:
		return 3
	}
	return 0
}

// Raw is a frame as it comes from a capture source.
type Raw struct {
	Layout Layout
	W, H   uint32
	Data   []byte
}

// Normalize converts a raw captured frame into packed pixels.
// The second result is false when the frame can't be used:
// unsupported layout, zero size, or the data doesn't match the size.
func Normalize(raw Raw) (Frame, bool) { return NormalizeTo(nil, raw) }

// NormalizeTo is Normalize that reuses the buf storage when it is big enough.
func NormalizeTo(buf []uint32, raw Raw) (Frame, bool) {
	bpp := raw.Layout.Stride()
	if bpp == 0 || raw.W == 0 || raw.H == 0 {
		return Frame{}, false
	}
	if len(raw.Data)%bpp != 0 {
		return Frame{}, false
	}
	n := len(raw.Data) / bpp
	if uint64(n) != uint64(raw.W)*uint64(raw.H) {
		return Frame{}, false
	}

	pix := grow(buf, n)
	d := raw.Data
	switch raw.Layout {
	case BGRA, BGRx, BGR0:
		for i, j := 0, 0; i < n; i, j = i+1, j+4 {
			c := d[j : j+4 : j+4]
			pix[i] = uint32(c[2])<<16 | uint32(c[1])<<8 | uint32(c[0])
		}
	case RGBx, RGBA:
		for i, j := 0, 0; i < n; i, j = i+1, j+4 {
			c := d[j : j+4 : j+4]
			pix[i] = uint32(c[0])<<16 | uint32(c[1])<<8 | uint32(c[2])
		}
	case XBGR:
		for i, j := 0, 0; i < n; i, j = i+1, j+4 {
			c := d[j : j+4 : j+4]
			pix[i] = uint32(c[3])<<16 | uint32(c[2])<<8 | uint32(c[1])
		}
	case RGB:
		for i, j := 0, 0; i < n; i, j = i+1, j+3 {
			c := d[j : j+3 : j+3]
			pix[i] = uint32(c[0])<<16 | uint32(c[1])<<8 | uint32(c[2])
		}
	}
	return Frame{W: raw.W, H: raw.H, Pix: pix}, true
}

func grow(buf []uint32, n int) []uint32 {
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]uint32, n)
}
