package image

import (
	"image"
	"image/color"
)

// Frame is a canvas of packed 0x00RRGGBB pixels, row-major, without row padding.
// Alpha is implied opaque.
type Frame struct {
	W, H uint32
	Pix  []uint32
}

// Valid tells if the pixel buffer matches the frame size.
func (f Frame) Valid() bool { return uint64(len(f.Pix)) == uint64(f.W)*uint64(f.H) }

// Aspect returns width/height or 0 for empty frames.
func (f Frame) Aspect() float64 {
	if f.H == 0 {
		return 0
	}
	return float64(f.W) / float64(f.H)
}

func (f Frame) SameSize(w, h uint32) bool { return f.W == w && f.H == h }

func Pack(r, g, b uint8) uint32 { return uint32(r)<<16 | uint32(g)<<8 | uint32(b) }

func Unpack(px uint32) (r, g, b uint8) { return uint8(px >> 16), uint8(px >> 8), uint8(px) }

// Frame implements draw.Image so the stdlib and x/image drawers can paint over it.

func (f *Frame) ColorModel() color.Model { return color.RGBAModel }

func (f *Frame) Bounds() image.Rectangle { return image.Rect(0, 0, int(f.W), int(f.H)) }

func (f *Frame) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(f.Bounds())) {
		return color.RGBA{}
	}
	r, g, b := Unpack(f.Pix[y*int(f.W)+x])
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

func (f *Frame) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}.In(f.Bounds())) {
		return
	}
	r, g, b, _ := c.RGBA()
	f.Pix[y*int(f.W)+x] = Pack(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}
