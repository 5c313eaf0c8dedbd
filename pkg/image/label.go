package image

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// AddLabel draws white text on a black box with the top-left corner at x, y.
func AddLabel(img draw.Image, x, y int, label string) {
	draw.Draw(img, image.Rect(x, y, x+len(label)*7+3, y+13), image.Black, image.Point{}, draw.Src)
	(&font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x + 2), Y: fixed.I(y + 10)},
	}).DrawString(label)
}
