package capture

import (
	"github.com/liteview/liteview/pkg/image"
)

// Pattern is a fake display with moving color bars.
// It needs no permissions and works without a desktop.
type Pattern struct {
	W, H  uint32
	queue int
}

func NewPattern(w, h uint32, queue int) *Pattern {
	if w == 0 || h == 0 {
		w, h = 1280, 720
	}
	return &Pattern{W: w, H: h, queue: queue}
}

func (p *Pattern) Supported() bool         { return true }
func (p *Pattern) HasPermission() bool     { return true }
func (p *Pattern) RequestPermission() bool { return true }

func (p *Pattern) Targets() ([]Target, error) {
	return []Target{{Index: 0, ID: 0, Title: "Test pattern", Kind: Display}}, nil
}

var bars = [...][3]byte{
	{0xff, 0xff, 0xff}, {0xff, 0xff, 0x00}, {0x00, 0xff, 0xff}, {0x00, 0xff, 0x00},
	{0xff, 0x00, 0xff}, {0xff, 0x00, 0x00}, {0x00, 0x00, 0xff}, {0x00, 0x00, 0x00},
}

func (p *Pattern) Open(opts Options) (Source, error) {
	w, h := int(p.W), int(p.H)
	var shift int
	return newQueue(opts.FPS, p.queue, func() (image.Raw, error) {
		data := make([]byte, w*h*4)
		barW := w/len(bars) + 1
		for x := 0; x < w; x++ {
			c := bars[((x+shift)/barW)%len(bars)]
			// BGRA
			data[x*4], data[x*4+1], data[x*4+2], data[x*4+3] = c[2], c[1], c[0], 0xff
		}
		for y := 1; y < h; y++ {
			copy(data[y*w*4:(y+1)*w*4], data[:w*4])
		}
		shift += 4
		return image.Raw{Layout: image.BGRA, W: p.W, H: p.H, Data: data}, nil
	}), nil
}
