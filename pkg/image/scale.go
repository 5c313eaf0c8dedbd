package image

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Resolution is an output size class, the height follows the source aspect ratio.
type Resolution uint8

const (
	Captured Resolution = iota
	P480
	P720
	P1080
	P1440
	P2160
	P4320
)

var ErrUnknownResolution = errors.New("unknown resolution")

var resolutions = [...]struct {
	name  string
	width uint32
}{
	Captured: {"captured", 0},
	P480:     {"480p", 640},
	P720:     {"720p", 1280},
	P1080:    {"1080p", 1920},
	P1440:    {"1440p", 2560},
	P2160:    {"2160p", 3840},
	P4320:    {"4320p", 7680},
}

// Resolutions lists the names of all output size classes.
func Resolutions() []string {
	names := make([]string, len(resolutions))
	for i, r := range resolutions {
		names[i] = r.name
	}
	return names
}

// ParseResolution reads a resolution name, case-insensitive.
func ParseResolution(s string) (Resolution, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, r := range resolutions {
		if r.name == name {
			return Resolution(i), nil
		}
	}
	return Captured, fmt.Errorf("%w: %s", ErrUnknownResolution, s)
}

func (r Resolution) String() string {
	if int(r) < len(resolutions) {
		return resolutions[r].name
	}
	return fmt.Sprintf("resolution(%d)", uint8(r))
}

// Width is the fixed output width of the class, 0 for Captured.
func (r Resolution) Width() uint32 {
	if int(r) < len(resolutions) {
		return resolutions[r].width
	}
	return 0
}

func (r Resolution) MarshalText() ([]byte, error) {
	if int(r) >= len(resolutions) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownResolution, uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Resolution) UnmarshalText(text []byte) error {
	v, err := ParseResolution(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// TargetSize returns the output size for the class keeping the aspect ratio.
// The height is at least 1. Captured gives 0x0 meaning no scaling.
func TargetSize(r Resolution, aspect float64) (w, h uint32) {
	w = r.Width()
	if w == 0 {
		return 0, 0
	}
	hh := math.Floor(float64(w) / aspect)
	if math.IsNaN(hh) || math.IsInf(hh, 0) || hh < 1 {
		return w, 1
	}
	if hh > math.MaxUint32 {
		hh = math.MaxUint32
	}
	return w, uint32(hh)
}

// Scale resizes the frame to the resolution class.
// Captured returns the same frame.
func Scale(src Frame, r Resolution) Frame { return ScaleTo(nil, src, r) }

// ScaleTo is Scale that reuses the buf storage when it is big enough.
func ScaleTo(buf []uint32, src Frame, r Resolution) Frame {
	if r == Captured {
		return src
	}
	w, h := TargetSize(r, src.Aspect())
	return ResizeTo(buf, src, w, h)
}

// Resize is a nearest neighbour resize of the src frame into w x h.
func Resize(src Frame, w, h uint32) Frame { return ResizeTo(nil, src, w, h) }

// ResizeTo is Resize into the buf storage.
// For empty source or target sizes the result is w*h black pixels.
func ResizeTo(buf []uint32, src Frame, w, h uint32) Frame {
	dst := Frame{W: w, H: h, Pix: grow(buf, int(uint64(w)*uint64(h)))}
	if src.W == 0 || src.H == 0 || w == 0 || h == 0 {
		clear(dst.Pix)
		return dst
	}

	sw, sh := uint64(src.W), uint64(src.H)
	dw, dh := uint64(w), uint64(h)
	n := uint64(len(src.Pix))
	for y := uint64(0); y < dh; y++ {
		row := (y * (sh - 1) / dh) * sw
		out := dst.Pix[y*dw : (y+1)*dw]
		for x := range out {
			i := row + uint64(x)*(sw-1)/dw
			if i < n {
				out[x] = src.Pix[i]
			} else {
				out[x] = 0
			}
		}
	}
	return dst
}
