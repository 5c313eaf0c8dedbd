package preview

import (
	"fmt"

	"github.com/liteview/liteview/pkg/image"
	"github.com/liteview/liteview/pkg/logger"
)

// Backend makes output surfaces.
type Backend interface {
	Open(title string, w, h uint32) (Surface, error)
}

// Surface is a window or anything else that shows frames.
type Surface interface {
	Resize(w, h uint32) error
	Present(f image.Frame) error
	SetTitle(title string)
	// Poll services pending events and tells if the user closed the surface.
	Poll() (closed bool)
	Close() error
}

type SurfaceState uint8

const (
	NoSurface SurfaceState = iota
	SurfaceAt
	Closed
)

func (s SurfaceState) String() string {
	switch s {
	case NoSurface:
		return "no surface"
	case SurfaceAt:
		return "surface"
	case Closed:
		return "closed"
	}
	return "?"
}

// window tracks the surface of one session.
type window struct {
	backend Backend
	title   string
	log     *logger.Logger

	state SurfaceState
	w, h  uint32
	s     Surface
}

// show presents the frame making or resizing the surface when needed.
// Frames after the surface is closed are dropped.
func (w *window) show(f image.Frame) error {
	switch w.state {
	case Closed:
		return nil
	case NoSurface:
		s, err := w.backend.Open(w.title, f.W, f.H)
		if err != nil {
			w.state = Closed
			return fmt.Errorf("open surface: %w", err)
		}
		w.s, w.state, w.w, w.h = s, SurfaceAt, f.W, f.H
		w.log.Debug().Msgf("surface %dx%d", f.W, f.H)
	case SurfaceAt:
		if !f.SameSize(w.w, w.h) {
			if err := w.s.Resize(f.W, f.H); err != nil {
				w.close()
				return fmt.Errorf("resize surface: %w", err)
			}
			w.log.Debug().Msgf("surface resized %dx%d -> %dx%d", w.w, w.h, f.W, f.H)
			w.w, w.h = f.W, f.H
		}
	}
	if err := w.s.Present(f); err != nil {
		w.close()
		return fmt.Errorf("present: %w", err)
	}
	return nil
}

// poll returns true once when the user closes the surface.
func (w *window) poll() bool {
	if w.state != SurfaceAt || !w.s.Poll() {
		return false
	}
	w.close()
	return true
}

func (w *window) setTitle(title string) {
	if w.state == SurfaceAt {
		w.s.SetTitle(title)
	}
}

// close destroys the surface, it won't come back in this session.
func (w *window) close() {
	if w.s != nil {
		if err := w.s.Close(); err != nil {
			w.log.Warn().Err(err).Msg("surface close")
		}
		w.s = nil
	}
	w.state = Closed
}

// reset gets ready for a new session.
func (w *window) reset() {
	w.close()
	w.state, w.w, w.h = NoSurface, 0, 0
}

// Fit returns the rect of a w x h frame scaled into an ow x oh output
// keeping the aspect ratio, centered.
func Fit(w, h uint32, ow, oh int32) (x, y, fw, fh int32) {
	if w == 0 || h == 0 || ow <= 0 || oh <= 0 {
		return 0, 0, 0, 0
	}
	// compare w/h with ow/oh without floats
	if int64(ow)*int64(h) > int64(oh)*int64(w) {
		fh = oh
		fw = int32(int64(oh) * int64(w) / int64(h))
	} else {
		fw = ow
		fh = int32(int64(ow) * int64(h) / int64(w))
	}
	return (ow - fw) / 2, (oh - fh) / 2, fw, fh
}
