package preview

import (
	"sync/atomic"

	"github.com/liteview/liteview/pkg/image"
	"github.com/liteview/liteview/pkg/logger"
)

// Headless shows nothing, it is for machines without a display.
type Headless struct {
	log *logger.Logger
	// Frames is the number of presented frames.
	Frames atomic.Uint64
}

func NewHeadless(log *logger.Logger) *Headless { return &Headless{log: log.Module("headless")} }

func (b *Headless) Open(title string, w, h uint32) (Surface, error) {
	b.log.Info().Msgf("%v %dx%d", title, w, h)
	return &headlessSurface{h: b}, nil
}

type headlessSurface struct {
	h     *Headless
	title string
}

func (s *headlessSurface) Resize(w, h uint32) error {
	s.h.log.Info().Msgf("resize %dx%d", w, h)
	return nil
}

func (s *headlessSurface) Present(image.Frame) error { s.h.Frames.Add(1); return nil }

func (s *headlessSurface) SetTitle(title string) {
	if title != s.title {
		s.title = title
		s.h.log.Debug().Msg(title)
	}
}

func (s *headlessSurface) Poll() bool   { return false }
func (s *headlessSurface) Close() error { return nil }
