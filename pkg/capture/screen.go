package capture

import (
	"fmt"
	stdimage "image"

	"github.com/kbinani/screenshot"
	"github.com/liteview/liteview/pkg/image"
	"github.com/liteview/liteview/pkg/logger"
)

// Screen captures whole displays.
type Screen struct {
	queue int
	log   *logger.Logger
}

func NewScreen(queue int, log *logger.Logger) *Screen {
	return &Screen{queue: queue, log: log.Module("screen")}
}

func (s *Screen) Supported() bool { return screenshot.NumActiveDisplays() > 0 }

// HasPermission probes a tiny capture of the first display,
// it fails when the OS blocks screen recording.
func (s *Screen) HasPermission() bool {
	b := screenshot.GetDisplayBounds(0)
	_, err := screenshot.CaptureRect(stdimage.Rect(b.Min.X, b.Min.Y, b.Min.X+1, b.Min.Y+1))
	if err != nil {
		s.log.Debug().Err(err).Msg("permission probe")
	}
	return err == nil
}

// RequestPermission can't show a system prompt here, so it only checks again.
func (s *Screen) RequestPermission() bool { return s.HasPermission() }

func (s *Screen) Targets() ([]Target, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, ErrUnsupported
	}
	targets := make([]Target, 0, n)
	for i := 0; i < n; i++ {
		b := screenshot.GetDisplayBounds(i)
		targets = append(targets, Target{
			Index: i,
			ID:    uint32(i),
			Title: fmt.Sprintf("Display %d (%dx%d)", i+1, b.Dx(), b.Dy()),
			Kind:  Display,
		})
	}
	return targets, nil
}

func (s *Screen) Open(opts Options) (Source, error) {
	display := 0
	if opts.Target != nil {
		if opts.Target.Kind != Display {
			return nil, fmt.Errorf("screen: %v is not a display", opts.Target)
		}
		display = int(opts.Target.ID)
	}
	if display >= screenshot.NumActiveDisplays() {
		return nil, fmt.Errorf("screen: no display %d", display)
	}
	bounds := screenshot.GetDisplayBounds(display)
	if bounds.Empty() {
		return nil, fmt.Errorf("screen: display %d has no size", display)
	}
	if opts.ShowCursor {
		s.log.Debug().Msg("the cursor is not drawn by this backend")
	}
	s.log.Info().Msgf("display %d %v at %d fps", display, bounds, opts.FPS)

	return newQueue(opts.FPS, s.queue, func() (image.Raw, error) {
		img, err := screenshot.CaptureRect(bounds)
		if err != nil {
			return image.Raw{}, fmt.Errorf("screen: %w", err)
		}
		return rgbaRaw(img), nil
	}), nil
}

// rgbaRaw strips the row padding if any.
func rgbaRaw(img *stdimage.RGBA) image.Raw {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	raw := image.Raw{Layout: image.RGBA, W: uint32(w), H: uint32(h)}
	if img.Stride == w*4 {
		raw.Data = img.Pix[:w*h*4]
		return raw
	}
	raw.Data = make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		copy(raw.Data[y*w*4:(y+1)*w*4], img.Pix[y*img.Stride:y*img.Stride+w*4])
	}
	return raw
}
