// Package preview shows the frames of the current capture session.
package preview

import (
	"context"
	"fmt"
	"time"

	"github.com/liteview/liteview/pkg/image"
	"github.com/liteview/liteview/pkg/logger"
	"github.com/liteview/liteview/pkg/monitoring"
	"github.com/liteview/liteview/pkg/slot"
)

// Slots gives the slot of the current session, nil when there is none.
type Slots interface {
	Current() *slot.Slot
}

type Config struct {
	Title     string
	Interval  time.Duration
	FpsWindow time.Duration
	// Osd draws the fps over frames.
	Osd bool
}

// Consumer is the preview loop, it lives as long as the app.
type Consumer struct {
	conf  Config
	slots Slots
	win   window
	fps   *fpsCounter
	log   *logger.Logger

	attached *slot.Slot
}

func NewConsumer(conf Config, slots Slots, backend Backend, log *logger.Logger) *Consumer {
	if conf.Interval <= 0 {
		conf.Interval = 16 * time.Millisecond
	}
	log = log.Module("preview")
	return &Consumer{
		conf:  conf,
		slots: slots,
		win:   window{backend: backend, title: conf.Title, log: log},
		fps:   newFpsCounter(conf.FpsWindow),
		log:   log,
	}
}

// Run loops until the context is done.
func (c *Consumer) Run(ctx context.Context) {
	c.log.Debug().Msg("preview loop started")
	for ctx.Err() == nil {
		c.tick(ctx)
	}
	c.win.reset()
	c.log.Debug().Msg("preview loop stopped")
}

// State is the surface state for the current session.
func (c *Consumer) State() SurfaceState { return c.win.state }

// FPS is the last measured frame rate.
func (c *Consumer) FPS() float64 { return c.fps.value() }

func (c *Consumer) tick(ctx context.Context) {
	s := c.slots.Current()
	if s != c.attached {
		c.attach(s)
	}

	if s == nil || !s.Running() {
		if c.win.state == SurfaceAt {
			c.win.close()
			c.log.Debug().Msg("session is over, surface closed")
		}
		idle(ctx, c.conf.Interval)
		return
	}

	if s.WaitForFrame(c.conf.Interval) == slot.Ready {
		if f, ok := s.Take(); ok {
			c.show(f)
		}
	}
	if c.win.poll() {
		c.log.Info().Msg("preview is closed, stopping capture")
		s.Retire()
	}
}

func (c *Consumer) attach(s *slot.Slot) {
	c.win.reset()
	c.fps.reset()
	monitoring.PreviewFPS.Set(0)
	c.attached = s
}

func (c *Consumer) show(f image.Frame) {
	fps, updated := c.fps.tick(time.Now())
	if c.conf.Osd {
		image.AddLabel(&f, 4, 4, fmt.Sprintf("%.0f fps", fps))
	}
	if err := c.win.show(f); err != nil {
		c.log.Error().Err(err).Msg("preview")
		return
	}
	monitoring.FramesPresented.Inc()
	if updated {
		c.win.setTitle(fmt.Sprintf("%s - %.0f fps", c.conf.Title, fps))
		monitoring.PreviewFPS.Set(fps)
	}
}

func idle(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
