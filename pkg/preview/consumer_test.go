package preview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/liteview/liteview/pkg/image"
	"github.com/liteview/liteview/pkg/logger"
	"github.com/liteview/liteview/pkg/slot"
)

type fakeSurface struct {
	w, h      uint32
	presented []image.Frame
	resized   int
	title     string
	closeReq  bool
	closed    bool
}

func (s *fakeSurface) Resize(w, h uint32) error    { s.w, s.h = w, h; s.resized++; return nil }
func (s *fakeSurface) Present(f image.Frame) error { s.presented = append(s.presented, f); return nil }
func (s *fakeSurface) SetTitle(title string)       { s.title = title }
func (s *fakeSurface) Poll() bool                  { return s.closeReq }
func (s *fakeSurface) Close() error                { s.closed = true; return nil }

type fakeBackend struct {
	opened []*fakeSurface
	err    error
}

func (b *fakeBackend) Open(_ string, w, h uint32) (Surface, error) {
	if b.err != nil {
		return nil, b.err
	}
	s := &fakeSurface{w: w, h: h}
	b.opened = append(b.opened, s)
	return s, nil
}

type fakeSlots struct{ s *slot.Slot }

func (f *fakeSlots) Current() *slot.Slot { return f.s }

func frame(w, h uint32) image.Frame {
	return image.Frame{W: w, H: h, Pix: make([]uint32, w*h)}
}

func newTestConsumer(conf Config) (*Consumer, *fakeBackend, *fakeSlots) {
	if conf.Interval == 0 {
		conf.Interval = time.Millisecond
	}
	b := &fakeBackend{}
	slots := &fakeSlots{s: slot.New()}
	return NewConsumer(conf, slots, b, logger.Default()), b, slots
}

func TestConsumerLazySurface(t *testing.T) {
	c, b, slots := newTestConsumer(Config{})

	c.tick(context.Background())
	if len(b.opened) != 0 || c.State() != NoSurface {
		t.Fatalf("surface without frames, state %v", c.State())
	}

	slots.s.Publish(frame(4, 2))
	c.tick(context.Background())
	if len(b.opened) != 1 || c.State() != SurfaceAt {
		t.Fatalf("no surface after the first frame, state %v", c.State())
	}
	s := b.opened[0]
	if s.w != 4 || s.h != 2 || len(s.presented) != 1 {
		t.Errorf("surface %vx%v with %v frames", s.w, s.h, len(s.presented))
	}
}

func TestConsumerResize(t *testing.T) {
	c, b, slots := newTestConsumer(Config{})

	slots.s.Publish(frame(4, 2))
	c.tick(context.Background())
	slots.s.Publish(frame(4, 2))
	c.tick(context.Background())
	slots.s.Publish(frame(8, 6))
	c.tick(context.Background())

	if len(b.opened) != 1 {
		t.Fatalf("surface should be reused, opened %v", len(b.opened))
	}
	s := b.opened[0]
	if s.resized != 1 || s.w != 8 || s.h != 6 || len(s.presented) != 3 {
		t.Errorf("resized %v times to %vx%v, %v frames", s.resized, s.w, s.h, len(s.presented))
	}
}

func TestConsumerSurfaceClosed(t *testing.T) {
	c, b, slots := newTestConsumer(Config{})

	slots.s.Publish(frame(2, 2))
	c.tick(context.Background())
	b.opened[0].closeReq = true
	c.tick(context.Background())

	if slots.s.Running() {
		t.Errorf("closing the preview should stop the session")
	}
	if c.State() != Closed || !b.opened[0].closed {
		t.Errorf("state %v, closed %v", c.State(), b.opened[0].closed)
	}

	slots.s.Publish(frame(2, 2))
	c.tick(context.Background())
	if len(b.opened) != 1 || c.State() != Closed {
		t.Errorf("closed surface came back")
	}

	slots.s = slot.New()
	slots.s.Publish(frame(2, 2))
	c.tick(context.Background())
	if len(b.opened) != 2 || c.State() != SurfaceAt {
		t.Errorf("new session should get a new surface, state %v", c.State())
	}
}

func TestConsumerSessionEnd(t *testing.T) {
	c, b, slots := newTestConsumer(Config{})

	slots.s.Publish(frame(2, 2))
	c.tick(context.Background())
	slots.s.Retire()
	c.tick(context.Background())

	if c.State() != Closed || !b.opened[0].closed {
		t.Errorf("surface should be closed with the session, state %v", c.State())
	}

	slots.s = nil
	c.tick(context.Background())
	if c.State() != NoSurface {
		t.Errorf("state %v, want no surface", c.State())
	}
}

func TestConsumerOpenError(t *testing.T) {
	c, b, slots := newTestConsumer(Config{})
	b.err = errors.New("no display")

	slots.s.Publish(frame(2, 2))
	c.tick(context.Background())
	if c.State() != Closed {
		t.Errorf("state %v, want closed", c.State())
	}
	if !slots.s.Running() {
		t.Errorf("a surface error should not stop the capture")
	}
}

func TestConsumerOsd(t *testing.T) {
	c, b, slots := newTestConsumer(Config{Osd: true})

	slots.s.Publish(frame(64, 32))
	c.tick(context.Background())

	f := b.opened[0].presented[0]
	white := 0
	for _, px := range f.Pix {
		if px == 0xffffff {
			white++
		}
	}
	if white == 0 {
		t.Errorf("no fps label")
	}
}

func TestConsumerRun(t *testing.T) {
	c, _, slots := newTestConsumer(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { c.Run(ctx); close(done) }()

	slots.s.Publish(frame(2, 2))
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("preview loop didn't stop")
	}
	if c.State() != NoSurface {
		t.Errorf("surface should be gone after stop, state %v", c.State())
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name         string
		w, h         uint32
		ow, oh       int32
		x, y, fw, fh int32
	}{
		{name: "same", w: 100, h: 50, ow: 100, oh: 50, fw: 100, fh: 50},
		{name: "pillarbox", w: 100, h: 100, ow: 200, oh: 100, x: 50, fw: 100, fh: 100},
		{name: "letterbox", w: 200, h: 100, ow: 200, oh: 200, y: 50, fw: 200, fh: 100},
		{name: "empty", w: 0, h: 10, ow: 10, oh: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, fw, fh := Fit(tt.w, tt.h, tt.ow, tt.oh)
			if x != tt.x || y != tt.y || fw != tt.fw || fh != tt.fh {
				t.Errorf("Fit() = %v %v %v %v, want %v %v %v %v", x, y, fw, fh, tt.x, tt.y, tt.fw, tt.fh)
			}
		})
	}
}
