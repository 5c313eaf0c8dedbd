package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/liteview/liteview/pkg/capture"
	"github.com/liteview/liteview/pkg/image"
	"github.com/liteview/liteview/pkg/logger"
	"github.com/liteview/liteview/pkg/settings"
	"github.com/liteview/liteview/pkg/slot"
)

type endless struct{ closed atomic.Bool }

func (e *endless) NextFrame() (image.Raw, error) {
	if e.closed.Load() {
		return image.Raw{}, capture.ErrClosed
	}
	time.Sleep(2 * time.Millisecond)
	return image.Raw{Layout: image.RGB, W: 1, H: 1, Data: []byte{1, 2, 3}}, nil
}

func (e *endless) Close() error { e.closed.Store(true); return nil }

type backend struct {
	supported, permitted bool
	openErr              error

	mu      sync.Mutex
	sources []*endless
}

func (b *backend) Open(capture.Options) (capture.Source, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	src := &endless{}
	b.sources = append(b.sources, src)
	return src, nil
}

func (b *backend) Targets() ([]capture.Target, error) {
	return []capture.Target{{Title: "screen"}}, nil
}
func (b *backend) Supported() bool         { return b.supported }
func (b *backend) HasPermission() bool     { return b.permitted }
func (b *backend) RequestPermission() bool { return false }

func wait(t *testing.T, h *Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("session didn't finish")
	}
}

func TestStartStop(t *testing.T) {
	b := &backend{supported: true, permitted: true}
	c := New(b, capture.DefaultConfig(), nil, logger.Default())

	h, err := c.Start(nil, settings.Default())
	if err != nil {
		t.Fatal(err)
	}
	if c.Current() != h.Slot || !c.Active() {
		t.Errorf("session is not current")
	}
	if res := h.Slot.WaitForFrame(time.Second); res != slot.Ready {
		t.Errorf("no frames: %v", res)
	}

	c.Stop()
	c.Stop()
	wait(t, h)
	if !h.StopRequested() || h.Slot.Running() || c.Active() {
		t.Errorf("session is still active")
	}
	if h.State() != capture.Idle {
		t.Errorf("state = %v, want idle", h.State())
	}
	if !b.sources[0].closed.Load() {
		t.Errorf("source is not closed")
	}
}

func TestStopWithoutSession(t *testing.T) {
	c := New(&backend{supported: true, permitted: true}, capture.DefaultConfig(), nil, logger.Default())
	c.Stop()
	if c.Current() != nil || c.Active() {
		t.Errorf("there should be no session")
	}
}

func TestRestartRetiresOldSession(t *testing.T) {
	for _, policy := range []capture.Policy{capture.Overwrite, capture.Drain} {
		t.Run(policy.String(), func(t *testing.T) {
			conf := capture.DefaultConfig()
			conf.Policy = policy
			c := New(&backend{supported: true, permitted: true}, conf, nil, logger.Default())

			first, err := c.Start(nil, settings.Default())
			if err != nil {
				t.Fatal(err)
			}
			// nobody takes frames from the first slot
			if res := first.Slot.WaitForFrame(time.Second); res != slot.Ready {
				t.Fatalf("no frames: %v", res)
			}

			second, err := c.Start(nil, settings.Default())
			if err != nil {
				t.Fatal(err)
			}
			wait(t, first)
			if first.Slot.Running() {
				t.Errorf("old slot is still running")
			}
			if first.StopRequested() {
				t.Errorf("restart should only retire the old slot")
			}
			if c.Current() != second.Slot || !second.Slot.Running() {
				t.Errorf("new session is not current")
			}
			_ = c.Shutdown(context.Background())
		})
	}
}

func TestStartErrors(t *testing.T) {
	tests := []struct {
		name    string
		backend *backend
		want    error
	}{
		{name: "unsupported", backend: &backend{permitted: true}, want: capture.ErrUnsupported},
		{name: "denied", backend: &backend{supported: true}, want: capture.ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.backend, capture.DefaultConfig(), nil, logger.Default())
			if _, err := c.Start(nil, settings.Default()); !errors.Is(err, tt.want) {
				t.Errorf("Start() err = %v, want %v", err, tt.want)
			}
			if c.Current() != nil {
				t.Errorf("failed start installed a session")
			}
		})
	}
}

func TestOpenErrorIsReported(t *testing.T) {
	errs := make(chan error, 1)
	b := &backend{supported: true, permitted: true, openErr: errors.New("no display")}
	c := New(b, capture.DefaultConfig(), func(err error) { errs <- err }, logger.Default())

	h, err := c.Start(nil, settings.Default())
	if err != nil {
		t.Fatal(err)
	}
	select {
	case err = <-errs:
		if !errors.Is(err, capture.ErrSourceOpen) {
			t.Errorf("error = %v, want ErrSourceOpen", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no error")
	}
	wait(t, h)
	if c.Active() {
		t.Errorf("failed session should not be active")
	}
}

func TestShutdown(t *testing.T) {
	c := New(&backend{supported: true, permitted: true}, capture.DefaultConfig(), nil, logger.Default())
	if _, err := c.Start(nil, settings.Default()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Start(nil, settings.Default()); !errors.Is(err, ErrClosed) {
		t.Errorf("Start() after shutdown err = %v", err)
	}
}
