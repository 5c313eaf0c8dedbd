// Package session starts and stops capture sessions, one at a time.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/liteview/liteview/pkg/capture"
	"github.com/liteview/liteview/pkg/com"
	"github.com/liteview/liteview/pkg/image"
	"github.com/liteview/liteview/pkg/logger"
	"github.com/liteview/liteview/pkg/monitoring"
	"github.com/liteview/liteview/pkg/settings"
	"github.com/liteview/liteview/pkg/slot"
)

var ErrClosed = errors.New("capture is shut down")

// Handle is one capture session.
type Handle struct {
	ID   com.Uid
	Slot *slot.Slot

	stop     atomic.Bool
	producer *capture.Producer
	done     chan struct{}
}

// RequestStop asks the producer to finish and lets the preview go.
func (h *Handle) RequestStop() {
	h.stop.Store(true)
	h.Slot.Retire()
}

func (h *Handle) StopRequested() bool         { return h.stop.Load() }
func (h *Handle) Done() <-chan struct{}       { return h.done }
func (h *Handle) State() capture.State        { return h.producer.State() }
func (h *Handle) Stats() capture.Stats        { return h.producer.Stats() }
func (h *Handle) Settings() settings.Settings { return h.producer.Settings() }

// Controller owns the current session slot.
type Controller struct {
	backend capture.Backend
	conf    capture.Config
	pool    *image.Pool
	log     *logger.Logger
	onError func(error)

	mu      sync.Mutex
	current *Handle
	closed  bool
	wg      sync.WaitGroup
}

// New makes a controller, onError gets errors of running sessions.
func New(backend capture.Backend, conf capture.Config, onError func(error), log *logger.Logger) *Controller {
	return &Controller{
		backend: backend,
		conf:    conf,
		pool:    image.NewPool(),
		log:     log.Module("session"),
		onError: onError,
	}
}

// Start begins a new capture session with the settings snapshot.
// The target index, when set, overrides the one in the settings.
// Any running session is retired first.
func (c *Controller) Start(target *int, s settings.Settings) (*Handle, error) {
	if err := capture.Check(c.backend); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if c.current != nil {
		c.current.Slot.Retire()
	}

	h := &Handle{ID: com.NewUid(), Slot: slot.New(), done: make(chan struct{})}
	log := c.log.Extend(c.log.With().Str("sid", h.ID.Short()))
	h.producer = capture.NewProducer(c.conf, c.backend, capture.Session{
		Settings: s,
		Target:   target,
		Slot:     h.Slot,
		Stop:     h.StopRequested,
		OnError:  c.onError,
	}, c.pool, log)
	c.current = h
	monitoring.Sessions.Inc()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(h.done)
		h.producer.Run()
	}()
	log.Info().Msg("session started")
	return h, nil
}

// Stop ends the current session if there is one.
func (c *Controller) Stop() {
	c.mu.Lock()
	h := c.current
	c.mu.Unlock()
	if h == nil {
		return
	}
	if !h.StopRequested() {
		c.log.Info().Str("sid", h.ID.Short()).Msg("session stop")
	}
	h.RequestStop()
}

// Current returns the slot of the current session or nil.
func (c *Controller) Current() *slot.Slot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	return c.current.Slot
}

// Session returns the current session handle or nil.
func (c *Controller) Session() *Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Active tells if the current session is still capturing.
func (c *Controller) Active() bool {
	s := c.Current()
	return s != nil && s.Running()
}

func (c *Controller) Run() {}

// Shutdown stops capturing and waits for the session goroutines.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.Stop()

	done := make(chan struct{})
	go func() { c.wg.Wait(); close(done) }()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) String() string { return "capture sessions" }
