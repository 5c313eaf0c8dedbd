package capture

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/liteview/liteview/pkg/image"
	"github.com/liteview/liteview/pkg/logger"
	"github.com/liteview/liteview/pkg/monitoring"
	"github.com/liteview/liteview/pkg/settings"
	"github.com/liteview/liteview/pkg/slot"
)

// Policy is how the producer deals with a slot the preview hasn't emptied yet.
type Policy uint8

const (
	// Overwrite never waits, the newest frame replaces the pending one.
	Overwrite Policy = iota
	// Drain waits for the preview to take the pending frame
	// and skips queued frames of the source to get a fresh one.
	Drain
)

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "overwrite":
		return Overwrite, nil
	case "drain":
		return Drain, nil
	}
	return Overwrite, fmt.Errorf("unknown capture policy: %s", s)
}

func (p Policy) String() string {
	if p == Drain {
		return "drain"
	}
	return "overwrite"
}

type State uint32

const (
	Idle State = iota
	Initializing
	Running
	Stopping
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Failed:
		return "failed"
	}
	return "?"
}

type Config struct {
	Policy Policy
	// LiveThreshold marks a NextFrame call as waiting for a new frame,
	// faster calls return frames queued earlier.
	LiveThreshold time.Duration
	// DrainLimit caps the skipped frames in a row, 0 turns skipping off.
	DrainLimit int
	DrainPoll  time.Duration
}

func DefaultConfig() Config {
	return Config{Policy: Overwrite, LiveThreshold: 5 * time.Millisecond, DrainLimit: 64, DrainPoll: slot.DefaultPoll}
}

// Stats are the frame counters of one producer.
type Stats struct {
	Captured, Stale, Throttled, Malformed, Delivered, Overwritten uint64
}

type stats struct {
	captured, stale, throttled, malformed, delivered, overwritten atomic.Uint64
}

// Producer reads frames for one capture session and publishes them into the slot.
type Producer struct {
	conf     Config
	source   Backend
	settings settings.Settings
	target   *int
	slot     *slot.Slot
	stop     func() bool
	onError  func(error)
	pool     *image.Pool
	log      *logger.Logger

	state atomic.Uint32
	stats stats
}

// Session is what a producer needs to know about its session.
type Session struct {
	Settings settings.Settings
	// Target is an index in the targets list, nil for the settings one.
	Target *int
	Slot   *slot.Slot
	// Stop tells if stop was asked for.
	Stop    func() bool
	OnError func(error)
}

func NewProducer(conf Config, source Backend, s Session, pool *image.Pool, log *logger.Logger) *Producer {
	if s.Stop == nil {
		s.Stop = func() bool { return false }
	}
	target := s.Target
	if target == nil {
		target = s.Settings.TargetIndex
	}
	return &Producer{
		conf:     conf,
		source:   source,
		settings: s.Settings.Clone(),
		target:   target,
		slot:     s.Slot,
		stop:     s.Stop,
		onError:  s.OnError,
		pool:     pool,
		log:      log.Module("capture"),
	}
}

func (p *Producer) State() State                { return State(p.state.Load()) }
func (p *Producer) setState(s State)            { p.state.Store(uint32(s)) }
func (p *Producer) alive() bool                 { return p.slot.Running() && !p.stop() }
func (p *Producer) Slot() *slot.Slot            { return p.slot }
func (p *Producer) Settings() settings.Settings { return p.settings.Clone() }

func (p *Producer) Stats() Stats {
	return Stats{
		Captured:    p.stats.captured.Load(),
		Stale:       p.stats.stale.Load(),
		Throttled:   p.stats.throttled.Load(),
		Malformed:   p.stats.malformed.Load(),
		Delivered:   p.stats.delivered.Load(),
		Overwritten: p.stats.overwritten.Load(),
	}
}

// Run blocks until the session ends.
// On any exit the slot is retired so the preview lets go of it.
func (p *Producer) Run() {
	p.setState(Initializing)
	src, err := p.open()
	if err != nil {
		p.setState(Failed)
		p.slot.Retire()
		p.fail(err)
		p.setState(Idle)
		return
	}
	p.setState(Running)
	p.log.Info().Msgf("capture started, %v, policy: %v", p.settings, p.conf.Policy)

	err = p.loop(src)

	p.setState(Stopping)
	if cerr := src.Close(); cerr != nil {
		p.log.Warn().Err(cerr).Msg("capture source close")
	}
	p.slot.Retire()
	if err != nil {
		p.fail(err)
	}
	st := p.Stats()
	p.log.Info().Msgf("capture stopped, frames: %d captured, %d delivered, %d stale, %d throttled, %d overwritten",
		st.Captured, st.Delivered, st.Stale, st.Throttled, st.Overwritten)
	p.setState(Idle)
}

func (p *Producer) open() (Source, error) {
	opts := Options{
		FPS:        p.settings.FPS,
		ShowCursor: p.settings.ShowCursor,
		Resolution: p.settings.Resolution,
		Target:     p.resolveTarget(),
	}
	src, err := p.source.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceOpen, err)
	}
	return src, nil
}

// resolveTarget picks the target by index, nil means the default target of the source.
func (p *Producer) resolveTarget() *Target {
	if p.target == nil {
		return nil
	}
	targets, err := p.source.Targets()
	if err != nil {
		p.log.Warn().Err(err).Msg("couldn't list capture targets, using the default one")
		return nil
	}
	i := *p.target
	if i < 0 || i >= len(targets) {
		p.log.Warn().Msgf("no capture target %d of %d, using the default one", i, len(targets))
		return nil
	}
	t := targets[i]
	p.log.Info().Msgf("target %v", t)
	return &t
}

func (p *Producer) loop(src Source) error {
	limit := newThrottle(p.settings.FPS)
	for p.alive() {
		if p.conf.Policy == Drain && !p.slot.WaitDrained(p.conf.DrainPoll, p.stop) {
			return nil
		}

		raw, err := p.next(src)
		if err != nil {
			if !p.alive() {
				return nil
			}
			return fmt.Errorf("%w: %w", ErrSourceRead, err)
		}
		p.stats.captured.Add(1)
		monitoring.FramesCaptured.Inc()

		now := time.Now()
		if !limit.allow(now) {
			p.stats.throttled.Add(1)
			monitoring.FramesThrottled.Inc()
			continue
		}

		frame, ok := image.NormalizeTo(p.pool.Get(0), raw)
		if !ok {
			p.stats.malformed.Add(1)
			monitoring.FramesMalformed.Inc()
			p.log.Debug().Msgf("skip frame %v %dx%d of %d bytes", raw.Layout, raw.W, raw.H, len(raw.Data))
			continue
		}

		if p.settings.Resolution != image.Captured {
			scaled := image.ScaleTo(p.pool.Get(0), frame, p.settings.Resolution)
			p.pool.Put(frame)
			frame = scaled
		}
		if !frame.Valid() {
			p.stats.malformed.Add(1)
			monitoring.FramesMalformed.Inc()
			continue
		}
		limit.mark(now)

		if p.slot.Publish(frame) {
			p.stats.overwritten.Add(1)
			monitoring.FramesOverwritten.Inc()
		}
		p.stats.delivered.Add(1)
		monitoring.FramesDelivered.Inc()
	}
	return nil
}

// next returns the next frame, with the Drain policy it skips
// the frames that were sitting in the source queue.
func (p *Producer) next(src Source) (image.Raw, error) {
	if p.conf.Policy != Drain {
		return src.NextFrame()
	}
	for skipped := 0; ; skipped++ {
		start := time.Now()
		raw, err := src.NextFrame()
		if err != nil {
			return raw, err
		}
		if time.Since(start) > p.conf.LiveThreshold || skipped >= p.conf.DrainLimit || !p.alive() {
			return raw, nil
		}
		p.stats.stale.Add(1)
		monitoring.FramesStale.Inc()
	}
}

// throttle keeps delivered frames at most at the fps rate.
// Deadlines follow a fixed schedule from the first frame, a frame is let
// through up to 1/8 of the interval early so a source paced right at the fps
// isn't cut by timer jitter. After a gap longer than the interval the schedule
// starts over, missed frames are never made up with a burst.
type throttle struct {
	interval time.Duration
	next     time.Time
}

func newThrottle(fps uint32) *throttle {
	return &throttle{interval: time.Second / time.Duration(settings.ClampFPS(int64(fps)))}
}

func (t *throttle) allow(now time.Time) bool {
	return t.next.IsZero() || !now.Before(t.next.Add(-t.interval/8))
}

// mark books the slot of a delivered frame.
func (t *throttle) mark(now time.Time) {
	if t.next.IsZero() || now.Sub(t.next) >= t.interval {
		t.next = now
	}
	t.next = t.next.Add(t.interval)
}

func (p *Producer) fail(err error) {
	monitoring.CaptureErrors.Inc()
	p.log.Error().Err(err).Msg("capture")
	if p.onError != nil {
		p.onError(err)
	}
}
