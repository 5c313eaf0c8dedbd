package preview

import "time"

// fpsCounter counts shown frames over a fixed window.
type fpsCounter struct {
	window time.Duration
	start  time.Time
	frames int
	fps    float64
}

func newFpsCounter(window time.Duration) *fpsCounter {
	if window <= 0 {
		window = time.Second
	}
	return &fpsCounter{window: window}
}

// tick counts a frame, updated is true when a new value is ready.
func (c *fpsCounter) tick(now time.Time) (fps float64, updated bool) {
	if c.start.IsZero() {
		c.start = now
	}
	c.frames++
	if elapsed := now.Sub(c.start); elapsed >= c.window {
		c.fps = float64(c.frames) / elapsed.Seconds()
		c.frames, c.start = 0, now
		return c.fps, true
	}
	return c.fps, false
}

func (c *fpsCounter) value() float64 { return c.fps }

func (c *fpsCounter) reset() { c.start, c.frames, c.fps = time.Time{}, 0, 0 }
