package capture

import (
	"sync"
	"time"

	"github.com/liteview/liteview/pkg/image"
)

type grabFn func() (image.Raw, error)

// queue runs a grabber at a fixed rate into a bounded buffer.
// When the reader falls behind the buffer holds the newest frames,
// the oldest one is dropped to make room. The grabber never blocks on the reader.
type queue struct {
	frames chan image.Raw
	errs   chan error
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

func newQueue(fps uint32, size int, grab grabFn) *queue {
	if fps == 0 {
		fps = 1
	}
	if size < 1 {
		size = 1
	}
	q := &queue{
		frames: make(chan image.Raw, size),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}
	q.wg.Add(1)
	go q.run(time.Second/time.Duration(fps), grab)
	return q
}

func (q *queue) run(period time.Duration, grab grabFn) {
	defer q.wg.Done()
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		raw, err := grab()
		if err != nil {
			q.errs <- err
			return
		}
		q.push(raw)
		select {
		case <-ticker.C:
		case <-q.done:
			return
		}
	}
}

func (q *queue) push(raw image.Raw) {
	for {
		select {
		case q.frames <- raw:
			return
		default:
		}
		select {
		case <-q.frames:
		default:
		}
	}
}

func (q *queue) NextFrame() (image.Raw, error) {
	select {
	case raw := <-q.frames:
		return raw, nil
	default:
	}
	select {
	case raw := <-q.frames:
		return raw, nil
	case err := <-q.errs:
		q.errs <- err
		return image.Raw{}, err
	case <-q.done:
		return image.Raw{}, ErrClosed
	}
}

func (q *queue) Close() error {
	q.once.Do(func() { close(q.done) })
	q.wg.Wait()
	return nil
}
