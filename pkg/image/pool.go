package image

import "sync"

// Pool recycles pixel buffers of frames that never left the pipeline.
// A nil *Pool just allocates.
type Pool struct {
	pool sync.Pool
}

func NewPool() *Pool { return &Pool{} }

// Get returns a buffer with len n.
func (p *Pool) Get(n int) []uint32 {
	if p == nil {
		return make([]uint32, n)
	}
	b, _ := p.pool.Get().(*[]uint32)
	if b == nil || cap(*b) < n {
		return make([]uint32, n)
	}
	return (*b)[:n]
}

// Put gives back the frame storage, the frame must not be used after.
func (p *Pool) Put(f Frame) {
	if p == nil || cap(f.Pix) == 0 {
		return
	}
	b := f.Pix[:0]
	p.pool.Put(&b)
}
