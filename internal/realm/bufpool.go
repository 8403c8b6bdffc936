package realm

import "sync"

// BytePool is a pool of reusable []byte buffers, shared by every Session's
// outgoing write queue to cut GC pressure under many concurrent clients.
type BytePool struct {
	pool sync.Pool
}

// NewBytePool creates a buffer pool with the given default capacity for
// freshly allocated slices.
func NewBytePool(defaultCap int) *BytePool {
	p := &BytePool{}
	p.pool.New = func() any {
		return make([]byte, 0, defaultCap)
	}
	return p
}

// Get returns a slice of length size, preferably recycled from the pool.
func (p *BytePool) Get(size int) []byte {
	b := p.pool.Get().([]byte)
	if cap(b) < size {
		p.pool.Put(b)
		return make([]byte, size)
	}
	b = b[:size]
	clear(b)
	return b
}

// Put returns a slice to the pool for reuse.
func (p *BytePool) Put(b []byte) {
	if b == nil {
		return
	}
	p.pool.Put(b[:0])
}
