package parallel

import "sync"

// BufferPool reuses byte buffers of identical size via sync.Pool.
//
// Pipeline stages allocate W*H*channels output buffers once per run. When
// the same image size is filtered repeatedly, the pool hands those buffers
// back instead of reallocating them.
//
// Thread safety: BufferPool is safe for concurrent use.
type BufferPool struct {
	// pools holds one sync.Pool per buffer length.
	pools sync.Map
}

// byteBuffer wraps a slice for sync.Pool to avoid allocation warnings.
type byteBuffer struct {
	data []byte
}

// NewBufferPool creates an empty buffer pool.
func NewBufferPool() *BufferPool {
	return &BufferPool{}
}

// Get returns a buffer of exactly size bytes.
// The contents are unspecified; callers overwrite every byte.
// Returns nil if size <= 0.
func (p *BufferPool) Get(size int) []byte {
	if size <= 0 {
		return nil
	}
	buf := p.getOrCreatePool(size).Get().(*byteBuffer)
	return buf.data
}

// Put returns a buffer to the pool for reuse.
// Buffers whose length has no pool are left to the GC.
func (p *BufferPool) Put(buf []byte) {
	if len(buf) == 0 {
		return
	}
	if pool, ok := p.pools.Load(len(buf)); ok {
		pool.(*sync.Pool).Put(&byteBuffer{data: buf})
	}
}

// getOrCreatePool gets or creates the sync.Pool for the given size.
func (p *BufferPool) getOrCreatePool(size int) *sync.Pool {
	if pool, ok := p.pools.Load(size); ok {
		return pool.(*sync.Pool)
	}

	newPool := &sync.Pool{
		New: func() any {
			return &byteBuffer{data: make([]byte, size)}
		},
	}

	// Try to store; if another goroutine beat us, use theirs
	actual, _ := p.pools.LoadOrStore(size, newPool)
	return actual.(*sync.Pool)
}
