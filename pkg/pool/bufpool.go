// SPDX-License-Identifier: MIT
package pool

// BufferPool recycles float buffers bucketed by exact length. Waveform and
// peak computations need buffers of a specific size; reuse has to be by-size
// rather than by-capacity to avoid zeroing and reslicing in the hot path.
//
// Like Pool, a BufferPool is owned by a single goroutine.
type BufferPool struct {
	buckets map[int][][]float64
	hits    uint64
	misses  uint64
}

// NewBufferPool creates an empty buffer pool.
func NewBufferPool() *BufferPool {
	return &BufferPool{buckets: make(map[int][][]float64)}
}

// Get returns a buffer of exactly length n, reusing a released one when the
// matching bucket is non-empty. Reused buffers are zeroed before return so
// callers never observe a previous frame's data.
func (bp *BufferPool) Get(n int) []float64 {
	if n <= 0 {
		return nil
	}
	stack := bp.buckets[n]
	if len(stack) == 0 {
		bp.misses++
		return make([]float64, n)
	}
	buf := stack[len(stack)-1]
	bp.buckets[n] = stack[:len(stack)-1]
	for i := range buf {
		buf[i] = 0
	}
	bp.hits++
	return buf
}

// Put returns a buffer to its length bucket. Nil and empty buffers are
// dropped.
func (bp *BufferPool) Put(buf []float64) {
	if len(buf) == 0 {
		return
	}
	n := len(buf)
	bp.buckets[n] = append(bp.buckets[n], buf)
}

// BufferStats reports reuse effectiveness.
type BufferStats struct {
	Buckets int
	Pooled  int // total buffers currently held
	Hits    uint64
	Misses  uint64
}

// Stats returns a snapshot of bucket occupancy and hit counters.
func (bp *BufferPool) Stats() BufferStats {
	s := BufferStats{Buckets: len(bp.buckets), Hits: bp.hits, Misses: bp.misses}
	for _, stack := range bp.buckets {
		s.Pooled += len(stack)
	}
	return s
}
