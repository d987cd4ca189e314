package audio

import "sync"

// segmentBuffer is float scratch space for rendering one note before it is
// quantised into the output PCM. Used via sync.Pool so concurrent renders do
// not allocate per note.
type segmentBuffer struct {
	samples []float64
}

var segmentPool = sync.Pool{
	New: func() interface{} {
		return &segmentBuffer{}
	},
}

// acquireSegment returns a scratch buffer of exactly n samples.
func acquireSegment(n int) *segmentBuffer {
	b := segmentPool.Get().(*segmentBuffer)
	if cap(b.samples) < n {
		b.samples = make([]float64, n)
	}
	b.samples = b.samples[:n]
	return b
}

// releaseSegment returns a buffer to the pool.
func releaseSegment(b *segmentBuffer) {
	segmentPool.Put(b)
}
