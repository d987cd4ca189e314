package ringbuffer

// Window is a fixed-length circular buffer of token ids holding the most recent
// history fed to the predictor. Push drops the oldest id, so Len never changes.
// A Window belongs to a single generation and is not safe for concurrent use.
type Window struct {
	buf   []int
	start int // index of the oldest id
}

// NewWindow creates a window initialised with ids, oldest first.
// The window length is fixed to len(ids).
func NewWindow(ids []int) *Window {
	buf := make([]int, len(ids))
	copy(buf, ids)
	return &Window{buf: buf}
}

// Push drops the oldest id and appends id as the newest.
func (w *Window) Push(id int) {
	if len(w.buf) == 0 {
		return
	}
	w.buf[w.start] = id
	w.start = (w.start + 1) % len(w.buf)
}

// Len returns the fixed window length.
func (w *Window) Len() int {
	return len(w.buf)
}

// Snapshot returns the ids oldest first as a new slice.
func (w *Window) Snapshot() []int {
	return w.SnapshotInto(make([]int, len(w.buf)))
}

// SnapshotInto writes the ids oldest first into dst, avoiding allocation.
// dst must have capacity >= Len(). Returns the used portion.
func (w *Window) SnapshotInto(dst []int) []int {
	dst = dst[:len(w.buf)]
	n := copy(dst, w.buf[w.start:])
	copy(dst[n:], w.buf[:w.start])
	return dst
}

// Newest returns the most recently pushed id.
func (w *Window) Newest() int {
	if len(w.buf) == 0 {
		return 0
	}
	return w.buf[(w.start-1+len(w.buf))%len(w.buf)]
}
