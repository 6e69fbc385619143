package gantt

// FrameThrottle coalesces pointer driven work into at most one run per frame. Only the
// latest request survives, and a request at the position of the previous one is dropped.
type FrameThrottle struct {
	fn   func()
	x, y float64
	seen bool
}

// Seed records a position without scheduling work.
func (f *FrameThrottle) Seed(x, y float64) {
	f.x, f.y, f.seen = x, y, true
}

// Request schedules fn for the next frame and reports whether it was accepted.
func (f *FrameThrottle) Request(x, y float64, fn func()) bool {
	if f.seen && f.x == x && f.y == y {
		return false
	}
	f.Seed(x, y)
	f.fn = fn
	return true
}

func (f *FrameThrottle) Pending() bool {
	return f.fn != nil
}

// Flush runs the scheduled work, if any.
func (f *FrameThrottle) Flush() bool {
	fn := f.fn
	if fn == nil {
		return false
	}
	f.fn = nil
	fn()
	return true
}

func (f *FrameThrottle) Reset() {
	*f = FrameThrottle{}
}
