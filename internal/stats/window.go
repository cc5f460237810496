// Package stats keeps trailing-window statistics of simulation signals for
// charting.
package stats

import "errors"

// DefaultCapacity holds one minute of samples at one sample per second.
const DefaultCapacity = 60

var ErrCapacity = errors.New("stats: capacity must be positive")

// Window is a fixed-size circular buffer with a running sum. Once full, each
// Push evicts the oldest sample.
type Window struct {
	buf   []float64
	head  int // index of the oldest sample
	count int
	sum   float64
}

func NewWindow(capacity int) (*Window, error) {
	if capacity <= 0 {
		return nil, ErrCapacity
	}
	return &Window{buf: make([]float64, capacity)}, nil
}

// Push appends v and returns the evicted sample, if any.
func (w *Window) Push(v float64) (evicted float64, ok bool) {
	if w.count == len(w.buf) {
		evicted, ok = w.buf[w.head], true
		w.sum -= evicted
		w.buf[w.head] = v
		w.head = (w.head + 1) % len(w.buf)
	} else {
		w.buf[(w.head+w.count)%len(w.buf)] = v
		w.count++
	}
	w.sum += v
	return evicted, ok
}

// Average is the mean of the held samples, or 0 when empty.
func (w *Window) Average() float64 {
	if w.count == 0 {
		return 0
	}
	return w.sum / float64(w.count)
}

func (w *Window) Sum() float64 { return w.sum }
func (w *Window) Len() int     { return w.count }
func (w *Window) Cap() int     { return len(w.buf) }
func (w *Window) Full() bool   { return w.count == len(w.buf) }

// Last returns the newest sample.
func (w *Window) Last() (float64, bool) {
	if w.count == 0 {
		return 0, false
	}
	return w.buf[(w.head+w.count-1)%len(w.buf)], true
}

// Values copies the samples oldest first.
func (w *Window) Values() []float64 {
	out := make([]float64, w.count)
	for i := range out {
		out[i] = w.buf[(w.head+i)%len(w.buf)]
	}
	return out
}

// Reset empties the window.
func (w *Window) Reset() {
	w.head, w.count, w.sum = 0, 0, 0
}
