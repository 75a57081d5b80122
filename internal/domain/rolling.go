package domain

import (
	"gonum.org/v1/gonum/stat"
)

// RollingStats holds per-position statistics over a trailing window. All
// three slices are aligned with the input: position i covers the closed
// window [i-window+1, i] and is undefined for i < window-1.
type RollingStats struct {
	Window int
	Mean   []NullFloat
	StdDev []NullFloat
	Min    []NullFloat
}

// Rolling computes the rolling mean, standard deviation and minimum of values.
// The standard deviation is the unbiased sample estimate (n-1 denominator),
// so it is undefined everywhere for a window of 1.
func Rolling(values []float64, window int) (RollingStats, error) {
	if window < 1 {
		return RollingStats{}, ErrInvalidWindow
	}

	mins, err := RollingMin(values, window)
	if err != nil {
		return RollingStats{}, err
	}

	means := make([]NullFloat, len(values))
	stds := make([]NullFloat, len(values))
	for i := window - 1; i < len(values); i++ {
		w := values[i-window+1 : i+1]
		if window == 1 {
			means[i] = Some(w[0])
			continue
		}
		mean, std := stat.MeanStdDev(w, nil)
		means[i] = Some(mean)
		stds[i] = Some(std)
	}

	return RollingStats{Window: window, Mean: means, StdDev: stds, Min: mins}, nil
}

// RollingMean computes only the rolling mean, as used for display overlays.
func RollingMean(values []float64, window int) ([]NullFloat, error) {
	if window < 1 {
		return nil, ErrInvalidWindow
	}
	out := make([]NullFloat, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = Some(sum / float64(window))
		}
	}
	return out, nil
}

// RollingMin computes the rolling minimum in O(n) using a monotonic deque of
// indices held in a ring buffer of capacity window. Values referenced by the
// deque are strictly increasing from front to back, so the front is always
// the minimum of the current window.
func RollingMin(values []float64, window int) ([]NullFloat, error) {
	if window < 1 {
		return nil, ErrInvalidWindow
	}

	out := make([]NullFloat, len(values))
	dq := newIndexRing(min(window, max(len(values), 1)))
	for i, v := range values {
		for dq.len() > 0 && dq.front() <= i-window {
			dq.popFront()
		}
		for dq.len() > 0 && values[dq.back()] >= v {
			dq.popBack()
		}
		dq.pushBack(i)

		if i >= window-1 {
			out[i] = Some(values[dq.front()])
		}
	}
	return out, nil
}

// indexRing is a fixed-capacity double-ended queue of indices.
type indexRing struct {
	buf  []int
	head int
	size int
}

func newIndexRing(capacity int) *indexRing {
	return &indexRing{buf: make([]int, capacity)}
}

func (r *indexRing) len() int   { return r.size }
func (r *indexRing) front() int { return r.buf[r.head] }
func (r *indexRing) back() int  { return r.buf[(r.head+r.size-1)%len(r.buf)] }

func (r *indexRing) pushBack(i int) {
	r.buf[(r.head+r.size)%len(r.buf)] = i
	r.size++
}

func (r *indexRing) popBack() { r.size-- }

func (r *indexRing) popFront() {
	r.head = (r.head + 1) % len(r.buf)
	r.size--
}
