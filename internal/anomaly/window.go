package anomaly

import "github.com/danvo/liveinsight/internal/model"

// window is a fixed-capacity FIFO of metric samples. The newest sample
// overwrites the oldest once the window is full. Not goroutine-safe; the
// detector serializes access.
type window struct {
	buf   []model.MetricSample
	size  int
	head  int // next write position
	count int // valid entries (0..size)
}

func newWindow(size int) *window {
	return &window{
		buf:  make([]model.MetricSample, size),
		size: size,
	}
}

func (w *window) push(s model.MetricSample) {
	w.buf[w.head] = s
	w.head = (w.head + 1) % w.size
	if w.count < w.size {
		w.count++
	}
}

func (w *window) len() int { return w.count }

// at returns the i-th sample in chronological order, 0 = oldest.
func (w *window) at(i int) model.MetricSample {
	start := (w.head - w.count + w.size) % w.size
	return w.buf[(start+i)%w.size]
}

// newest returns the most recent sample. Panics on an empty window;
// callers check len first.
func (w *window) newest() model.MetricSample {
	return w.at(w.count - 1)
}

// snapshot returns a copy of all samples in chronological order.
func (w *window) snapshot() []model.MetricSample {
	if w.count == 0 {
		return nil
	}
	out := make([]model.MetricSample, w.count)
	for i := 0; i < w.count; i++ {
		out[i] = w.at(i)
	}
	return out
}
