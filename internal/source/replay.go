package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/danvo/liveinsight/internal/model"
)

// replayLine is one JSONL record of a captured session. OffsetMs is
// milliseconds since capture start; records must be in offset order.
// Type matches the model.EventType vocabulary.
type replayLine struct {
	Type     string          `json:"type"` // "comment", "gift", "viewer_update", "product_pin"
	OffsetMs int64           `json:"offset_ms"`
	Username string          `json:"username,omitempty"`
	Text     string          `json:"text,omitempty"`
	Gift     string          `json:"gift,omitempty"`
	Count    int             `json:"count,omitempty"`
	Viewers  int             `json:"viewers,omitempty"`
	Likes    int             `json:"likes,omitempty"`
	Shares   int             `json:"shares,omitempty"`
	Comments int             `json:"comments,omitempty"`
	Products []model.Product `json:"products,omitempty"`
}

// ReplaySource replays a captured session from a JSONL file with the
// original timing, optionally scaled. Useful for demos and for tuning
// rules against a real session offline.
type ReplaySource struct {
	r      io.Reader
	speed  float64
	events chan model.Event

	mu       sync.Mutex
	sample   model.MetricSample
	products []model.Product
}

// NewReplaySource replays from r at the given speed multiple. Speed <= 0
// means as fast as possible.
func NewReplaySource(r io.Reader, speed float64) *ReplaySource {
	return &ReplaySource{
		r:      r,
		speed:  speed,
		events: make(chan model.Event, 256),
	}
}

// OpenReplay opens a capture file for replay.
func OpenReplay(path string, speed float64) (*ReplaySource, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open replay: %w", err)
	}
	return NewReplaySource(f, speed), f.Close, nil
}

func (r *ReplaySource) Name() string { return "replay" }

func (r *ReplaySource) Events() <-chan model.Event { return r.events }

// Run streams the capture, sleeping between records to honor offsets,
// and returns when the file ends or ctx is cancelled. Malformed lines
// are skipped.
func (r *ReplaySource) Run(ctx context.Context) error {
	defer close(r.events)

	scanner := bufio.NewScanner(r.r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lastOffset int64
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var line replayLine
		if err := json.Unmarshal(raw, &line); err != nil {
			continue
		}

		if r.speed > 0 && line.OffsetMs > lastOffset {
			wait := time.Duration(float64(line.OffsetMs-lastOffset)/r.speed) * time.Millisecond
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
		}
		lastOffset = line.OffsetMs

		switch model.EventType(line.Type) {
		case model.EventComment:
			c := model.NewChatEvent(line.Username, line.Text)
			ev := model.Event{Type: model.EventComment, Time: c.Time, Comment: &c}
			select {
			case r.events <- ev:
			case <-ctx.Done():
				return nil
			}
		case model.EventGift:
			g := model.NewGiftEvent(line.Username, line.Gift, line.Count)
			ev := model.Event{Type: model.EventGift, Time: g.Time, Gift: &g}
			select {
			case r.events <- ev:
			case <-ctx.Done():
				return nil
			}
		case model.EventViewerUpdate:
			r.mu.Lock()
			r.sample = model.MetricSample{
				Time:         time.Now(),
				Viewers:      line.Viewers,
				Likes:        line.Likes,
				Shares:       line.Shares,
				CommentCount: line.Comments,
			}
			r.mu.Unlock()
		case model.EventProductPin:
			r.mu.Lock()
			r.products = line.Products
			r.mu.Unlock()
		}

		if ctx.Err() != nil {
			return nil
		}
	}
	return scanner.Err()
}

func (r *ReplaySource) Metrics(ctx context.Context) (model.MetricSample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sample
	s.Time = time.Now()
	return s, nil
}

func (r *ReplaySource) Products(ctx context.Context) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}
