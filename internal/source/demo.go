package source

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/danvo/liveinsight/internal/model"
)

var demoUsers = []string{
	"linh_98", "shopaholic_an", "minh.tran", "bella_vu", "quang_d",
	"night_owl", "tiktok_fan22", "huong.giang", "kevin_l", "thu_thao",
}

var demoComments = []string{
	"hello mọi người",
	"giá bao nhiêu vậy shop?",
	"áo này còn size M không",
	"đẹp quá!!!",
	"love this so much 😍",
	"how much is the black one?",
	"mua ở đâu vậy",
	"xấu quá",
	"good stuff, keep going",
	"aaaaaaaa",
	"ship về Đà Nẵng mất bao lâu",
	"link số 2 còn hàng không shop",
	"this is boring",
	"chất vải có dày không",
}

var demoGifts = []string{"Rose", "TikTok", "Finger Heart", "Doughnut", "Cap"}

var demoProducts = []model.Product{
	{ID: "p1", Title: "Áo thun oversize đen", Price: "₫129.000", Pinned: true},
	{ID: "p2", Title: "Quần jeans ống rộng", Price: "₫259.000"},
	{ID: "p3", Title: "Son kem lì màu đỏ gạch", Price: "₫99.000"},
}

// DemoSource generates a synthetic shopping stream: steady chat, the
// occasional gift, and a viewer curve that dips sharply partway through
// so the anomaly alerts have something to fire on. Post injects the
// bot's own reply back into chat, so demo mode exercises the full
// responder loop without any credentials.
type DemoSource struct {
	rng    *rand.Rand
	events chan model.Event

	mu           sync.Mutex
	started      time.Time
	commentCount int
	closed       bool
}

func NewDemoSource(seed int64) *DemoSource {
	return &DemoSource{
		rng:    rand.New(rand.NewSource(seed)),
		events: make(chan model.Event, 64),
	}
}

func (d *DemoSource) Name() string { return "demo" }

func (d *DemoSource) Events() <-chan model.Event { return d.events }

func (d *DemoSource) Run(ctx context.Context) error {
	// The closed flag and the close itself flip under the same lock, so
	// Post can never send on a closed channel.
	defer func() {
		d.mu.Lock()
		d.closed = true
		close(d.events)
		d.mu.Unlock()
	}()

	d.mu.Lock()
	d.started = time.Now()
	d.mu.Unlock()

	for {
		// 0.5s to 2.5s between events keeps the chat pane lively.
		d.mu.Lock()
		wait := 500*time.Millisecond + time.Duration(d.rng.Intn(2000))*time.Millisecond
		d.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}

		d.mu.Lock()
		var ev model.Event
		if d.rng.Intn(10) == 0 {
			g := model.NewGiftEvent(
				demoUsers[d.rng.Intn(len(demoUsers))],
				demoGifts[d.rng.Intn(len(demoGifts))],
				1+d.rng.Intn(3),
			)
			ev = model.Event{Type: model.EventGift, Time: g.Time, Gift: &g}
		} else {
			c := model.NewChatEvent(
				demoUsers[d.rng.Intn(len(demoUsers))],
				demoComments[d.rng.Intn(len(demoComments))],
			)
			d.commentCount++
			ev = model.Event{Type: model.EventComment, Time: c.Time, Comment: &c}
		}
		d.mu.Unlock()

		select {
		case d.events <- ev:
		case <-ctx.Done():
			return nil
		}
	}
}

// Metrics follows a scripted curve: ramp up over two minutes, then a
// sharp drop around the three minute mark, then recovery. Small jitter
// keeps it from looking perfectly smooth.
func (d *DemoSource) Metrics(ctx context.Context) (model.MetricSample, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started.IsZero() {
		return model.MetricSample{Time: time.Now()}, nil
	}

	elapsed := time.Since(d.started)
	viewers := 0
	switch {
	case elapsed < 2*time.Minute:
		viewers = 100 + int(elapsed.Seconds())*2
	case elapsed < 3*time.Minute:
		viewers = 340
	case elapsed < 3*time.Minute+30*time.Second:
		viewers = 170 // the scripted drop
	default:
		viewers = 250
	}
	viewers += d.rng.Intn(11) - 5

	return model.MetricSample{
		Time:         time.Now(),
		Viewers:      viewers,
		Likes:        int(elapsed.Seconds()) * 3,
		Shares:       int(elapsed.Seconds()) / 10,
		CommentCount: d.commentCount,
	}, nil
}

func (d *DemoSource) Products(ctx context.Context) ([]model.Product, error) {
	out := make([]model.Product, len(demoProducts))
	copy(out, demoProducts)
	return out, nil
}

// Post loops the reply back into the event stream as a chat comment.
// Replies arriving after the source has stopped are rejected; ones that
// would block a full buffer are dropped rather than stalling the bot.
func (d *DemoSource) Post(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := model.NewChatEvent("LiveInsightBot", text)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return errors.New("demo source stopped")
	}
	select {
	case d.events <- model.Event{Type: model.EventComment, Time: c.Time, Comment: &c}:
	default:
	}
	return nil
}
