// Package engage accumulates bounded session engagement state: product
// mention counts, gift diamond totals, and a sentiment trend for the
// dashboard vibe gauge.
package engage

import (
	"sort"
	"strings"
	"sync"

	"github.com/danvo/liveinsight/internal/model"
)

// trendSize is how many recent sentiment scores feed the vibe gauge.
const trendSize = 20

// prefixLen is the mention-matching prefix length, in runes. Applied only
// when the product title is longer than this.
const prefixLen = 5

// Mood labels for the vibe gauge buckets.
const (
	MoodVeryPositive = "very positive"
	MoodPositive     = "positive"
	MoodNeutral      = "neutral"
	MoodSubdued      = "subdued"
	MoodNegative     = "negative"
)

// GiftTotals is the running session gift state. Counters only grow within
// a session.
type GiftTotals struct {
	Gifts    int `json:"gifts"`
	Diamonds int `json:"diamonds"`
}

// Aggregator holds all engagement accumulators for one session.
// Safe for concurrent use.
type Aggregator struct {
	mu sync.RWMutex

	mentions map[string]int // productID → count, monotonic
	products []model.Product

	gifts GiftTotals

	trend      [trendSize]float64
	trendHead  int
	trendCount int
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{mentions: make(map[string]int)}
}

// Reset drops all session state. Called on page/session context change;
// the monotonic counters start over.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mentions = make(map[string]int)
	a.products = nil
	a.gifts = GiftTotals{}
	a.trendHead, a.trendCount = 0, 0
}

// RecordComment matches the comment text against every known product and
// bumps mention counters. A comment matches a product when it contains
// the full title, or the title's first five runes when the title is
// longer than five runes. One comment may increment several products.
// The comment's sentiment score is pushed into the trend window.
func (a *Aggregator) RecordComment(c model.AnnotatedComment) {
	text := strings.ToLower(c.Text)

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, p := range a.products {
		if mentionsProduct(text, p.Title) {
			a.mentions[p.ID]++
		}
	}

	a.trend[a.trendHead] = c.Sentiment
	a.trendHead = (a.trendHead + 1) % trendSize
	if a.trendCount < trendSize {
		a.trendCount++
	}
}

func mentionsProduct(lowerText, title string) bool {
	lowerTitle := strings.ToLower(title)
	if lowerTitle == "" {
		return false
	}
	if strings.Contains(lowerText, lowerTitle) {
		return true
	}
	runes := []rune(lowerTitle)
	if len(runes) > prefixLen {
		return strings.Contains(lowerText, string(runes[:prefixLen]))
	}
	return false
}

// RecordGift adds a gift to the running totals, estimating diamonds from
// the gift name when the event does not carry a value.
func (a *Aggregator) RecordGift(g model.GiftEvent) GiftTotals {
	diamonds := g.Diamonds
	if diamonds == 0 {
		diamonds = EstimateDiamonds(g.GiftName) * g.Count
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.gifts.Gifts += g.Count
	a.gifts.Diamonds += diamonds
	return a.gifts
}

// GiftTotals returns the current running totals.
func (a *Aggregator) GiftTotals() GiftTotals {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.gifts
}

// SetProducts replaces the known product listing with a freshly extracted
// one. Mention counts survive the merge: re-extracting an unchanged
// listing with no new matching comments leaves counts untouched.
func (a *Aggregator) SetProducts(products []model.Product) {
	cp := make([]model.Product, len(products))
	copy(cp, products)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.products = cp
}

// Products returns the merged listing sorted by mention count descending
// ("heat"), pinned products first among equals.
func (a *Aggregator) Products() []model.ProductStat {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := make([]model.ProductStat, len(a.products))
	for i, p := range a.products {
		stats[i] = model.ProductStat{Product: p, Mentions: a.mentions[p.ID]}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Mentions != stats[j].Mentions {
			return stats[i].Mentions > stats[j].Mentions
		}
		return stats[i].Pinned && !stats[j].Pinned
	})
	return stats
}

// Trend reports the vibe gauge: the mean of the last 20 sentiment scores
// mapped to 0–100, and its mood bucket. An empty trend reads as neutral 50.
func (a *Aggregator) Trend() (vibe float64, mood string) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.trendCount == 0 {
		return 50, MoodNeutral
	}

	var sum float64
	for i := 0; i < a.trendCount; i++ {
		sum += a.trend[i]
	}
	mean := sum / float64(a.trendCount)

	switch {
	case mean > 0.4:
		mood = MoodVeryPositive
	case mean > 0.1:
		mood = MoodPositive
	case mean < -0.4:
		mood = MoodNegative
	case mean < -0.1:
		mood = MoodSubdued
	default:
		mood = MoodNeutral
	}

	return (mean + 1) / 2 * 100, mood
}
