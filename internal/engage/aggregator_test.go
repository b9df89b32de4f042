package engage

import (
	"testing"

	"github.com/danvo/liveinsight/internal/model"
)

func comment(text string, sentiment float64) model.AnnotatedComment {
	return model.AnnotatedComment{
		ChatEvent: model.ChatEvent{Username: "viewer", Text: text},
		Sentiment: sentiment,
	}
}

func TestProductMentionExactTitle(t *testing.T) {
	a := NewAggregator()
	a.SetProducts([]model.Product{
		{ID: "p1", Title: "Lipstick"},
		{ID: "p2", Title: "Face Cream"},
	})

	a.RecordComment(comment("is the lipstick still available?", 0))

	stats := a.Products()
	if stats[0].ID != "p1" || stats[0].Mentions != 1 {
		t.Errorf("top product = %+v, want p1 with 1 mention", stats[0])
	}
	for _, s := range stats {
		if s.ID == "p2" && s.Mentions != 0 {
			t.Errorf("p2 mentions = %d, want 0", s.Mentions)
		}
	}
}

func TestProductMentionPrefix(t *testing.T) {
	a := NewAggregator()
	a.SetProducts([]model.Product{{ID: "p1", Title: "Lipstick Deluxe Set"}})

	// First five runes of the title ("lipst") appear in the comment.
	a.RecordComment(comment("lipstick please", 0))

	if got := a.Products()[0].Mentions; got != 1 {
		t.Errorf("prefix mention count = %d, want 1", got)
	}
}

func TestProductMentionShortTitleNoPrefix(t *testing.T) {
	a := NewAggregator()
	a.SetProducts([]model.Product{{ID: "p1", Title: "Cap"}})

	// Short titles match only in full; "ca" alone must not count.
	a.RecordComment(comment("ca va bien", 0))
	if got := a.Products()[0].Mentions; got != 0 {
		t.Errorf("short-title partial matched, mentions = %d", got)
	}

	a.RecordComment(comment("love that cap", 0))
	if got := a.Products()[0].Mentions; got != 1 {
		t.Errorf("full short-title match, mentions = %d, want 1", got)
	}
}

func TestProductMentionMultipleProductsOneComment(t *testing.T) {
	a := NewAggregator()
	a.SetProducts([]model.Product{
		{ID: "p1", Title: "Serum"},
		{ID: "p2", Title: "Toner"},
	})

	a.RecordComment(comment("serum or toner, which first?", 0))

	for _, s := range a.Products() {
		if s.Mentions != 1 {
			t.Errorf("product %s mentions = %d, want 1", s.ID, s.Mentions)
		}
	}
}

func TestMentionCountsSurviveRelisting(t *testing.T) {
	a := NewAggregator()
	listing := []model.Product{{ID: "p1", Title: "Serum"}}
	a.SetProducts(listing)
	a.RecordComment(comment("serum please", 0))

	// Re-extracting the same listing with no new comments is idempotent.
	a.SetProducts(listing)
	a.SetProducts(listing)

	if got := a.Products()[0].Mentions; got != 1 {
		t.Errorf("mentions after relisting = %d, want 1", got)
	}
}

func TestProductsSortedByDemand(t *testing.T) {
	a := NewAggregator()
	a.SetProducts([]model.Product{
		{ID: "p1", Title: "Serum"},
		{ID: "p2", Title: "Toner"},
	})

	a.RecordComment(comment("toner toner", 0))
	a.RecordComment(comment("toner again", 0))
	a.RecordComment(comment("serum", 0))

	stats := a.Products()
	if stats[0].ID != "p2" {
		t.Errorf("top product = %s, want p2 (most mentioned)", stats[0].ID)
	}
}

func TestGiftTotals(t *testing.T) {
	a := NewAggregator()
	a.RecordGift(model.GiftEvent{GiftName: "Rose", Count: 3})
	totals := a.RecordGift(model.GiftEvent{GiftName: "Crown", Count: 1})

	if totals.Diamonds != 202 {
		t.Errorf("diamonds = %d, want 202 (1*3 + 199*1)", totals.Diamonds)
	}
	if totals.Gifts != 4 {
		t.Errorf("gifts = %d, want 4", totals.Gifts)
	}
}

func TestGiftTotalsPreferEventDiamonds(t *testing.T) {
	a := NewAggregator()
	totals := a.RecordGift(model.GiftEvent{GiftName: "Mystery", Count: 2, Diamonds: 50})
	if totals.Diamonds != 50 {
		t.Errorf("diamonds = %d, want the event's own 50", totals.Diamonds)
	}
}

func TestEstimateDiamonds(t *testing.T) {
	tests := []struct {
		name     string
		expected int
	}{
		{"Rose", 1},
		{"rose", 1},
		{"Hoa hồng (Rose)", 1},
		{"Crown", 199},
		{"Universe", 34999},
		{"Totally Unknown", 1},
	}
	for _, tt := range tests {
		if got := EstimateDiamonds(tt.name); got != tt.expected {
			t.Errorf("EstimateDiamonds(%q) = %d, want %d", tt.name, got, tt.expected)
		}
	}
}

func TestTrendMoodBuckets(t *testing.T) {
	tests := []struct {
		score float64
		mood  string
	}{
		{0.8, MoodVeryPositive},
		{0.3, MoodPositive},
		{0.0, MoodNeutral},
		{-0.3, MoodSubdued},
		{-0.8, MoodNegative},
	}

	for _, tt := range tests {
		a := NewAggregator()
		a.RecordComment(comment("x", tt.score))
		vibe, mood := a.Trend()
		if mood != tt.mood {
			t.Errorf("score %v: mood = %q, want %q", tt.score, mood, tt.mood)
		}
		want := (tt.score + 1) / 2 * 100
		if vibe != want {
			t.Errorf("score %v: vibe = %v, want %v", tt.score, vibe, want)
		}
	}
}

func TestTrendWindowBounded(t *testing.T) {
	a := NewAggregator()
	// 30 negative scores then 20 positive: only the last 20 count.
	for i := 0; i < 30; i++ {
		a.RecordComment(comment("x", -1))
	}
	for i := 0; i < 20; i++ {
		a.RecordComment(comment("x", 1))
	}

	vibe, mood := a.Trend()
	if mood != MoodVeryPositive || vibe != 100 {
		t.Errorf("vibe = %v mood = %q, want 100 / very positive", vibe, mood)
	}
}

func TestEmptyTrendNeutral(t *testing.T) {
	a := NewAggregator()
	vibe, mood := a.Trend()
	if vibe != 50 || mood != MoodNeutral {
		t.Errorf("empty trend = %v/%q, want 50/neutral", vibe, mood)
	}
}

func TestReset(t *testing.T) {
	a := NewAggregator()
	a.SetProducts([]model.Product{{ID: "p1", Title: "Serum"}})
	a.RecordComment(comment("serum", 0.9))
	a.RecordGift(model.GiftEvent{GiftName: "Rose", Count: 1})

	a.Reset()

	if totals := a.GiftTotals(); totals.Gifts != 0 || totals.Diamonds != 0 {
		t.Errorf("gift totals after reset = %+v", totals)
	}
	if stats := a.Products(); len(stats) != 0 {
		t.Errorf("products after reset = %d entries", len(stats))
	}
	if vibe, _ := a.Trend(); vibe != 50 {
		t.Errorf("trend after reset = %v, want 50", vibe)
	}
}
