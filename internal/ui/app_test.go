package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/danvo/liveinsight/internal/model"
	"github.com/danvo/liveinsight/internal/otel"
	"github.com/danvo/liveinsight/internal/respond"
)

func push(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestCommentListIsCapped(t *testing.T) {
	m := New("testchannel", nil, nil, nil)
	for i := 0; i < maxComments+10; i++ {
		c := model.NewChatEvent("u", "hello")
		m = push(m, CommentMsg(model.AnnotatedComment{ChatEvent: c, Intent: "general", Priority: model.PriorityLow}))
	}
	if len(m.comments) != maxComments {
		t.Errorf("comments = %d, want %d", len(m.comments), maxComments)
	}
}

func TestTabSwitching(t *testing.T) {
	m := New("testchannel", nil, nil, nil)
	m = push(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.tab != TabAlerts {
		t.Errorf("tab = %v, want alerts after tab key", m.tab)
	}
	m = push(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'4'}})
	if m.tab != TabAI {
		t.Errorf("tab = %v, want AI after '4'", m.tab)
	}
}

func TestViewRendersState(t *testing.T) {
	m := New("shopchannel", nil, nil, nil)
	m = push(m, tea.WindowSizeMsg{Width: 100, Height: 40})

	c := model.NewChatEvent("linh_98", "giá bao nhiêu")
	m = push(m, CommentMsg(model.AnnotatedComment{
		ChatEvent: c, Intent: "price_inquiry", Priority: model.PriorityHigh, Sentiment: 0.3,
	}))
	m = push(m, AlertMsg(model.Alert{
		Type: model.AlertViewerDrop, Severity: model.SeverityCritical,
		Message: "Viewer drop: 50.0%", Suggestion: "do something", Time: time.Now(),
	}))
	m = push(m, MetricsMsg(model.MetricSample{Viewers: 1500, Likes: 3200, CommentCount: 80}))
	m = push(m, ProductsMsg([]model.ProductStat{
		{Product: model.Product{ID: "p1", Title: "Áo thun", Price: "₫129.000", Pinned: true}, Mentions: 3},
	}))

	out := m.View()
	for _, want := range []string{"shopchannel", "linh_98", "price_inquiry", "1.5K"} {
		if !strings.Contains(out, want) {
			t.Errorf("comments view missing %q", want)
		}
	}

	m = push(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	if out := m.View(); !strings.Contains(out, "Viewer drop: 50.0%") {
		t.Error("alerts view missing alert message")
	}

	m = push(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	out = m.View()
	if !strings.Contains(out, "Áo thun") || !strings.Contains(out, "3 mentions") {
		t.Error("products view missing product stats")
	}
}

func TestStatsTickPullsResponder(t *testing.T) {
	m := New("c", func() respond.Stats {
		return respond.Stats{TotalSent: 7}
	}, nil, nil)

	m = push(m, statsTickMsg{})
	if m.botStats.TotalSent != 7 {
		t.Errorf("botStats.TotalSent = %d, want 7", m.botStats.TotalSent)
	}
}

func TestStatsTickPullsActivity(t *testing.T) {
	ring := otel.NewRingBuffer(16)
	ring.Push(otel.Event{Time: time.Now(), Kind: otel.KindStoreFlush, Comp: "store", Count: 50})
	ring.Push(otel.Event{Time: time.Now(), Kind: otel.KindBotPost, Comp: "bot", Msg: "cảm ơn bạn"})

	m := New("c", nil, nil, func() []otel.Event { return ring.Last(8) })
	m = push(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m = push(m, statsTickMsg{})
	m = push(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'4'}})

	out := m.View()
	if !strings.Contains(out, "Recent activity") {
		t.Fatal("AI view missing activity panel")
	}
	for _, want := range []string{string(otel.KindStoreFlush), "cảm ơn bạn"} {
		if !strings.Contains(out, want) {
			t.Errorf("activity panel missing %q", want)
		}
	}
}
