package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/danvo/liveinsight/internal/model"
	"github.com/danvo/liveinsight/internal/pipeline"
	"github.com/danvo/liveinsight/internal/respond"
)

// Message types for tea.Cmd. The pipeline publishes domain values; the
// adapter below converts them into these and hands them to the program.
type (
	CommentMsg   model.AnnotatedComment
	GiftMsg      model.GiftEvent
	AlertMsg     model.Alert
	MetricsMsg   model.MetricSample
	ProductsMsg  []model.ProductStat
	VibeMsg      pipeline.VibeUpdate
	BotStatsMsg  respond.Stats
	SummariesMsg []respond.Summary
)

// statsTickMsg drives the periodic pull of bot stats and summaries.
type statsTickMsg struct{}

// Sink adapts pipeline publications into program messages. Safe to call
// from pipeline goroutines; tea.Program.Send is goroutine-safe.
func Sink(p *tea.Program) pipeline.Sink {
	return func(v any) {
		switch t := v.(type) {
		case model.AnnotatedComment:
			p.Send(CommentMsg(t))
		case model.GiftEvent:
			p.Send(GiftMsg(t))
		case model.Alert:
			p.Send(AlertMsg(t))
		case model.MetricSample:
			p.Send(MetricsMsg(t))
		case []model.ProductStat:
			p.Send(ProductsMsg(t))
		case pipeline.VibeUpdate:
			p.Send(VibeMsg(t))
		}
	}
}
