package respond

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danvo/liveinsight/internal/brain"
	"github.com/danvo/liveinsight/internal/config"
	"github.com/danvo/liveinsight/internal/otel"
)

// summaryHistorySize caps how many past summaries the dashboard shows.
const summaryHistorySize = 5

// Summary is one periodic digest of what the host is talking about.
type Summary struct {
	Text string
	Time time.Time
}

// Summarizer periodically sends a stream audio clip to the AI and keeps
// the last few summaries. Without a capture or an available provider it
// stays idle.
type Summarizer struct {
	cfg     config.BotConfig
	mgr     *brain.Manager
	capture Capture
	log     *otel.Logger

	busy atomic.Bool

	mu      sync.Mutex
	history []Summary // newest last, capped at summaryHistorySize
}

func NewSummarizer(cfg config.BotConfig, mgr *brain.Manager, capture Capture, log *otel.Logger) *Summarizer {
	return &Summarizer{cfg: cfg, mgr: mgr, capture: capture, log: log}
}

// Run produces summaries on the configured interval until ctx is
// cancelled. The first summary lands one full interval after start.
func (s *Summarizer) Run(ctx context.Context) {
	if s.capture == nil || s.mgr == nil {
		return
	}

	ticker := time.NewTicker(s.cfg.SummaryInterval.Std())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Summarize(ctx)
		}
	}
}

// Summarize captures audio and produces one summary. Skipped when a
// previous run is still in flight or nothing can be captured.
func (s *Summarizer) Summarize(ctx context.Context) {
	if s.capture == nil || s.mgr == nil || !s.mgr.Available() {
		return
	}
	if !s.busy.CompareAndSwap(false, true) {
		return
	}
	defer s.busy.Store(false)

	audio, err := s.capture.Audio(ctx, 10*time.Second)
	if err != nil || len(audio) == 0 {
		return
	}

	resp, err := s.mgr.Generate(ctx, brain.Request{
		Prompt:    brain.SummaryPrompt(),
		Audio:     audio,
		MaxTokens: 96,
	})
	if err != nil {
		if s.log != nil {
			s.log.Error(otel.KindAIError, "summarizer", err)
		}
		return
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return
	}

	s.mu.Lock()
	s.history = append(s.history, Summary{Text: text, Time: time.Now()})
	if len(s.history) > summaryHistorySize {
		s.history = s.history[len(s.history)-summaryHistorySize:]
	}
	s.mu.Unlock()

	if s.log != nil {
		s.log.Emit(otel.Event{
			Level: otel.LevelInfo, Kind: otel.KindAISummary, Comp: "summarizer",
			Msg: text, Dur: resp.Latency,
		})
	}
}

// History returns past summaries, newest last.
func (s *Summarizer) History() []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Summary, len(s.history))
	copy(out, s.history)
	return out
}
