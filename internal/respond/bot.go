// Package respond implements the automated chat responder: rule-triggered
// replies, periodic persona comments, and the rolling audio summary.
//
// Posting is rate limited by a cooldown and a single-in-flight guard. A
// generation that is still running when the next trigger arrives wins;
// the new trigger is dropped, not queued.
package respond

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/danvo/liveinsight/internal/brain"
	"github.com/danvo/liveinsight/internal/config"
	"github.com/danvo/liveinsight/internal/otel"
	"github.com/danvo/liveinsight/internal/source"
)

// Capture supplies media snapshots of the watched stream for multimodal
// prompts. Sources that cannot capture leave the bot text-only.
type Capture interface {
	// Image returns a JPEG frame of the stream, or nil if unavailable.
	Image(ctx context.Context) ([]byte, error)
	// Audio returns a WebM clip of roughly the given length, or nil.
	Audio(ctx context.Context, d time.Duration) ([]byte, error)
}

// Stats is a snapshot of responder activity for the dashboard.
type Stats struct {
	TotalSent     int
	SentText      int
	SentVision    int
	SentVoice     int
	LastSent      time.Time
	LastText      string
	NextScheduled time.Time
	LastLatency   time.Duration
}

// Bot posts automated replies and periodic comments into the stream.
type Bot struct {
	cfg     config.BotConfig
	mgr     *brain.Manager
	poster  source.Poster
	capture Capture // may be nil
	log     *otel.Logger

	// history returns the recent chat lines used as prompt context.
	history func() []string

	limiter *rate.Limiter
	busy    atomic.Bool
	rng     *rand.Rand
	rngMu   sync.Mutex

	// what the most recent generation attached; only touched under the
	// busy flag.
	lastUsedVision bool
	lastUsedVoice  bool

	mu    sync.Mutex
	stats Stats
}

// NewBot creates a responder. history may be nil; capture may be nil.
func NewBot(cfg config.BotConfig, mgr *brain.Manager, poster source.Poster, capture Capture, history func() []string, log *otel.Logger) *Bot {
	if history == nil {
		history = func() []string { return nil }
	}
	return &Bot{
		cfg:     cfg,
		mgr:     mgr,
		poster:  poster,
		capture: capture,
		log:     log,
		history: history,
		limiter: rate.NewLimiter(rate.Every(cfg.Cooldown.Std()), 1),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run drives the periodic comment loop. The first post is scheduled one
// full interval after start, and the schedule keeps ticking even while a
// post is in flight; a tick that lands mid-generation is skipped.
func (b *Bot) Run(ctx context.Context) {
	if !b.cfg.Enabled || !b.cfg.PeriodicEnabled {
		return
	}

	interval := b.cfg.PeriodicInterval.Std()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	b.mu.Lock()
	b.stats.NextScheduled = time.Now().Add(interval)
	b.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.mu.Lock()
			b.stats.NextScheduled = time.Now().Add(interval)
			b.mu.Unlock()
			b.Trigger(ctx, nil)
		}
	}
}

// Trigger attempts one post. Candidates are the rule's canned responses;
// nil candidates means a periodic persona comment. Drops silently when
// the bot is disabled, cooling down, or already generating.
func (b *Bot) Trigger(ctx context.Context, candidates []string) {
	if !b.cfg.Enabled || b.poster == nil {
		return
	}
	if !b.limiter.Allow() {
		if b.log != nil {
			b.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindBotCooldown, Comp: "bot"})
		}
		return
	}
	if !b.busy.CompareAndSwap(false, true) {
		return
	}
	defer b.busy.Store(false)

	text := b.generate(ctx)
	kind := "text"
	switch {
	case text == "":
		text = b.pickTemplate(candidates)
		if b.log != nil {
			b.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindBotFallback, Comp: "bot"})
		}
	case b.lastUsedVision:
		kind = "vision"
	case b.lastUsedVoice:
		kind = "voice"
	}
	if text == "" {
		return
	}

	if err := b.poster.Post(ctx, text); err != nil {
		if b.log != nil {
			b.log.Error(otel.KindBotPost, "bot", err)
		}
		return
	}

	b.mu.Lock()
	b.stats.TotalSent++
	switch kind {
	case "vision":
		b.stats.SentVision++
	case "voice":
		b.stats.SentVoice++
	default:
		b.stats.SentText++
	}
	b.stats.LastSent = time.Now()
	b.stats.LastText = text
	b.mu.Unlock()

	if b.log != nil {
		b.log.Emit(otel.Event{
			Level: otel.LevelInfo, Kind: otel.KindBotPost, Comp: "bot",
			Msg: text, Source: kind,
		})
	}
}

func (b *Bot) generate(ctx context.Context) string {
	if !b.cfg.UseAI || b.mgr == nil || !b.mgr.Available() {
		return ""
	}

	req := brain.Request{
		Prompt:      brain.CommentPrompt(b.cfg.Persona, b.cfg.Topics, b.cfg.Style, b.history()),
		ChatHistory: b.history(),
		MaxTokens:   64,
	}

	b.lastUsedVision = false
	b.lastUsedVoice = false
	if b.capture != nil {
		if b.cfg.UseVision {
			if img, err := b.capture.Image(ctx); err == nil && len(img) > 0 {
				req.Image = img
				b.lastUsedVision = true
			}
		}
		if b.cfg.UseVoice {
			if aud, err := b.capture.Audio(ctx, 5*time.Second); err == nil && len(aud) > 0 {
				req.Audio = aud
				b.lastUsedVoice = true
			}
		}
	}

	resp, err := b.mgr.Generate(ctx, req)
	if err != nil {
		if b.log != nil {
			b.log.Error(otel.KindAIError, "bot", err)
		}
		b.lastUsedVision = false
		b.lastUsedVoice = false
		return ""
	}
	if resp.Content != "" && b.log != nil {
		b.log.Emit(otel.Event{
			Level: otel.LevelDebug, Kind: otel.KindAIGenerate, Comp: "bot",
			Msg: resp.Model, Dur: resp.Latency,
		})
	}

	b.mu.Lock()
	b.stats.LastLatency = resp.Latency
	b.mu.Unlock()

	return strings.TrimSpace(resp.Content)
}

// pickTemplate chooses a random canned response, preferring the rule's
// own candidates over the global templates.
func (b *Bot) pickTemplate(candidates []string) string {
	pool := candidates
	if len(pool) == 0 {
		pool = b.cfg.Templates
	}
	if len(pool) == 0 {
		return ""
	}
	b.rngMu.Lock()
	defer b.rngMu.Unlock()
	return pool[b.rng.Intn(len(pool))]
}

// Stats returns a copy of the current responder stats.
func (b *Bot) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}
