// Package pipeline wires extraction, classification, scoring, anomaly
// detection, and aggregation into a single consumer loop.
//
// One goroutine drains the source's event channel; another polls metrics
// and products on a fixed cadence. All analysis state is owned by those
// two goroutines plus the aggregator's own locking, so sinks only ever
// see immutable snapshots.
package pipeline

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/danvo/liveinsight/internal/anomaly"
	"github.com/danvo/liveinsight/internal/engage"
	"github.com/danvo/liveinsight/internal/model"
	"github.com/danvo/liveinsight/internal/otel"
	"github.com/danvo/liveinsight/internal/respond"
	"github.com/danvo/liveinsight/internal/rules"
	"github.com/danvo/liveinsight/internal/sentiment"
	"github.com/danvo/liveinsight/internal/source"
	"github.com/danvo/liveinsight/internal/store"
)

const (
	// displaySize caps the comment list sinks receive.
	displaySize = 20
	// contextSize caps the chat lines fed to AI prompts.
	contextSize = 10
	// metricInterval is the engagement polling cadence.
	metricInterval = time.Second
	// productEvery re-lists products once per this many metric ticks.
	productEvery = 10
)

// VibeUpdate is the aggregate audience mood snapshot pushed to sinks.
type VibeUpdate struct {
	Score float64 // 0..100
	Mood  string
	Gifts engage.GiftTotals
}

// Sink receives published pipeline values: model.AnnotatedComment,
// model.GiftEvent, model.MetricSample, model.Alert, []model.ProductStat,
// and VibeUpdate. Called from pipeline goroutines; must not block.
type Sink func(v any)

// Pipeline runs the full analysis chain for one source.
type Pipeline struct {
	src        source.Source
	classifier *rules.Classifier
	scorer     *sentiment.Scorer
	detector   *anomaly.Detector
	agg        *engage.Aggregator
	bot        *respond.Bot // may be nil
	buffer     *store.Buffer
	log        *otel.Logger
	sessionID  string
	interval   time.Duration

	mu      sync.Mutex
	display []model.AnnotatedComment
	history []string

	sinkMu sync.Mutex
	sinks  []Sink

	wg sync.WaitGroup
}

// Options are the collaborators a Pipeline needs. Bot and Buffer are
// optional.
type Options struct {
	Source     source.Source
	Classifier *rules.Classifier
	Scorer     *sentiment.Scorer
	Bot        *respond.Bot
	Buffer     *store.Buffer
	Log        *otel.Logger
	SessionID  string

	// PollInterval overrides the metric cadence; zero keeps the default.
	PollInterval time.Duration
}

func New(opts Options) *Pipeline {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = metricInterval
	}
	return &Pipeline{
		src:        opts.Source,
		classifier: opts.Classifier,
		scorer:     opts.Scorer,
		detector:   anomaly.NewDetector(anomaly.DefaultWindowSize),
		agg:        engage.NewAggregator(),
		bot:        opts.Bot,
		buffer:     opts.Buffer,
		log:        opts.Log,
		sessionID:  opts.SessionID,
		interval:   interval,
	}
}

// SetBot attaches the responder. Must be called before Start; the bot
// usually needs the pipeline's History, hence the two-step wiring.
func (p *Pipeline) SetBot(b *respond.Bot) {
	p.bot = b
}

// Subscribe registers a sink. Must be called before Start.
func (p *Pipeline) Subscribe(s Sink) {
	p.sinkMu.Lock()
	defer p.sinkMu.Unlock()
	p.sinks = append(p.sinks, s)
}

func (p *Pipeline) publish(v any) {
	p.sinkMu.Lock()
	sinks := p.sinks
	p.sinkMu.Unlock()
	for _, s := range sinks {
		s(v)
	}
}

// Start launches the consumer and polling goroutines. They stop when ctx
// is cancelled and the source closes its channel; Wait blocks for both.
func (p *Pipeline) Start(ctx context.Context) {
	p.wg.Add(2)
	go func() {
		defer p.wg.Done()
		p.consume(ctx)
	}()
	go func() {
		defer p.wg.Done()
		p.poll(ctx)
	}()
}

// Wait blocks until both pipeline goroutines have exited.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// consume drains the source's event channel until it closes.
func (p *Pipeline) consume(ctx context.Context) {
	for ev := range p.src.Events() {
		switch ev.Type {
		case model.EventComment:
			if ev.Comment != nil {
				p.handleComment(ctx, *ev.Comment)
			}
		case model.EventGift:
			if ev.Gift != nil {
				p.handleGift(*ev.Gift)
			}
		}
	}
}

func (p *Pipeline) handleComment(ctx context.Context, c model.ChatEvent) {
	res := p.classifier.Classify(c.Text)
	ac := model.AnnotatedComment{
		ChatEvent: c,
		Intent:    res.Intent,
		Priority:  res.Priority,
		Sentiment: p.scorer.Score(c.Text),
		Matches:   res.Matches,
	}

	p.agg.RecordComment(ac)

	p.mu.Lock()
	p.display = append(p.display, ac)
	if len(p.display) > displaySize {
		p.display = p.display[len(p.display)-displaySize:]
	}
	p.history = append(p.history, ac.Line())
	if len(p.history) > contextSize {
		p.history = p.history[len(p.history)-contextSize:]
	}
	p.mu.Unlock()

	p.persist("comment", ac.Time, ac)
	p.publish(ac)

	if p.log != nil {
		p.log.Emit(otel.Event{
			Level: otel.LevelDebug, Kind: otel.KindCommentAnalyzed, Comp: "pipeline",
			Intent: ac.Intent, Source: p.src.Name(),
		})
	}

	// A matched rule with canned responses is an invitation to reply.
	if p.bot != nil {
		if responses := p.classifier.Responses(ac.Intent); len(responses) > 0 {
			go p.bot.Trigger(ctx, responses)
		}
	}
}

func (p *Pipeline) handleGift(g model.GiftEvent) {
	totals := p.agg.RecordGift(g)

	p.persist("gift", g.Time, g)
	p.publish(g)
	p.publishVibe(totals)

	if p.log != nil {
		p.log.Emit(otel.Event{
			Level: otel.LevelDebug, Kind: otel.KindGiftReceived, Comp: "pipeline",
			Count: g.Count, Msg: g.GiftName,
		})
	}
}

// poll samples metrics every second and relists products every tenth
// tick, feeding the anomaly detector and the aggregator.
func (p *Pipeline) poll(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	tick := 0
	p.refreshProducts(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		sample, err := p.src.Metrics(ctx)
		if err != nil {
			if p.log != nil {
				p.log.Error(otel.KindSourceError, "pipeline", err)
			}
			continue
		}

		alerts := p.detector.Add(sample)
		p.persist("metric", sample.Time, sample)
		p.publish(sample)
		p.publishVibe(p.agg.GiftTotals())

		for _, a := range alerts {
			p.persist("alert", a.Time, a)
			p.publish(a)
			if p.log != nil {
				p.log.Emit(otel.Event{
					Level: otel.LevelWarn, Kind: otel.KindAnomalyAlert, Comp: "pipeline",
					Severity: string(a.Severity), Msg: a.Message,
				})
			}
		}

		tick++
		if tick%productEvery == 0 {
			p.refreshProducts(ctx)
		}
	}
}

func (p *Pipeline) refreshProducts(ctx context.Context) {
	products, err := p.src.Products(ctx)
	if err != nil {
		if p.log != nil {
			p.log.Error(otel.KindSourceError, "pipeline", err)
		}
		return
	}
	if len(products) == 0 {
		return
	}
	p.agg.SetProducts(products)
	p.publish(p.agg.Products())
}

func (p *Pipeline) publishVibe(totals engage.GiftTotals) {
	score, mood := p.agg.Trend()
	p.publish(VibeUpdate{Score: score, Mood: mood, Gifts: totals})
}

func (p *Pipeline) persist(kind string, at time.Time, v any) {
	if p.buffer == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	p.buffer.Add(store.EventRecord{
		SessionID: p.sessionID,
		Kind:      kind,
		Time:      at,
		Payload:   payload,
	})
}

// Comments returns the capped display list, oldest first.
func (p *Pipeline) Comments() []model.AnnotatedComment {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.AnnotatedComment, len(p.display))
	copy(out, p.display)
	return out
}

// History returns the recent chat lines for AI prompt context.
func (p *Pipeline) History() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.history))
	copy(out, p.history)
	return out
}

// Products returns the current demand-sorted product stats.
func (p *Pipeline) Products() []model.ProductStat {
	return p.agg.Products()
}
