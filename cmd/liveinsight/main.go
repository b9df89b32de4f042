package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/danvo/liveinsight/internal/brain"
	"github.com/danvo/liveinsight/internal/config"
	"github.com/danvo/liveinsight/internal/otel"
	"github.com/danvo/liveinsight/internal/pipeline"
	"github.com/danvo/liveinsight/internal/respond"
	"github.com/danvo/liveinsight/internal/rules"
	"github.com/danvo/liveinsight/internal/sentiment"
	"github.com/danvo/liveinsight/internal/source"
	"github.com/danvo/liveinsight/internal/store"
	"github.com/danvo/liveinsight/internal/ui"
)

// activityLines is how many recent log events the dashboard shows.
const activityLines = 8

func main() {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	var (
		mode       = flag.String("mode", "demo", "source mode: demo, twitch, replay")
		channel    = flag.String("channel", "", "twitch channel to watch")
		username   = flag.String("username", os.Getenv("TWITCH_USERNAME"), "twitch username (empty for read-only)")
		oauth      = flag.String("oauth", os.Getenv("TWITCH_OAUTH"), "twitch oauth token")
		replayPath = flag.String("replay", "", "path to a captured session (JSONL)")
		speed      = flag.Float64("speed", 1.0, "replay speed multiplier (0 = as fast as possible)")
		configDir  = flag.String("config", "", "directory with config.json, intent-rules.json, sentiment-lexicon.json, selectors.json")
		botOn      = flag.Bool("bot", false, "enable the auto-responder")
	)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Data directory: ~/.liveinsight/
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}
	dataDir := filepath.Join(homeDir, ".liveinsight")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Config: files when a directory is given, built-in defaults otherwise.
	var cfg *config.Config
	if *configDir != "" {
		cfg, err = config.Load(*configDir)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	} else {
		cfg = config.Default()
	}
	cfg.AutoPopulateFromEnv()
	if *botOn {
		cfg.Bot.Enabled = true
	}

	// Event log: JSONL on disk plus a ring buffer for debugging.
	logPath := filepath.Join(dataDir, fmt.Sprintf("events-%s.jsonl", time.Now().Format("20060102-150405")))
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("Failed to create event log: %v", err)
	}
	defer logFile.Close()

	logger := otel.NewLogger(logFile)
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	logger.SetRingBuffer(ring)
	defer logger.Close()

	// Source selection
	var (
		src     source.Source
		poster  source.Poster
		closeFn func() error
	)
	switch *mode {
	case "twitch":
		if *channel == "" {
			log.Fatal("twitch mode requires -channel")
		}
		ts := source.NewTwitchSource(*channel, *username, *oauth, logger)
		src = ts
		if *username != "" {
			poster = ts
		}
	case "replay":
		if *replayPath == "" {
			log.Fatal("replay mode requires -replay")
		}
		rs, cf, err := source.OpenReplay(*replayPath, *speed)
		if err != nil {
			log.Fatalf("Failed to open replay: %v", err)
		}
		src = rs
		closeFn = cf
	case "demo":
		ds := source.NewDemoSource(time.Now().UnixNano())
		src = ds
		poster = ds
	default:
		log.Fatalf("Unknown mode %q", *mode)
	}
	if closeFn != nil {
		defer closeFn()
	}

	// Analysis components from config
	classifier, err := rules.NewClassifier(cfg.Rules)
	if err != nil {
		log.Fatalf("Invalid intent rules: %v", err)
	}
	scorer, err := sentiment.NewScorer(cfg.Lexicon)
	if err != nil {
		log.Fatalf("Invalid sentiment lexicon: %v", err)
	}

	// Persistence
	st, err := store.Open(filepath.Join(dataDir, "liveinsight.db"))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	sessionID := "s_" + uuid.NewString()
	if err := st.CreateSession(store.Session{
		ID:        sessionID,
		Source:    src.Name(),
		Channel:   *channel,
		StartedAt: time.Now(),
	}); err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	defer st.EndSession(sessionID, time.Now())

	buffer := store.NewBuffer(st, logger, store.DefaultBatchSize, store.DefaultFlushInterval)
	buffer.Start(ctx)

	// AI providers: Gemini preferred, OpenAI fallback.
	mgr := brain.NewManager()
	mgr.Add(brain.NewGeminiProvider(cfg.AI.GeminiKey, cfg.AI.GeminiModel, logger))
	mgr.Add(brain.NewOpenAIProvider(cfg.AI.OpenAIKey, cfg.AI.OpenAIModel))
	mgr.SetPreferred(cfg.AI.Preferred)

	// Pipeline first, then responder wired to its chat history.
	p := pipeline.New(pipeline.Options{
		Source:     src,
		Classifier: classifier,
		Scorer:     scorer,
		Buffer:     buffer,
		Log:        logger,
		SessionID:  sessionID,
	})

	var bot *respond.Bot
	if cfg.Bot.Enabled && poster != nil {
		bot = respond.NewBot(cfg.Bot, mgr, poster, nil, p.History, logger)
	}
	p.SetBot(bot)
	summarizer := respond.NewSummarizer(cfg.Bot, mgr, nil, logger)

	logger.Info(otel.KindStartup, "main", fmt.Sprintf("mode=%s channel=%s bot=%t", *mode, *channel, bot != nil))

	// Dashboard
	var statsFn func() respond.Stats
	if bot != nil {
		statsFn = bot.Stats
	}
	program := tea.NewProgram(
		ui.New(displayName(*mode, *channel), statsFn, summarizer.History,
			func() []otel.Event { return ring.Last(activityLines) }),
		tea.WithAltScreen(),
	)
	p.Subscribe(ui.Sink(program))

	// Background loops
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return src.Run(gctx) })
	if bot != nil {
		g.Go(func() error { bot.Run(gctx); return nil })
	}
	g.Go(func() error { summarizer.Run(gctx); return nil })
	p.Start(gctx)

	if _, err := program.Run(); err != nil {
		log.Printf("UI error: %v", err)
	}

	// Quit: stop loops, drain the pipeline, flush the buffer.
	cancel()
	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error(otel.KindError, "main", err)
	}
	p.Wait()
	buffer.Wait()

	// Durable state for the next run.
	_ = st.SetKV("last_session", sessionID)
	if bot != nil {
		_ = st.SetKV("bot_stats", bot.Stats())
	}

	logger.Info(otel.KindShutdown, "main", "bye")
}

func displayName(mode, channel string) string {
	if channel != "" {
		return channel
	}
	return mode
}
