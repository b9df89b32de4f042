package respond

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/danvo/liveinsight/internal/brain"
	"github.com/danvo/liveinsight/internal/config"
)

type recordingPoster struct {
	mu    sync.Mutex
	posts []string
}

func (p *recordingPoster) Post(ctx context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.posts = append(p.posts, text)
	return nil
}

func (p *recordingPoster) all() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.posts...)
}

type stubProvider struct {
	content string
	delay   time.Duration
}

func (s *stubProvider) Name() string    { return "stub" }
func (s *stubProvider) Available() bool { return true }
func (s *stubProvider) Generate(ctx context.Context, req brain.Request) (brain.Response, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return brain.Response{}, ctx.Err()
		}
	}
	return brain.Response{Content: s.content, Model: "stub"}, nil
}

type stubCapture struct {
	image []byte
	audio []byte
}

func (c *stubCapture) Image(ctx context.Context) ([]byte, error) { return c.image, nil }
func (c *stubCapture) Audio(ctx context.Context, d time.Duration) ([]byte, error) {
	return c.audio, nil
}

func botConfig(cooldown time.Duration) config.BotConfig {
	return config.BotConfig{
		Enabled:   true,
		Cooldown:  config.Duration(cooldown),
		Templates: []string{"template reply"},
		Persona:   "Minh",
		Topics:    "fashion",
		Style:     "Friendly",
	}
}

func TestBotPostsAIReply(t *testing.T) {
	mgr := brain.NewManager()
	mgr.Add(&stubProvider{content: "hello chat!"})
	poster := &recordingPoster{}

	cfg := botConfig(time.Millisecond)
	cfg.UseAI = true
	bot := NewBot(cfg, mgr, poster, nil, func() []string { return []string{"an: hi"} }, nil)

	bot.Trigger(context.Background(), nil)

	posts := poster.all()
	if len(posts) != 1 || posts[0] != "hello chat!" {
		t.Fatalf("posts = %v", posts)
	}
	st := bot.Stats()
	if st.TotalSent != 1 || st.SentText != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestBotFallsBackToTemplates(t *testing.T) {
	// No provider configured; the bot should use a canned response.
	poster := &recordingPoster{}
	cfg := botConfig(time.Millisecond)
	cfg.UseAI = true
	bot := NewBot(cfg, brain.NewManager(), poster, nil, nil, nil)

	bot.Trigger(context.Background(), []string{"Dạ giá sản phẩm em gửi link ạ!"})

	posts := poster.all()
	if len(posts) != 1 || posts[0] != "Dạ giá sản phẩm em gửi link ạ!" {
		t.Fatalf("posts = %v", posts)
	}
}

func TestBotGlobalTemplateWhenNoCandidates(t *testing.T) {
	poster := &recordingPoster{}
	bot := NewBot(botConfig(time.Millisecond), nil, poster, nil, nil, nil)

	bot.Trigger(context.Background(), nil)

	posts := poster.all()
	if len(posts) != 1 || posts[0] != "template reply" {
		t.Fatalf("posts = %v", posts)
	}
}

func TestBotCooldownDropsBurst(t *testing.T) {
	poster := &recordingPoster{}
	bot := NewBot(botConfig(time.Hour), nil, poster, nil, nil, nil)

	bot.Trigger(context.Background(), nil)
	bot.Trigger(context.Background(), nil)
	bot.Trigger(context.Background(), nil)

	if got := len(poster.all()); got != 1 {
		t.Errorf("posts = %d, want 1 inside cooldown", got)
	}
}

func TestBotDisabledNeverPosts(t *testing.T) {
	poster := &recordingPoster{}
	cfg := botConfig(time.Millisecond)
	cfg.Enabled = false
	bot := NewBot(cfg, nil, poster, nil, nil, nil)

	bot.Trigger(context.Background(), nil)

	if len(poster.all()) != 0 {
		t.Error("disabled bot posted")
	}
}

func TestBotSingleInFlight(t *testing.T) {
	mgr := brain.NewManager()
	mgr.Add(&stubProvider{content: "slow reply", delay: 200 * time.Millisecond})
	poster := &recordingPoster{}

	cfg := botConfig(time.Nanosecond)
	cfg.UseAI = true
	bot := NewBot(cfg, mgr, poster, nil, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bot.Trigger(context.Background(), nil)
		}()
	}
	wg.Wait()

	// Cooldown is effectively off, so only the busy flag limits posts.
	if got := len(poster.all()); got != 1 {
		t.Errorf("posts = %d, want 1 with overlapping triggers", got)
	}
}

func TestBotVisionStats(t *testing.T) {
	mgr := brain.NewManager()
	mgr.Add(&stubProvider{content: "nice outfit!"})
	poster := &recordingPoster{}

	cfg := botConfig(time.Millisecond)
	cfg.UseAI = true
	cfg.UseVision = true
	bot := NewBot(cfg, mgr, poster, &stubCapture{image: []byte{0xff}}, nil, nil)

	bot.Trigger(context.Background(), nil)

	st := bot.Stats()
	if st.SentVision != 1 || st.SentText != 0 {
		t.Errorf("stats = %+v, want vision post", st)
	}
}

func TestSummarizerKeepsBoundedHistory(t *testing.T) {
	mgr := brain.NewManager()
	mgr.Add(&stubProvider{content: "TOPIC: shoes"})

	cfg := botConfig(time.Millisecond)
	s := NewSummarizer(cfg, mgr, &stubCapture{audio: []byte{0x1a}}, nil)

	for i := 0; i < 8; i++ {
		s.Summarize(context.Background())
	}

	hist := s.History()
	if len(hist) != summaryHistorySize {
		t.Fatalf("history = %d, want %d", len(hist), summaryHistorySize)
	}
	if hist[len(hist)-1].Text != "TOPIC: shoes" {
		t.Errorf("summary = %q", hist[len(hist)-1].Text)
	}
}

func TestSummarizerIdleWithoutCapture(t *testing.T) {
	mgr := brain.NewManager()
	mgr.Add(&stubProvider{content: "TOPIC: shoes"})
	s := NewSummarizer(botConfig(time.Millisecond), mgr, nil, nil)

	s.Summarize(context.Background())

	if len(s.History()) != 0 {
		t.Error("summarizer produced output without a capture")
	}
}
