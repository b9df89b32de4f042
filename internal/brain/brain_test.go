package brain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeProvider struct {
	name      string
	available bool
	content   string
	err       error
	calls     int
}

func (f *fakeProvider) Name() string    { return f.name }
func (f *fakeProvider) Available() bool { return f.available }
func (f *fakeProvider) Generate(ctx context.Context, req Request) (Response, error) {
	f.calls++
	return Response{Content: f.content, Model: f.name}, f.err
}

func TestManagerPicksPreferred(t *testing.T) {
	m := NewManager()
	a := &fakeProvider{name: "gemini", available: true, content: "from gemini"}
	b := &fakeProvider{name: "openai", available: true, content: "from openai"}
	m.Add(a)
	m.Add(b)
	m.SetPreferred("openai")

	resp, err := m.Generate(context.Background(), Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Content != "from openai" {
		t.Errorf("content = %q, want preferred provider's reply", resp.Content)
	}
	if a.calls != 0 || b.calls != 1 {
		t.Errorf("calls = (%d, %d), want (0, 1)", a.calls, b.calls)
	}
}

func TestManagerFallsBackWhenPreferredUnavailable(t *testing.T) {
	m := NewManager()
	m.Add(&fakeProvider{name: "gemini", available: false})
	b := &fakeProvider{name: "openai", available: true, content: "ok"}
	m.Add(b)
	m.SetPreferred("gemini")

	resp, err := m.Generate(context.Background(), Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("content = %q, want fallback provider's reply", resp.Content)
	}
}

func TestManagerNoProviderFailsSoft(t *testing.T) {
	m := NewManager()
	m.Add(&fakeProvider{name: "gemini", available: false})

	if m.Available() {
		t.Fatal("Available() = true with no ready provider")
	}
	resp, err := m.Generate(context.Background(), Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate should not error with no provider, got %v", err)
	}
	if resp.Content != "" {
		t.Errorf("content = %q, want empty", resp.Content)
	}
}

func TestGeminiGenerate(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "  nice stream!  "}}}},
			},
			"modelVersion": "gemini-2.5-flash-001",
		})
	}))
	defer srv.Close()

	g := NewGeminiProvider("test-key", "gemini-2.5-flash", nil)
	g.endpoint = srv.URL

	resp, err := g.Generate(context.Background(), Request{
		Prompt: "say hi",
		Image:  []byte{0xff, 0xd8},
		Audio:  []byte{0x1a, 0x45},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Content != "nice stream!" {
		t.Errorf("content = %q, want trimmed text", resp.Content)
	}
	if resp.Model != "gemini-2.5-flash-001" {
		t.Errorf("model = %q", resp.Model)
	}
	if want := "/models/gemini-2.5-flash:generateContent"; gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}

	contents := gotBody["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	if len(parts) != 3 {
		t.Fatalf("parts = %d, want text + image + audio", len(parts))
	}
	img := parts[1].(map[string]any)["inline_data"].(map[string]any)
	if img["mime_type"] != "image/jpeg" {
		t.Errorf("image mime = %v", img["mime_type"])
	}
	aud := parts[2].(map[string]any)["inline_data"].(map[string]any)
	if aud["mime_type"] != "audio/webm" {
		t.Errorf("audio mime = %v", aud["mime_type"])
	}
}

func TestGeminiErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGeminiProvider("test-key", "", nil)
	g.endpoint = srv.URL

	_, err := g.Generate(context.Background(), Request{Prompt: "hi"})
	if err == nil {
		t.Fatal("expected error on non-200 status")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry status code, got %v", err)
	}
}

func TestGeminiUnavailableWithoutKey(t *testing.T) {
	g := NewGeminiProvider("", "", nil)
	if g.Available() {
		t.Error("Available() = true without key")
	}
	if _, err := g.Generate(context.Background(), Request{Prompt: "hi"}); err == nil {
		t.Error("Generate should error when unconfigured")
	}
}

func TestOpenAIUnavailableWithoutKey(t *testing.T) {
	o := NewOpenAIProvider("", "")
	if o.Available() {
		t.Error("Available() = true without key")
	}
}

func TestCommentPromptIncludesContext(t *testing.T) {
	p := CommentPrompt("Minh", "fashion", "Friendly", []string{"an: hello", "bo: giá bao nhiêu"})
	for _, want := range []string{"Minh", "fashion", "Friendly", "an: hello | bo: giá bao nhiêu", "max 15 words"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSummaryPromptShape(t *testing.T) {
	p := SummaryPrompt()
	for _, want := range []string{"AUDIO", "TOPIC", "Max 30 words"} {
		if !strings.Contains(p, want) {
			t.Errorf("summary prompt missing %q", want)
		}
	}
}
