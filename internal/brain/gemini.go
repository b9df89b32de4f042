package brain

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/danvo/liveinsight/internal/otel"
)

// defaultGeminiEndpoint is the generateContent API root.
const defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider implements Provider for Google's Gemini models over the
// v1beta generateContent API. Image and audio attachments are sent as
// inline_data parts, which is what makes this the default provider for
// vision/voice-augmented comments.
type GeminiProvider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	log      *otel.Logger
}

// NewGeminiProvider creates a Gemini provider.
func NewGeminiProvider(apiKey, model string, log *otel.Logger) *GeminiProvider {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiProvider{
		apiKey:   apiKey,
		model:    model,
		endpoint: defaultGeminiEndpoint,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		log: log,
	}
}

func (g *GeminiProvider) Name() string {
	return "gemini"
}

func (g *GeminiProvider) Available() bool {
	return strings.TrimSpace(g.apiKey) != ""
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"` // base64, no data-URL prefix
}

// Generate sends a multimodal request. The prompt and chat history form
// the text part; image and audio ride along as inline data.
func (g *GeminiProvider) Generate(ctx context.Context, req Request) (Response, error) {
	if !g.Available() {
		return Response{}, fmt.Errorf("brain: gemini provider not configured")
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 256
	}

	parts := []geminiPart{{Text: req.Prompt}}
	if len(req.Image) > 0 {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: "image/jpeg",
			Data:     base64.StdEncoding.EncodeToString(req.Image),
		}})
	}
	if len(req.Audio) > 0 {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: "audio/webm",
			Data:     base64.StdEncoding.EncodeToString(req.Audio),
		}})
	}

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": parts},
		},
		"generationConfig": map[string]any{
			"maxOutputTokens": maxTokens,
		},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("brain: marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.endpoint, g.model, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return Response{}, fmt.Errorf("brain: create gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("brain: gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("brain: read gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if g.log != nil {
			g.log.Emit(otel.Event{
				Level: otel.LevelError, Kind: otel.KindAIError, Comp: "brain",
				Msg: fmt.Sprintf("gemini status %d", resp.StatusCode),
			})
		}
		return Response{}, fmt.Errorf("brain: gemini API error (status %d)", resp.StatusCode)
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		ModelVersion string `json:"modelVersion"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return Response{}, fmt.Errorf("brain: parse gemini response: %w", err)
	}

	var content string
	if len(result.Candidates) > 0 && len(result.Candidates[0].Content.Parts) > 0 {
		content = strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text)
	}

	model := result.ModelVersion
	if model == "" {
		model = g.model
	}
	return Response{Content: content, Model: model, Latency: time.Since(start)}, nil
}
