// Package brain abstracts the multimodal AI generators used for automated
// comments and live summaries.
//
// Providers fail soft: an unconfigured or erroring provider yields an
// empty response, never a crash. The responder falls back to templates.
package brain

import (
	"context"
	"time"
)

// Request is a generation request. Image and Audio are optional raw
// captures (JPEG / WebM) attached as inline data when the provider
// supports them.
type Request struct {
	Prompt      string
	ChatHistory []string // recent "user: text" lines for context
	Image       []byte
	Audio       []byte
	MaxTokens   int
}

// Response is a provider's reply.
type Response struct {
	Content string
	Model   string
	Latency time.Duration
}

// Provider is the interface for AI providers.
type Provider interface {
	// Name returns the provider name (e.g., "gemini", "openai").
	Name() string

	// Available returns true if the provider is configured and ready.
	Available() bool

	// Generate sends a request and returns the response.
	Generate(ctx context.Context, req Request) (Response, error)
}

// Manager holds multiple providers with a preferred choice and fallback.
type Manager struct {
	providers []Provider
	preferred string
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{}
}

// Add registers a provider.
func (m *Manager) Add(p Provider) {
	m.providers = append(m.providers, p)
}

// SetPreferred sets the preferred provider by name.
func (m *Manager) SetPreferred(name string) {
	m.preferred = name
}

// Pick returns the preferred provider if available, otherwise the first
// available one, otherwise nil.
func (m *Manager) Pick() Provider {
	if m.preferred != "" {
		for _, p := range m.providers {
			if p.Name() == m.preferred && p.Available() {
				return p
			}
		}
	}
	for _, p := range m.providers {
		if p.Available() {
			return p
		}
	}
	return nil
}

// Available reports whether any provider is ready.
func (m *Manager) Available() bool {
	return m.Pick() != nil
}

// Generate routes a request to the picked provider. With no provider
// available it returns an empty response and no error; the caller is
// expected to fall back to templates.
func (m *Manager) Generate(ctx context.Context, req Request) (Response, error) {
	p := m.Pick()
	if p == nil {
		return Response{}, nil
	}
	return p.Generate(ctx, req)
}
