// Package llmtest provides scripted chat providers for tests.
package llmtest

import (
	"context"
	"sync"

	"edushelf-be/pkg/llm"
)

// Provider answers with Respond and records every conversation it receives.
type Provider struct {
	Respond func(ctx context.Context, history []llm.Message) (string, error)

	mu    sync.Mutex
	calls [][]llm.Message
}

var _ llm.LLMProvider = &Provider{}

// Static always replies with text.
func Static(text string) *Provider {
	return &Provider{Respond: func(context.Context, []llm.Message) (string, error) { return text, nil }}
}

// Failing always returns err.
func Failing(err error) *Provider {
	return &Provider{Respond: func(context.Context, []llm.Message) (string, error) { return "", err }}
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	p.mu.Lock()
	p.calls = append(p.calls, append([]llm.Message(nil), history...))
	p.mu.Unlock()
	return p.Respond(ctx, history)
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

func (p *Provider) Calls() [][]llm.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]llm.Message(nil), p.calls...)
}
