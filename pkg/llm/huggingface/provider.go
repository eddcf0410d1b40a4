package huggingface

import (
	"context"
	"fmt"
	"net/http"

	"edushelf-be/pkg/embedding"
	"edushelf-be/pkg/llm"
)

// HuggingFaceProvider calls the OpenAI-compatible router API.
type HuggingFaceProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []llm.Message `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewHuggingFaceProvider(apiKey, baseURL, model string) *HuggingFaceProvider {
	if baseURL == "" {
		baseURL = "https://router.huggingface.co/v1"
	}
	return &HuggingFaceProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  embedding.NewHTTPClient(),
	}
}

func (p *HuggingFaceProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := &llm.Options{
		Model:     p.model,
		MaxTokens: 1024,
	}
	for _, o := range options {
		o(opts)
	}

	headers := map[string]string{}
	if p.apiKey != "" {
		headers["Authorization"] = fmt.Sprintf("Bearer %s", p.apiKey)
	}

	var resp chatResponse
	err := embedding.PostJSON(ctx, p.client, fmt.Sprintf("%s/chat/completions", p.baseURL), headers,
		chatRequest{Model: opts.Model, Messages: history, MaxTokens: opts.MaxTokens}, &resp)
	if err != nil {
		return "", fmt.Errorf("huggingface chat: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("huggingface api returned error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty choices from huggingface api")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *HuggingFaceProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}
