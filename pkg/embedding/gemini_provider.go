package embedding

import (
	"context"
	"fmt"
	"net/http"
)

const geminiModel = "text-embedding-004"

type GeminiProvider struct {
	ApiKey string
	client *http.Client
}

func NewGeminiProvider(apiKey string) EmbeddingProvider {
	return &GeminiProvider{ApiKey: apiKey, client: NewHTTPClient()}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Model    string        `json:"model"`
	Content  geminiContent `json:"content"`
	TaskType string        `json:"task_type,omitempty"`
}

func (p *GeminiProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	endpoint := fmt.Sprintf("https://generativelanguage.googleapis.com/v1/models/%s:embedContent", geminiModel)

	var out EmbeddingResponse
	err := PostJSON(ctx, p.client, endpoint, map[string]string{"x-goog-api-key": p.ApiKey},
		geminiRequest{
			Model:    geminiModel,
			Content:  geminiContent{Parts: []geminiPart{{Text: text}}},
			TaskType: taskType,
		}, &out)
	if err != nil {
		return nil, fmt.Errorf("gemini embedding: %w", err)
	}
	return &out, nil
}
