package intent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"edushelf-be/internal/apperror"
	"edushelf-be/internal/constant"
	"edushelf-be/internal/pkg/logger"
	"edushelf-be/pkg/llm"
)

const module = "INTENT_CLASSIFIER"

type Type string

const (
	TypeQuestion  Type = "question"
	TypeSummarize Type = "summarize"
)

type Intent struct {
	Type         Type    `json:"type"`
	DocumentName *string `json:"documentName"`
}

// Default is used whenever the model's answer cannot be understood.
func Default() Intent {
	return Intent{Type: TypeQuestion}
}

// Classifier asks the chat model what the user wants. It never fails:
// any provider or parse problem degrades to Default().
type Classifier struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewClassifier(llmProvider llm.LLMProvider, log logger.ILogger) *Classifier {
	return &Classifier{llmProvider: llmProvider, logger: log}
}

func (c *Classifier) Classify(ctx context.Context, userInput string) Intent {
	raw, err := c.llmProvider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: constant.IntentClassifierPrompt},
		{Role: llm.RoleUser, Content: userInput},
	}, llm.WithTemperature(0), llm.WithMaxTokens(100))
	if err != nil {
		c.logger.Warn(module, "Intent request failed, using default", map[string]interface{}{"error": err.Error()})
		return Default()
	}

	in, err := Parse(raw)
	if err != nil {
		c.logger.Warn(module, "Intent response unparsable, using default", map[string]interface{}{
			"error": err.Error(),
			"raw":   truncate(raw, 200),
		})
		return Default()
	}

	c.logger.Debug(module, "Intent classified", map[string]interface{}{
		"type":          in.Type,
		"document_name": in.DocumentName,
	})
	return in
}

var errNoObject = errors.New("no JSON object in response")

// Parse reads the classifier's JSON answer. Keys match case-insensitively, an
// unknown type becomes "question", and a blank or "null" name becomes nil.
func Parse(raw string) (Intent, error) {
	body := llm.ExtractJSON(raw)
	if body == "" {
		return Default(), apperror.E(apperror.KindParse, "parse intent", errNoObject)
	}

	var wire struct {
		Type         string  `json:"type"`
		DocumentName *string `json:"documentName"`
	}
	if err := json.Unmarshal([]byte(body), &wire); err != nil {
		return Default(), apperror.E(apperror.KindParse, "parse intent", err)
	}

	in := Intent{Type: TypeQuestion}
	if Type(strings.ToLower(strings.TrimSpace(wire.Type))) == TypeSummarize {
		in.Type = TypeSummarize
	}
	if wire.DocumentName != nil {
		name := strings.TrimSpace(*wire.DocumentName)
		if name != "" && !strings.EqualFold(name, "null") {
			in.DocumentName = &name
		}
	}
	return in, nil
}

// truncate keeps the first n runes of s for log fields.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
