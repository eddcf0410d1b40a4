package prompt

import (
	"fmt"
	"strings"

	"edushelf-be/internal/constant"
	"edushelf-be/internal/entity"
	"edushelf-be/internal/pkg/logger"
	"edushelf-be/pkg/llm"
	"edushelf-be/pkg/tokenbudget"
)

const (
	module = "CONTEXT_ASSEMBLER"

	DefaultContextTokens = 4096
)

type Assembler struct {
	counter          tokenbudget.Counter
	maxContextTokens int
	logger           logger.ILogger
}

func NewAssembler(counter tokenbudget.Counter, maxContextTokens int, log logger.ILogger) *Assembler {
	if maxContextTokens <= 0 {
		maxContextTokens = DefaultContextTokens
	}
	return &Assembler{counter: counter, maxContextTokens: maxContextTokens, logger: log}
}

// BuildModelInput returns the system instruction, the whole session replayed in
// order, and a final user turn carrying the document context and the question.
// Only the document context is cut to fit the token budget.
func (a *Assembler) BuildModelInput(history []*entity.ChatMessage, chunks []*entity.Chunk, userInput string, imageDescription *string) []llm.Message {
	messages := make([]llm.Message, 0, 2*len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: constant.SystemInstruction})

	for _, m := range history {
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: UserTurn(m.UserText, m.ImageDescription)})
		if m.ResponseText != nil {
			messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: *m.ResponseText})
		}
	}

	docs := a.contextBlock(chunks)
	final := constant.ContextHeader + "\n" + docs + "\n\n" + UserTurn(userInput, imageDescription)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: final})
	return messages
}

func (a *Assembler) contextBlock(chunks []*entity.Chunk) string {
	var sb strings.Builder
	for i, c := range chunks {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "[%s] %s", c.DocumentTitle, c.Content)
	}
	raw := sb.String()

	truncated := a.counter.Truncate(raw, a.maxContextTokens)
	if len(truncated) < len(raw) {
		a.logger.Info(module, "Document context truncated to token budget", map[string]interface{}{
			"chunks":     len(chunks),
			"max_tokens": a.maxContextTokens,
			"kept_bytes": len(truncated),
			"raw_bytes":  len(raw),
		})
	}
	return truncated
}

// UserTurn renders a user message the way it is replayed to the model.
func UserTurn(text string, imageDescription *string) string {
	if imageDescription == nil || strings.TrimSpace(*imageDescription) == "" {
		return text
	}
	return fmt.Sprintf(constant.ImageDescriptionPrefix, *imageDescription) + "\n" + text
}
