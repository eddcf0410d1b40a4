package prompt

import (
	"strings"
	"testing"
	"time"

	"edushelf-be/internal/constant"
	"edushelf-be/internal/entity"
	"edushelf-be/internal/pkg/logger"
	"edushelf-be/pkg/llm"
	"edushelf-be/pkg/tokenbudget"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func newAssembler(t *testing.T, budget int) (*Assembler, *tokenbudget.Budget) {
	t.Helper()
	b, err := tokenbudget.New(tokenbudget.DefaultEncoding)
	require.NoError(t, err)
	return NewAssembler(b, budget, logger.NewNopLogger()), b
}

func TestBuildModelInputOrder(t *testing.T) {
	a, _ := newAssembler(t, 4096)
	now := time.Now()
	history := []*entity.ChatMessage{
		{UserText: "What is force?", ResponseText: ptr("Mass times acceleration."), CreatedAt: now},
		{UserText: "Explain this diagram", ResponseText: ptr("It shows a lever."), ImageDescription: ptr("a lever"), CreatedAt: now.Add(time.Second)},
	}
	chunks := []*entity.Chunk{
		{DocumentTitle: "physics.pdf", Content: "Force equals mass times acceleration."},
		{DocumentTitle: "physics.pdf", Content: "Levers multiply force."},
	}

	got := a.BuildModelInput(history, chunks, "What is a lever?", nil)

	require.Len(t, got, 6)
	assert.Equal(t, llm.Message{Role: llm.RoleSystem, Content: constant.SystemInstruction}, got[0])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "What is force?"}, got[1])
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: "Mass times acceleration."}, got[2])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "[Image Description: a lever]\nExplain this diagram"}, got[3])
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: "It shows a lever."}, got[4])

	final := got[5]
	assert.Equal(t, llm.RoleUser, final.Role)
	assert.Equal(t,
		"[Context from Documents]\n[physics.pdf] Force equals mass times acceleration.\n[physics.pdf] Levers multiply force.\n\nWhat is a lever?",
		final.Content)
}

func TestBuildModelInputTruncatesOnlyContext(t *testing.T) {
	const budget = 50
	a, b := newAssembler(t, budget)

	var history []*entity.ChatMessage
	longAnswer := strings.Repeat("a long earlier answer ", 200)
	for i := 0; i < 5; i++ {
		history = append(history, &entity.ChatMessage{UserText: "earlier question", ResponseText: ptr(longAnswer)})
	}
	var chunks []*entity.Chunk
	for i := 0; i < 40; i++ {
		chunks = append(chunks, &entity.Chunk{DocumentTitle: "big.txt", Content: strings.Repeat("context sentence. ", 20)})
	}

	got := a.BuildModelInput(history, chunks, "final question?", nil)

	require.Len(t, got, 1+2*len(history)+1, "prior turns are never dropped")
	for i := range history {
		assert.Equal(t, longAnswer, got[2+2*i].Content)
	}

	final := got[len(got)-1].Content
	require.True(t, strings.HasPrefix(final, constant.ContextHeader+"\n"))
	require.True(t, strings.HasSuffix(final, "\n\nfinal question?"))
	contextPart := strings.TrimSuffix(strings.TrimPrefix(final, constant.ContextHeader+"\n"), "\n\nfinal question?")
	assert.LessOrEqual(t, b.CountTokens(contextPart), budget)
	assert.True(t, strings.HasPrefix(contextPart, "[big.txt] context sentence."))
}

func TestBuildModelInputNoChunks(t *testing.T) {
	a, _ := newAssembler(t, 4096)

	got := a.BuildModelInput(nil, nil, "hello", ptr("a cat"))

	require.Len(t, got, 2)
	assert.Equal(t, "[Context from Documents]\n\n\n[Image Description: a cat]\nhello", got[1].Content)
}

func TestUserTurn(t *testing.T) {
	tests := []struct {
		name  string
		image *string
		want  string
	}{
		{"no image", nil, "q"},
		{"blank image", ptr("  "), "q"},
		{"with image", ptr("a graph"), "[Image Description: a graph]\nq"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserTurn("q", tt.image))
		})
	}
}
