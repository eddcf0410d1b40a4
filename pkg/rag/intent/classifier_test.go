package intent

import (
	"context"
	"errors"
	"testing"
	"unicode/utf8"

	"edushelf-be/internal/apperror"
	"edushelf-be/internal/pkg/logger"
	"edushelf-be/pkg/llm"
	"edushelf-be/pkg/llm/llmtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Intent
		wantErr bool
	}{
		{
			name: "summarize with document",
			raw:  `{"type":"summarize","documentName":"physics.pdf"}`,
			want: Intent{Type: TypeSummarize, DocumentName: strPtr("physics.pdf")},
		},
		{
			name: "fenced and uppercase keys",
			raw:  "```json\n{\"Type\":\"SUMMARIZE\",\"DocumentName\":\"Algebra Basics\"}\n```",
			want: Intent{Type: TypeSummarize, DocumentName: strPtr("Algebra Basics")},
		},
		{
			name: "question without document",
			raw:  `{"type":"question","documentName":null}`,
			want: Intent{Type: TypeQuestion},
		},
		{
			name: "null as string",
			raw:  `{"type":"question","documentName":"null"}`,
			want: Intent{Type: TypeQuestion},
		},
		{
			name: "unknown type",
			raw:  `{"type":"translate"}`,
			want: Intent{Type: TypeQuestion},
		},
		{
			name: "prose around object",
			raw:  `Here you go: {"type":"question","documentName":"notes.txt"} done`,
			want: Intent{Type: TypeQuestion, DocumentName: strPtr("notes.txt")},
		},
		{name: "not json", raw: "I think they want a summary", want: Default(), wantErr: true},
		{name: "broken json", raw: `{"type": }`, want: Default(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperror.KindParse, apperror.KindOf(err))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNopLogger()

	assert.Equal(t, Default(), NewClassifier(llmtest.Failing(errors.New("timeout")), log).Classify(ctx, "hi"))
	assert.Equal(t, Default(), NewClassifier(llmtest.Static("garbage"), log).Classify(ctx, "hi"))
}

func TestClassifySendsSystemPromptAndInput(t *testing.T) {
	provider := llmtest.Static(`{"type":"summarize","documentName":"physics.pdf"}`)
	c := NewClassifier(provider, logger.NewNopLogger())

	got := c.Classify(context.Background(), "Summarize physics.pdf")

	assert.Equal(t, TypeSummarize, got.Type)
	require.NotNil(t, got.DocumentName)
	assert.Equal(t, "physics.pdf", *got.DocumentName)

	calls := provider.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0], 2)
	assert.Equal(t, llm.RoleSystem, calls[0][0].Role)
	assert.Equal(t, "Summarize physics.pdf", calls[0][1].Content)
}

func TestTruncateKeepsWholeRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "hello", 10, "hello"},
		{"ascii", "hello world", 5, "hello..."},
		{"multibyte", "héllo wörld", 7, "héllo w..."},
		{"cjk", "物理学の要約", 2, "物理..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
