package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "  \n\t ", nil},
		{"single without terminator", "no terminator here", []string{"no terminator here"}},
		{"three terminators", "One. Two!  Three?", []string{"One.", "Two!", "Three?"}},
		{"decimal is not a boundary", "Pi is 3.14 roughly. Next.", []string{"Pi is 3.14 roughly.", "Next."}},
		{"newlines collapse", "Line\none.\n\nLine two.", []string{"Line one.", "Line two."}},
		{"ellipsis", "Wait... Ok.", []string{"Wait...", "Ok."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.in))
		})
	}
}

func TestChunkEmptyInput(t *testing.T) {
	c := NewSentenceChunker(100)
	assert.Empty(t, c.Chunk(""))
	assert.Empty(t, c.Chunk("   \n "))
}

func TestChunkRespectsBudget(t *testing.T) {
	c := NewSentenceChunker(40)
	text := "The cell is the unit of life. Mitochondria produce energy. " +
		"Ribosomes build proteins. The nucleus stores DNA."

	chunks := c.Chunk(text)

	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(ch), 40, ch)
		assert.NotEqual(t, "", strings.TrimSpace(ch))
	}
	assert.Equal(t, strings.Join(strings.Fields(text), " "), strings.Join(chunks, " "))
}

func TestChunkKeepsOversizedSentenceWhole(t *testing.T) {
	c := NewSentenceChunker(10)
	long := "This sentence is definitely longer than ten characters."

	chunks := c.Chunk("Short. " + long + " Tail.")

	assert.Equal(t, []string{"Short.", long, "Tail."}, chunks)
}

func TestChunkCountsRunesNotBytes(t *testing.T) {
	c := NewSentenceChunker(12)
	// Each sentence is 5 runes but 10 bytes.
	chunks := c.Chunk("ääää. öööö.")
	assert.Equal(t, []string{"ääää. öööö."}, chunks)
}

func TestChunkReassemblesToNormalizedText(t *testing.T) {
	texts := []string{
		"A.",
		"Alpha beta.   Gamma delta!\nEpsilon?",
		strings.Repeat("Photosynthesis converts light to chemical energy. ", 80),
		"Trailing text without a full stop",
	}

	for _, size := range []int{1, 16, 64, 1024} {
		c := NewSentenceChunker(size)
		for _, text := range texts {
			chunks := c.Chunk(text)
			assert.Equal(t, strings.Join(strings.Fields(text), " "), strings.Join(chunks, " "))
		}
	}
}

func TestNewSentenceChunkerDefaultsSize(t *testing.T) {
	assert.Equal(t, DefaultChunkSize, NewSentenceChunker(0).MaxChars())
}
