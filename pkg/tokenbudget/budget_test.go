package tokenbudget

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBudget(t *testing.T) *Budget {
	t.Helper()
	b, err := New(DefaultEncoding)
	require.NoError(t, err)
	return b
}

func TestCountTokens(t *testing.T) {
	b := newBudget(t)

	assert.Equal(t, 0, b.CountTokens(""))
	assert.Greater(t, b.CountTokens("hello world"), 0)
	assert.Greater(t, b.CountTokens(strings.Repeat("word ", 100)), b.CountTokens("word word"))
}

func TestTruncateUnchangedWhenWithinBudget(t *testing.T) {
	b := newBudget(t)
	text := "A short sentence about cells."

	assert.Equal(t, text, b.Truncate(text, 1000))
	assert.Equal(t, "", b.Truncate("", 0))
}

func TestTruncateInvariants(t *testing.T) {
	b := newBudget(t)
	texts := []string{
		strings.Repeat("Newton's laws describe motion. ", 200),
		strings.Repeat("日本語のテキストを切り詰める。", 100),
		strings.Repeat("emoji 🚀🔥 mixed ünïcödé ", 80),
	}

	for _, text := range texts {
		for _, n := range []int{0, 1, 3, 17, 128} {
			out := b.Truncate(text, n)

			assert.LessOrEqual(t, b.CountTokens(out), n)
			assert.True(t, utf8.ValidString(out))
			assert.True(t, strings.HasPrefix(text, out), "truncation must be a prefix")
		}
	}
}

func TestTruncateNegativeBudget(t *testing.T) {
	b := newBudget(t)
	assert.Equal(t, "", b.Truncate("something", -5))
}
