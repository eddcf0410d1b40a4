package tokenbudget

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

const DefaultEncoding = "cl100k_base"

// Counter measures and trims text by model tokens.
type Counter interface {
	CountTokens(text string) int
	Truncate(text string, maxTokens int) string
}

type Budget struct {
	enc *tiktoken.Tiktoken
}

var loaderOnce sync.Once

// New uses the embedded BPE ranks so no network access is needed at startup.
func New(encoding string) (*Budget, error) {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load token encoding %s: %w", encoding, err)
	}
	return &Budget{enc: enc}, nil
}

func (b *Budget) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(b.enc.Encode(text, nil, nil))
}

// Truncate returns text unchanged when it fits. Otherwise it returns the longest
// token prefix that decodes to valid UTF-8 and re-counts within maxTokens.
func (b *Budget) Truncate(text string, maxTokens int) string {
	if maxTokens < 0 {
		maxTokens = 0
	}
	tokens := b.enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}

	for cut := maxTokens; cut > 0; cut-- {
		candidate := b.enc.Decode(tokens[:cut])
		if !utf8.ValidString(candidate) {
			continue
		}
		if b.CountTokens(candidate) <= maxTokens {
			return candidate
		}
	}
	return ""
}
