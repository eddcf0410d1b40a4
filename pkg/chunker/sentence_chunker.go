package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const DefaultChunkSize = 1024

// SentenceChunker packs whole sentences into chunks of at most maxChars runes.
// A sentence longer than maxChars becomes a chunk of its own and is never split.
type SentenceChunker struct {
	maxChars int
}

func NewSentenceChunker(maxChars int) *SentenceChunker {
	if maxChars <= 0 {
		maxChars = DefaultChunkSize
	}
	return &SentenceChunker{maxChars: maxChars}
}

func (c *SentenceChunker) MaxChars() int {
	return c.maxChars
}

// Chunk returns chunks in reading order. Joining them with a single space
// yields the input with its whitespace collapsed.
func (c *SentenceChunker) Chunk(text string) []string {
	var (
		chunks []string
		buf    strings.Builder
		bufLen int
		flush  = func() {
			if bufLen > 0 {
				chunks = append(chunks, buf.String())
				buf.Reset()
				bufLen = 0
			}
		}
	)

	for _, sentence := range SplitSentences(text) {
		n := utf8.RuneCountInString(sentence)
		if bufLen > 0 && bufLen+1+n > c.maxChars {
			flush()
		}
		if bufLen > 0 {
			buf.WriteByte(' ')
			bufLen++
		}
		buf.WriteString(sentence)
		bufLen += n
	}
	flush()

	return chunks
}

// SplitSentences cuts after '.', '!' or '?' when followed by whitespace or the
// end of the text. Whitespace inside each sentence is collapsed to single spaces.
func SplitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0

	emit := func(end int) {
		s := strings.Join(strings.Fields(string(runes[start:end])), " ")
		if s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}

	for i, r := range runes {
		if !isTerminator(r) {
			continue
		}
		if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
			emit(i + 1)
		}
	}
	if start < len(runes) {
		emit(len(runes))
	}

	return sentences
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
