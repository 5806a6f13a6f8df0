package parser

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/timmy/docmill/internal/domain"
)

// TokenCounter counts tokens in a text. The chunker and the jobs take a
// counter as a dependency so tests and offline runs do not need the BPE
// vocabulary download.
type TokenCounter func(text string) int

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// CountTokens counts tokens using the cl100k_base encoding. When the encoding
// cannot be loaded it falls back to a whitespace approximation rather than
// failing the job.
func CountTokens(text string) int {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = enc
		}
	})
	if encoding != nil {
		return len(encoding.Encode(text, nil, nil))
	}
	return approxTokens(text)
}

// approxTokens estimates token count at roughly 4/3 tokens per word.
func approxTokens(text string) int {
	words := len(strings.Fields(text))
	return words + words/3
}

// CountTokensDocs sums token counts across a document set using counter.
func CountTokensDocs(docs []domain.Document, counter TokenCounter) int {
	if counter == nil {
		counter = CountTokens
	}
	total := 0
	for _, doc := range docs {
		total += counter(doc.Text)
	}
	return total
}
