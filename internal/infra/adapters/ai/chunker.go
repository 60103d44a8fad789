package ai

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Chunker splits oversized summarizer input on token boundaries. The
// split is a pure function of the input text and the configured limit,
// so a given document always produces the same chunks.
type Chunker struct {
	enc   *tiktoken.Tiktoken
	limit int
}

func NewChunker(tokenLimit int) (*Chunker, error) {
	if tokenLimit <= 0 {
		return nil, fmt.Errorf("token limit must be positive, got %d", tokenLimit)
	}
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load token encoding: %w", err)
	}
	return &Chunker{enc: enc, limit: tokenLimit}, nil
}

func (c *Chunker) CountTokens(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// Split returns the input unchanged when it fits the limit, otherwise
// slices its token sequence into limit-sized windows and decodes each
// window back to text.
func (c *Chunker) Split(text string) []string {
	tokens := c.enc.Encode(text, nil, nil)
	if len(tokens) <= c.limit {
		return []string{text}
	}
	chunks := make([]string, 0, (len(tokens)+c.limit-1)/c.limit)
	for start := 0; start < len(tokens); start += c.limit {
		end := start + c.limit
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, c.enc.Decode(tokens[start:end]))
	}
	return chunks
}
