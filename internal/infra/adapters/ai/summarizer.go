package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pdf-processing-pipeline/internal/domain"
	"pdf-processing-pipeline/internal/domain/ports/adapter"
)

// errContentRejected is returned by text models when the upstream
// provider refuses the content. It marks the terminal, never-retried
// failure path.
var errContentRejected = errors.New("content rejected by model provider")

// TextModel is the minimal remote-model surface the summarizer needs.
// Both the Gemini and the OpenAI implementations satisfy it.
type TextModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Provider() string
}

// Splitter is the chunking policy applied to oversized input.
// Satisfied by Chunker.
type Splitter interface {
	Split(text string) []string
}

const summaryPrompt = "Please provide a concise summary of the following text:"

const combinePrompt = "The following are partial summaries of consecutive sections of one document. " +
	"Combine them into a single concise summary of the whole document:"

var _ adapter.Summarizer = (*ModelSummarizer)(nil)

// ModelSummarizer produces the one-paragraph summary. Input always
// goes through the remote model, regardless of which extraction
// strategy produced the pages. Oversized input is chunked, each chunk
// summarized, and the chunk summaries summarized in a second pass.
type ModelSummarizer struct {
	model    TextModel
	splitter Splitter
	timeout  time.Duration
}

func NewModelSummarizer(model TextModel, splitter Splitter, timeout time.Duration) *ModelSummarizer {
	return &ModelSummarizer{model: model, splitter: splitter, timeout: timeout}
}

func (s *ModelSummarizer) Provider() string { return s.model.Provider() }

func (s *ModelSummarizer) Summarize(ctx context.Context, pages []string) (string, error) {
	if len(pages) == 0 {
		return "", fmt.Errorf("%w: no pages to summarize", domain.ErrInvalidArgument)
	}

	full := JoinPages(pages)
	chunks := s.splitter.Split(full)
	if len(chunks) == 1 {
		return s.generate(ctx, summaryPrompt+"\n\n"+chunks[0])
	}

	partials := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		partial, err := s.generate(ctx, summaryPrompt+"\n\n"+chunk)
		if err != nil {
			return "", err
		}
		partials = append(partials, partial)
	}
	return s.generate(ctx, combinePrompt+"\n\n"+strings.Join(partials, "\n\n"))
}

func (s *ModelSummarizer) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.model.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, errContentRejected) {
			return "", domain.NewSummarizeError(domain.ReasonContentRejected, err)
		}
		return "", domain.NewSummarizeError(domain.ReasonTransient, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", domain.NewSummarizeError(domain.ReasonContentRejected,
			errors.New("model declined to produce a summary"))
	}
	return out, nil
}

// JoinPages concatenates page texts with explicit page boundaries so
// the prompt preserves document structure.
func JoinPages(pages []string) string {
	var b strings.Builder
	for i, page := range pages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "--- Page %d ---\n%s", i+1, page)
	}
	return b.String()
}
