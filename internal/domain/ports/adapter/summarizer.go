package adapter

import "context"

// Summarizer produces a short summary from extracted pages. It joins
// pages with explicit page boundaries before sending, and must apply a
// deterministic chunk-then-combine policy when the input exceeds the
// model's limit. Failures are *domain.SummarizeError.
type Summarizer interface {
	Summarize(ctx context.Context, pages []string) (string, error)
}
