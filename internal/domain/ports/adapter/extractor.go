package adapter

import "context"

// PageExtractor turns raw PDF bytes into one text string per source
// page. Failures are reported as *domain.ExtractionError with a reason
// the worker can classify as retryable or terminal.
type PageExtractor interface {
	Extract(ctx context.Context, data []byte) ([]string, error)
}
