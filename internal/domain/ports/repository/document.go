package repository

import (
	"context"

	"pdf-processing-pipeline/internal/domain/model"
)

// DocumentRepository persists Document records and, transiently, the
// uploaded bytes a worker needs to run extraction. Implementations must
// write Complete as a single atomic operation so a reader never
// observes pages without summary (or either without the completed
// status).
type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// MarkProcessing is idempotent: redelivered entries re-enter
	// processing by overwriting, never by appending.
	MarkProcessing(ctx context.Context, id string) error
	Complete(ctx context.Context, id string, pages []string, summary string) error
	Fail(ctx context.Context, id string, reason string) error

	// Uploaded bytes; deleted once the job reaches a terminal state.
	PutContent(ctx context.Context, id string, content []byte) error
	GetContent(ctx context.Context, id string) ([]byte, error)
	DeleteContent(ctx context.Context, id string) error
}
