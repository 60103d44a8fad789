package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pdf-processing-pipeline/internal/domain"
	"pdf-processing-pipeline/internal/domain/model"
	"pdf-processing-pipeline/internal/domain/ports/repository"
	"pdf-processing-pipeline/internal/infra/metrics"
)

// DocumentUseCase is the enqueue-side contract consumed by the intake
// layer plus the read the polling layer needs. Nothing else is exposed.
type DocumentUseCase interface {
	// Submit validates the parser type, writes the queued record, then
	// the queue entry. The returned id is immediately pollable.
	Submit(ctx context.Context, content []byte, filename string, parser model.ParserType) (string, error)
	Get(ctx context.Context, id string) (*model.Document, error)
}

var _ DocumentUseCase = (*documentUseCase)(nil)

type documentUseCase struct {
	docs  repository.DocumentRepository
	queue repository.WorkQueue
	log   *zerolog.Logger
}

func NewDocumentUseCase(docs repository.DocumentRepository, queue repository.WorkQueue, logger *zerolog.Logger) DocumentUseCase {
	ucLog := logger.With().Str("component", "DocumentUseCase").Logger()
	return &documentUseCase{docs: docs, queue: queue, log: &ucLog}
}

func (uc *documentUseCase) Submit(ctx context.Context, content []byte, filename string, parser model.ParserType) (string, error) {
	// Validation happens before any write: a bad parser type never
	// reaches the store or the queue.
	if _, err := model.ParseParserType(string(parser)); err != nil {
		return "", err
	}
	if len(content) == 0 {
		return "", fmt.Errorf("%w: empty file", domain.ErrInvalidArgument)
	}

	id := uuid.NewString()
	doc, err := model.NewDocument(id, filename, parser)
	if err != nil {
		return "", err
	}

	// Record before entry: the client can always poll the returned id
	// without racing worker visibility.
	if err := uc.docs.Create(ctx, doc); err != nil {
		return "", fmt.Errorf("create document record: %w", err)
	}
	if err := uc.docs.PutContent(ctx, id, content); err != nil {
		return "", fmt.Errorf("store document content: %w", err)
	}

	entry := model.QueueEntry{
		DocumentID: id,
		ParserType: parser,
		EnqueuedAt: time.Now().UTC(),
	}
	if _, err := uc.queue.Enqueue(ctx, entry); err != nil {
		// The record stays queued; the failure is surfaced through the
		// log, the metric and the health endpoint, not by unwinding a
		// record the client may already be polling.
		metrics.IncEnqueueFailure()
		uc.log.Error().Err(err).Str("document_id", id).Msg("queue write failed after record write")
		return id, nil
	}

	metrics.IncSubmitted(string(parser))
	uc.log.Info().Str("document_id", id).Str("parser", string(parser)).Str("filename", filename).Msg("document submitted")
	return id, nil
}

func (uc *documentUseCase) Get(ctx context.Context, id string) (*model.Document, error) {
	return uc.docs.FindByID(ctx, id)
}
