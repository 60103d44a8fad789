package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pdf-processing-pipeline/internal/domain"
	"pdf-processing-pipeline/internal/domain/model"
	"pdf-processing-pipeline/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo stores Document records as JSON under document:<id>.
// The whole record is written in a single SET, so status, pages and
// summary always change together from a reader's perspective. The
// claim model guarantees at most one writer per record, so a plain
// read-modify-write cycle needs no further locking.
type DocumentRepo struct {
	client *Client
}

func NewDocumentRepo(client *Client) *DocumentRepo {
	return &DocumentRepo{client: client}
}

func (r *DocumentRepo) recordKey(id string) string  { return fmt.Sprintf("document:%s", id) }
func (r *DocumentRepo) contentKey(id string) string { return fmt.Sprintf("document:%s:content", id) }

func (r *DocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	return r.save(ctx, doc)
}

func (r *DocumentRepo) FindByID(ctx context.Context, id string) (*model.Document, error) {
	data, err := r.client.cli.Get(ctx, r.recordKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	var doc model.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	return &doc, nil
}

func (r *DocumentRepo) MarkProcessing(ctx context.Context, id string) error {
	doc, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	doc.Status = model.StatusProcessing
	doc.UpdatedAt = time.Now().UTC()
	return r.save(ctx, doc)
}

func (r *DocumentRepo) Complete(ctx context.Context, id string, pages []string, summary string) error {
	doc, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	doc.Status = model.StatusCompleted
	doc.Pages = pages
	doc.Summary = summary
	doc.Error = ""
	doc.UpdatedAt = time.Now().UTC()
	return r.save(ctx, doc)
}

func (r *DocumentRepo) Fail(ctx context.Context, id string, reason string) error {
	doc, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	doc.Status = model.StatusFailed
	doc.Error = reason
	doc.UpdatedAt = time.Now().UTC()
	return r.save(ctx, doc)
}

func (r *DocumentRepo) PutContent(ctx context.Context, id string, content []byte) error {
	// Content is transient worker input, capped by TTL so abandoned
	// uploads do not accumulate.
	if err := r.client.cli.Set(ctx, r.contentKey(id), content, 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("put content %s: %w", id, err)
	}
	return nil
}

func (r *DocumentRepo) GetContent(ctx context.Context, id string) ([]byte, error) {
	data, err := r.client.cli.Get(ctx, r.contentKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get content %s: %w", id, err)
	}
	return data, nil
}

func (r *DocumentRepo) DeleteContent(ctx context.Context, id string) error {
	return r.client.cli.Del(ctx, r.contentKey(id)).Err()
}

func (r *DocumentRepo) save(ctx context.Context, doc *model.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", doc.ID, err)
	}
	if err := r.client.cli.Set(ctx, r.recordKey(doc.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("set document %s: %w", doc.ID, err)
	}
	return nil
}
