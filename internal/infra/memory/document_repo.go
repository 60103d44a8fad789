package memory

import (
	"context"
	"sync"
	"time"

	"pdf-processing-pipeline/internal/domain"
	"pdf-processing-pipeline/internal/domain/model"
	"pdf-processing-pipeline/internal/domain/ports/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo keeps Document records in process memory. Records are
// copied on the way in and out so callers never share mutable state,
// mirroring the value semantics of the Redis JSON round-trip.
type DocumentRepo struct {
	mu      sync.RWMutex
	docs    map[string]model.Document
	content map[string][]byte
}

func NewDocumentRepo() *DocumentRepo {
	return &DocumentRepo{
		docs:    make(map[string]model.Document),
		content: make(map[string][]byte),
	}
}

func (r *DocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = *doc
	return nil
}

func (r *DocumentRepo) FindByID(ctx context.Context, id string) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := doc
	cp.Pages = append([]string(nil), doc.Pages...)
	return &cp, nil
}

func (r *DocumentRepo) MarkProcessing(ctx context.Context, id string) error {
	return r.update(id, func(doc *model.Document) {
		doc.Status = model.StatusProcessing
	})
}

func (r *DocumentRepo) Complete(ctx context.Context, id string, pages []string, summary string) error {
	return r.update(id, func(doc *model.Document) {
		doc.Status = model.StatusCompleted
		doc.Pages = append([]string(nil), pages...)
		doc.Summary = summary
		doc.Error = ""
	})
}

func (r *DocumentRepo) Fail(ctx context.Context, id string, reason string) error {
	return r.update(id, func(doc *model.Document) {
		doc.Status = model.StatusFailed
		doc.Error = reason
	})
}

func (r *DocumentRepo) PutContent(ctx context.Context, id string, content []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content[id] = append([]byte(nil), content...)
	return nil
}

func (r *DocumentRepo) GetContent(ctx context.Context, id string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.content[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (r *DocumentRepo) DeleteContent(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.content, id)
	return nil
}

func (r *DocumentRepo) update(id string, fn func(*model.Document)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(&doc)
	doc.UpdatedAt = time.Now().UTC()
	r.docs[id] = doc
	return nil
}
