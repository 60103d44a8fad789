package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pdf-processing-pipeline/internal/domain/model"
	"pdf-processing-pipeline/internal/domain/ports/repository"
)

var _ repository.WorkQueue = (*Queue)(nil)

type queueEntry struct {
	id        string
	entry     model.QueueEntry
	delivery  int
	claimed   bool
	claimedAt time.Time
}

// Queue is an in-process work queue with the same claim/acknowledge
// semantics as the Redis stream implementation. It backs dev mode when
// no Redis is configured, and the concurrency tests.
type Queue struct {
	mu      sync.Mutex
	seq     int64
	order   []string
	entries map[string]*queueEntry
	ready   chan struct{}
	now     func() time.Time
}

func NewQueue() *Queue {
	return &Queue{
		entries: make(map[string]*queueEntry),
		ready:   make(chan struct{}, 1),
		now:     time.Now,
	}
}

func (q *Queue) Enqueue(ctx context.Context, entry model.QueueEntry) (string, error) {
	q.mu.Lock()
	q.seq++
	id := fmt.Sprintf("%d-0", q.seq)
	q.entries[id] = &queueEntry{id: id, entry: entry}
	q.order = append(q.order, id)
	q.mu.Unlock()
	q.signal()
	return id, nil
}

func (q *Queue) Claim(ctx context.Context, consumer string, block time.Duration) (*model.ClaimedEntry, error) {
	timeout := time.NewTimer(block)
	defer timeout.Stop()
	for {
		if ce := q.tryClaim(); ce != nil {
			return ce, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeout.C:
			return nil, nil
		case <-q.ready:
		}
	}
}

func (q *Queue) tryClaim() *model.ClaimedEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, id := range q.order {
		e, ok := q.entries[id]
		if !ok || e.claimed {
			continue
		}
		e.claimed = true
		e.claimedAt = q.now()
		e.delivery++
		return &model.ClaimedEntry{ID: e.id, Entry: e.entry, Delivery: e.delivery}
	}
	return nil
}

func (q *Queue) Ack(ctx context.Context, entryID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.entries, entryID)
	return nil
}

func (q *Queue) ReclaimStale(ctx context.Context, consumer string, minIdle time.Duration) ([]*model.ClaimedEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	var out []*model.ClaimedEntry
	for _, id := range q.order {
		e, ok := q.entries[id]
		if !ok || !e.claimed {
			continue
		}
		if now.Sub(e.claimedAt) < minIdle {
			continue
		}
		e.claimedAt = now
		e.delivery++
		out = append(out, &model.ClaimedEntry{ID: e.id, Entry: e.entry, Delivery: e.delivery})
	}
	return out, nil
}

func (q *Queue) Depth(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.entries)), nil
}

func (q *Queue) Pending(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var n int64
	for _, e := range q.entries {
		if e.claimed {
			n++
		}
	}
	return n, nil
}

// SetClock overrides the queue clock; used by redelivery tests.
func (q *Queue) SetClock(now func() time.Time) { q.now = now }

func (q *Queue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
