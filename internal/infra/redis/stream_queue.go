package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"pdf-processing-pipeline/internal/domain"
	"pdf-processing-pipeline/internal/domain/model"
	"pdf-processing-pipeline/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

var _ repository.WorkQueue = (*StreamQueue)(nil)

// StreamQueue implements the work queue over a Redis Stream read
// through a single consumer group. Entries are appended with XADD,
// claimed with XREADGROUP, removed with XACK+XDEL, and redelivered by
// claiming pending entries whose idle time passed the threshold.
type StreamQueue struct {
	client *Client
	stream string
	group  string
}

func NewStreamQueue(ctx context.Context, client *Client, stream, group string) (*StreamQueue, error) {
	q := &StreamQueue{client: client, stream: stream, group: group}
	if err := q.ensureGroup(ctx); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *StreamQueue) ensureGroup(ctx context.Context) error {
	err := q.client.cli.XGroupCreateMkStream(ctx, q.stream, q.group, "0").Err()
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "BUSYGROUP") {
		return nil
	}
	return &domain.QueueError{Op: "create group", Err: err}
}

func (q *StreamQueue) Enqueue(ctx context.Context, entry model.QueueEntry) (string, error) {
	id, err := q.client.cli.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]interface{}{
			"document_id": entry.DocumentID,
			"parser_type": string(entry.ParserType),
			"enqueued_at": entry.EnqueuedAt.UTC().Format(time.RFC3339Nano),
		},
	}).Result()
	if err != nil {
		return "", &domain.QueueError{Op: "enqueue", Err: err}
	}
	return id, nil
}

func (q *StreamQueue) Claim(ctx context.Context, consumer string, block time.Duration) (*model.ClaimedEntry, error) {
	streams, err := q.client.cli.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: consumer,
		Streams:  []string{q.stream, ">"},
		Count:    1,
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // poll timeout, nothing pending
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &domain.QueueError{Op: "claim", Err: err}
	}
	for _, stream := range streams {
		for _, item := range stream.Messages {
			entry, err := parseEntry(item)
			if err != nil {
				// Unparseable entries can never succeed; drop them so
				// they do not loop through redelivery forever.
				_ = q.Ack(ctx, item.ID)
				return nil, &domain.QueueError{Op: "decode entry", Err: err}
			}
			return &model.ClaimedEntry{ID: item.ID, Entry: entry, Delivery: 1}, nil
		}
	}
	return nil, nil
}

func (q *StreamQueue) Ack(ctx context.Context, entryID string) error {
	if err := q.client.cli.XAck(ctx, q.stream, q.group, entryID).Err(); err != nil {
		return &domain.QueueError{Op: "ack", Err: err}
	}
	if err := q.client.cli.XDel(ctx, q.stream, entryID).Err(); err != nil {
		return &domain.QueueError{Op: "del", Err: err}
	}
	return nil
}

// ReclaimStale transfers ownership of entries pending longer than
// minIdle to consumer. The delivery count reported by the group's
// pending list rides along so the worker can enforce retry budgets.
func (q *StreamQueue) ReclaimStale(ctx context.Context, consumer string, minIdle time.Duration) ([]*model.ClaimedEntry, error) {
	pending, err := q.client.cli.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: q.stream,
		Group:  q.group,
		Idle:   minIdle,
		Start:  "-",
		End:    "+",
		Count:  64,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, &domain.QueueError{Op: "pending", Err: err}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	retries := make(map[string]int64, len(pending))
	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		retries[p.ID] = p.RetryCount
		ids = append(ids, p.ID)
	}

	claimed, err := q.client.cli.XClaim(ctx, &redis.XClaimArgs{
		Stream:   q.stream,
		Group:    q.group,
		Consumer: consumer,
		MinIdle:  minIdle,
		Messages: ids,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, &domain.QueueError{Op: "reclaim", Err: err}
	}

	out := make([]*model.ClaimedEntry, 0, len(claimed))
	for _, item := range claimed {
		entry, perr := parseEntry(item)
		if perr != nil {
			_ = q.Ack(ctx, item.ID)
			continue
		}
		// XCLAIM itself counts as a delivery on top of the ones the
		// pending list already recorded.
		out = append(out, &model.ClaimedEntry{
			ID:       item.ID,
			Entry:    entry,
			Delivery: int(retries[item.ID]) + 1,
		})
	}
	return out, nil
}

func (q *StreamQueue) Depth(ctx context.Context) (int64, error) {
	n, err := q.client.cli.XLen(ctx, q.stream).Result()
	if err != nil {
		return 0, &domain.QueueError{Op: "len", Err: err}
	}
	return n, nil
}

func (q *StreamQueue) Pending(ctx context.Context) (int64, error) {
	p, err := q.client.cli.XPending(ctx, q.stream, q.group).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, &domain.QueueError{Op: "pending", Err: err}
	}
	return p.Count, nil
}

func parseEntry(item redis.XMessage) (model.QueueEntry, error) {
	getString := func(key string) (string, error) {
		value, ok := item.Values[key]
		if !ok {
			return "", errors.New("missing field " + key)
		}
		s, ok := value.(string)
		if !ok {
			return "", errors.New("non-string field " + key)
		}
		return s, nil
	}

	docID, err := getString("document_id")
	if err != nil {
		return model.QueueEntry{}, err
	}
	parser, err := getString("parser_type")
	if err != nil {
		return model.QueueEntry{}, err
	}
	enqueuedAtStr, err := getString("enqueued_at")
	if err != nil {
		return model.QueueEntry{}, err
	}
	enqueuedAt, err := time.Parse(time.RFC3339Nano, enqueuedAtStr)
	if err != nil {
		return model.QueueEntry{}, errors.New("invalid enqueued_at: " + err.Error())
	}

	return model.QueueEntry{
		DocumentID: docID,
		ParserType: model.ParserType(parser),
		EnqueuedAt: enqueuedAt,
	}, nil
}
