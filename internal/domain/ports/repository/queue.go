package repository

import (
	"context"
	"time"

	"pdf-processing-pipeline/internal/domain/model"
)

// WorkQueue is an append-only log of pending jobs read through a single
// consumer group. Within the group each entry is delivered to exactly
// one consumer at a time; entries survive claims and are removed only
// on acknowledge. Unacknowledged entries idle past a threshold are
// redelivered via ReclaimStale (at-least-once delivery).
type WorkQueue interface {
	Enqueue(ctx context.Context, entry model.QueueEntry) (string, error)

	// Claim blocks up to block waiting for a new entry and returns nil
	// when the poll times out, so an idle worker does not spin.
	Claim(ctx context.Context, consumer string, block time.Duration) (*model.ClaimedEntry, error)

	Ack(ctx context.Context, entryID string) error

	// ReclaimStale transfers entries pending longer than minIdle to
	// consumer. Returned entries carry their cumulative delivery count.
	ReclaimStale(ctx context.Context, consumer string, minIdle time.Duration) ([]*model.ClaimedEntry, error)

	// Depth and Pending expose queue occupancy for health reporting.
	Depth(ctx context.Context) (int64, error)
	Pending(ctx context.Context) (int64, error)
}
