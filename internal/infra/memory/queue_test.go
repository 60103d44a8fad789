//go:build !integration

package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"pdf-processing-pipeline/internal/domain/model"
)

func enqueueN(t *testing.T, q *Queue, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		entry := model.QueueEntry{
			DocumentID: fmt.Sprintf("doc-%d", i),
			ParserType: model.ParserPyPDF,
			EnqueuedAt: time.Now().UTC(),
		}
		if _, err := q.Enqueue(context.Background(), entry); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
}

func TestQueue_ClaimAndAck(t *testing.T) {
	ctx := context.Background()

	t.Run("should deliver entries in FIFO order", func(t *testing.T) {
		q := NewQueue()
		enqueueN(t, q, 3)

		for i := 0; i < 3; i++ {
			ce, err := q.Claim(ctx, "w1", 100*time.Millisecond)
			if err != nil {
				t.Fatalf("claim: %v", err)
			}
			if ce == nil {
				t.Fatal("expected an entry, but got nil")
			}
			want := fmt.Sprintf("doc-%d", i)
			if ce.Entry.DocumentID != want {
				t.Errorf("claim %d delivered %s, want %s", i, ce.Entry.DocumentID, want)
			}
			if ce.Delivery != 1 {
				t.Errorf("fresh claim delivery = %d, want 1", ce.Delivery)
			}
		}
	})

	t.Run("should return nil on claim timeout when empty", func(t *testing.T) {
		q := NewQueue()
		ce, err := q.Claim(ctx, "w1", 20*time.Millisecond)
		if err != nil {
			t.Fatalf("claim: %v", err)
		}
		if ce != nil {
			t.Fatalf("expected nil on timeout, but got %+v", ce)
		}
	})

	t.Run("should respect context cancellation while blocked", func(t *testing.T) {
		q := NewQueue()
		cctx, cancel := context.WithCancel(ctx)
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()
		if _, err := q.Claim(cctx, "w1", time.Minute); err == nil {
			t.Fatal("expected a context error, but got nil")
		}
	})

	t.Run("should remove acknowledged entries", func(t *testing.T) {
		q := NewQueue()
		enqueueN(t, q, 1)

		ce, err := q.Claim(ctx, "w1", 100*time.Millisecond)
		if err != nil || ce == nil {
			t.Fatalf("claim: ce=%v err=%v", ce, err)
		}
		if err := q.Ack(ctx, ce.ID); err != nil {
			t.Fatalf("ack: %v", err)
		}

		depth, _ := q.Depth(ctx)
		if depth != 0 {
			t.Errorf("depth after ack = %d, want 0", depth)
		}
		pending, _ := q.Pending(ctx)
		if pending != 0 {
			t.Errorf("pending after ack = %d, want 0", pending)
		}
	})
}

func TestQueue_ConcurrentClaimExclusivity(t *testing.T) {
	const (
		workers = 8
		jobs    = 200
	)
	q := NewQueue()
	enqueueN(t, q, jobs)
	ctx := context.Background()

	var (
		mu   sync.Mutex
		seen = make(map[string]int)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(consumer string) {
			defer wg.Done()
			for {
				ce, err := q.Claim(ctx, consumer, 50*time.Millisecond)
				if err != nil {
					t.Errorf("claim: %v", err)
					return
				}
				if ce == nil {
					return
				}
				mu.Lock()
				seen[ce.Entry.DocumentID]++
				mu.Unlock()
				if err := q.Ack(ctx, ce.ID); err != nil {
					t.Errorf("ack: %v", err)
				}
			}
		}(fmt.Sprintf("w%d", w))
	}
	wg.Wait()

	if len(seen) != jobs {
		t.Fatalf("processed %d distinct jobs, want %d", len(seen), jobs)
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("job %s delivered %d times, want exactly 1", id, n)
		}
	}
}

func TestQueue_ReclaimStale(t *testing.T) {
	ctx := context.Background()

	t.Run("should redeliver entries idle past the threshold with an incremented count", func(t *testing.T) {
		q := NewQueue()
		base := time.Now()
		q.SetClock(func() time.Time { return base })
		enqueueN(t, q, 2)

		first, err := q.Claim(ctx, "w1", 100*time.Millisecond)
		if err != nil || first == nil {
			t.Fatalf("claim: ce=%v err=%v", first, err)
		}

		// Advance the clock past the idle threshold; the unclaimed
		// second entry must not be touched.
		q.SetClock(func() time.Time { return base.Add(2 * time.Minute) })
		reclaimed, err := q.ReclaimStale(ctx, "sweeper", time.Minute)
		if err != nil {
			t.Fatalf("reclaim: %v", err)
		}
		if len(reclaimed) != 1 {
			t.Fatalf("reclaimed %d entries, want 1", len(reclaimed))
		}
		if reclaimed[0].ID != first.ID {
			t.Errorf("reclaimed %s, want %s", reclaimed[0].ID, first.ID)
		}
		if reclaimed[0].Delivery != 2 {
			t.Errorf("redelivery count = %d, want 2", reclaimed[0].Delivery)
		}
	})

	t.Run("should leave recently claimed entries alone", func(t *testing.T) {
		q := NewQueue()
		enqueueN(t, q, 1)
		if _, err := q.Claim(ctx, "w1", 100*time.Millisecond); err != nil {
			t.Fatalf("claim: %v", err)
		}

		reclaimed, err := q.ReclaimStale(ctx, "sweeper", time.Minute)
		if err != nil {
			t.Fatalf("reclaim: %v", err)
		}
		if len(reclaimed) != 0 {
			t.Fatalf("reclaimed %d entries, want 0", len(reclaimed))
		}
	})
}
