package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"pdf-processing-pipeline/internal/domain/ports/repository"
	"pdf-processing-pipeline/internal/infra/metrics"
)

// Pool runs N independent claim-process-acknowledge loops against the
// work queue, plus one sweeper that reclaims entries whose consumer
// went away. Pool size is a deployment parameter: the queue's
// per-entry exclusivity is what prevents duplicate processing, so
// correctness is identical for 1..N workers.
type Pool struct {
	queue         repository.WorkQueue
	processor     *Processor
	size          int
	claimBlock    time.Duration
	idleThreshold time.Duration
	log           *zerolog.Logger
	wg            sync.WaitGroup
}

func NewPool(
	queue repository.WorkQueue,
	processor *Processor,
	size int,
	claimBlock time.Duration,
	idleThreshold time.Duration,
	logger *zerolog.Logger,
) *Pool {
	if size <= 0 {
		size = 1
	}
	poolLog := logger.With().Str("component", "WorkerPool").Logger()
	return &Pool{
		queue:         queue,
		processor:     processor,
		size:          size,
		claimBlock:    claimBlock,
		idleThreshold: idleThreshold,
		log:           &poolLog,
	}
}

// Start launches the workers and the sweeper. They stop when ctx is
// cancelled; Wait blocks until all loops have returned.
func (p *Pool) Start(ctx context.Context) {
	p.log.Info().Int("workers", p.size).Msg("starting worker pool")
	for i := 0; i < p.size; i++ {
		name := fmt.Sprintf("worker-%d", i)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.runWorker(ctx, name)
		}()
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.runSweeper(ctx)
	}()
}

func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) runWorker(ctx context.Context, name string) {
	log := p.log.With().Str("consumer", name).Logger()
	log.Info().Msg("worker started")
	for {
		if ctx.Err() != nil {
			log.Info().Msg("worker stopping")
			return
		}
		claimed, err := p.queue.Claim(ctx, name, p.claimBlock)
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("worker stopping")
				return
			}
			log.Error().Err(err).Msg("claim failed")
			p.pause(ctx, 2*time.Second)
			continue
		}
		if claimed == nil {
			continue // poll timeout, no work
		}
		p.processor.Process(ctx, claimed)
	}
}

// runSweeper periodically re-claims long-pending unacknowledged
// entries so a crashed worker's jobs are redelivered, and refreshes
// the queue occupancy gauges for the health surface.
func (p *Pool) runSweeper(ctx context.Context) {
	log := p.log.With().Str("consumer", "sweeper").Logger()
	interval := p.idleThreshold / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("sweeper stopping")
			return
		case <-ticker.C:
			stale, err := p.queue.ReclaimStale(ctx, "sweeper", p.idleThreshold)
			if err != nil {
				if ctx.Err() == nil {
					log.Error().Err(err).Msg("reclaim failed")
				}
				continue
			}
			if len(stale) > 0 {
				metrics.AddRedeliveries(len(stale))
				log.Warn().Int("count", len(stale)).Msg("reclaimed stale entries")
			}
			for _, claimed := range stale {
				p.processor.Process(ctx, claimed)
			}

			if depth, err := p.queue.Depth(ctx); err == nil {
				metrics.SetQueueDepth(depth)
			}
			if pending, err := p.queue.Pending(ctx); err == nil {
				metrics.SetQueuePending(pending)
			}
		}
	}
}

func (p *Pool) pause(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
