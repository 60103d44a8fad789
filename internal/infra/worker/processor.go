package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"pdf-processing-pipeline/internal/domain"
	"pdf-processing-pipeline/internal/domain/model"
	"pdf-processing-pipeline/internal/domain/ports/adapter"
	"pdf-processing-pipeline/internal/domain/ports/repository"
	"pdf-processing-pipeline/internal/infra/logging"
	"pdf-processing-pipeline/internal/infra/metrics"
)

// ExtractorRegistry resolves a parser type to its implementation.
// Satisfied by the closed registry in infra/adapters/extract.
type ExtractorRegistry interface {
	Lookup(parser model.ParserType) (adapter.PageExtractor, bool)
}

// Budgets caps how many deliveries a job may consume per failing step
// before it is terminally failed.
type Budgets struct {
	Extraction int
	Summarize  int
}

// Processor runs the per-job state machine:
// claimed -> extracting -> summarizing -> persisting -> acknowledged,
// with an error path from any state to failed -> acknowledged. An
// entry is acknowledged exactly when the job reaches a terminal
// disposition; transient failures leave it unacknowledged so the queue
// redelivers it.
type Processor struct {
	docs       repository.DocumentRepository
	queue      repository.WorkQueue
	registry   ExtractorRegistry
	summarizer adapter.Summarizer
	provider   string
	budgets    Budgets
	log        *zerolog.Logger
}

func NewProcessor(
	docs repository.DocumentRepository,
	queue repository.WorkQueue,
	registry ExtractorRegistry,
	summarizer adapter.Summarizer,
	summaryProvider string,
	budgets Budgets,
	logger *zerolog.Logger,
) *Processor {
	procLog := logger.With().Str("component", "Processor").Logger()
	return &Processor{
		docs:       docs,
		queue:      queue,
		registry:   registry,
		summarizer: summarizer,
		provider:   summaryProvider,
		budgets:    budgets,
		log:        &procLog,
	}
}

// Process executes one claimed entry to a disposition. Redelivered
// entries are handled idempotently: every write overwrites, nothing
// appends.
func (p *Processor) Process(ctx context.Context, claimed *model.ClaimedEntry) {
	id := claimed.Entry.DocumentID
	ctx = logging.WithEntryID(logging.WithDocumentID(ctx, id), claimed.ID)
	log := logging.With(ctx, p.log).With().Int("delivery", claimed.Delivery).Logger()
	defer logging.TraceDuration(&log, "Processor.Process")()

	if err := p.docs.MarkProcessing(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Entry references a record that no longer exists. It can
			// never succeed, so drop it instead of redelivering.
			log.Warn().Msg("queue entry references missing document, dropping")
			p.ack(ctx, claimed, &log)
			return
		}
		log.Error().Err(err).Msg("mark processing failed, leaving entry for redelivery")
		return
	}
	log.Info().Str("parser", string(claimed.Entry.ParserType)).Msg("processing document")

	content, err := p.docs.GetContent(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			p.fail(ctx, claimed, "uploaded content no longer available", &log)
			return
		}
		log.Error().Err(err).Msg("load content failed, leaving entry for redelivery")
		return
	}

	extractor, ok := p.registry.Lookup(claimed.Entry.ParserType)
	if !ok {
		p.fail(ctx, claimed, "no extractor registered for parser "+string(claimed.Entry.ParserType), &log)
		return
	}

	start := time.Now()
	pages, err := extractor.Extract(ctx, content)
	metrics.ObserveExtraction(string(claimed.Entry.ParserType), int(time.Since(start)/time.Millisecond), err == nil)
	if err != nil {
		p.dispose(ctx, claimed, err, p.budgets.Extraction, &log)
		return
	}
	log.Debug().Int("pages", len(pages)).Msg("extraction finished")

	start = time.Now()
	summary, err := p.summarizer.Summarize(ctx, pages)
	metrics.ObserveSummarize(p.provider, int(time.Since(start)/time.Millisecond), err == nil)
	if err != nil {
		p.dispose(ctx, claimed, err, p.budgets.Summarize, &log)
		return
	}

	// Pages, summary and status land in one atomic record write, so a
	// poller never sees a partially completed document.
	if err := p.docs.Complete(ctx, id, pages, summary); err != nil {
		log.Error().Err(err).Msg("persist result failed, leaving entry for redelivery")
		return
	}

	p.ack(ctx, claimed, &log)
	metrics.IncJob(string(model.StatusCompleted))
	log.Info().Int("pages", len(pages)).Msg("document completed")
}

// dispose routes a step failure: retryable errors with budget left stay
// unacknowledged for redelivery, everything else terminally fails the
// record and acknowledges the entry.
func (p *Processor) dispose(ctx context.Context, claimed *model.ClaimedEntry, err error, budget int, log *zerolog.Logger) {
	if domain.Retryable(err) && claimed.Delivery < budget {
		log.Warn().Err(err).Int("budget", budget).Msg("transient failure, leaving entry for redelivery")
		return
	}
	p.fail(ctx, claimed, err.Error(), log)
}

func (p *Processor) fail(ctx context.Context, claimed *model.ClaimedEntry, reason string, log *zerolog.Logger) {
	id := claimed.Entry.DocumentID
	if err := p.docs.Fail(ctx, id, reason); err != nil && !errors.Is(err, domain.ErrNotFound) {
		// Without the failed status the client would poll processing
		// forever; keep the entry for another attempt at the write.
		log.Error().Err(err).Msg("persist failure status failed, leaving entry for redelivery")
		return
	}
	p.ack(ctx, claimed, log)
	metrics.IncJob(string(model.StatusFailed))
	log.Error().Str("reason", reason).Msg("document failed")
}

func (p *Processor) ack(ctx context.Context, claimed *model.ClaimedEntry, log *zerolog.Logger) {
	if err := p.queue.Ack(ctx, claimed.ID); err != nil {
		log.Error().Err(err).Msg("acknowledge failed")
	}
	if err := p.docs.DeleteContent(ctx, claimed.Entry.DocumentID); err != nil {
		log.Warn().Err(err).Msg("delete content failed")
	}
}
