// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/genai"

	"pdf-processing-pipeline/internal/config"
	"pdf-processing-pipeline/internal/domain/ports/repository"
	aiAdapters "pdf-processing-pipeline/internal/infra/adapters/ai"
	"pdf-processing-pipeline/internal/infra/adapters/extract"
	"pdf-processing-pipeline/internal/infra/logging"
	"pdf-processing-pipeline/internal/infra/memory"
	"pdf-processing-pipeline/internal/infra/metrics"
	red "pdf-processing-pipeline/internal/infra/redis"
	"pdf-processing-pipeline/internal/infra/web"
	"pdf-processing-pipeline/internal/infra/worker"
	"pdf-processing-pipeline/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "development mode (in-memory store and queue when redis is not configured)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Store and queue ----
	var (
		docs  repository.DocumentRepository
		queue repository.WorkQueue
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connect failed")
		}
		defer redisClient.Close()

		docs = red.NewDocumentRepo(redisClient)
		queue, err = red.NewStreamQueue(ctx, redisClient, cfg.Queue.Stream, cfg.Queue.Group)
		if err != nil {
			logger.Fatal().Err(err).Msg("stream queue init failed")
		}
		logger.Info().Str("stream", cfg.Queue.Stream).Str("group", cfg.Queue.Group).Msg("using redis store and queue")
	} else {
		docs = memory.NewDocumentRepo()
		queue = memory.NewQueue()
		logger.Warn().Msg("redis not configured; using in-memory store and queue (dev only)")
	}

	// ---- Gemini client (extraction strategy + default summarizer) ----
	if cfg.AI.GeminiKey == "" {
		logger.Fatal().Msg("ai.gemini_key is required: the gemini extraction strategy depends on it")
	}
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.AI.GeminiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: cfg.AI.GeminiURL,
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("gemini client init failed")
	}

	// ---- Extraction registry (closed set) ----
	registry := extract.NewRegistry(
		extract.NewLocalExtractor(),
		extract.NewGeminiExtractor(genaiClient, cfg.AI.ExtractModel, cfg.AI.RequestTimeout),
	)

	// ---- Summarizer ----
	chunker, err := aiAdapters.NewChunker(cfg.AI.InputTokenLimit)
	if err != nil {
		logger.Fatal().Err(err).Msg("chunker init failed")
	}
	var textModel aiAdapters.TextModel
	switch cfg.AI.Provider {
	case "openai":
		textModel, err = aiAdapters.NewOpenAIModel(cfg.AI.OpenAIKey, cfg.AI.SummaryModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai model init failed")
		}
	case "gemini":
		textModel = aiAdapters.NewGeminiModel(genaiClient, cfg.AI.SummaryModel)
	default:
		logger.Fatal().Str("provider", cfg.AI.Provider).Msg("unknown ai.provider (want gemini or openai)")
	}
	summarizer := aiAdapters.NewModelSummarizer(textModel, chunker, cfg.AI.RequestTimeout)
	logger.Info().Str("provider", textModel.Provider()).Str("model", cfg.AI.SummaryModel).Msg("summarizer ready")

	// ---- Worker pool ----
	processor := worker.NewProcessor(docs, queue, registry, summarizer, textModel.Provider(), worker.Budgets{
		Extraction: cfg.Worker.ExtractionRetryBudget,
		Summarize:  cfg.Worker.SummarizeRetryBudget,
	}, logger)
	pool := worker.NewPool(queue, processor, cfg.Worker.PoolSize, cfg.Worker.ClaimBlockTimeout, cfg.Worker.RedeliveryIdleThreshold, logger)
	pool.Start(ctx)

	// ---- HTTP intake + polling ----
	docUC := usecase.NewDocumentUseCase(docs, queue, logger)
	srv := web.NewServer(docUC, queue, cfg.Upload, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Routes(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}

	cancel()
	pool.Wait()
	logger.Info().Msg("shutdown complete")
}
