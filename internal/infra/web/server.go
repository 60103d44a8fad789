package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"pdf-processing-pipeline/internal/config"
	"pdf-processing-pipeline/internal/domain/model"
	"pdf-processing-pipeline/internal/domain/ports/repository"
	"pdf-processing-pipeline/internal/usecase"
)

// Server is the HTTP intake and polling layer. It owns upload-level
// validation (file type, size) and delegates everything else to the
// document use case.
type Server struct {
	uc            usecase.DocumentUseCase
	queue         repository.WorkQueue
	maxUpload     int64
	defaultParser model.ParserType
	log           *zerolog.Logger
}

func NewServer(uc usecase.DocumentUseCase, queue repository.WorkQueue, upload config.UploadConfig, logger *zerolog.Logger) *Server {
	webLog := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		uc:            uc,
		queue:         queue,
		maxUpload:     upload.MaxSizeBytes,
		defaultParser: model.ParserType(upload.DefaultParser),
		log:           &webLog,
	}
}

// Routes builds the router for the intake and polling API.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1/documents", func(r chi.Router) {
		r.Post("/", s.handleUpload)
		r.Get("/{id}", s.handleGet)
	})
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
