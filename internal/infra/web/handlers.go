package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"pdf-processing-pipeline/internal/domain"
	"pdf-processing-pipeline/internal/domain/model"
)

type uploadResponse struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart upload"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file field"})
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "only PDF files are allowed"})
		return
	}

	parserStr := r.FormValue("parser_type")
	if parserStr == "" {
		parserStr = string(s.defaultParser)
	}
	parser, err := model.ParseParserType(parserStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "could not read upload"})
		return
	}

	id, err := s.uc.Submit(ctx, content, header.Filename, parser)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrUnknownParser) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		s.log.Error().Err(err).Msg("submit failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to submit document"})
		return
	}

	writeJSON(w, http.StatusAccepted, uploadResponse{DocumentID: id, Status: string(model.StatusQueued)})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	doc, err := s.uc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "document not found"})
			return
		}
		s.log.Error().Err(err).Str("document_id", id).Msg("get document failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load document"})
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// handleHealth reports liveness plus queue occupancy. Records stuck in
// queued while depth stays zero point at a dispatcher outage rather
// than a per-job failure.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	depth, err := s.queue.Depth(ctx)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "work queue unavailable"})
		return
	}
	pending, err := s.queue.Pending(ctx)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "work queue unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Status       string `json:"status"`
		QueueDepth   int64  `json:"queue_depth"`
		QueuePending int64  `json:"queue_pending"`
	}{Status: "ok", QueueDepth: depth, QueuePending: pending})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
