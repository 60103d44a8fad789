//go:build !integration

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"pdf-processing-pipeline/internal/config"
	"pdf-processing-pipeline/internal/domain"
	"pdf-processing-pipeline/internal/domain/model"
)

// --- Fakes ---

type fakeUseCase struct {
	submitID  string
	submitErr error
	doc       *model.Document
	getErr    error

	gotFilename string
	gotParser   model.ParserType
	gotContent  []byte
}

func (f *fakeUseCase) Submit(ctx context.Context, content []byte, filename string, parser model.ParserType) (string, error) {
	f.gotContent = content
	f.gotFilename = filename
	f.gotParser = parser
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return f.submitID, nil
}

func (f *fakeUseCase) Get(ctx context.Context, id string) (*model.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.doc, nil
}

type fakeQueue struct {
	depth    int64
	pending  int64
	depthErr error
}

func (f *fakeQueue) Enqueue(ctx context.Context, entry model.QueueEntry) (string, error) {
	return "1-0", nil
}

func (f *fakeQueue) Claim(ctx context.Context, consumer string, block time.Duration) (*model.ClaimedEntry, error) {
	return nil, nil
}

func (f *fakeQueue) Ack(ctx context.Context, entryID string) error { return nil }

func (f *fakeQueue) ReclaimStale(ctx context.Context, consumer string, minIdle time.Duration) ([]*model.ClaimedEntry, error) {
	return nil, nil
}

func (f *fakeQueue) Depth(ctx context.Context) (int64, error) {
	if f.depthErr != nil {
		return 0, f.depthErr
	}
	return f.depth, nil
}

func (f *fakeQueue) Pending(ctx context.Context) (int64, error) { return f.pending, nil }

// --- Helpers ---

func newTestServer(uc *fakeUseCase, queue *fakeQueue) http.Handler {
	logger := zerolog.Nop()
	srv := NewServer(uc, queue, config.UploadConfig{
		MaxSizeBytes:  32 << 20,
		DefaultParser: "gemini",
	}, &logger)
	return srv.Routes()
}

func multipartUpload(t *testing.T, filename, parser string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if parser != "" {
		if err := mw.WriteField("parser_type", parser); err != nil {
			t.Fatalf("write parser field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

// --- Tests ---

func TestHandleUpload(t *testing.T) {
	pdfBytes := []byte("%PDF-1.4 fake content")

	t.Run("should accept a pdf upload and return 202 with the id", func(t *testing.T) {
		uc := &fakeUseCase{submitID: "doc-123"}
		handler := newTestServer(uc, &fakeQueue{})

		body, contentType := multipartUpload(t, "report.pdf", "pypdf", pdfBytes)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d, want 202; body: %s", rec.Code, rec.Body.String())
		}
		var resp uploadResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.DocumentID != "doc-123" {
			t.Errorf("document_id = %q", resp.DocumentID)
		}
		if resp.Status != "queued" {
			t.Errorf("status = %q, want queued", resp.Status)
		}
		if uc.gotParser != model.ParserPyPDF {
			t.Errorf("parser = %s, want pypdf", uc.gotParser)
		}
		if !bytes.Equal(uc.gotContent, pdfBytes) {
			t.Error("uploaded bytes did not reach the use case")
		}
	})

	t.Run("should default the parser when none is sent", func(t *testing.T) {
		uc := &fakeUseCase{submitID: "doc-123"}
		handler := newTestServer(uc, &fakeQueue{})

		body, contentType := multipartUpload(t, "report.pdf", "", pdfBytes)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d, want 202", rec.Code)
		}
		if uc.gotParser != model.ParserGemini {
			t.Errorf("parser = %s, want the configured default gemini", uc.gotParser)
		}
	})

	t.Run("should reject a non-pdf filename with 400", func(t *testing.T) {
		handler := newTestServer(&fakeUseCase{}, &fakeQueue{})

		body, contentType := multipartUpload(t, "notes.txt", "pypdf", pdfBytes)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("should reject an unknown parser with 400", func(t *testing.T) {
		handler := newTestServer(&fakeUseCase{}, &fakeQueue{})

		body, contentType := multipartUpload(t, "report.pdf", "mistral", pdfBytes)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("should reject a request without a file field", func(t *testing.T) {
		handler := newTestServer(&fakeUseCase{}, &fakeQueue{})

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		_ = mw.WriteField("parser_type", "pypdf")
		_ = mw.Close()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("should map submit validation failures to 400", func(t *testing.T) {
		uc := &fakeUseCase{submitErr: domain.ErrInvalidArgument}
		handler := newTestServer(uc, &fakeQueue{})

		body, contentType := multipartUpload(t, "report.pdf", "pypdf", pdfBytes)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("should map other submit failures to 500", func(t *testing.T) {
		uc := &fakeUseCase{submitErr: errors.New("store down")}
		handler := newTestServer(uc, &fakeQueue{})

		body, contentType := multipartUpload(t, "report.pdf", "pypdf", pdfBytes)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
	})
}

func TestHandleGet(t *testing.T) {
	t.Run("should return the document record", func(t *testing.T) {
		doc, _ := model.NewDocument("doc-1", "a.pdf", model.ParserPyPDF)
		handler := newTestServer(&fakeUseCase{doc: doc}, &fakeQueue{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/doc-1", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var got model.Document
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if got.ID != "doc-1" || got.Status != model.StatusQueued {
			t.Errorf("unexpected record: %+v", got)
		}
	})

	t.Run("should return 404 for an unknown id", func(t *testing.T) {
		handler := newTestServer(&fakeUseCase{getErr: domain.ErrNotFound}, &fakeQueue{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/missing", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHandleHealth(t *testing.T) {
	t.Run("should report queue occupancy", func(t *testing.T) {
		handler := newTestServer(&fakeUseCase{}, &fakeQueue{depth: 5, pending: 2})

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var resp struct {
			Status       string `json:"status"`
			QueueDepth   int64  `json:"queue_depth"`
			QueuePending int64  `json:"queue_pending"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Status != "ok" || resp.QueueDepth != 5 || resp.QueuePending != 2 {
			t.Errorf("unexpected health payload: %+v", resp)
		}
	})

	t.Run("should report 503 when the queue is unreachable", func(t *testing.T) {
		handler := newTestServer(&fakeUseCase{}, &fakeQueue{depthErr: errors.New("connection refused")})

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}
	})
}
