//go:build !integration

package model

import (
	"errors"
	"testing"
	"time"

	"pdf-processing-pipeline/internal/domain"
)

func TestParseParserType(t *testing.T) {
	t.Run("should accept every registered parser", func(t *testing.T) {
		for _, s := range []string{"pypdf", "gemini"} {
			got, err := ParseParserType(s)
			if err != nil {
				t.Fatalf("expected no error for %q, but got: %v", s, err)
			}
			if string(got) != s {
				t.Errorf("expected %q, but got %q", s, got)
			}
		}
	})

	t.Run("should reject unknown parser types", func(t *testing.T) {
		for _, s := range []string{"", "mistral", "PYPDF", "pdfplumber"} {
			if _, err := ParseParserType(s); !errors.Is(err, domain.ErrUnknownParser) {
				t.Errorf("expected ErrUnknownParser for %q, but got %v", s, err)
			}
		}
	})
}

func TestNewDocument(t *testing.T) {
	t.Run("should create a queued record with timestamps", func(t *testing.T) {
		start := time.Now()
		doc, err := NewDocument("doc-1", "report.pdf", ParserPyPDF)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if doc.Status != StatusQueued {
			t.Errorf("expected status queued, but got %s", doc.Status)
		}
		if doc.Filename != "report.pdf" {
			t.Errorf("expected filename to be kept, but got %s", doc.Filename)
		}
		if doc.CreatedAt.IsZero() || doc.UpdatedAt.IsZero() {
			t.Error("expected timestamps to be set")
		}
		if time.Since(start) > time.Second {
			t.Error("created_at timestamp is too far from current time")
		}
		if len(doc.Pages) != 0 || doc.Summary != "" || doc.Error != "" {
			t.Error("expected result fields to be absent on a fresh record")
		}
	})

	t.Run("should fail with empty id", func(t *testing.T) {
		if _, err := NewDocument("", "a.pdf", ParserGemini); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, but got %v", err)
		}
	})

	t.Run("should fail with empty filename", func(t *testing.T) {
		if _, err := NewDocument("doc-1", "", ParserGemini); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, but got %v", err)
		}
	})

	t.Run("should fail with unknown parser", func(t *testing.T) {
		if _, err := NewDocument("doc-1", "a.pdf", ParserType("mistral")); !errors.Is(err, domain.ErrUnknownParser) {
			t.Errorf("expected ErrUnknownParser, but got %v", err)
		}
	})
}

func TestDocumentStatusTerminal(t *testing.T) {
	cases := map[DocumentStatus]bool{
		StatusQueued:     false,
		StatusProcessing: false,
		StatusCompleted:  true,
		StatusFailed:     true,
	}
	for status, want := range cases {
		if got := status.Terminal(); got != want {
			t.Errorf("Terminal(%s) = %v, want %v", status, got, want)
		}
	}
}
