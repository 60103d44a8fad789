//go:build !integration

package redis

import (
	"testing"
	"time"

	"github.com/go-redis/redis/v8"

	"pdf-processing-pipeline/internal/domain/model"
)

func TestParseEntry(t *testing.T) {
	t.Run("should decode a well-formed entry", func(t *testing.T) {
		enqueued := time.Date(2026, 8, 27, 10, 30, 0, 0, time.UTC)
		msg := redis.XMessage{
			ID: "1700000000000-0",
			Values: map[string]interface{}{
				"document_id": "doc-1",
				"parser_type": "gemini",
				"enqueued_at": enqueued.Format(time.RFC3339Nano),
			},
		}

		entry, err := parseEntry(msg)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if entry.DocumentID != "doc-1" {
			t.Errorf("document_id = %q", entry.DocumentID)
		}
		if entry.ParserType != model.ParserGemini {
			t.Errorf("parser_type = %s", entry.ParserType)
		}
		if !entry.EnqueuedAt.Equal(enqueued) {
			t.Errorf("enqueued_at = %s, want %s", entry.EnqueuedAt, enqueued)
		}
	})

	t.Run("should reject entries with missing fields", func(t *testing.T) {
		cases := map[string]map[string]interface{}{
			"no document_id": {
				"parser_type": "gemini",
				"enqueued_at": time.Now().UTC().Format(time.RFC3339Nano),
			},
			"no parser_type": {
				"document_id": "doc-1",
				"enqueued_at": time.Now().UTC().Format(time.RFC3339Nano),
			},
			"no enqueued_at": {
				"document_id": "doc-1",
				"parser_type": "gemini",
			},
		}
		for name, values := range cases {
			if _, err := parseEntry(redis.XMessage{ID: "1-0", Values: values}); err == nil {
				t.Errorf("%s: expected an error, but got nil", name)
			}
		}
	})

	t.Run("should reject a malformed timestamp", func(t *testing.T) {
		msg := redis.XMessage{
			ID: "1-0",
			Values: map[string]interface{}{
				"document_id": "doc-1",
				"parser_type": "pypdf",
				"enqueued_at": "yesterday",
			},
		}
		if _, err := parseEntry(msg); err == nil {
			t.Fatal("expected an error, but got nil")
		}
	})

	t.Run("should reject non-string field values", func(t *testing.T) {
		msg := redis.XMessage{
			ID: "1-0",
			Values: map[string]interface{}{
				"document_id": 42,
				"parser_type": "pypdf",
				"enqueued_at": time.Now().UTC().Format(time.RFC3339Nano),
			},
		}
		if _, err := parseEntry(msg); err == nil {
			t.Fatal("expected an error, but got nil")
		}
	})
}
