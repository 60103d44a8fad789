package model

import (
	"fmt"
	"time"

	"pdf-processing-pipeline/internal/domain"
)

// ParserType selects the extraction strategy for a submission.
// The set is closed: adding a value requires a matching registry entry.
type ParserType string

const (
	ParserPyPDF  ParserType = "pypdf"
	ParserGemini ParserType = "gemini"
)

// ParseParserType validates a submitted parser type string.
func ParseParserType(s string) (ParserType, error) {
	switch ParserType(s) {
	case ParserPyPDF:
		return ParserPyPDF, nil
	case ParserGemini:
		return ParserGemini, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownParser, s)
	}
}

type DocumentStatus string

const (
	StatusQueued     DocumentStatus = "queued"
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusFailed     DocumentStatus = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s DocumentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Document is the durable status/result record, keyed by ID.
// It is the single source of truth for the polling layer; every
// mutation after enqueue is performed by the one worker holding the
// corresponding queue entry.
type Document struct {
	ID         string         `json:"id"`
	Filename   string         `json:"filename"`
	ParserType ParserType     `json:"parser_type"`
	Status     DocumentStatus `json:"status"`
	Pages      []string       `json:"pages,omitempty"`
	Summary    string         `json:"summary,omitempty"`
	Error      string         `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// NewDocument builds a fresh record in the queued state.
func NewDocument(id, filename string, parser ParserType) (*Document, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty document id", domain.ErrInvalidArgument)
	}
	if filename == "" {
		return nil, fmt.Errorf("%w: empty filename", domain.ErrInvalidArgument)
	}
	if _, err := ParseParserType(string(parser)); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Document{
		ID:         id,
		Filename:   filename,
		ParserType: parser,
		Status:     StatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// QueueEntry is the transport format placed on the work queue. It is a
// reference, not a payload duplicate: result state lives on the
// Document record and the two are linked only by DocumentID.
type QueueEntry struct {
	DocumentID string     `json:"document_id"`
	ParserType ParserType `json:"parser_type"`
	EnqueuedAt time.Time  `json:"enqueued_at"`
}

// ClaimedEntry is a queue entry held by exactly one consumer.
// Delivery counts from 1 and increments on every redelivery; the
// worker compares it against the retry budget.
type ClaimedEntry struct {
	ID       string
	Entry    QueueEntry
	Delivery int
}
