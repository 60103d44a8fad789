package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownParser   = errors.New("unknown parser type")
)

// ExtractionReason classifies extraction failures. Only
// ReasonUpstreamUnavailable is retryable via queue redelivery.
type ExtractionReason string

const (
	ReasonCorruptOrUnreadable ExtractionReason = "corrupt_or_unreadable"
	ReasonUpstreamUnavailable ExtractionReason = "upstream_unavailable"
	ReasonUpstreamFormat      ExtractionReason = "upstream_format"
)

type ExtractionError struct {
	Reason ExtractionReason
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed (%s)", e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *ExtractionError) Retryable() bool {
	return e.Reason == ReasonUpstreamUnavailable
}

func NewExtractionError(reason ExtractionReason, err error) *ExtractionError {
	return &ExtractionError{Reason: reason, Err: err}
}

// SummarizeReason classifies summarization failures.
type SummarizeReason string

const (
	ReasonTransient       SummarizeReason = "transient"
	ReasonContentRejected SummarizeReason = "content_rejected"
)

type SummarizeError struct {
	Reason SummarizeReason
	Err    error
}

func (e *SummarizeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("summarize failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("summarize failed (%s)", e.Reason)
}

func (e *SummarizeError) Unwrap() error { return e.Err }

func (e *SummarizeError) Retryable() bool { return e.Reason == ReasonTransient }

func NewSummarizeError(reason SummarizeReason, err error) *SummarizeError {
	return &SummarizeError{Reason: reason, Err: err}
}

// QueueError marks a store/queue outage. Fatal to the affected job;
// recovery happens via redelivery or process restart, never inline.
type QueueError struct {
	Op  string
	Err error
}

func (e *QueueError) Error() string {
	return fmt.Sprintf("queue %s: %v", e.Op, e.Err)
}

func (e *QueueError) Unwrap() error { return e.Err }

// Retryable reports whether err should be left unacknowledged for
// queue-level redelivery rather than terminally failing the job.
func Retryable(err error) bool {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee.Retryable()
	}
	var se *SummarizeError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return false
}
