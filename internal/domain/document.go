package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContentKind tells whether a document was ingested as text or as an image.
type ContentKind string

// Supported content kinds.
const (
	ContentText  ContentKind = "text"
	ContentImage ContentKind = "image"
)

// DocumentStatus tracks the summary lifecycle of a document.
type DocumentStatus string

// Document status values. A document starts in pending_summary and moves to
// ready or summary_failed exactly once.
const (
	DocumentPendingSummary DocumentStatus = "pending_summary"
	DocumentReady          DocumentStatus = "ready"
	DocumentSummaryFailed  DocumentStatus = "summary_failed"
)

// Errors for document state transitions.
var (
	ErrDocumentNotPending  = errors.New("document summary is not pending")
	ErrInvalidContentKind  = errors.New("invalid content kind")
	ErrInvalidDocumentStat = errors.New("invalid document status")
)

// Document is a piece of course material. Content holds the raw text for text
// documents; image documents keep only their generated summary.
type Document struct {
	ID           uuid.UUID      `json:"id"`
	Title        string         `json:"title"`
	Kind         ContentKind    `json:"kind"`
	Status       DocumentStatus `json:"status"`
	Summary      string         `json:"summary,omitempty"`
	SummaryError string         `json:"summary_error,omitempty"`
	Content      string         `json:"content,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// NewDocument creates a document in the pending_summary state.
func NewDocument(title string, kind ContentKind, content string) (*Document, error) {
	d := &Document{
		ID:        NewID(),
		Title:     strings.TrimSpace(title),
		Kind:      kind,
		Status:    DocumentPendingSummary,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks that the document is well formed.
func (d *Document) Validate() error {
	var errs []FieldError
	if d.ID == uuid.Nil {
		errs = append(errs, FieldError{Field: "id", Message: "must not be empty"})
	}
	if d.Title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "must not be empty"})
	}
	switch d.Kind {
	case ContentText:
		if strings.TrimSpace(d.Content) == "" {
			errs = append(errs, FieldError{Field: "content", Message: "text documents need content"})
		}
	case ContentImage:
	default:
		errs = append(errs, FieldError{Field: "kind", Message: ErrInvalidContentKind.Error()})
	}
	switch d.Status {
	case DocumentPendingSummary, DocumentReady, DocumentSummaryFailed:
	default:
		errs = append(errs, FieldError{Field: "status", Message: ErrInvalidDocumentStat.Error()})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// Ready reports whether the document can be used as a synthesis source.
func (d *Document) Ready() bool {
	return d.Status == DocumentReady
}

// CompleteSummary records the generated summary and leaves pending_summary.
func (d *Document) CompleteSummary(summary string) error {
	if d.Status != DocumentPendingSummary {
		return ErrDocumentNotPending
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return NewValidationError("summary", "must not be empty")
	}
	d.Summary = summary
	d.SummaryError = ""
	d.Status = DocumentReady
	return nil
}

// FailSummary moves the document into summary_failed with the reported cause.
func (d *Document) FailSummary(cause error) error {
	if d.Status != DocumentPendingSummary {
		return ErrDocumentNotPending
	}
	d.Status = DocumentSummaryFailed
	if cause != nil {
		d.SummaryError = cause.Error()
	}
	return nil
}

// SourceText is the text synthesis prompts are built from: the summary when
// one exists, otherwise the raw content.
func (d *Document) SourceText() string {
	if d.Summary != "" {
		return d.Summary
	}
	return d.Content
}
