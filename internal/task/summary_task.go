package task

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// DocumentSummarizer produces and stores the summary of one document.
type DocumentSummarizer interface {
	SummarizeDocument(ctx context.Context, classID, documentID uuid.UUID) error
}

// SummaryTask summarizes one uploaded document.
type SummaryTask struct {
	id         uuid.UUID
	classID    uuid.UUID
	documentID uuid.UUID
	summarizer DocumentSummarizer
}

var _ Task = (*SummaryTask)(nil)

// NewSummaryTask creates a summary task for the given document.
func NewSummaryTask(classID, documentID uuid.UUID, summarizer DocumentSummarizer) (*SummaryTask, error) {
	if summarizer == nil {
		return nil, errors.New("summarizer cannot be nil")
	}
	return &SummaryTask{
		id:         uuid.New(),
		classID:    classID,
		documentID: documentID,
		summarizer: summarizer,
	}, nil
}

// ID implements Task.
func (t *SummaryTask) ID() uuid.UUID { return t.id }

// Type implements Task.
func (t *SummaryTask) Type() string { return TypeDocumentSummary }

// DocumentID returns the document being summarized.
func (t *SummaryTask) DocumentID() uuid.UUID { return t.documentID }

// Execute implements Task.
func (t *SummaryTask) Execute(ctx context.Context) error {
	return t.summarizer.SummarizeDocument(ctx, t.classID, t.documentID)
}
