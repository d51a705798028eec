package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/studykit/internal/events"
)

// SummaryEventHandler turns document uploads that still need a summary into
// SummaryTasks on the runner.
type SummaryEventHandler struct {
	summarizer DocumentSummarizer
	submitter  Submitter
	logger     *slog.Logger
}

var _ events.EventHandler = (*SummaryEventHandler)(nil)

// NewSummaryEventHandler creates the handler. If log is nil, slog.Default() is used.
func NewSummaryEventHandler(summarizer DocumentSummarizer, submitter Submitter, log *slog.Logger) *SummaryEventHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SummaryEventHandler{
		summarizer: summarizer,
		submitter:  submitter,
		logger:     log.With("component", "summary_event_handler"),
	}
}

// HandleEvent implements events.EventHandler.
func (h *SummaryEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeDocumentUploaded {
		return nil
	}

	var payload events.DocumentPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.ErrorContext(ctx, "failed to unmarshal payload", "error", err, "event_id", event.ID.String())
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if !payload.NeedsSummary {
		return nil
	}

	t, err := NewSummaryTask(payload.ClassID, payload.DocumentID, h.summarizer)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	if err := h.submitter.Submit(ctx, t); err != nil {
		h.logger.ErrorContext(ctx, "failed to submit task",
			"error", err,
			"task_id", t.ID().String(),
			"document_id", payload.DocumentID.String(),
			"event_id", event.ID.String())
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.DebugContext(ctx, "summary task submitted",
		"task_id", t.ID().String(),
		"document_id", payload.DocumentID.String())
	return nil
}
