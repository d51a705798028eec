package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/studykit/internal/domain"
	"github.com/phrazzld/studykit/internal/events"
	"github.com/phrazzld/studykit/internal/generation"
	"github.com/phrazzld/studykit/internal/platform/logger"
	"github.com/phrazzld/studykit/internal/progression"
	"github.com/phrazzld/studykit/internal/redact"
	"github.com/phrazzld/studykit/internal/synthesis"
	"github.com/phrazzld/studykit/internal/task"
)

// errImageUnavailable marks image documents whose bytes were lost, e.g. to a restart.
var errImageUnavailable = errors.New("image data is no longer available")

// UploadInput is a new document. Exactly one of Text and Image is set.
type UploadInput struct {
	Title string
	Text  string
	Image *generation.Image
}

func (in UploadInput) document() (*domain.Document, error) {
	hasText := strings.TrimSpace(in.Text) != ""
	hasImage := in.Image != nil
	switch {
	case hasText && hasImage:
		return nil, domain.NewValidationError("content", "provide text or an image, not both")
	case hasImage:
		if len(in.Image.Data) == 0 {
			return nil, domain.NewValidationError("image", "must not be empty")
		}
		return domain.NewDocument(in.Title, domain.ContentImage, "")
	default:
		return domain.NewDocument(in.Title, domain.ContentText, in.Text)
	}
}

// CreateClass creates a class with the next palette color.
func (s *StudyService) CreateClass(ctx context.Context, name string) (*domain.ClassModule, progression.Award, error) {
	const op = "create_class"
	var class *domain.ClassModule
	award, state, err := s.mutate(ctx, progression.CreateClassXP, func(ctx context.Context) error {
		existing, err := s.classes.ListClasses(ctx)
		if err != nil {
			return err
		}
		class, err = domain.NewClassModule(name, domain.ColorForIndex(len(existing)))
		if err != nil {
			return err
		}
		return s.classes.CreateClass(ctx, class)
	})
	if err != nil {
		return nil, progression.Award{}, NewServiceError(op, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "class created",
		"class_id", class.ID.String(), "color", string(class.Color))
	s.emitProgress(ctx, award, state)
	return class, award, nil
}

// ListClasses returns every class in creation order.
func (s *StudyService) ListClasses(ctx context.Context) ([]*domain.ClassModule, error) {
	classes, err := s.classes.ListClasses(ctx)
	return classes, NewServiceError("list_classes", err)
}

// GetClass returns one class with everything it owns.
func (s *StudyService) GetClass(ctx context.Context, classID uuid.UUID) (*domain.ClassModule, error) {
	class, err := s.classes.GetClass(ctx, classID)
	if err != nil {
		return nil, NewServiceError("get_class", err)
	}
	return class, nil
}

// DeleteClass removes a class, everything it owns, and its open sessions.
// XP and milestones already earned are kept.
func (s *StudyService) DeleteClass(ctx context.Context, classID uuid.UUID) error {
	s.mu.Lock()
	err := s.classes.DeleteClass(ctx, classID)
	s.mu.Unlock()
	if err != nil {
		return NewServiceError("delete_class", err)
	}

	s.sessionsMu.Lock()
	for id, ls := range s.sessions {
		if ls.classID == classID {
			delete(s.sessions, id)
		}
	}
	s.sessionsMu.Unlock()

	logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "class deleted", "class_id", classID.String())
	return nil
}

// LogAssignment records a graded assignment, worth floor(grade*5) XP.
func (s *StudyService) LogAssignment(ctx context.Context, classID uuid.UUID, name string, grade float64) (*domain.Assignment, progression.Award, error) {
	const op = "log_assignment"
	a, err := domain.NewAssignment(name, grade)
	if err != nil {
		return nil, progression.Award{}, NewServiceError(op, err)
	}
	award, state, err := s.mutate(ctx, progression.AssignmentXP(grade), func(ctx context.Context) error {
		return s.classes.AddAssignment(ctx, classID, a)
	})
	if err != nil {
		return nil, progression.Award{}, NewServiceError(op, err)
	}
	s.emitProgress(ctx, award, state)
	return a, award, nil
}

// UploadDocument adds a document to a class. Unless it is ready immediately,
// the document is pending_summary and a summary is requested through the
// document.uploaded event.
func (s *StudyService) UploadDocument(ctx context.Context, classID uuid.UUID, in UploadInput) (*domain.Document, progression.Award, error) {
	const op = "upload_document"
	doc, err := in.document()
	if err != nil {
		return nil, progression.Award{}, NewServiceError(op, err)
	}
	if doc.Kind == domain.ContentText && !s.autoSummarize {
		if err := doc.CompleteSummary(synthesis.TruncateRunes(doc.Content, synthesis.MaxSummaryInput)); err != nil {
			return nil, progression.Award{}, NewServiceError(op, err)
		}
	}
	if doc.Kind == domain.ContentImage {
		s.putImage(doc.ID, in.Image)
	}

	award, state, err := s.mutate(ctx, progression.UploadDocumentXP, func(ctx context.Context) error {
		return s.classes.AddDocument(ctx, classID, doc)
	})
	if err != nil {
		s.takeImage(doc.ID)
		return nil, progression.Award{}, NewServiceError(op, err)
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	log.InfoContext(ctx, "document uploaded",
		"class_id", classID.String(),
		"document_id", doc.ID.String(),
		"kind", string(doc.Kind),
		"status", string(doc.Status))

	needsSummary := doc.Status == domain.DocumentPendingSummary
	err = s.emit(ctx, events.TypeDocumentUploaded, events.DocumentPayload{
		ClassID:      classID,
		DocumentID:   doc.ID,
		Status:       string(doc.Status),
		NeedsSummary: needsSummary,
	})
	if needsSummary && (errors.Is(err, task.ErrQueueFull) || errors.Is(err, task.ErrQueueClosed)) {
		// No summary will run; fail now rather than leave the document pending.
		s.takeImage(doc.ID)
		if failed, ferr := s.recordSummary(ctx, classID, doc.ID, "", err); ferr == nil {
			doc = failed
		}
	}
	s.emitProgress(ctx, award, state)
	return doc, award, nil
}

// GetDocument returns one document of a class.
func (s *StudyService) GetDocument(ctx context.Context, classID, documentID uuid.UUID) (*domain.Document, error) {
	doc, err := s.classes.GetDocument(ctx, classID, documentID)
	if err != nil {
		return nil, NewServiceError("get_document", err)
	}
	return doc, nil
}

// SummarizeDocument generates the summary of a pending document and records
// the outcome. Documents that are no longer pending are left alone. A failed
// generation moves the document to summary_failed and is returned.
func (s *StudyService) SummarizeDocument(ctx context.Context, classID, documentID uuid.UUID) error {
	const op = "summarize_document"
	release, err := s.tracker.Begin(SummaryKey(documentID))
	if err != nil {
		return err
	}
	defer release()
	img := s.takeImage(documentID)

	doc, err := s.classes.GetDocument(ctx, classID, documentID)
	if err != nil {
		return NewServiceError(op, err)
	}
	if doc.Status != domain.DocumentPendingSummary {
		return nil
	}

	var summary string
	var genErr error
	switch doc.Kind {
	case domain.ContentImage:
		if img == nil {
			genErr = errImageUnavailable
			break
		}
		summary, genErr = s.synth.SummarizeImage(ctx, img)
	default:
		summary, genErr = s.synth.SummarizeText(ctx, doc.Content)
	}

	updated, err := s.recordSummary(ctx, classID, documentID, summary, genErr)
	if err != nil {
		return NewServiceError(op, err)
	}
	if updated.Status == domain.DocumentSummaryFailed {
		return NewServiceError(op, errors.New(updated.SummaryError))
	}
	return nil
}

// recordSummary stores a summary outcome on a pending document and emits the
// matching event.
func (s *StudyService) recordSummary(ctx context.Context, classID, documentID uuid.UUID, summary string, cause error) (*domain.Document, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		"class_id", classID.String(),
		"document_id", documentID.String())

	s.mu.Lock()
	doc, err := s.classes.GetDocument(ctx, classID, documentID)
	if err == nil {
		if cause == nil {
			if cerr := doc.CompleteSummary(summary); cerr != nil {
				cause = cerr
			}
		}
		if cause != nil {
			err = doc.FailSummary(errors.New(redact.Error(cause)))
		}
		if err == nil {
			err = s.classes.UpdateDocument(ctx, classID, doc)
		}
	}
	s.mu.Unlock()
	if err != nil {
		log.ErrorContext(ctx, "failed to record summary", "error", err)
		return nil, err
	}

	eventType := events.TypeSummaryCompleted
	if doc.Status == domain.DocumentSummaryFailed {
		eventType = events.TypeSummaryFailed
		log.WarnContext(ctx, "summary failed", "error", doc.SummaryError)
	} else {
		log.InfoContext(ctx, "summary completed")
	}
	_ = s.emit(ctx, eventType, events.DocumentPayload{
		ClassID:    classID,
		DocumentID: documentID,
		Status:     string(doc.Status),
	})
	return doc, nil
}
