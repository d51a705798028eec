package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/studykit/internal/domain"
	"github.com/phrazzld/studykit/internal/events"
	"github.com/phrazzld/studykit/internal/generation"
	"github.com/phrazzld/studykit/internal/platform/logger"
	"github.com/phrazzld/studykit/internal/redact"
	"github.com/phrazzld/studykit/internal/store"
)

// Synthesizer produces summaries and study materials.
// *synthesis.Synthesizer satisfies it.
type Synthesizer interface {
	Synthesize(ctx context.Context, doc *domain.Document, kind domain.MaterialKind) (*domain.Material, error)
	SummarizeText(ctx context.Context, text string) (string, error)
	SummarizeImage(ctx context.Context, img *generation.Image) (string, error)
}

// Option configures a StudyService.
type Option func(*StudyService)

// WithAutoSummarize controls whether text uploads wait for an AI summary.
// When off, text documents are ready immediately with their leading content
// as summary. Image documents are always summarized.
func WithAutoSummarize(on bool) Option {
	return func(s *StudyService) { s.autoSummarize = on }
}

// WithEventEmitter sets the emitter that receives service events.
func WithEventEmitter(e events.EventEmitter) Option {
	return func(s *StudyService) {
		if e != nil {
			s.emitter = e
		}
	}
}

// WithTransactor sets how a write and its progression update are made
// atomic. By default the class store is used when it implements
// store.Transactor.
func WithTransactor(t store.Transactor) Option {
	return func(s *StudyService) {
		if t != nil {
			s.tx = t
		}
	}
}

// StudyService is the single entry point for every user action.
type StudyService struct {
	classes       store.ClassStore
	progress      store.ProgressStore
	tx            store.Transactor
	synth         Synthesizer
	emitter       events.EventEmitter
	tracker       *Tracker
	logger        *slog.Logger
	autoSummarize bool

	// mu serializes store and progression mutations. Generation never runs
	// while it is held.
	mu sync.Mutex

	imagesMu sync.Mutex
	images   map[uuid.UUID]*generation.Image

	sessionsMu sync.Mutex
	sessions   map[uuid.UUID]*liveSession
}

// NewStudyService creates the service. If log is nil, slog.Default() is used.
func NewStudyService(
	classes store.ClassStore,
	progress store.ProgressStore,
	synth Synthesizer,
	log *slog.Logger,
	opts ...Option,
) (*StudyService, error) {
	if classes == nil {
		return nil, errors.New("class store cannot be nil")
	}
	if progress == nil {
		return nil, errors.New("progress store cannot be nil")
	}
	if synth == nil {
		return nil, errors.New("synthesizer cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	s := &StudyService{
		classes:       classes,
		progress:      progress,
		tx:            store.NoTransaction{},
		synth:         synth,
		emitter:       events.NopEmitter{},
		tracker:       NewTracker(),
		logger:        log.With("component", "study_service"),
		autoSummarize: true,
		images:        make(map[uuid.UUID]*generation.Image),
		sessions:      make(map[uuid.UUID]*liveSession),
	}
	if t, ok := classes.(store.Transactor); ok {
		s.tx = t
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IsBusy reports whether a material of kind is being generated for the document.
func (s *StudyService) IsBusy(documentID uuid.UUID, kind domain.MaterialKind) bool {
	return s.tracker.Busy(MaterialKey(documentID, kind))
}

// GeneratingKinds lists the material kinds being generated for the document.
func (s *StudyService) GeneratingKinds(documentID uuid.UUID) []domain.MaterialKind {
	kinds := []domain.MaterialKind{}
	for _, kind := range []domain.MaterialKind{domain.MaterialQuiz, domain.MaterialFlashcards} {
		if s.IsBusy(documentID, kind) {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// emit publishes an event. Failures are logged and returned.
func (s *StudyService) emit(ctx context.Context, eventType string, payload any) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	event, err := events.NewEvent(eventType, payload)
	if err != nil {
		log.ErrorContext(ctx, "failed to build event", "event_type", eventType, "error", err)
		return err
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.WarnContext(ctx, "event delivery failed",
			"event_type", eventType,
			"error", redact.Error(err))
		return err
	}
	return nil
}

func (s *StudyService) putImage(documentID uuid.UUID, img *generation.Image) {
	s.imagesMu.Lock()
	defer s.imagesMu.Unlock()
	s.images[documentID] = img
}

// takeImage removes and returns the pending image of a document.
func (s *StudyService) takeImage(documentID uuid.UUID) *generation.Image {
	s.imagesMu.Lock()
	defer s.imagesMu.Unlock()
	img := s.images[documentID]
	delete(s.images, documentID)
	return img
}
