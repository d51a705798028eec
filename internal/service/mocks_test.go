package service

import (
	"context"
	"sync"
	"testing"

	"github.com/phrazzld/studykit/internal/domain"
	"github.com/phrazzld/studykit/internal/events"
	"github.com/phrazzld/studykit/internal/generation"
	"github.com/phrazzld/studykit/internal/platform/logger"
	"github.com/phrazzld/studykit/internal/platform/memory"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSynthesizer mocks the Synthesizer interface
type MockSynthesizer struct {
	mock.Mock
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, doc *domain.Document, kind domain.MaterialKind) (*domain.Material, error) {
	args := m.Called(ctx, doc, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Material), args.Error(1)
}

func (m *MockSynthesizer) SummarizeText(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

func (m *MockSynthesizer) SummarizeImage(ctx context.Context, img *generation.Image) (string, error) {
	args := m.Called(ctx, img)
	return args.String(0), args.Error(1)
}

// recordingEmitter keeps every emitted event. EmitFn, when set, decides the
// returned error.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.Event
	EmitFn func(ctx context.Context, event *events.Event) error
}

func (e *recordingEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	e.mu.Lock()
	e.events = append(e.events, event)
	e.mu.Unlock()
	if e.EmitFn != nil {
		return e.EmitFn(ctx, event)
	}
	return nil
}

func (e *recordingEmitter) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	svc     *StudyService
	store   *memory.Store
	synth   *MockSynthesizer
	emitter *recordingEmitter
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	log, _ := logger.NewTestLogger()
	f := &fixture{
		store:   memory.New(),
		synth:   &MockSynthesizer{},
		emitter: &recordingEmitter{},
	}
	opts = append([]Option{WithEventEmitter(f.emitter)}, opts...)
	svc, err := NewStudyService(f.store, f.store, f.synth, log, opts...)
	require.NoError(t, err)
	f.svc = svc
	t.Cleanup(func() { f.synth.AssertExpectations(t) })
	return f
}

func (f *fixture) class(t *testing.T, name string) *domain.ClassModule {
	t.Helper()
	c, _, err := f.svc.CreateClass(context.Background(), name)
	require.NoError(t, err)
	return c
}

// readyDocument uploads a text document that skips the AI summary.
func (f *fixture) readyDocument(t *testing.T, class *domain.ClassModule) *domain.Document {
	t.Helper()
	f.svc.autoSummarize = false
	defer func() { f.svc.autoSummarize = true }()
	doc, _, err := f.svc.UploadDocument(context.Background(), class.ID, UploadInput{
		Title: "Cells",
		Text:  "Cells are the basic unit of life.",
	})
	require.NoError(t, err)
	require.Equal(t, domain.DocumentReady, doc.Status)
	return doc
}

func quizQuestions() []domain.Question {
	return []domain.Question{
		{Text: "Unit of life?", Options: []string{"Atom", "Cell", "Organ", "Tissue"}, CorrectIndex: 1},
		{Text: "Powerhouse?", Options: []string{"Nucleus", "Ribosome", "Mitochondria", "Wall"}, CorrectIndex: 2},
		{Text: "Holds DNA?", Options: []string{"Nucleus", "Membrane", "Vacuole", "Lysosome"}, CorrectIndex: 0},
	}
}

func deckCards() []domain.Card {
	return []domain.Card{
		{Front: "Cell", Back: "Unit of life"},
		{Front: "Mitochondria", Back: "Makes ATP"},
		{Front: "Nucleus", Back: "Holds DNA"},
		{Front: "Ribosome", Back: "Builds protein"},
	}
}
