package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studykit/internal/domain"
	"github.com/phrazzld/studykit/internal/events"
	"github.com/phrazzld/studykit/internal/progression"
	"github.com/phrazzld/studykit/internal/session"
	"github.com/phrazzld/studykit/internal/synthesis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGenerateMaterial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.class(t, "Biology")
	doc := f.readyDocument(t, c)

	quiz, err := domain.NewQuizMaterial("Cells Quiz", doc.ID, quizQuestions())
	require.NoError(t, err)
	f.synth.On("Synthesize", mock.Anything, mock.AnythingOfType("*domain.Document"), domain.MaterialQuiz).
		Return(quiz, nil).Once()

	m, award, err := f.svc.GenerateMaterial(ctx, c.ID, doc.ID, domain.MaterialQuiz)

	require.NoError(t, err)
	assert.Equal(t, quiz.ID, m.ID)
	assert.Equal(t, progression.GenerateMaterialXP, award.XPGained)
	assert.Contains(t, f.emitter.types(), events.TypeMaterialCreated)

	stored, err := f.svc.GetMaterial(ctx, c.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, quiz.Quiz.Questions, stored.Quiz.Questions)
}

func TestGenerateMaterial_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.class(t, "Biology")

	pending, _, err := f.svc.UploadDocument(ctx, c.ID, UploadInput{Title: "Cells", Text: "Cells."})
	require.NoError(t, err)

	t.Run("document not ready", func(t *testing.T) {
		_, _, err := f.svc.GenerateMaterial(ctx, c.ID, pending.ID, domain.MaterialQuiz)
		assert.ErrorIs(t, err, ErrDocumentNotReady)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, _, err := f.svc.GenerateMaterial(ctx, c.ID, pending.ID, domain.MaterialKind("essay"))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("malformed response", func(t *testing.T) {
		doc := f.readyDocument(t, c)
		f.synth.On("Synthesize", mock.Anything, mock.Anything, domain.MaterialFlashcards).
			Return(nil, &synthesis.SynthesisError{Kind: domain.MaterialFlashcards, Cause: assert.AnError}).Once()

		_, _, err := f.svc.GenerateMaterial(ctx, c.ID, doc.ID, domain.MaterialFlashcards)

		assert.ErrorIs(t, err, synthesis.ErrMalformedResponse)
		cls, err := f.svc.GetClass(ctx, c.ID)
		require.NoError(t, err)
		assert.Empty(t, cls.Materials)
	})
}

func TestGenerateMaterial_BusyWhileInFlight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.class(t, "Biology")
	doc := f.readyDocument(t, c)

	deck, err := domain.NewDeckMaterial("Cells Deck", doc.ID, deckCards())
	require.NoError(t, err)
	entered := make(chan struct{})
	release := make(chan struct{})
	f.synth.On("Synthesize", mock.Anything, mock.Anything, domain.MaterialFlashcards).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(deck, nil).Once()

	done := make(chan error, 1)
	go func() {
		_, _, err := f.svc.GenerateMaterial(ctx, c.ID, doc.ID, domain.MaterialFlashcards)
		done <- err
	}()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("synthesis did not start")
	}
	assert.True(t, f.svc.IsBusy(doc.ID, domain.MaterialFlashcards))
	assert.False(t, f.svc.IsBusy(doc.ID, domain.MaterialQuiz))

	_, _, err = f.svc.GenerateMaterial(ctx, c.ID, doc.ID, domain.MaterialFlashcards)
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, f.svc.IsBusy(doc.ID, domain.MaterialFlashcards))
}

// addMaterial stores m directly so session tests need no synthesizer.
func (f *fixture) addMaterial(t *testing.T, classID uuid.UUID, m *domain.Material) {
	t.Helper()
	require.NoError(t, f.store.AddMaterial(context.Background(), classID, m))
}

func TestQuizSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.class(t, "Biology")
	doc := f.readyDocument(t, c)
	quiz, err := domain.NewQuizMaterial("Cells Quiz", doc.ID, quizQuestions())
	require.NoError(t, err)
	f.addMaterial(t, c.ID, quiz)

	view, err := f.svc.StartSession(ctx, c.ID, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, session.PhaseQuestion, view.State.Phase)
	assert.Equal(t, 3, view.State.Total)
	require.NotNil(t, view.State.Question)
	assert.Equal(t, quizQuestions()[0].Options, view.State.Question.Options)

	step, err := f.svc.Answer(ctx, view.ID, 1)
	require.NoError(t, err)
	assert.True(t, step.Answer.Correct)
	assert.Nil(t, step.Outcome)

	step, err = f.svc.Answer(ctx, view.ID, 0)
	require.NoError(t, err)
	assert.False(t, step.Answer.Correct)
	assert.Equal(t, 2, step.Answer.CorrectIndex)

	step, err = f.svc.Answer(ctx, view.ID, 0)
	require.NoError(t, err)
	require.NotNil(t, step.Outcome)
	assert.Equal(t, 67, step.Outcome.Score)
	require.NotNil(t, step.Award)
	assert.Equal(t, progression.CompleteQuizXP, step.Award.XPGained)
	assert.Equal(t, session.PhaseScored, step.Session.State.Phase)
	assert.Contains(t, f.emitter.types(), events.TypeSessionCompleted)

	_, err = f.svc.GetSession(ctx, view.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	cls, err := f.svc.GetClass(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, cls.Results, 1)
	assert.Equal(t, 67, cls.Results[0].Score)
}

func TestQuizSession_PerfectBonus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.class(t, "Biology")
	doc := f.readyDocument(t, c)
	quiz, err := domain.NewQuizMaterial("Cells Quiz", doc.ID, quizQuestions())
	require.NoError(t, err)
	f.addMaterial(t, c.ID, quiz)

	view, err := f.svc.StartSession(ctx, c.ID, quiz.ID)
	require.NoError(t, err)

	var step *StepResult
	for _, q := range quizQuestions() {
		step, err = f.svc.Answer(ctx, view.ID, q.CorrectIndex)
		require.NoError(t, err)
	}

	assert.Equal(t, 100, step.Outcome.Score)
	assert.Equal(t, progression.CompleteQuizXP+progression.PerfectQuizBonusXP, step.Award.XPGained)
}

func TestFlashcardSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.class(t, "Biology")
	doc := f.readyDocument(t, c)
	deck, err := domain.NewDeckMaterial("Cells Deck", doc.ID, deckCards())
	require.NoError(t, err)
	f.addMaterial(t, c.ID, deck)

	view, err := f.svc.StartSession(ctx, c.ID, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, session.PhaseCardFront, view.State.Phase)

	_, err = f.svc.Mark(ctx, view.ID, true)
	assert.ErrorIs(t, err, session.ErrNotRevealed)
	_, err = f.svc.Answer(ctx, view.ID, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	var step *StepResult
	for i, known := range []bool{true, false, true, false} {
		flipped, err := f.svc.Flip(ctx, view.ID)
		require.NoError(t, err)
		assert.Equal(t, deckCards()[i].Back, flipped.State.Card.Back)

		step, err = f.svc.Mark(ctx, view.ID, known)
		require.NoError(t, err)
	}

	require.NotNil(t, step.Outcome)
	assert.Equal(t, 50, step.Outcome.Score)
	assert.Equal(t, progression.StudyDeckXP, step.Award.XPGained)
}

func TestSessions_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := f.svc.GetSession(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.Answer(ctx, id, 0)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.Flip(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.Mark(ctx, id, true)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDeleteClass_DropsOpenSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.class(t, "Biology")
	doc := f.readyDocument(t, c)
	deck, err := domain.NewDeckMaterial("Cells Deck", doc.ID, deckCards())
	require.NoError(t, err)
	f.addMaterial(t, c.ID, deck)
	view, err := f.svc.StartSession(ctx, c.ID, deck.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteClass(ctx, c.ID))

	_, err = f.svc.GetSession(ctx, view.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
