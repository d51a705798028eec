package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/studykit/internal/domain"
	"github.com/phrazzld/studykit/internal/events"
	"github.com/phrazzld/studykit/internal/platform/logger"
	"github.com/phrazzld/studykit/internal/progression"
	"github.com/phrazzld/studykit/internal/session"
)

// liveSession is an open study session. Finished sessions are dropped.
type liveSession struct {
	id      uuid.UUID
	classID uuid.UUID
	title   string
	quiz    *session.Quiz
	deck    *session.Flashcards
}

func (l *liveSession) session() session.Session {
	if l.quiz != nil {
		return l.quiz
	}
	return l.deck
}

func (l *liveSession) view() SessionView {
	sess := l.session()
	return SessionView{
		ID:         l.id,
		ClassID:    l.classID,
		MaterialID: sess.MaterialID(),
		Title:      l.title,
		State:      sess.State(),
	}
}

// SessionView is the presentation of an open or just-finished session.
type SessionView struct {
	ID         uuid.UUID     `json:"id"`
	ClassID    uuid.UUID     `json:"class_id"`
	MaterialID uuid.UUID     `json:"material_id"`
	Title      string        `json:"title"`
	State      session.State `json:"state"`
}

// StepResult is the effect of one session input. Outcome and Award are set
// on the input that finishes the session.
type StepResult struct {
	Session SessionView           `json:"session"`
	Answer  *session.AnswerResult `json:"answer,omitempty"`
	Mark    *session.MarkResult   `json:"mark,omitempty"`
	Outcome *session.Outcome      `json:"outcome,omitempty"`
	Award   *progression.Award    `json:"award,omitempty"`
}

// StartSession opens a quiz or flashcard session over a material.
func (s *StudyService) StartSession(ctx context.Context, classID, materialID uuid.UUID) (*SessionView, error) {
	const op = "start_session"
	m, err := s.classes.GetMaterial(ctx, classID, materialID)
	if err != nil {
		return nil, NewServiceError(op, err)
	}

	ls := &liveSession{id: domain.NewID(), classID: classID, title: m.Title}
	switch m.Kind {
	case domain.MaterialQuiz:
		ls.quiz, err = session.NewQuiz(m)
	default:
		ls.deck, err = session.NewFlashcards(m)
	}
	if err != nil {
		return nil, NewServiceError(op, err)
	}

	s.sessionsMu.Lock()
	s.sessions[ls.id] = ls
	view := ls.view()
	s.sessionsMu.Unlock()

	logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "session started",
		"session_id", ls.id.String(),
		"material_id", materialID.String(),
		"kind", string(m.Kind))
	return &view, nil
}

// GetSession returns the current view of an open session.
func (s *StudyService) GetSession(_ context.Context, sessionID uuid.UUID) (*SessionView, error) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	ls, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	view := ls.view()
	return &view, nil
}

// Answer answers the current quiz question.
func (s *StudyService) Answer(ctx context.Context, sessionID uuid.UUID, option int) (*StepResult, error) {
	const op = "answer"
	s.sessionsMu.Lock()
	ls, ok := s.sessions[sessionID]
	if !ok {
		s.sessionsMu.Unlock()
		return nil, ErrSessionNotFound
	}
	if ls.quiz == nil {
		s.sessionsMu.Unlock()
		return nil, NewServiceError(op, domain.NewValidationError("session", "is not a quiz"))
	}
	res, err := ls.quiz.Answer(option)
	view := ls.view()
	s.sessionsMu.Unlock()
	if err != nil {
		return nil, NewServiceError(op, err)
	}

	step := &StepResult{Session: view, Answer: &res}
	if res.Finished {
		if err := s.finish(ctx, ls, step); err != nil {
			return nil, NewServiceError(op, err)
		}
	}
	return step, nil
}

// Flip turns the current flashcard over.
func (s *StudyService) Flip(_ context.Context, sessionID uuid.UUID) (*SessionView, error) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	ls, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if ls.deck == nil {
		return nil, NewServiceError("flip", domain.NewValidationError("session", "is not a flashcard session"))
	}
	if err := ls.deck.Flip(); err != nil {
		return nil, NewServiceError("flip", err)
	}
	view := ls.view()
	return &view, nil
}

// Mark records whether the revealed flashcard was known.
func (s *StudyService) Mark(ctx context.Context, sessionID uuid.UUID, known bool) (*StepResult, error) {
	const op = "mark"
	s.sessionsMu.Lock()
	ls, ok := s.sessions[sessionID]
	if !ok {
		s.sessionsMu.Unlock()
		return nil, ErrSessionNotFound
	}
	if ls.deck == nil {
		s.sessionsMu.Unlock()
		return nil, NewServiceError(op, domain.NewValidationError("session", "is not a flashcard session"))
	}
	var res session.MarkResult
	var err error
	if known {
		res, err = ls.deck.MarkKnown()
	} else {
		res, err = ls.deck.MarkUnknown()
	}
	view := ls.view()
	s.sessionsMu.Unlock()
	if err != nil {
		return nil, NewServiceError(op, err)
	}

	step := &StepResult{Session: view, Mark: &res}
	if res.Finished {
		if err := s.finish(ctx, ls, step); err != nil {
			return nil, NewServiceError(op, err)
		}
	}
	return step, nil
}

// finish records the result of a scored session and awards XP: 150 plus a
// 100 bonus for a perfect quiz, a fixed amount for a deck.
func (s *StudyService) finish(ctx context.Context, ls *liveSession, step *StepResult) error {
	s.sessionsMu.Lock()
	delete(s.sessions, ls.id)
	out, _ := ls.session().Outcome()
	s.sessionsMu.Unlock()

	result, err := domain.NewStudyResult(out.MaterialID, out.Kind, out.Score, out.Correct, out.Total)
	if err != nil {
		return err
	}
	gain := progression.StudyDeckXP
	if out.Kind == domain.MaterialQuiz {
		gain = progression.QuizXP(out.Perfect())
	}

	award, state, err := s.mutate(ctx, gain, func(ctx context.Context) error {
		return s.classes.AddResult(ctx, ls.classID, result)
	})
	if err != nil {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "session completed",
		"session_id", ls.id.String(),
		"kind", string(out.Kind),
		"score", out.Score)
	_ = s.emit(ctx, events.TypeSessionCompleted, events.SessionPayload{
		ClassID:    ls.classID,
		MaterialID: out.MaterialID,
		Kind:       string(out.Kind),
		Score:      out.Score,
		XPGained:   award.XPGained,
	})
	s.emitProgress(ctx, award, state)

	step.Outcome = &out
	step.Award = &award
	return nil
}
