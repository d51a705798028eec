package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/studykit/internal/domain"
	"github.com/phrazzld/studykit/internal/events"
	"github.com/phrazzld/studykit/internal/platform/logger"
	"github.com/phrazzld/studykit/internal/progression"
)

// ClassSummary counts what one class holds.
type ClassSummary struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Color       domain.ColorTag `json:"color"`
	Documents   int             `json:"documents"`
	Materials   int             `json:"materials"`
	Assignments int             `json:"assignments"`
	Results     int             `json:"results"`
}

// DashboardView is the progression dashboard plus per-class counts.
type DashboardView struct {
	progression.Dashboard
	Classes []ClassSummary `json:"classes"`
}

// Dashboard returns the current progression numbers.
func (s *StudyService) Dashboard(ctx context.Context) (*DashboardView, error) {
	const op = "dashboard"
	state, err := s.progress.LoadProgress(ctx)
	if err != nil {
		return nil, NewServiceError(op, err)
	}
	classes, err := s.classes.ListClasses(ctx)
	if err != nil {
		return nil, NewServiceError(op, err)
	}

	view := &DashboardView{
		Dashboard: progression.BuildDashboard(state),
		Classes:   make([]ClassSummary, 0, len(classes)),
	}
	for _, c := range classes {
		view.Classes = append(view.Classes, ClassSummary{
			ID:          c.ID,
			Name:        c.Name,
			Color:       c.Color,
			Documents:   len(c.Documents),
			Materials:   len(c.Materials),
			Assignments: len(c.Assignments),
			Results:     len(c.Results),
		})
	}
	return view, nil
}

// mutate runs fn and then the progression tick for gain, both under s.mu and
// inside one transaction: when either fails, neither is kept. The snapshot is
// taken after fn so milestones see the action being rewarded.
func (s *StudyService) mutate(ctx context.Context, gain int, fn func(ctx context.Context) error) (progression.Award, domain.ProgressState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		award progression.Award
		next  domain.ProgressState
	)
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return err
		}
		var err error
		award, next, err = s.awardLocked(ctx, gain)
		return err
	})
	if err != nil {
		return progression.Award{}, domain.ProgressState{}, err
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	log.InfoContext(ctx, "xp awarded",
		"xp_gained", award.XPGained,
		"total_xp", next.TotalXP,
		"level", award.LevelAfter)
	for _, m := range award.Unlocked {
		log.InfoContext(ctx, "milestone unlocked", "milestone_id", m.ID, "xp_reward", m.XPReward)
	}
	return award, next, nil
}

// awardLocked applies one progression tick. Callers hold s.mu.
func (s *StudyService) awardLocked(ctx context.Context, gain int) (progression.Award, domain.ProgressState, error) {
	classes, err := s.classes.ListClasses(ctx)
	if err != nil {
		return progression.Award{}, domain.ProgressState{}, fmt.Errorf("snapshot library: %w", err)
	}
	state, err := s.progress.LoadProgress(ctx)
	if err != nil {
		return progression.Award{}, domain.ProgressState{}, fmt.Errorf("load progress: %w", err)
	}

	next, award, err := progression.Apply(state, domain.TakeSnapshot(classes), gain)
	if err != nil {
		return progression.Award{}, domain.ProgressState{}, err
	}
	if err := s.progress.SaveProgress(ctx, next); err != nil {
		return progression.Award{}, domain.ProgressState{}, fmt.Errorf("save progress: %w", err)
	}
	return award, next, nil
}

// emitProgress publishes milestone and level-up events for award.
func (s *StudyService) emitProgress(ctx context.Context, award progression.Award, state domain.ProgressState) {
	for _, m := range award.Unlocked {
		_ = s.emit(ctx, events.TypeMilestoneUnlocked, events.ProgressPayload{
			MilestoneID: m.ID,
			Level:       award.LevelAfter,
			TotalXP:     state.TotalXP,
		})
	}
	if award.LeveledUp() {
		_ = s.emit(ctx, events.TypeLevelUp, events.ProgressPayload{
			Level:   award.LevelAfter,
			TotalXP: state.TotalXP,
		})
	}
}
