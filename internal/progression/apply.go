package progression

import "github.com/phrazzld/studykit/internal/domain"

// Award describes what one progression tick changed.
type Award struct {
	XPGained    int         `json:"xp_gained"`
	LevelBefore int         `json:"level_before"`
	LevelAfter  int         `json:"level_after"`
	Unlocked    []Milestone `json:"unlocked"`
}

// LeveledUp reports whether the tick crossed a level boundary.
func (a Award) LeveledUp() bool {
	return a.LevelAfter > a.LevelBefore
}

// Apply grants gain, then evaluates and unlocks milestones against snapshot
// (which must already reflect the action being rewarded).
func Apply(state domain.ProgressState, snapshot domain.Snapshot, gain int) (domain.ProgressState, Award, error) {
	before := state.TotalXP
	next, err := AddXP(state, gain)
	if err != nil {
		return state, Award{}, err
	}
	unlocked := EvaluateMilestones(snapshot, next)
	next = Unlock(next, unlocked)

	return next, Award{
		XPGained:    next.TotalXP - before,
		LevelBefore: LevelOf(before),
		LevelAfter:  LevelOf(next.TotalXP),
		Unlocked:    unlocked,
	}, nil
}

// Dashboard is the read model of the progression state.
type Dashboard struct {
	TotalXP          int         `json:"total_xp"`
	Level            int         `json:"level"`
	XPIntoLevel      int         `json:"xp_into_level"`
	XPToNextLevel    int         `json:"xp_to_next_level"`
	MilestonesEarned int         `json:"milestones_earned"`
	LatestMilestone  *Milestone  `json:"latest_milestone,omitempty"`
	Earned           []Milestone `json:"earned"`
	Catalog          []Milestone `json:"catalog"`
}

// BuildDashboard summarises state for display.
func BuildDashboard(state domain.ProgressState) Dashboard {
	d := Dashboard{
		TotalXP:          state.TotalXP,
		Level:            LevelOf(state.TotalXP),
		XPIntoLevel:      XPIntoLevel(state.TotalXP),
		XPToNextLevel:    XPToNextLevel(state.TotalXP),
		MilestonesEarned: len(state.Unlocked),
		Earned:           []Milestone{},
		Catalog:          Catalog(),
	}
	for _, id := range state.Unlocked {
		if m, ok := Lookup(id); ok {
			d.Earned = append(d.Earned, m)
		}
	}
	if n := len(d.Earned); n > 0 {
		latest := d.Earned[n-1]
		d.LatestMilestone = &latest
	}
	return d
}
