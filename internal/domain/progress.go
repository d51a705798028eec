package domain

import "slices"

// ProgressState is the single process-wide progression value. TotalXP only
// grows and Unlocked only gains entries.
type ProgressState struct {
	TotalXP  int      `json:"total_xp"`
	Unlocked []string `json:"unlocked"`
}

// Has reports whether the milestone id has been unlocked.
func (p ProgressState) Has(id string) bool {
	return slices.Contains(p.Unlocked, id)
}

// Clone copies the unlocked set so the result can be mutated independently.
func (p ProgressState) Clone() ProgressState {
	p.Unlocked = slices.Clone(p.Unlocked)
	return p
}

// Snapshot is the read-only view of the library that milestone predicates
// evaluate.
type Snapshot struct {
	ClassCount       int
	DocumentCount    int
	QuizScores       []int
	AssignmentGrades []float64
}

// TakeSnapshot counts the given classes into a Snapshot.
func TakeSnapshot(classes []*ClassModule) Snapshot {
	s := Snapshot{ClassCount: len(classes)}
	for _, c := range classes {
		s.DocumentCount += len(c.Documents)
		for _, r := range c.Results {
			if r.Kind == MaterialQuiz {
				s.QuizScores = append(s.QuizScores, r.Score)
			}
		}
		for _, a := range c.Assignments {
			s.AssignmentGrades = append(s.AssignmentGrades, a.Grade)
		}
	}
	return s
}
