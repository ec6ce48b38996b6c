package domain

import "time"

// ReadingGoal represents a user's yearly reading target.
// One goal per (user, year); setting again overwrites the target.
type ReadingGoal struct {
	Entity
	UserID      string `json:"user_id"`
	Year        int    `json:"year"`
	TargetBooks int    `json:"target_books"`
}

// GoalProgress is a goal served with its live completion numbers.
// FinishedBooks counts shelf entries with finished_at in the goal year.
type GoalProgress struct {
	ReadingGoal
	FinishedBooks int     `json:"finished_books"`
	Percent       float64 `json:"percent"` // 0-100, capped at 100
}

// NewGoalProgress combines a goal with a finished-book count.
func NewGoalProgress(goal ReadingGoal, finished int) GoalProgress {
	p := GoalProgress{ReadingGoal: goal, FinishedBooks: finished}
	if goal.TargetBooks > 0 {
		p.Percent = float64(finished) / float64(goal.TargetBooks) * 100
		if p.Percent > 100 {
			p.Percent = 100
		}
	}
	return p
}

// YearValid reports whether a goal year is plausible.
func YearValid(year int) bool {
	return year >= 2000 && year <= time.Now().Year()+1
}
