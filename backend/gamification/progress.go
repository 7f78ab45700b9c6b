package gamification

import "time"

// PointsPerLevel is the width of one level on the points axis.
const PointsPerLevel = 100

// LevelFor derives the level from a point total.
func LevelFor(points int) int {
	if points < 0 {
		points = 0
	}
	return points/PointsPerLevel + 1
}

// Progress is the mutable gamification state of one user.
type Progress struct {
	Points       int
	Level        int
	Streak       int
	LastActivity *time.Time
}

// Award is the outcome of adding points to a Progress.
type Award struct {
	Amount    int  `json:"amount"`
	NewTotal  int  `json:"newTotal"`
	NewLevel  int  `json:"newLevel"`
	LeveledUp bool `json:"leveledUp"`
}

// Award adds amount to the point total and recomputes the level.
// Negative amounts are ignored.
func (p *Progress) Award(amount int) Award {
	before := LevelFor(p.Points)
	if amount > 0 {
		p.Points += amount
	}
	p.Level = LevelFor(p.Points)
	return Award{
		Amount:    max(amount, 0),
		NewTotal:  p.Points,
		NewLevel:  p.Level,
		LeveledUp: p.Level > before,
	}
}

// Touch records one qualifying activity at now.
func (p *Progress) Touch(now time.Time) {
	s := AdvanceStreak(Streak{Count: p.Streak, LastActivity: p.LastActivity}, now)
	p.Streak = s.Count
	p.LastActivity = s.LastActivity
}

// ProgressToNextLevel reports how far, in whole percent, points are through
// the current level.
func ProgressToNextLevel(points int) int {
	if points < 0 {
		points = 0
	}
	return (points % PointsPerLevel) * 100 / PointsPerLevel
}

// NextLevelPoints is the point total at which the next level starts.
func NextLevelPoints(points int) int {
	return LevelFor(points) * PointsPerLevel
}
