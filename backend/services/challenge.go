package services

import (
	"context"

	"legalaware/backend/gamification"
	"legalaware/backend/models"

	"gorm.io/gorm"
)

type DailyChallengeView struct {
	Completed bool                  `json:"completed"`
	Challenge gamification.Template `json:"challenge"`
	Points    int                   `json:"points,omitempty"`
	Message   string                `json:"message,omitempty"`
	Date      string                `json:"date"`
}

// DailyChallenge reports today's challenge and whether the user already
// completed a challenge today.
func (s *ProgressService) DailyChallenge(ctx context.Context, userID uint) (*DailyChallengeView, error) {
	now := s.clock()
	day := gamification.DayKey(now)
	view := &DailyChallengeView{
		Challenge: gamification.TemplateFor(now),
		Date:      day,
	}

	db := s.db.WithContext(ctx)
	if _, err := loadUser(db, userID); err != nil {
		return nil, err
	}

	var done []models.DailyChallenge
	err := db.Where("user_id = ? AND day = ? AND completed = ?", userID, day, true).Limit(1).Find(&done).Error
	if err != nil {
		return nil, err
	}
	if len(done) > 0 {
		view.Completed = true
		view.Points = done[0].Points
		view.Message = "You have already completed today's challenge!"
	}
	return view, nil
}

type ChallengeCompletion struct {
	Success         bool                       `json:"success"`
	PointsAwarded   int                        `json:"pointsAwarded"`
	Points          int                        `json:"points"` // new total
	Level           int                        `json:"level"`
	LeveledUp       bool                       `json:"leveledUp"`
	NewLevel        int                        `json:"newLevel"`
	Streak          int                        `json:"streak"`
	NewAchievements []gamification.Achievement `json:"newAchievements"`
}

// CompleteChallenge marks today's challenge complete for points, or
// DefaultChallengePoints when points is not positive.
func (s *ProgressService) CompleteChallenge(ctx context.Context, userID uint, points int) (*ChallengeCompletion, error) {
	if points <= 0 {
		points = gamification.DefaultChallengePoints
	}
	now := s.clock()
	day := gamification.DayKey(now)
	template := gamification.TemplateFor(now)

	var (
		result ChallengeCompletion
		o      *outcome
	)
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		done, err := challengeCompleted(tx, userID, day)
		if err != nil {
			return err
		}
		if done {
			return ErrChallengeAlreadyCompleted
		}
		created, err := completeChallenge(tx, userID, day, template.Type, points)
		if err != nil {
			return err
		}
		if !created {
			return ErrChallengeAlreadyCompleted
		}

		p := progressOf(user)
		o = newOutcome(userID, p)
		p.Award(points)
		o.award(SourceChallenge, points)
		o.challenge = template.Type
		p.Touch(now)
		achievements := s.unlockAchievements(tx, o, &p, now)

		if err := saveProgress(tx, userID, p); err != nil {
			return err
		}
		o.finish(&p)

		result = ChallengeCompletion{
			Success:         true,
			PointsAwarded:   points,
			Points:          p.Points,
			Level:           p.Level,
			LeveledUp:       o.leveledUp(),
			NewLevel:        p.Level,
			Streak:          p.Streak,
			NewAchievements: achievements,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.settle(ctx, o, now)
	return &result, nil
}
