package services

import (
	"context"
	"errors"

	"legalaware/backend/gamification"
	"legalaware/backend/models"
	"legalaware/backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReadResult struct {
	ArticlesReadToday  int                        `json:"articlesReadToday"`
	ChallengeCompleted bool                       `json:"challengeCompleted"`
	PointsEarned       int                        `json:"pointsEarned"`
	TotalPoints        int                        `json:"totalPoints"`
	Streak             int                        `json:"streak"`
	Level              int                        `json:"level"`
	NewAchievements    []gamification.Achievement `json:"newAchievements"`
}

// RecordArticleRead counts a distinct article read for today and completes
// the reading challenge once the threshold is reached.
func (s *ProgressService) RecordArticleRead(ctx context.Context, userID, articleID uint) (*ReadResult, error) {
	now := s.clock()
	day := gamification.DayKey(now)

	var (
		result ReadResult
		o      *outcome
	)
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var article models.Article
		if err := tx.Select("id").First(&article, articleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("Article not found")
			}
			return err
		}

		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		p := progressOf(user)
		o = newOutcome(userID, p)
		p.Touch(now)

		read := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.DailyArticleRead{
			UserID:    userID,
			Day:       day,
			ArticleID: articleID,
		})
		if read.Error != nil {
			return read.Error
		}

		var count int
		if read.RowsAffected == 1 {
			count, err = bumpActivity(tx, userID, day, gamification.ActivityReading)
		} else {
			count, err = activityCount(tx, userID, day, gamification.ActivityReading)
		}
		if err != nil {
			return err
		}

		challenge, err := s.evaluateChallenge(tx, o, &p, day, gamification.ActivityReading, count)
		if err != nil {
			return err
		}
		achievements := s.unlockAchievements(tx, o, &p, now)

		if err := saveProgress(tx, userID, p); err != nil {
			return err
		}
		o.finish(&p)
		o.emit(EventArticleRead, now, map[string]interface{}{"articleId": articleID, "articlesReadToday": count})

		result = ReadResult{
			ArticlesReadToday:  count,
			ChallengeCompleted: challenge.Completed,
			PointsEarned:       challenge.PointsAwarded,
			TotalPoints:        p.Points,
			Streak:             p.Streak,
			Level:              p.Level,
			NewAchievements:    achievements,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.settle(ctx, o, now)
	return &result, nil
}

type CommentResult struct {
	ChallengeCompleted bool                       `json:"challengeCompleted"`
	PointsEarned       int                        `json:"pointsEarned"`
	TotalPoints        int                        `json:"totalPoints"`
	Streak             int                        `json:"streak"`
	CommentsToday      int                        `json:"commentsToday"`
	NewAchievements    []gamification.Achievement `json:"newAchievements"`
}

// RecordComment counts a comment the user has already posted.
func (s *ProgressService) RecordComment(ctx context.Context, userID, commentID uint) (*CommentResult, error) {
	now := s.clock()
	day := gamification.DayKey(now)

	var (
		result CommentResult
		o      *outcome
	)
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		p := progressOf(user)
		o = newOutcome(userID, p)
		p.Touch(now)

		count, err := bumpActivity(tx, userID, day, gamification.ActivityCommenting)
		if err != nil {
			return err
		}
		challenge, err := s.evaluateChallenge(tx, o, &p, day, gamification.ActivityCommenting, count)
		if err != nil {
			return err
		}
		achievements := s.unlockAchievements(tx, o, &p, now)

		if err := saveProgress(tx, userID, p); err != nil {
			return err
		}
		o.finish(&p)
		o.emit(EventCommentCreated, now, map[string]interface{}{"commentId": commentID, "commentsToday": count})

		result = CommentResult{
			ChallengeCompleted: challenge.Completed,
			PointsEarned:       challenge.PointsAwarded,
			TotalPoints:        p.Points,
			Streak:             p.Streak,
			CommentsToday:      count,
			NewAchievements:    achievements,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.settle(ctx, o, now)
	return &result, nil
}

// RecordActivity advances the streak without touching any counter. A streak
// milestone reached this way still unlocks its achievement.
func (s *ProgressService) RecordActivity(ctx context.Context, userID uint) ([]gamification.Achievement, error) {
	now := s.clock()

	var (
		granted []gamification.Achievement
		o       *outcome
	)
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		p := progressOf(user)
		o = newOutcome(userID, p)
		p.Touch(now)

		granted = s.unlockAchievements(tx, o, &p, now)
		o.finish(&p)
		return saveProgress(tx, userID, p)
	})
	if err != nil {
		return nil, err
	}

	s.settle(ctx, o, now)
	return granted, nil
}
