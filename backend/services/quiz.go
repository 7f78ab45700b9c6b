package services

import (
	"context"
	"errors"

	"legalaware/backend/gamification"
	"legalaware/backend/models"
	"legalaware/backend/utils"

	"gorm.io/gorm"
)

// QuestionReview reveals the answer of one question after submission.
type QuestionReview struct {
	gamification.QuestionResult
	Explanation string `json:"explanation"`
}

type QuizGamification struct {
	PointsEarned       int                        `json:"pointsEarned"`
	TotalPoints        int                        `json:"totalPoints"`
	Level              int                        `json:"level"`
	LeveledUp          bool                       `json:"leveledUp"`
	NewLevel           int                        `json:"newLevel"`
	Streak             int                        `json:"streak"`
	NewAchievements    []gamification.Achievement `json:"newAchievements"`
	ChallengeCompleted bool                       `json:"challengeCompleted"`
}

type QuizSubmission struct {
	Score          int              `json:"score"` // percentage
	CorrectCount   int              `json:"correctCount"`
	TotalQuestions int              `json:"totalQuestions"`
	Passed         bool             `json:"passed"`
	PassingScore   int              `json:"passingScore"`
	Results        []QuestionReview `json:"results"`
	Gamification   QuizGamification `json:"gamification"`
}

// LoadQuiz fetches a quiz with its questions in order.
func LoadQuiz(db *gorm.DB, quizID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	}).First(&quiz, quizID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Quiz not found")
		}
		return nil, err
	}
	return &quiz, nil
}

// SubmitQuiz scores answers against the quiz, stores the attempt and awards
// the quiz reward. A nil answer means the question was skipped. Quiz
// challenges are completed through CompleteChallenge, so the submission
// itself never completes one.
func (s *ProgressService) SubmitQuiz(ctx context.Context, userID, quizID uint, answers []*int) (*QuizSubmission, error) {
	now := s.clock()

	var (
		result QuizSubmission
		o      *outcome
		score  gamification.QuizScore
	)
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		quiz, err := LoadQuiz(tx, quizID)
		if err != nil {
			return err
		}
		if len(quiz.Questions) == 0 {
			return utils.ValidationFailed("Quiz has no questions", nil)
		}

		score = gamification.ScoreQuiz(answers, quiz.CorrectAnswers(), quiz.PassingScore)

		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		p := progressOf(user)
		o = newOutcome(userID, p)
		p.Touch(now)

		attempt := models.QuizAttempt{
			UserID:         userID,
			QuizID:         quiz.ID,
			Score:          score.CorrectCount,
			TotalQuestions: score.TotalQuestions,
			Percentage:     score.Percentage,
			Passed:         score.Passed,
			PointsEarned:   score.PointsEarned,
			CompletedAt:    now,
		}
		if err := tx.Create(&attempt).Error; err != nil {
			return err
		}

		p.Award(score.PointsEarned)
		o.award(SourceQuiz, score.PointsEarned)
		achievements := s.unlockAchievements(tx, o, &p, now)

		if err := saveProgress(tx, userID, p); err != nil {
			return err
		}
		if err := tx.Model(&models.Quiz{}).Where("id = ?", quiz.ID).
			UpdateColumn("attempts", gorm.Expr("attempts + ?", 1)).Error; err != nil {
			return err
		}
		o.finish(&p)
		o.emit(EventQuizSubmitted, now, map[string]interface{}{
			"quizId":       quiz.ID,
			"percentage":   score.Percentage,
			"passed":       score.Passed,
			"pointsEarned": score.PointsEarned,
		})

		reviews := make([]QuestionReview, len(score.Results))
		for i, r := range score.Results {
			reviews[i] = QuestionReview{QuestionResult: r, Explanation: quiz.Questions[i].Explanation}
		}

		result = QuizSubmission{
			Score:          score.Percentage,
			CorrectCount:   score.CorrectCount,
			TotalQuestions: score.TotalQuestions,
			Passed:         score.Passed,
			PassingScore:   score.PassingScore,
			Results:        reviews,
			Gamification: QuizGamification{
				PointsEarned:    score.PointsEarned,
				TotalPoints:     p.Points,
				Level:           p.Level,
				LeveledUp:       o.leveledUp(),
				NewLevel:        p.Level,
				Streak:          p.Streak,
				NewAchievements: achievements,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.quiz(score.Passed)
	s.settle(ctx, o, now)
	return &result, nil
}
