package services

import (
	"context"
	"math"
	"time"

	"legalaware/backend/gamification"
	"legalaware/backend/models"
	"legalaware/backend/utils"
)

type AchievementStatus struct {
	gamification.Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

type AchievementsView struct {
	Achievements []AchievementStatus `json:"achievements"`
	TotalPoints  int                 `json:"totalPoints"`
	Level        int                 `json:"level"`
	Streak       int                 `json:"streak"`
}

// Achievements lists the whole catalog with the user's unlock state.
func (s *ProgressService) Achievements(ctx context.Context, userID uint) (*AchievementsView, error) {
	db := s.db.WithContext(ctx)
	user, err := loadUser(db, userID)
	if err != nil {
		return nil, err
	}

	var rows []models.UserAchievement
	if err := db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, utils.InternalError("Failed to fetch achievements", err)
	}
	unlocked := make(map[string]time.Time, len(rows))
	for _, r := range rows {
		unlocked[r.Name] = r.UnlockedAt
	}

	catalog := gamification.Catalog()
	view := &AchievementsView{
		Achievements: make([]AchievementStatus, len(catalog)),
		TotalPoints:  user.Points,
		Level:        gamification.LevelFor(user.Points),
		Streak:       user.Streak,
	}
	for i, a := range catalog {
		status := AchievementStatus{Achievement: a}
		if at, ok := unlocked[a.Name]; ok {
			status.Unlocked = true
			status.UnlockedAt = &at
		}
		view.Achievements[i] = status
	}
	return view, nil
}

type ActivityStats struct {
	TotalQuizzes        int `json:"totalQuizzes"`
	AverageScore        int `json:"averageScore"`
	PerfectScores       int `json:"perfectScores"`
	BookmarkedArticles  int `json:"bookmarkedArticles"`
	ChallengesCompleted int `json:"challengesCompleted"`
}

type StatsView struct {
	Points              int           `json:"points"`
	Level               int           `json:"level"`
	Streak              int           `json:"streak"`
	ProgressToNextLevel int           `json:"progressToNextLevel"`
	NextLevelPoints     int           `json:"nextLevelPoints"`
	Achievements        int           `json:"achievements"`
	Stats               ActivityStats `json:"stats"`
}

func (s *ProgressService) Stats(ctx context.Context, userID uint) (*StatsView, error) {
	db := s.db.WithContext(ctx)
	user, err := loadUser(db, userID)
	if err != nil {
		return nil, err
	}

	var quiz struct {
		Total           int64
		TotalPercentage float64
		Perfect         int64
	}
	err = db.Model(&models.QuizAttempt{}).
		Select("COUNT(*) AS total, COALESCE(SUM(percentage), 0) AS total_percentage, COALESCE(SUM(CASE WHEN percentage = 100 THEN 1 ELSE 0 END), 0) AS perfect").
		Where("user_id = ?", userID).
		Scan(&quiz).Error
	if err != nil {
		return nil, utils.InternalError("Failed to fetch stats", err)
	}

	var achievements, bookmarks, challenges int64
	counts := []struct {
		model interface{}
		where string
		args  []interface{}
		dst   *int64
	}{
		{&models.UserAchievement{}, "user_id = ?", []interface{}{userID}, &achievements},
		{&models.UserBookmark{}, "user_id = ?", []interface{}{userID}, &bookmarks},
		{&models.DailyChallenge{}, "user_id = ? AND completed = ?", []interface{}{userID, true}, &challenges},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Where(c.where, c.args...).Count(c.dst).Error; err != nil {
			return nil, utils.InternalError("Failed to fetch stats", err)
		}
	}

	average := 0
	if quiz.Total > 0 {
		average = int(math.Round(quiz.TotalPercentage / float64(quiz.Total)))
	}

	return &StatsView{
		Points:              user.Points,
		Level:               gamification.LevelFor(user.Points),
		Streak:              user.Streak,
		ProgressToNextLevel: gamification.ProgressToNextLevel(user.Points),
		NextLevelPoints:     gamification.NextLevelPoints(user.Points),
		Achievements:        int(achievements),
		Stats: ActivityStats{
			TotalQuizzes:        int(quiz.Total),
			AverageScore:        average,
			PerfectScores:       int(quiz.Perfect),
			BookmarkedArticles:  int(bookmarks),
			ChallengesCompleted: int(challenges),
		},
	}, nil
}

// MaxHistoryDays bounds ActivityHistory.
const MaxHistoryDays = 90

type DayActivity struct {
	Date               string `json:"date"`
	ArticlesRead       int    `json:"articlesRead"`
	Comments           int    `json:"comments"`
	ChallengeCompleted bool   `json:"challengeCompleted"`
}

// ActivityHistory returns one entry per calendar day for the last days
// days, oldest first and ending today. Days without activity are zero.
func (s *ProgressService) ActivityHistory(ctx context.Context, userID uint, days int) ([]DayActivity, error) {
	if days < 1 {
		days = 30
	}
	if days > MaxHistoryDays {
		days = MaxHistoryDays
	}

	db := s.db.WithContext(ctx)
	if _, err := loadUser(db, userID); err != nil {
		return nil, err
	}

	today := gamification.DayOf(s.clock())
	history := make([]DayActivity, days)
	index := make(map[string]int, days)
	for i := range history {
		key := gamification.DayKey(today.AddDate(0, 0, i-days+1))
		history[i].Date = key
		index[key] = i
	}
	first := history[0].Date

	var buckets []models.DailyActivity
	if err := db.Where("user_id = ? AND day >= ?", userID, first).Find(&buckets).Error; err != nil {
		return nil, utils.InternalError("Failed to fetch activity", err)
	}
	for _, b := range buckets {
		i, ok := index[b.Day]
		if !ok {
			continue
		}
		switch gamification.ActivityKind(b.Kind) {
		case gamification.ActivityReading:
			history[i].ArticlesRead = b.Count
		case gamification.ActivityCommenting:
			history[i].Comments = b.Count
		}
	}

	var challenges []models.DailyChallenge
	if err := db.Where("user_id = ? AND day >= ? AND completed = ?", userID, first, true).Find(&challenges).Error; err != nil {
		return nil, utils.InternalError("Failed to fetch activity", err)
	}
	for _, ch := range challenges {
		if i, ok := index[ch.Day]; ok {
			history[i].ChallengeCompleted = true
		}
	}
	return history, nil
}
