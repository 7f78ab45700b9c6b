package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"legalaware/backend/models"
	"legalaware/backend/utils"

	"gorm.io/gorm"
)

type Period string

const (
	PeriodAll   Period = "all"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// ParsePeriod accepts all, week and month; empty means all.
func ParsePeriod(raw string) (Period, error) {
	switch Period(raw) {
	case "", PeriodAll:
		return PeriodAll, nil
	case PeriodWeek, PeriodMonth:
		return Period(raw), nil
	}
	return "", utils.ValidationFailed("Invalid period", map[string]string{"period": "must be one of: all, week, month"})
}

// ClampLimit maps a requested size into [1, MaxLeaderboardLimit]; zero or
// negative selects the default.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLeaderboardLimit
	case limit > MaxLeaderboardLimit:
		return MaxLeaderboardLimit
	}
	return limit
}

// since is the oldest last activity that keeps a user on the board.
func (p Period) since(now time.Time) (time.Time, bool) {
	switch p {
	case PeriodWeek:
		return now.AddDate(0, 0, -7), true
	case PeriodMonth:
		return now.AddDate(0, 0, -30), true
	}
	return time.Time{}, false
}

type LeaderEntry struct {
	Rank         int                      `json:"rank"`
	ID           uint                     `json:"id"`
	Name         string                   `json:"name"`
	Points       int                      `json:"points"`
	Level        int                      `json:"level"`
	Streak       int                      `json:"streak"`
	Achievements []models.UserAchievement `json:"achievements"`
}

// Leaderboard ranks users by points, highest first. Week and month only
// include users active within the last 7 or 30 days.
func (s *ProgressService) Leaderboard(ctx context.Context, period Period, limit int) ([]LeaderEntry, error) {
	limit = ClampLimit(limit)
	db := s.db.WithContext(ctx)

	var users []models.User
	since, windowed := period.since(s.clock())
	if !windowed && s.board != nil {
		var err error
		users, err = s.boardUsers(ctx, db, limit)
		if err != nil {
			s.log.Warn("leaderboard board unusable, reading from database", "error", err)
			users = nil
			if errors.Is(err, errBoardStale) {
				defer s.resyncBoard(ctx)
			}
		}
	}

	if users == nil {
		q := db.Model(&models.User{})
		if windowed {
			q = q.Where("last_activity_date >= ?", since)
		}
		err := q.Order("points DESC").Order("id ASC").Limit(limit).Find(&users).Error
		if err != nil {
			return nil, utils.InternalError("Failed to fetch leaderboard", err)
		}
	}

	if err := attachAchievements(db, users); err != nil {
		return nil, utils.InternalError("Failed to fetch leaderboard", err)
	}

	entries := make([]LeaderEntry, len(users))
	for i, u := range users {
		entries[i] = LeaderEntry{
			Rank:         i + 1,
			ID:           u.ID,
			Name:         u.Name,
			Points:       u.Points,
			Level:        u.Level,
			Streak:       u.Streak,
			Achievements: u.Achievements,
		}
	}
	return entries, nil
}

var errBoardStale = errors.New("leaderboard board is out of date")

// boardUsers reads the top of the board and loads those users. The board is
// only used while it holds exactly the database's users with their current
// totals; anything else returns errBoardStale.
func (s *ProgressService) boardUsers(ctx context.Context, db *gorm.DB, limit int) ([]models.User, error) {
	if s.boardStale.Load() {
		return nil, errBoardStale
	}

	size, err := s.board.Len(ctx)
	if err != nil {
		return nil, err
	}
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if size != count {
		return nil, fmt.Errorf("%w: %d members for %d users", errBoardStale, size, count)
	}

	top, err := s.board.Top(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(top) == 0 {
		return []models.User{}, nil
	}

	ids := make([]uint, len(top))
	for i, e := range top {
		ids[i] = e.UserID
	}
	var found []models.User
	if err := db.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]models.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}
	users := make([]models.User, 0, len(top))
	for _, e := range top {
		u, ok := byID[e.UserID]
		if !ok || u.Points != e.Points {
			return nil, fmt.Errorf("%w: user %d", errBoardStale, e.UserID)
		}
		users = append(users, u)
	}
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// resyncBoard rebuilds the board after a read found it stale.
func (s *ProgressService) resyncBoard(ctx context.Context) {
	if err := s.SyncBoard(ctx); err != nil {
		s.log.Warn("leaderboard resync failed", "error", err)
	}
}

func attachAchievements(db *gorm.DB, users []models.User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	var rows []models.UserAchievement
	if err := db.Where("user_id IN ?", ids).Order("unlocked_at ASC").Find(&rows).Error; err != nil {
		return err
	}
	byUser := make(map[uint][]models.UserAchievement)
	for _, r := range rows {
		byUser[r.UserID] = append(byUser[r.UserID], r)
	}
	for i := range users {
		users[i].Achievements = byUser[users[i].ID]
		if users[i].Achievements == nil {
			users[i].Achievements = []models.UserAchievement{}
		}
	}
	return nil
}
