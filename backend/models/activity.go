package models

import "time"

// DailyActivity is one per-day counter bucket for a user and activity kind.
type DailyActivity struct {
	ID        uint      `gorm:"primarykey"`
	UserID    uint      `gorm:"uniqueIndex:idx_daily_activity;not null"`
	Day       string    `gorm:"uniqueIndex:idx_daily_activity;size:10;not null;index"` // YYYY-MM-DD
	Kind      string    `gorm:"uniqueIndex:idx_daily_activity;size:16;not null"`       // reading, commenting
	Count     int       `gorm:"default:0"`
	UpdatedAt time.Time `json:"-"`
}

// DailyArticleRead is the distinct set of articles behind a reading bucket.
type DailyArticleRead struct {
	ID        uint      `gorm:"primarykey"`
	UserID    uint      `gorm:"uniqueIndex:idx_daily_read;not null"`
	Day       string    `gorm:"uniqueIndex:idx_daily_read;size:10;not null;index"`
	ArticleID uint      `gorm:"uniqueIndex:idx_daily_read;not null"`
	CreatedAt time.Time `json:"-"`
}

// DailyChallenge records a completed daily challenge. The (user, day) key
// allows one completion per calendar day.
type DailyChallenge struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	UserID    uint      `gorm:"uniqueIndex:idx_daily_challenge;not null" json:"-"`
	Day       string    `gorm:"uniqueIndex:idx_daily_challenge;size:10;not null" json:"date"`
	Type      string    `gorm:"size:16" json:"type"` // quiz, article, comment, streak
	Points    int       `json:"points"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"completedAt"`
}
