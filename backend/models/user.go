package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	Model
	Name             string     `gorm:"not null" json:"name"`
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash     string     `gorm:"not null" json:"-"`
	Role             string     `gorm:"default:user" json:"role"` // user, admin
	Points           int        `gorm:"default:0;index" json:"points"`
	Level            int        `gorm:"default:1" json:"level"`
	Streak           int        `gorm:"default:0" json:"streak"`
	LastActivityDate *time.Time `gorm:"index" json:"lastActivityDate"`

	QuizAttempts []QuizAttempt     `json:"quizScores,omitempty"`
	Achievements []UserAchievement `json:"achievements,omitempty"`
	Bookmarks    []UserBookmark    `json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type QuizAttempt struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"-"`
	QuizID         uint      `gorm:"index;not null" json:"quizId"`
	Quiz           *Quiz     `json:"quiz,omitempty"`
	Score          int       `json:"score"` // correct answers
	TotalQuestions int       `json:"totalQuestions"`
	Percentage     int       `json:"percentage"`
	Passed         bool      `json:"passed"`
	PointsEarned   int       `json:"pointsEarned"`
	CompletedAt    time.Time `gorm:"index" json:"completedAt"`
}

type UserAchievement struct {
	ID         uint      `gorm:"primarykey" json:"-"`
	UserID     uint      `gorm:"uniqueIndex:idx_user_achievement;not null" json:"-"`
	Name       string    `gorm:"uniqueIndex:idx_user_achievement;not null" json:"name"`
	Points     int       `json:"points"`
	UnlockedAt time.Time `json:"unlockedAt"`
}

type UserBookmark struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_bookmark;not null" json:"-"`
	ArticleID uint      `gorm:"uniqueIndex:idx_user_bookmark;not null" json:"articleId"`
	Article   *Article  `json:"article,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
