package models

import (
	"slices"
	"time"

	"gorm.io/gorm"
)

// Model is gorm.Model with the JSON names the API uses.
type Model struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Article{},
		&Quiz{},
		&QuizQuestion{},
		&QuizAttempt{},
		&UserAchievement{},
		&UserBookmark{},
		&DailyActivity{},
		&DailyArticleRead{},
		&DailyChallenge{},
		&Comment{},
		&CommentReply{},
		&CommentLike{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}

func ValidArticleCategory(c string) bool { return slices.Contains(ArticleCategories, c) }

func ValidQuizCategory(c string) bool { return slices.Contains(QuizCategories, c) }

func ValidDifficulty(d string) bool { return slices.Contains(QuizDifficulties, d) }
