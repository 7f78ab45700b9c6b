package testutil

import (
	"fmt"
	"testing"
	"time"

	"legalaware/backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Password is the plain-text password of every fixture user.
const Password = "password123"

var passwordHash []byte

func hash(tb testing.TB) string {
	tb.Helper()
	if passwordHash == nil {
		h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
		if err != nil {
			tb.Fatalf("failed to hash password: %v", err)
		}
		passwordHash = h
	}
	return string(passwordHash)
}

// UserOption customizes a fixture user before it is inserted.
type UserOption func(*models.User)

func WithPoints(points int) UserOption {
	return func(u *models.User) {
		u.Points = points
		u.Level = points/100 + 1
	}
}

func WithStreak(streak int, last time.Time) UserOption {
	return func(u *models.User) {
		u.Streak = streak
		u.LastActivityDate = &last
	}
}

func AsAdmin() UserOption {
	return func(u *models.User) { u.Role = models.RoleAdmin }
}

func User(tb testing.TB, db *gorm.DB, name string, opts ...UserOption) *models.User {
	tb.Helper()
	u := &models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: hash(tb),
		Role:         models.RoleUser,
		Level:        1,
	}
	for _, opt := range opts {
		opt(u)
	}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("failed to create user %s: %v", name, err)
	}
	return u
}

func Article(tb testing.TB, db *gorm.DB, title string) *models.Article {
	tb.Helper()
	a := &models.Article{
		Title:     title,
		Content:   "Content of " + title,
		Summary:   "Summary of " + title,
		Category:  "Civil Rights",
		Tags:      []string{"rights"},
		Published: true,
	}
	if err := db.Create(a).Error; err != nil {
		tb.Fatalf("failed to create article %s: %v", title, err)
	}
	return a
}

// Quiz creates a published quiz whose i-th question has correct[i] as its
// correct option.
func Quiz(tb testing.TB, db *gorm.DB, title string, correct ...int) *models.Quiz {
	tb.Helper()
	q := &models.Quiz{
		Title:        title,
		Description:  "Quiz about " + title,
		Category:     "General",
		Difficulty:   "Easy",
		PassingScore: 70,
		Published:    true,
	}
	for i, c := range correct {
		q.Questions = append(q.Questions, models.QuizQuestion{
			Position:      i,
			Question:      fmt.Sprintf("Question %d", i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: c,
			Explanation:   fmt.Sprintf("Option %d is right", c),
		})
	}
	if err := db.Create(q).Error; err != nil {
		tb.Fatalf("failed to create quiz %s: %v", title, err)
	}
	return q
}
