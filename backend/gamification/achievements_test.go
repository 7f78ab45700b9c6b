package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(list []Achievement) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.Name
	}
	return out
}

func TestCheckAchievementsFirstQuiz(t *testing.T) {
	p := &Progress{Points: 50, Level: 1}
	s := &Snapshot{Progress: p, QuizAttempts: 1}

	got := CheckAchievements(s)
	assert.Equal(t, []string{"First Steps"}, names(got))
	assert.Equal(t, 75, p.Points)
	assert.True(t, s.Unlocked["First Steps"])

	assert.Empty(t, CheckAchievements(s), "grant is idempotent")
	assert.Equal(t, 75, p.Points)
}

func TestWeekWarriorOnlyWhenStreakReachesSeven(t *testing.T) {
	p := &Progress{Streak: 6}
	s := &Snapshot{Progress: p}
	assert.Empty(t, CheckAchievements(s))

	p.Streak = 7
	assert.Equal(t, []string{"Week Warrior"}, names(CheckAchievements(s)))

	p.Streak = 8
	assert.Empty(t, CheckAchievements(s))

	// A user who skipped past 7 without the badge does not get it at 8.
	fresh := &Snapshot{Progress: &Progress{Streak: 8}}
	assert.Empty(t, CheckAchievements(fresh))
}

func TestPointMilestonesCascade(t *testing.T) {
	p := &Progress{Points: 950}
	s := &Snapshot{Progress: p}

	got := CheckAchievements(s)
	// Rising Star (+100) takes the total over 1000 within the same pass.
	assert.Equal(t, []string{"Rising Star", "Legal Expert"}, names(got))
	assert.Equal(t, 1250, p.Points)
	assert.Equal(t, 13, p.Level)
}

func TestCommentator(t *testing.T) {
	s := &Snapshot{Progress: &Progress{}, CommentsPosted: 49}
	assert.Empty(t, CheckAchievements(s))

	s.CommentsPosted = 50
	got := CheckAchievements(s)
	require.Len(t, got, 1)
	assert.Equal(t, "Commentator", got[0].Name)
	assert.Equal(t, 40, s.Points)
}

func TestAlreadyUnlockedSkipped(t *testing.T) {
	s := &Snapshot{
		Progress:     &Progress{Points: 600},
		QuizAttempts: 3,
		Unlocked:     map[string]bool{"First Steps": true, "Rising Star": true},
	}
	assert.Empty(t, CheckAchievements(s))
	assert.Equal(t, 600, s.Points)
}

func TestCatalog(t *testing.T) {
	c := Catalog()
	assert.Equal(t, []string{"First Steps", "Week Warrior", "Month Master", "Rising Star", "Legal Expert", "Commentator"}, names(c))
	assert.Equal(t, 565, PointsOf(c))

	a, ok := LookupAchievement("Month Master")
	require.True(t, ok)
	assert.Equal(t, 150, a.Points)

	_, ok = LookupAchievement("Quiz Master")
	assert.False(t, ok)
}
