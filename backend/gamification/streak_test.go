package gamification

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day, hour int) time.Time {
	return time.Date(2025, time.March, day, hour, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestAdvanceStreak(t *testing.T) {
	now := at(10, 9)

	tests := []struct {
		name      string
		in        Streak
		wantCount int
		wantMoved bool
	}{
		{"first activity", Streak{}, 1, true},
		{"same day keeps count", Streak{Count: 4, LastActivity: ptr(at(10, 1))}, 4, false},
		{"same day lifts zero", Streak{Count: 0, LastActivity: ptr(at(10, 1))}, 1, false},
		{"next day late evening to early morning", Streak{Count: 4, LastActivity: ptr(at(9, 23))}, 5, true},
		{"next day", Streak{Count: 1, LastActivity: ptr(at(9, 9))}, 2, true},
		{"two day gap resets", Streak{Count: 12, LastActivity: ptr(at(8, 9))}, 1, true},
		{"long gap resets", Streak{Count: 30, LastActivity: ptr(time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC))}, 1, true},
		{"future last activity treated as today", Streak{Count: 3, LastActivity: ptr(at(11, 9))}, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdvanceStreak(tt.in, now)
			assert.Equal(t, tt.wantCount, got.Count)
			require.NotNil(t, got.LastActivity)
			if tt.wantMoved {
				assert.True(t, got.LastActivity.Equal(now))
			} else {
				assert.True(t, got.LastActivity.Equal(*tt.in.LastActivity))
			}
		})
	}
}

func TestAdvanceStreakSameDayIsIdempotent(t *testing.T) {
	s := AdvanceStreak(Streak{Count: 2, LastActivity: ptr(at(9, 12))}, at(10, 8))
	require.Equal(t, 3, s.Count)

	for h := 9; h < 24; h++ {
		s = AdvanceStreak(s, at(10, h))
		assert.Equal(t, 3, s.Count)
	}
}

func TestAdvanceStreakNeverIncrementsByMoreThanOne(t *testing.T) {
	s := Streak{}
	for d := 1; d <= 10; d++ {
		s = AdvanceStreak(s, at(d, 8))
		s = AdvanceStreak(s, at(d, 20))
		assert.Equal(t, d, s.Count)
	}
}

func TestDaysBetweenAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	before := time.Date(2025, time.March, 8, 23, 30, 0, 0, loc)
	after := time.Date(2025, time.March, 9, 0, 30, 0, 0, loc)
	assert.Equal(t, 1, DaysBetween(before, after))
	assert.Equal(t, -1, DaysBetween(after, before))
}

func TestDayKey(t *testing.T) {
	assert.Equal(t, "2025-03-10", DayKey(at(10, 23)))

	day, err := ParseDayKey("2025-03-10", time.UTC)
	require.NoError(t, err)
	assert.True(t, day.Equal(DayOf(at(10, 23))))
}
