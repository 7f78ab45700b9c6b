package services

import (
	"context"
	"errors"
	"testing"
	"time"

	dbtest "legalaware/backend/testutil"
	"legalaware/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaderNames(entries []LeaderEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestLeaderboardWindows(t *testing.T) {
	f := newFixture(t)
	f.svc.board = nil
	dbtest.User(t, f.db, "stale", dbtest.WithPoints(900), dbtest.WithStreak(3, testNow.AddDate(0, 0, -10)))
	dbtest.User(t, f.db, "recent", dbtest.WithPoints(300), dbtest.WithStreak(1, testNow.AddDate(0, 0, -2)))
	dbtest.User(t, f.db, "today", dbtest.WithPoints(100), dbtest.WithStreak(1, testNow))
	dbtest.User(t, f.db, "ancient", dbtest.WithPoints(50), dbtest.WithStreak(1, testNow.AddDate(0, 0, -40)))
	ctx := context.Background()

	tests := []struct {
		period Period
		want   []string
	}{
		{PeriodWeek, []string{"recent", "today"}},
		{PeriodMonth, []string{"stale", "recent", "today"}},
		{PeriodAll, []string{"stale", "recent", "today", "ancient"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			entries, err := f.svc.Leaderboard(ctx, tt.period, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, leaderNames(entries))
			for i, e := range entries {
				assert.Equal(t, i+1, e.Rank)
				assert.NotNil(t, e.Achievements)
			}
		})
	}

	entries, err := f.svc.Leaderboard(ctx, PeriodAll, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"stale", "recent"}, leaderNames(entries))
}

func TestLeaderboardUsesBoard(t *testing.T) {
	f := newFixture(t)
	a := dbtest.User(t, f.db, "a", dbtest.WithPoints(10))
	b := dbtest.User(t, f.db, "b", dbtest.WithPoints(20))
	ctx := context.Background()

	require.NoError(t, f.svc.SyncBoard(ctx))
	assert.Equal(t, map[uint]int{a.ID: 10, b.ID: 20}, f.board.scores)

	entries, err := f.svc.Leaderboard(ctx, PeriodAll, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, leaderNames(entries))

	// A user missing from the board is still ranked, and the board is rebuilt.
	delete(f.board.scores, a.ID)
	entries, err = f.svc.Leaderboard(ctx, PeriodAll, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, leaderNames(entries))
	assert.Equal(t, map[uint]int{a.ID: 10, b.ID: 20}, f.board.scores)

	// So is a user whose board score fell behind the database.
	require.NoError(t, f.db.Model(a).Update("points", 50).Error)
	entries, err = f.svc.Leaderboard(ctx, PeriodAll, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, leaderNames(entries))
	assert.Equal(t, 50, f.board.scores[a.ID])

	f.board.err = errors.New("redis down")
	entries, err = f.svc.Leaderboard(ctx, PeriodAll, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, leaderNames(entries))
}

func TestLeaderboardBoardMatchesDatabase(t *testing.T) {
	f := newFixture(t)
	dbOnly := NewProgressService(f.db, utils.NopLogger(), WithLocation(time.UTC), WithClock(fixedClock))
	ctx := context.Background()

	same := func(t *testing.T, limit int) []string {
		t.Helper()
		fromBoard, err := f.svc.Leaderboard(ctx, PeriodAll, limit)
		require.NoError(t, err)
		fromDB, err := dbOnly.Leaderboard(ctx, PeriodAll, limit)
		require.NoError(t, err)
		assert.Equal(t, fromDB, fromBoard)
		return leaderNames(fromBoard)
	}

	dbtest.User(t, f.db, "early", dbtest.WithPoints(10))
	require.NoError(t, f.svc.SyncBoard(ctx))

	// Registered after the sync, never written to the board.
	dbtest.User(t, f.db, "newcomer")
	assert.Equal(t, []string{"early", "newcomer"}, same(t, 10))
	assert.False(t, f.svc.BoardStale())

	star := dbtest.User(t, f.db, "star")
	f.svc.TrackUser(ctx, star.ID)
	f.board.err = errors.New("redis down")
	_, err := f.svc.CompleteChallenge(ctx, star.ID, 900)
	require.NoError(t, err)
	assert.True(t, f.svc.BoardStale())
	f.board.err = nil

	assert.Equal(t, []string{"star", "early", "newcomer"}, same(t, 10))
	assert.False(t, f.svc.BoardStale())
	assert.Equal(t, f.reload(t, star.ID).Points, f.board.scores[star.ID])

	// Ties at the cutoff break on id, as in the database.
	dbtest.User(t, f.db, "tie-a", dbtest.WithPoints(10))
	dbtest.User(t, f.db, "tie-b", dbtest.WithPoints(10))
	require.NoError(t, f.svc.SyncBoard(ctx))
	assert.Equal(t, []string{"star", "early", "tie-a"}, same(t, 3))
	assert.Equal(t, []string{"star", "early", "tie-a", "tie-b", "newcomer"}, same(t, 10))
}

func TestParsePeriodAndClampLimit(t *testing.T) {
	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodAll, p)

	p, err = ParsePeriod("week")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeek, p)

	_, err = ParsePeriod("year")
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	assert.Equal(t, DefaultLeaderboardLimit, ClampLimit(0))
	assert.Equal(t, 1, ClampLimit(1))
	assert.Equal(t, MaxLeaderboardLimit, ClampLimit(1000))
}
