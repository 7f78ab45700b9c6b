package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"legalaware/backend/gamification"
	"legalaware/backend/models"
	dbtest "legalaware/backend/testutil"
	"legalaware/backend/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	svc     *ProgressService
	board   *memoryBoard
	events  *recordingPublisher
	metrics *Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:      dbtest.DB(t),
		board:   newMemoryBoard(),
		events:  &recordingPublisher{},
		metrics: NewMetrics(prometheus.NewRegistry()),
	}
	f.svc = NewProgressService(f.db, utils.NopLogger(),
		WithBoard(f.board),
		WithPublisher(f.events),
		WithMetrics(f.metrics),
		WithLocation(time.UTC),
		WithRetention(90),
		WithClock(fixedClock),
	)
	return f
}

func (f *fixture) reload(t *testing.T, id uint) models.User {
	t.Helper()
	var u models.User
	require.NoError(t, f.db.First(&u, id).Error)
	return u
}

func intp(v int) *int { return &v }

func answersFor(correct []int, wrong int) []*int {
	out := make([]*int, len(correct))
	for i, c := range correct {
		v := c
		if i < wrong {
			v = (c + 1) % 4
		}
		out[i] = &v
	}
	return out
}

func TestSubmitQuizExtendsStreakAndAwardsPassReward(t *testing.T) {
	f := newFixture(t)
	yesterday := testNow.AddDate(0, 0, -1)
	user := dbtest.User(t, f.db, "alice", dbtest.WithStreak(4, yesterday))
	correct := []int{0, 1, 2, 3, 0, 1, 2, 3, 0, 1}
	quiz := dbtest.Quiz(t, f.db, "Rights", correct...)

	res, err := f.svc.SubmitQuiz(context.Background(), user.ID, quiz.ID, answersFor(correct, 2))
	require.NoError(t, err)

	assert.Equal(t, 80, res.Score)
	assert.Equal(t, 8, res.CorrectCount)
	assert.Equal(t, 10, res.TotalQuestions)
	assert.True(t, res.Passed)
	assert.Equal(t, 70, res.PassingScore)
	assert.Equal(t, 50, res.Gamification.PointsEarned)
	assert.Equal(t, 5, res.Gamification.Streak)
	assert.False(t, res.Gamification.ChallengeCompleted)
	require.Len(t, res.Results, 10)
	assert.False(t, res.Results[0].IsCorrect)
	assert.True(t, res.Results[9].IsCorrect)
	assert.Equal(t, "Option 1 is right", res.Results[9].Explanation)

	// First quiz unlocks First Steps on top of the pass reward.
	require.Len(t, res.Gamification.NewAchievements, 1)
	assert.Equal(t, "First Steps", res.Gamification.NewAchievements[0].Name)
	assert.Equal(t, 75, res.Gamification.TotalPoints)

	stored := f.reload(t, user.ID)
	assert.Equal(t, 75, stored.Points)
	assert.Equal(t, 1, stored.Level)
	assert.Equal(t, 5, stored.Streak)

	var attempts []models.QuizAttempt
	require.NoError(t, f.db.Where("user_id = ?", user.ID).Find(&attempts).Error)
	require.Len(t, attempts, 1)
	assert.Equal(t, 80, attempts[0].Percentage)
	assert.Equal(t, 50, attempts[0].PointsEarned)

	var q models.Quiz
	require.NoError(t, f.db.First(&q, quiz.ID).Error)
	assert.Equal(t, 1, q.Attempts)

	assert.Equal(t, 75, f.board.scores[user.ID])
	assert.Equal(t, []string{EventQuizSubmitted, EventAchievementUnlocked}, f.events.types())
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.QuizSubmissions.WithLabelValues("true")))
	assert.Equal(t, float64(50), testutil.ToFloat64(f.metrics.PointsAwarded.WithLabelValues(SourceQuiz)))
	assert.Equal(t, float64(25), testutil.ToFloat64(f.metrics.PointsAwarded.WithLabelValues(SourceAchievement)))
}

func TestSubmitQuizRewards(t *testing.T) {
	correct := []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}
	tests := []struct {
		name       string
		wrong      int
		wantPassed bool
		wantPoints int
	}{
		{"perfect earns 100 not 150", 0, true, 100},
		{"exactly passing score passes", 3, true, 50},
		{"one below passing fails", 4, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			user := dbtest.User(t, f.db, "bob")
			quiz := dbtest.Quiz(t, f.db, "Labor", correct...)

			res, err := f.svc.SubmitQuiz(context.Background(), user.ID, quiz.ID, answersFor(correct, tt.wrong))
			require.NoError(t, err)
			assert.Equal(t, tt.wantPassed, res.Passed)
			assert.Equal(t, tt.wantPoints, res.Gamification.PointsEarned)
			assert.Equal(t, 1, res.Gamification.Streak)
		})
	}
}

func TestSubmitQuizSkippedAnswersNeverMatch(t *testing.T) {
	f := newFixture(t)
	user := dbtest.User(t, f.db, "carol")
	quiz := dbtest.Quiz(t, f.db, "Family", 0, 0, 0, 0)

	res, err := f.svc.SubmitQuiz(context.Background(), user.ID, quiz.ID, []*int{intp(0), nil})
	require.NoError(t, err)
	assert.Equal(t, 1, res.CorrectCount)
	assert.Equal(t, 25, res.Score)
	assert.Nil(t, res.Results[1].UserAnswer)
	assert.False(t, res.Passed)
}

func TestSubmitQuizErrors(t *testing.T) {
	f := newFixture(t)
	user := dbtest.User(t, f.db, "dave")

	_, err := f.svc.SubmitQuiz(context.Background(), user.ID, 999, nil)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	empty := &models.Quiz{Title: "Empty", Description: "none", Category: "General", Published: true}
	require.NoError(t, f.db.Create(empty).Error)
	_, err = f.svc.SubmitQuiz(context.Background(), user.ID, empty.ID, nil)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	quiz := dbtest.Quiz(t, f.db, "Real", 0)
	_, err = f.svc.SubmitQuiz(context.Background(), 12345, quiz.ID, nil)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestSubmitQuizSurvivesAchievementFailure(t *testing.T) {
	f := newFixture(t)
	user := dbtest.User(t, f.db, "erin")
	quiz := dbtest.Quiz(t, f.db, "Consumer", 2, 2)
	require.NoError(t, f.db.Migrator().DropTable(&models.UserAchievement{}))

	res, err := f.svc.SubmitQuiz(context.Background(), user.ID, quiz.ID, []*int{intp(2), intp(2)})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Gamification.PointsEarned)
	assert.Empty(t, res.Gamification.NewAchievements)
	assert.Equal(t, 100, f.reload(t, user.ID).Points)
}

func TestRecordArticleReadCompletesChallengeOnThirdDistinctRead(t *testing.T) {
	f := newFixture(t)
	user := dbtest.User(t, f.db, "frank")
	a1 := dbtest.Article(t, f.db, "One")
	a2 := dbtest.Article(t, f.db, "Two")
	a3 := dbtest.Article(t, f.db, "Three")
	a4 := dbtest.Article(t, f.db, "Four")
	ctx := context.Background()

	res, err := f.svc.RecordArticleRead(ctx, user.ID, a1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ArticlesReadToday)
	assert.Equal(t, 1, res.Streak)

	res, err = f.svc.RecordArticleRead(ctx, user.ID, a1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ArticlesReadToday, "rereading does not count")

	res, err = f.svc.RecordArticleRead(ctx, user.ID, a2.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.ArticlesReadToday)
	assert.False(t, res.ChallengeCompleted)

	res, err = f.svc.RecordArticleRead(ctx, user.ID, a3.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, res.ArticlesReadToday)
	assert.True(t, res.ChallengeCompleted)
	assert.Equal(t, 30, res.PointsEarned)
	assert.Equal(t, 30, res.TotalPoints)

	res, err = f.svc.RecordArticleRead(ctx, user.ID, a4.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, res.ArticlesReadToday)
	assert.False(t, res.ChallengeCompleted)
	assert.Equal(t, 0, res.PointsEarned)
	assert.Equal(t, 30, f.reload(t, user.ID).Points)

	var challenges []models.DailyChallenge
	require.NoError(t, f.db.Where("user_id = ?", user.ID).Find(&challenges).Error)
	require.Len(t, challenges, 1)
	assert.Equal(t, "article", challenges[0].Type)
	assert.Equal(t, "2025-03-10", challenges[0].Day)

	assert.Contains(t, f.events.types(), EventChallengeCompleted)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ChallengesCompleted.WithLabelValues("article")))
}

func TestRecordArticleReadMissingArticle(t *testing.T) {
	f := newFixture(t)
	user := dbtest.User(t, f.db, "gina")

	_, err := f.svc.RecordArticleRead(context.Background(), user.ID, 42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, &utils.AppError{Kind: utils.KindNotFound}))
}

func comment(t *testing.T, db *gorm.DB, userID, articleID uint) *models.Comment {
	t.Helper()
	c := &models.Comment{ArticleID: articleID, UserID: userID, Content: "Well argued"}
	require.NoError(t, db.Create(c).Error)
	return c
}

func TestRecordCommentCompletesChallengeAtTwo(t *testing.T) {
	f := newFixture(t)
	user := dbtest.User(t, f.db, "hank")
	article := dbtest.Article(t, f.db, "Topic")
	ctx := context.Background()

	c := comment(t, f.db, user.ID, article.ID)
	res, err := f.svc.RecordComment(ctx, user.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CommentsToday)
	assert.False(t, res.ChallengeCompleted)

	c = comment(t, f.db, user.ID, article.ID)
	res, err = f.svc.RecordComment(ctx, user.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.CommentsToday)
	assert.True(t, res.ChallengeCompleted)
	assert.Equal(t, 20, res.PointsEarned)
	assert.Equal(t, 20, res.TotalPoints)
	assert.Equal(t, 1, res.Streak)
}

func TestOneChallengePerDayAcrossKinds(t *testing.T) {
	f := newFixture(t)
	user := dbtest.User(t, f.db, "ivy")
	ctx := context.Background()

	for _, title := range []string{"A", "B", "C"} {
		a := dbtest.Article(t, f.db, title)
		_, err := f.svc.RecordArticleRead(ctx, user.ID, a.ID)
		require.NoError(t, err)
	}
	require.Equal(t, 30, f.reload(t, user.ID).Points)

	article := dbtest.Article(t, f.db, "D")
	for i := 0; i < 3; i++ {
		c := comment(t, f.db, user.ID, article.ID)
		res, err := f.svc.RecordComment(ctx, user.ID, c.ID)
		require.NoError(t, err)
		assert.False(t, res.ChallengeCompleted)
	}
	assert.Equal(t, 30, f.reload(t, user.ID).Points)

	_, err := f.svc.CompleteChallenge(ctx, user.ID, 0)
	assert.ErrorIs(t, err, ErrChallengeAlreadyCompleted)
}

func TestCommentatorUnlocksAtFiftyComments(t *testing.T) {
	f := newFixture(t)
	user := dbtest.User(t, f.db, "jack")
	article := dbtest.Article(t, f.db, "Busy thread")

	rows := make([]models.Comment, 50)
	for i := range rows {
		rows[i] = models.Comment{ArticleID: article.ID, UserID: user.ID, Content: "hi"}
	}
	require.NoError(t, f.db.Create(&rows).Error)

	res, err := f.svc.RecordComment(context.Background(), user.ID, rows[49].ID)
	require.NoError(t, err)
	require.Len(t, res.NewAchievements, 1)
	assert.Equal(t, "Commentator", res.NewAchievements[0].Name)
	assert.Equal(t, 40, res.TotalPoints)
	assert.Equal(t, 0, res.PointsEarned)
}

func TestRecordActivityOnlyTouchesStreak(t *testing.T) {
	f := newFixture(t)
	user := dbtest.User(t, f.db, "kate", dbtest.WithStreak(2, testNow.AddDate(0, 0, -1)))

	for i := 0; i < 2; i++ {
		granted, err := f.svc.RecordActivity(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Empty(t, granted)
	}

	stored := f.reload(t, user.ID)
	assert.Equal(t, 3, stored.Streak)
	assert.Equal(t, 0, stored.Points)

	var n int64
	require.NoError(t, f.db.Model(&models.DailyActivity{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestRecordActivityUnlocksStreakAchievement(t *testing.T) {
	f := newFixture(t)
	user := dbtest.User(t, f.db, "nia", dbtest.WithPoints(10), dbtest.WithStreak(6, testNow.AddDate(0, 0, -1)))

	granted, err := f.svc.RecordActivity(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, granted, 1)
	assert.Equal(t, "Week Warrior", granted[0].Name)

	stored := f.reload(t, user.ID)
	assert.Equal(t, 7, stored.Streak)
	assert.Equal(t, 60, stored.Points)
	assert.Equal(t, 60, f.board.scores[user.ID])
	assert.Equal(t, []string{EventAchievementUnlocked}, f.events.types())

	var unlocked int64
	require.NoError(t, f.db.Model(&models.UserAchievement{}).Where("user_id = ? AND name = ?", user.ID, "Week Warrior").Count(&unlocked).Error)
	assert.Equal(t, int64(1), unlocked)

	// Still day seven: nothing new.
	granted, err = f.svc.RecordActivity(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, granted)
	assert.Equal(t, 60, f.reload(t, user.ID).Points)
}

func TestCompleteChallenge(t *testing.T) {
	f := newFixture(t)
	user := dbtest.User(t, f.db, "leo", dbtest.WithPoints(80), dbtest.WithStreak(6, testNow.AddDate(0, 0, -1)))
	ctx := context.Background()

	res, err := f.svc.CompleteChallenge(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, gamification.DefaultChallengePoints, res.PointsAwarded)
	assert.Equal(t, 7, res.Streak)
	// 80 + 50 challenge + 50 Week Warrior
	assert.Equal(t, 180, res.Points)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 2, res.NewLevel)
	require.Len(t, res.NewAchievements, 1)
	assert.Equal(t, "Week Warrior", res.NewAchievements[0].Name)
	assert.Contains(t, f.events.types(), EventLevelUp)

	_, err = f.svc.CompleteChallenge(ctx, user.ID, 10)
	assert.ErrorIs(t, err, ErrChallengeAlreadyCompleted)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
	assert.Equal(t, 180, f.reload(t, user.ID).Points)

	view, err := f.svc.DailyChallenge(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, view.Completed)
	assert.Equal(t, 50, view.Points)
	assert.Equal(t, "2025-03-10", view.Date)
}

func TestDailyChallengeTemplateRotates(t *testing.T) {
	f := newFixture(t)
	user := dbtest.User(t, f.db, "mia")

	view, err := f.svc.DailyChallenge(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, view.Completed)
	// March 10th 2025 is day 69 of the year.
	assert.Equal(t, gamification.Templates[69%4], view.Challenge)
}

func TestSideEffectFailuresDoNotFailOperation(t *testing.T) {
	f := newFixture(t)
	f.board.err = errors.New("redis down")
	f.events.fail = true
	user := dbtest.User(t, f.db, "nina")

	res, err := f.svc.CompleteChallenge(context.Background(), user.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, res.Points)
	assert.Equal(t, 20, f.reload(t, user.ID).Points)
}

func TestAchievementsAndStats(t *testing.T) {
	f := newFixture(t)
	user := dbtest.User(t, f.db, "oscar")
	quiz := dbtest.Quiz(t, f.db, "Env", 1, 1)
	article := dbtest.Article(t, f.db, "Saved")
	require.NoError(t, f.db.Create(&models.UserBookmark{UserID: user.ID, ArticleID: article.ID}).Error)
	ctx := context.Background()

	_, err := f.svc.SubmitQuiz(ctx, user.ID, quiz.ID, []*int{intp(1), intp(1)})
	require.NoError(t, err)
	_, err = f.svc.SubmitQuiz(ctx, user.ID, quiz.ID, []*int{intp(1), intp(0)})
	require.NoError(t, err)

	view, err := f.svc.Achievements(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, view.Achievements, len(gamification.Catalog()))
	assert.True(t, view.Achievements[0].Unlocked)
	assert.NotNil(t, view.Achievements[0].UnlockedAt)
	assert.False(t, view.Achievements[1].Unlocked)
	assert.Equal(t, 125, view.TotalPoints)

	stats, err := f.svc.Stats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 125, stats.Points)
	assert.Equal(t, 2, stats.Level)
	assert.Equal(t, 25, stats.ProgressToNextLevel)
	assert.Equal(t, 200, stats.NextLevelPoints)
	assert.Equal(t, 1, stats.Achievements)
	assert.Equal(t, 2, stats.Stats.TotalQuizzes)
	assert.Equal(t, 75, stats.Stats.AverageScore)
	assert.Equal(t, 1, stats.Stats.PerfectScores)
	assert.Equal(t, 1, stats.Stats.BookmarkedArticles)
	assert.Equal(t, 0, stats.Stats.ChallengesCompleted)
}

func TestPruneActivity(t *testing.T) {
	f := newFixture(t)
	user := dbtest.User(t, f.db, "pat")
	rows := []models.DailyActivity{
		{UserID: user.ID, Day: "2024-11-01", Kind: "reading", Count: 3},
		{UserID: user.ID, Day: "2025-03-09", Kind: "reading", Count: 1},
	}
	require.NoError(t, f.db.Create(&rows).Error)
	require.NoError(t, f.db.Create(&models.DailyArticleRead{UserID: user.ID, Day: "2024-11-01", ArticleID: 1}).Error)

	n, err := f.svc.PruneActivity(context.Background(), testNow.AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var left []models.DailyActivity
	require.NoError(t, f.db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "2025-03-09", left[0].Day)
}

func TestRunJanitorStopsWithContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.svc.RunJanitor(ctx, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestRunJanitorResyncsStaleBoard(t *testing.T) {
	f := newFixture(t)
	f.svc.retention = 0
	user := dbtest.User(t, f.db, "otto", dbtest.WithPoints(40))

	f.board.err = errors.New("redis down")
	f.svc.TrackUser(context.Background(), user.ID)
	require.True(t, f.svc.BoardStale())
	f.board.err = nil

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.svc.RunJanitor(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		n, err := f.board.Len(context.Background())
		return err == nil && n == 1
	}, 5*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	assert.False(t, f.svc.BoardStale())
	top, err := f.board.Top(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []BoardEntry{{UserID: user.ID, Points: 40}}, top)
}

func TestActivityHistory(t *testing.T) {
	f := newFixture(t)
	user := dbtest.User(t, f.db, "quinn")
	rows := []models.DailyActivity{
		{UserID: user.ID, Day: "2025-03-08", Kind: "reading", Count: 2},
		{UserID: user.ID, Day: "2025-03-10", Kind: "commenting", Count: 1},
		{UserID: user.ID, Day: "2025-02-01", Kind: "reading", Count: 9},
	}
	require.NoError(t, f.db.Create(&rows).Error)
	require.NoError(t, f.db.Create(&models.DailyChallenge{UserID: user.ID, Day: "2025-03-08", Type: "article", Points: 30, Completed: true}).Error)

	history, err := f.svc.ActivityHistory(context.Background(), user.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, []DayActivity{
		{Date: "2025-03-08", ArticlesRead: 2, ChallengeCompleted: true},
		{Date: "2025-03-09"},
		{Date: "2025-03-10", Comments: 1},
	}, history)

	history, err = f.svc.ActivityHistory(context.Background(), user.ID, 1000)
	require.NoError(t, err)
	assert.Len(t, history, MaxHistoryDays)
}
