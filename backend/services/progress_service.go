// Package services applies the gamification rules to persisted users. Each
// operation runs as one database transaction; leaderboard, event and metric
// updates happen after commit and never fail the operation.
package services

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"legalaware/backend/gamification"
	"legalaware/backend/models"
	"legalaware/backend/utils"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrChallengeAlreadyCompleted is returned when today's challenge was
// already completed.
var ErrChallengeAlreadyCompleted = utils.ConflictError("Challenge already completed today")

type ProgressService struct {
	db        *gorm.DB
	log       *utils.Logger
	board     Board
	events    Publisher
	metrics   *Metrics
	loc       *time.Location
	retention int
	now       func() time.Time

	// boardStale is set when a board write was lost; the board is not
	// trusted again until SyncBoard succeeds.
	boardStale atomic.Bool
}

type Option func(*ProgressService)

// WithBoard serves the unfiltered leaderboard from b and keeps it updated.
func WithBoard(b Board) Option {
	return func(s *ProgressService) { s.board = b }
}

func WithPublisher(p Publisher) Option {
	return func(s *ProgressService) { s.events = p }
}

func WithMetrics(m *Metrics) Option {
	return func(s *ProgressService) { s.metrics = m }
}

// WithLocation sets where calendar days start and end.
func WithLocation(loc *time.Location) Option {
	return func(s *ProgressService) { s.loc = loc }
}

// WithRetention sets how many days of activity buckets PruneActivity keeps.
func WithRetention(days int) Option {
	return func(s *ProgressService) { s.retention = days }
}

func WithClock(now func() time.Time) Option {
	return func(s *ProgressService) { s.now = now }
}

func NewProgressService(db *gorm.DB, log *utils.Logger, opts ...Option) *ProgressService {
	s := &ProgressService{
		db:     db,
		log:    log,
		events: NopPublisher{},
		loc:    time.Local,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(prometheus.NewRegistry())
	}
	return s
}

// Location is the time zone calendar days are computed in.
func (s *ProgressService) Location() *time.Location {
	return s.loc
}

func (s *ProgressService) clock() time.Time {
	return s.now().In(s.loc)
}

// outcome collects what one operation changed, for after-commit effects.
type outcome struct {
	userID       uint
	totalPoints  int
	levelBefore  int
	level        int
	points       map[string]int
	challenge    gamification.ChallengeType
	achievements []gamification.Achievement
	events       []Event
}

func newOutcome(userID uint, p gamification.Progress) *outcome {
	return &outcome{
		userID:      userID,
		levelBefore: gamification.LevelFor(p.Points),
		points:      make(map[string]int),
	}
}

func (o *outcome) award(source string, amount int) {
	o.points[source] += amount
}

func (o *outcome) emit(eventType string, at time.Time, payload interface{}) {
	o.events = append(o.events, Event{Type: eventType, UserID: o.userID, OccurredAt: at, Payload: payload})
}

// finish records the final totals and normalizes p.Level.
func (o *outcome) finish(p *gamification.Progress) {
	p.Level = gamification.LevelFor(p.Points)
	o.totalPoints = p.Points
	o.level = p.Level
}

func (o *outcome) leveledUp() bool {
	return o.level > o.levelBefore
}

func loadUser(tx *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("User not found")
		}
		return nil, utils.InternalError("Failed to load user", err)
	}
	return &user, nil
}

func progressOf(u *models.User) gamification.Progress {
	return gamification.Progress{
		Points:       u.Points,
		Level:        u.Level,
		Streak:       u.Streak,
		LastActivity: u.LastActivityDate,
	}
}

func saveProgress(tx *gorm.DB, userID uint, p gamification.Progress) error {
	err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"points":             p.Points,
		"level":              gamification.LevelFor(p.Points),
		"streak":             p.Streak,
		"last_activity_date": p.LastActivity,
	}).Error
	if err != nil {
		return utils.InternalError("Failed to save progress", err)
	}
	return nil
}

// bumpActivity adds one to today's bucket for kind and returns the new count.
func bumpActivity(tx *gorm.DB, userID uint, day string, kind gamification.ActivityKind) (int, error) {
	bucket := models.DailyActivity{UserID: userID, Day: day, Kind: string(kind), Count: 1}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}, {Name: "kind"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("daily_activities.count + 1")}),
	}).Create(&bucket).Error
	if err != nil {
		return 0, err
	}
	return activityCount(tx, userID, day, kind)
}

func activityCount(tx *gorm.DB, userID uint, day string, kind gamification.ActivityKind) (int, error) {
	var counts []int
	err := tx.Model(&models.DailyActivity{}).
		Where("user_id = ? AND day = ? AND kind = ?", userID, day, string(kind)).
		Pluck("count", &counts).Error
	if err != nil || len(counts) == 0 {
		return 0, err
	}
	return counts[0], nil
}

func challengeCompleted(tx *gorm.DB, userID uint, day string) (bool, error) {
	var n int64
	err := tx.Model(&models.DailyChallenge{}).
		Where("user_id = ? AND day = ? AND completed = ?", userID, day, true).
		Count(&n).Error
	return n > 0, err
}

// completeChallenge records today's challenge. It reports false, without
// error, when another completion for the same day already exists.
func completeChallenge(tx *gorm.DB, userID uint, day string, typ gamification.ChallengeType, points int) (bool, error) {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.DailyChallenge{
		UserID:    userID,
		Day:       day,
		Type:      string(typ),
		Points:    points,
		Completed: true,
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// evaluateChallenge runs the threshold check for kind and, when it completes
// today's challenge, records it and awards its points to p.
func (s *ProgressService) evaluateChallenge(tx *gorm.DB, o *outcome, p *gamification.Progress, day string, kind gamification.ActivityKind, count int) (gamification.ChallengeOutcome, error) {
	done, err := challengeCompleted(tx, o.userID, day)
	if err != nil {
		return gamification.ChallengeOutcome{}, err
	}
	result := gamification.EvaluateChallenge(kind, count, done)
	if !result.Completed {
		return result, nil
	}

	created, err := completeChallenge(tx, o.userID, day, result.Type, result.PointsAwarded)
	if err != nil {
		return gamification.ChallengeOutcome{}, err
	}
	if !created {
		return gamification.ChallengeOutcome{}, nil
	}

	p.Award(result.PointsAwarded)
	o.award(SourceChallenge, result.PointsAwarded)
	o.challenge = result.Type
	return result, nil
}

// unlockAchievements grants newly met achievements inside a savepoint. A
// failure is logged and leaves p and the database untouched.
func (s *ProgressService) unlockAchievements(tx *gorm.DB, o *outcome, p *gamification.Progress, now time.Time) []gamification.Achievement {
	trial := *p
	var granted []gamification.Achievement

	err := tx.Transaction(func(tx *gorm.DB) error {
		var unlocked []string
		if err := tx.Model(&models.UserAchievement{}).Where("user_id = ?", o.userID).Pluck("name", &unlocked).Error; err != nil {
			return err
		}
		var quizzes, comments int64
		if err := tx.Model(&models.QuizAttempt{}).Where("user_id = ?", o.userID).Count(&quizzes).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Comment{}).Where("user_id = ?", o.userID).Count(&comments).Error; err != nil {
			return err
		}

		snap := &gamification.Snapshot{
			Progress:       &trial,
			QuizAttempts:   int(quizzes),
			CommentsPosted: int(comments),
			Unlocked:       make(map[string]bool, len(unlocked)),
		}
		for _, name := range unlocked {
			snap.Unlocked[name] = true
		}

		granted = gamification.CheckAchievements(snap)
		for _, a := range granted {
			row := models.UserAchievement{UserID: o.userID, Name: a.Name, Points: a.Points, UnlockedAt: now}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Warn("achievement check failed", "user_id", o.userID, "error", err)
		return []gamification.Achievement{}
	}

	*p = trial
	for _, a := range granted {
		o.award(SourceAchievement, a.Points)
	}
	o.achievements = granted
	if granted == nil {
		return []gamification.Achievement{}
	}
	return granted
}

// settle runs the side effects of a committed operation.
func (s *ProgressService) settle(ctx context.Context, o *outcome, now time.Time) {
	if s.board != nil {
		s.setScore(ctx, o.userID, o.totalPoints)
	}

	for source, amount := range o.points {
		s.metrics.points(source, amount)
	}
	if o.challenge != "" {
		s.metrics.ChallengesCompleted.WithLabelValues(string(o.challenge)).Inc()
		o.emit(EventChallengeCompleted, now, map[string]interface{}{
			"type":   o.challenge,
			"points": o.points[SourceChallenge],
		})
	}
	for _, a := range o.achievements {
		s.metrics.AchievementsUnlocked.WithLabelValues(a.Name).Inc()
		o.emit(EventAchievementUnlocked, now, a)
	}
	if o.leveledUp() {
		o.emit(EventLevelUp, now, map[string]int{"level": o.level, "points": o.totalPoints})
	}

	for _, e := range o.events {
		if err := s.events.Publish(ctx, e); err != nil {
			s.log.Warn("event publish failed", "user_id", o.userID, "event", e.Type, "error", err)
		}
	}
}

// TrackUser puts a newly registered user on the board.
func (s *ProgressService) TrackUser(ctx context.Context, userID uint) {
	if s.board != nil {
		s.setScore(ctx, userID, 0)
	}
}

func (s *ProgressService) setScore(ctx context.Context, userID uint, points int) {
	if err := s.board.SetScore(ctx, userID, points); err != nil {
		s.boardStale.Store(true)
		s.log.Warn("leaderboard update failed", "user_id", userID, "error", err)
	}
}

// SyncBoard loads every user's points into the board.
func (s *ProgressService) SyncBoard(ctx context.Context) error {
	if s.board == nil {
		return nil
	}
	// Cleared before reading so a write lost during the rebuild marks the
	// board stale again.
	s.boardStale.Store(false)
	var entries []BoardEntry
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Select("id AS user_id, points").
		Scan(&entries).Error
	if err == nil {
		err = s.board.Rebuild(ctx, entries)
	}
	if err != nil {
		s.boardStale.Store(true)
		return err
	}
	return nil
}

// BoardStale reports whether the board may be missing users or scores.
func (s *ProgressService) BoardStale() bool {
	return s.board != nil && s.boardStale.Load()
}

func (s *ProgressService) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	if err == nil {
		return nil
	}
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return utils.InternalError("Failed to update progress", err)
}
