package services

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Point sources for the points counter.
const (
	SourceQuiz        = "quiz"
	SourceChallenge   = "challenge"
	SourceAchievement = "achievement"
)

type Metrics struct {
	PointsAwarded        *prometheus.CounterVec
	ChallengesCompleted  *prometheus.CounterVec
	AchievementsUnlocked *prometheus.CounterVec
	QuizSubmissions      *prometheus.CounterVec
}

// NewMetrics registers the gamification counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PointsAwarded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "legalaware_points_awarded_total",
			Help: "Points awarded to users, by source.",
		}, []string{"source"}),
		ChallengesCompleted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "legalaware_challenges_completed_total",
			Help: "Daily challenges completed, by challenge type.",
		}, []string{"kind"}),
		AchievementsUnlocked: f.NewCounterVec(prometheus.CounterOpts{
			Name: "legalaware_achievements_unlocked_total",
			Help: "Achievements unlocked, by name.",
		}, []string{"name"}),
		QuizSubmissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "legalaware_quiz_submissions_total",
			Help: "Quiz submissions, by pass/fail.",
		}, []string{"passed"}),
	}
}

func (m *Metrics) points(source string, amount int) {
	if amount > 0 {
		m.PointsAwarded.WithLabelValues(source).Add(float64(amount))
	}
}

func (m *Metrics) quiz(passed bool) {
	m.QuizSubmissions.WithLabelValues(strconv.FormatBool(passed)).Inc()
}
