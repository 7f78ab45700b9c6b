package gamification

import "time"

// ActivityKind names a per-day counter.
type ActivityKind string

const (
	ActivityReading    ActivityKind = "reading"
	ActivityCommenting ActivityKind = "commenting"
)

// ChallengeType tags a daily challenge record and template.
type ChallengeType string

const (
	ChallengeQuiz    ChallengeType = "quiz"
	ChallengeArticle ChallengeType = "article"
	ChallengeComment ChallengeType = "comment"
	ChallengeStreak  ChallengeType = "streak"
)

// DefaultChallengePoints is used by the generic completion endpoint when the
// caller sends no point value.
const DefaultChallengePoints = 50

// Threshold is the per-day count that completes a challenge for one kind.
type Threshold struct {
	Kind   ActivityKind
	Type   ChallengeType
	Count  int
	Points int
}

var thresholds = map[ActivityKind]Threshold{
	ActivityReading:    {Kind: ActivityReading, Type: ChallengeArticle, Count: 3, Points: 30},
	ActivityCommenting: {Kind: ActivityCommenting, Type: ChallengeComment, Count: 2, Points: 20},
}

// ThresholdFor returns the threshold for kind.
func ThresholdFor(kind ActivityKind) (Threshold, bool) {
	t, ok := thresholds[kind]
	return t, ok
}

// ChallengeOutcome reports whether an evaluation completed today's challenge.
type ChallengeOutcome struct {
	Completed     bool
	Type          ChallengeType
	PointsAwarded int
}

// EvaluateChallenge decides whether todayCount completes the day's challenge
// for kind. A day whose challenge is already completed never completes again.
func EvaluateChallenge(kind ActivityKind, todayCount int, alreadyCompleted bool) ChallengeOutcome {
	t, ok := thresholds[kind]
	if !ok || alreadyCompleted || todayCount < t.Count {
		return ChallengeOutcome{}
	}
	return ChallengeOutcome{Completed: true, Type: t.Type, PointsAwarded: t.Points}
}

// Template describes one of the rotating daily challenges.
type Template struct {
	Type        ChallengeType `json:"type"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Points      int           `json:"points"`
	Icon        string        `json:"icon"`
}

// Templates rotate by day of year.
var Templates = [...]Template{
	{Type: ChallengeQuiz, Title: "Complete Any Quiz", Description: "Take and complete any quiz with at least 70% score", Points: 50, Icon: "🎯"},
	{Type: ChallengeArticle, Title: "Read 3 Articles", Description: "Read at least 3 legal articles today", Points: 30, Icon: "📚"},
	{Type: ChallengeComment, Title: "Engage in Discussion", Description: "Post 2 meaningful comments on articles", Points: 20, Icon: "💬"},
	{Type: ChallengeStreak, Title: "Maintain Your Streak", Description: "Visit the platform daily to maintain your learning streak", Points: 25, Icon: "🔥"},
}

// TemplateFor picks the template of now's calendar day. Day of year counts
// from day 0 of the year, so January 1st is 1.
func TemplateFor(now time.Time) Template {
	return Templates[now.YearDay()%len(Templates)]
}
