package gamification

import "math"

const (
	// DefaultPassingScore applies when a quiz has no passing score set.
	DefaultPassingScore = 70
	// PassReward is earned for a passing attempt.
	PassReward = 50
	// PerfectReward replaces PassReward for a 100% attempt.
	PerfectReward = 100
)

// QuestionResult is the per-question breakdown of a scored attempt.
type QuestionResult struct {
	QuestionIndex int  `json:"questionIndex"`
	UserAnswer    *int `json:"userAnswer"`
	CorrectAnswer int  `json:"correctAnswer"`
	IsCorrect     bool `json:"isCorrect"`
}

// QuizScore is the outcome of scoring one submission.
type QuizScore struct {
	CorrectCount   int
	TotalQuestions int
	Percentage     int
	PassingScore   int
	Passed         bool
	PointsEarned   int
	Results        []QuestionResult
}

// ScoreQuiz compares submitted answer indices against the correct ones
// position by position. Missing or nil answers never match.
func ScoreQuiz(answers []*int, correct []int, passingScore int) QuizScore {
	if passingScore <= 0 {
		passingScore = DefaultPassingScore
	}

	score := QuizScore{
		TotalQuestions: len(correct),
		PassingScore:   passingScore,
		Results:        make([]QuestionResult, len(correct)),
	}

	for i, want := range correct {
		var given *int
		if i < len(answers) {
			given = answers[i]
		}
		ok := given != nil && *given == want
		if ok {
			score.CorrectCount++
		}
		score.Results[i] = QuestionResult{
			QuestionIndex: i,
			UserAnswer:    given,
			CorrectAnswer: want,
			IsCorrect:     ok,
		}
	}

	if score.TotalQuestions > 0 {
		score.Percentage = int(math.Round(100 * float64(score.CorrectCount) / float64(score.TotalQuestions)))
	}
	score.Passed = score.TotalQuestions > 0 && score.Percentage >= passingScore
	score.PointsEarned = QuizReward(score.Percentage, score.Passed)
	return score
}

// QuizReward returns the points for an attempt. A perfect score earns
// PerfectReward instead of, not on top of, PassReward.
func QuizReward(percentage int, passed bool) int {
	switch {
	case !passed:
		return 0
	case percentage == 100:
		return PerfectReward
	default:
		return PassReward
	}
}
