package models

var QuizCategories = []string{
	"Constitutional Law",
	"Criminal Law",
	"Civil Rights",
	"Family Law",
	"Property Law",
	"Labor Law",
	"Consumer Rights",
	"Environmental Law",
	"General",
}

var QuizDifficulties = []string{"Easy", "Medium", "Hard"}

type Quiz struct {
	Model
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `gorm:"type:text;not null" json:"description"`
	Category     string         `gorm:"index;not null" json:"category"`
	Difficulty   string         `gorm:"default:Medium" json:"difficulty"` // Easy, Medium, Hard
	Questions    []QuizQuestion `gorm:"constraint:OnDelete:CASCADE" json:"questions"`
	TimeLimit    int            `gorm:"default:600" json:"timeLimit"`   // seconds
	PassingScore int            `gorm:"default:70" json:"passingScore"` // percentage
	Published    bool           `gorm:"index" json:"published"`
	Attempts     int            `gorm:"default:0" json:"attempts"`
}

type QuizQuestion struct {
	ID            uint     `gorm:"primarykey" json:"id"`
	QuizID        uint     `gorm:"index;not null" json:"-"`
	Position      int      `gorm:"not null" json:"-"`
	Question      string   `gorm:"type:text;not null" json:"question"`
	Options       []string `gorm:"type:text;serializer:json" json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `gorm:"type:text" json:"explanation"`
}

// CorrectAnswers lists the correct option index of every question in order.
func (q *Quiz) CorrectAnswers() []int {
	out := make([]int, len(q.Questions))
	for i, question := range q.Questions {
		out[i] = question.CorrectAnswer
	}
	return out
}
