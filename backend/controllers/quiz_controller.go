package controllers

import (
	"errors"
	"fmt"
	"time"

	"legalaware/backend/config"
	"legalaware/backend/models"
	"legalaware/backend/services"
	"legalaware/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type QuizController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Log      *utils.Logger
	Progress *services.ProgressService
}

func NewQuizController(db *gorm.DB, cfg *config.Config, log *utils.Logger, progress *services.ProgressService) *QuizController {
	return &QuizController{DB: db, Cfg: cfg, Log: log, Progress: progress}
}

// PublicQuestion is a question without its answer or explanation.
type PublicQuestion struct {
	ID       uint     `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type PublicQuiz struct {
	ID           uint             `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Category     string           `json:"category"`
	Difficulty   string           `json:"difficulty"`
	TimeLimit    int              `json:"timeLimit"`
	PassingScore int              `json:"passingScore"`
	Attempts     int              `json:"attempts"`
	Questions    []PublicQuestion `json:"questions"`
	CreatedAt    time.Time        `json:"createdAt"`
}

func publicQuiz(q *models.Quiz) PublicQuiz {
	out := PublicQuiz{
		ID:           q.ID,
		Title:        q.Title,
		Description:  q.Description,
		Category:     q.Category,
		Difficulty:   q.Difficulty,
		TimeLimit:    q.TimeLimit,
		PassingScore: q.PassingScore,
		Attempts:     q.Attempts,
		Questions:    make([]PublicQuestion, len(q.Questions)),
		CreatedAt:    q.CreatedAt,
	}
	for i, question := range q.Questions {
		out.Questions[i] = PublicQuestion{ID: question.ID, Question: question.Question, Options: question.Options}
	}
	return out
}

type QuestionRequest struct {
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectAnswer int      `json:"correctAnswer" validate:"gte=0"`
	Explanation   string   `json:"explanation"`
}

type QuizRequest struct {
	Title        string            `json:"title" validate:"required,max=200"`
	Description  string            `json:"description" validate:"required"`
	Category     string            `json:"category" validate:"required,quiz_category"`
	Difficulty   string            `json:"difficulty" validate:"difficulty"`
	TimeLimit    int               `json:"timeLimit" validate:"gte=0"`
	PassingScore int               `json:"passingScore" validate:"gte=0,lte=100"`
	Published    *bool             `json:"published"`
	Questions    []QuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

type SubmitQuizRequest struct {
	Answers []*int `json:"answers" validate:"required"`
}

func (r *QuizRequest) check() map[string]string {
	if errs := utils.Validate(r); errs != nil {
		return errs
	}
	for i, q := range r.Questions {
		if q.CorrectAnswer >= len(q.Options) {
			return map[string]string{
				fmt.Sprintf("questions[%d].correctAnswer", i): "must index one of the options",
			}
		}
	}
	return nil
}

func (r *QuizRequest) questions() []models.QuizQuestion {
	out := make([]models.QuizQuestion, len(r.Questions))
	for i, q := range r.Questions {
		out[i] = models.QuizQuestion{
			Position:      i,
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
	}
	return out
}

// GetQuizzes godoc
// @Summary List published quizzes
// @Description Questions are returned without answers
// @Tags quiz
// @Produce json
// @Param category query string false "Category, All for every category"
// @Success 200 {array} PublicQuiz
// @Router /quiz [get]
func (qc *QuizController) GetQuizzes(c *fiber.Ctx) error {
	query := qc.DB.Where("published = ?", true)
	if category := c.Query("category"); category != "" && category != "All" {
		query = query.Where("category = ?", category)
	}

	var quizzes []models.Quiz
	err := query.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	}).Order("created_at DESC").Find(&quizzes).Error
	if err != nil {
		return utils.Respond(c, qc.Log, err, "Server error fetching quizzes")
	}

	result := make([]PublicQuiz, len(quizzes))
	for i := range quizzes {
		result[i] = publicQuiz(&quizzes[i])
	}
	return c.JSON(result)
}

// GetQuiz godoc
// @Summary Get a quiz without answers
// @Tags quiz
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} PublicQuiz
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /quiz/{id} [get]
func (qc *QuizController) GetQuiz(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	quiz, err := services.LoadQuiz(qc.DB.WithContext(c.UserContext()), id)
	if err != nil {
		return utils.Respond(c, qc.Log, err, "Server error fetching quiz")
	}
	return c.JSON(publicQuiz(quiz))
}

// SubmitQuiz godoc
// @Summary Submit quiz answers
// @Description Scores the answers, stores the attempt and updates points, level, streak and achievements
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path int true "Quiz ID"
// @Param input body SubmitQuizRequest true "Answer index per question, null for skipped"
// @Success 200 {object} services.QuizSubmission
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /quiz/{id}/submit [post]
func (qc *QuizController) SubmitQuiz(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var input SubmitQuizRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.Validate(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	result, err := qc.Progress.SubmitQuiz(c.UserContext(), utils.CurrentUserID(c), id, input.Answers)
	if err != nil {
		return utils.Respond(c, qc.Log, err, "Error submitting quiz")
	}
	return c.JSON(result)
}

func (qc *QuizController) CreateQuiz(c *fiber.Ctx) error {
	var input QuizRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := input.check(); errs != nil {
		return utils.ValidationError(c, errs)
	}

	quiz := models.Quiz{
		Title:        input.Title,
		Description:  input.Description,
		Category:     input.Category,
		Difficulty:   input.Difficulty,
		TimeLimit:    input.TimeLimit,
		PassingScore: input.PassingScore,
		Published:    input.Published == nil || *input.Published,
		Questions:    input.questions(),
	}
	if err := qc.DB.Create(&quiz).Error; err != nil {
		return utils.Respond(c, qc.Log, err, "Server error creating quiz")
	}
	return utils.Created(c, quiz)
}

// UpdateQuiz replaces the quiz and its questions.
func (qc *QuizController) UpdateQuiz(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var input QuizRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := input.check(); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var quiz models.Quiz
	err = qc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&quiz, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("Quiz not found")
			}
			return err
		}

		quiz.Title = input.Title
		quiz.Description = input.Description
		quiz.Category = input.Category
		if input.Difficulty != "" {
			quiz.Difficulty = input.Difficulty
		}
		if input.TimeLimit > 0 {
			quiz.TimeLimit = input.TimeLimit
		}
		if input.PassingScore > 0 {
			quiz.PassingScore = input.PassingScore
		}
		if input.Published != nil {
			quiz.Published = *input.Published
		}
		if err := tx.Omit("Questions").Save(&quiz).Error; err != nil {
			return err
		}

		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&models.QuizQuestion{}).Error; err != nil {
			return err
		}
		quiz.Questions = input.questions()
		for i := range quiz.Questions {
			quiz.Questions[i].QuizID = quiz.ID
		}
		return tx.Create(&quiz.Questions).Error
	})
	if err != nil {
		return utils.Respond(c, qc.Log, err, "Server error updating quiz")
	}
	return c.JSON(quiz)
}

func (qc *QuizController) DeleteQuiz(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	res := qc.DB.Delete(&models.Quiz{}, id)
	if res.Error != nil {
		return utils.Respond(c, qc.Log, res.Error, "Server error deleting quiz")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound(c, "Quiz not found")
	}
	return utils.Message(c, "Quiz deleted successfully")
}
