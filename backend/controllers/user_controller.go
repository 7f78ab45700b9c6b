package controllers

import (
	"errors"
	"strings"

	"legalaware/backend/config"
	"legalaware/backend/models"
	"legalaware/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Log *utils.Logger
}

func NewUserController(db *gorm.DB, cfg *config.Config, log *utils.Logger) *UserController {
	return &UserController{DB: db, Cfg: cfg, Log: log}
}

type UpdateUserRequest struct {
	Name        string `json:"name" validate:"omitempty,min=2,max=50" example:"Jane Doe"`
	Email       string `json:"email" validate:"omitempty,email" example:"user@example.com"`
	OldPassword string `json:"oldPassword" example:"oldPassword123"`
	NewPassword string `json:"newPassword" validate:"omitempty,min=6" example:"newPassword123"`
}

type bookmarkedArticle struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Summary  string `json:"summary"`
}

type quizHistoryEntry struct {
	ID             uint        `json:"id"`
	Quiz           interface{} `json:"quiz"`
	Score          int         `json:"score"`
	TotalQuestions int         `json:"totalQuestions"`
	Percentage     int         `json:"percentage"`
	Passed         bool        `json:"passed"`
	PointsEarned   int         `json:"pointsEarned"`
	CompletedAt    interface{} `json:"completedAt"`
}

func (uc *UserController) quizHistory(userID uint) ([]quizHistoryEntry, error) {
	var attempts []models.QuizAttempt
	err := uc.DB.
		Preload("Quiz", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped().Select("id", "title", "category", "difficulty")
		}).
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}

	history := make([]quizHistoryEntry, len(attempts))
	for i, a := range attempts {
		var quiz interface{}
		if a.Quiz != nil {
			quiz = fiber.Map{
				"id":         a.Quiz.ID,
				"title":      a.Quiz.Title,
				"category":   a.Quiz.Category,
				"difficulty": a.Quiz.Difficulty,
			}
		}
		history[i] = quizHistoryEntry{
			ID:             a.ID,
			Quiz:           quiz,
			Score:          a.Score,
			TotalQuestions: a.TotalQuestions,
			Percentage:     a.Percentage,
			Passed:         a.Passed,
			PointsEarned:   a.PointsEarned,
			CompletedAt:    a.CompletedAt,
		}
	}
	return history, nil
}

func (uc *UserController) bookmarks(userID uint) ([]bookmarkedArticle, error) {
	var rows []models.UserBookmark
	err := uc.DB.
		Preload("Article", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "category", "summary")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]bookmarkedArticle, 0, len(rows))
	for _, b := range rows {
		// Bookmarks of deleted articles are skipped.
		if b.Article == nil {
			continue
		}
		out = append(out, bookmarkedArticle{
			ID:       b.Article.ID,
			Title:    b.Article.Title,
			Category: b.Article.Category,
			Summary:  b.Article.Summary,
		})
	}
	return out, nil
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the caller's profile with quiz history, bookmarks and achievements
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID := utils.CurrentUserID(c)

	var user models.User
	if err := uc.DB.Preload("Achievements").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.Respond(c, uc.Log, err, "Server error fetching profile")
	}

	history, err := uc.quizHistory(userID)
	if err != nil {
		return utils.Respond(c, uc.Log, err, "Server error fetching profile")
	}
	bookmarks, err := uc.bookmarks(userID)
	if err != nil {
		return utils.Respond(c, uc.Log, err, "Server error fetching profile")
	}

	profile := userResponse(&user)
	profile["lastActivityDate"] = user.LastActivityDate
	profile["achievements"] = user.Achievements
	profile["quizScores"] = history
	profile["bookmarkedArticles"] = bookmarks
	profile["createdAt"] = user.CreatedAt
	return c.JSON(profile)
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Changes name, email or password. A new password requires the old one.
// @Tags users
// @Accept json
// @Produce json
// @Param input body UpdateUserRequest true "Profile changes"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID := utils.CurrentUserID(c)

	var input UpdateUserRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if errs := utils.Validate(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.Respond(c, uc.Log, err, "Server error updating profile")
	}

	updates := map[string]interface{}{}
	if input.Name != "" {
		updates["name"] = input.Name
		user.Name = input.Name
	}

	if input.Email != "" && input.Email != user.Email {
		var taken int64
		if err := uc.DB.Model(&models.User{}).Where("email = ? AND id <> ?", input.Email, userID).Count(&taken).Error; err != nil {
			return utils.Respond(c, uc.Log, err, "Server error updating profile")
		}
		if taken > 0 {
			return utils.BadRequest(c, "Email already in use")
		}
		updates["email"] = input.Email
		user.Email = input.Email
	}

	if input.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
			return utils.Unauthorized(c, "Old password is incorrect")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return utils.Respond(c, uc.Log, err, "Server error updating profile")
		}
		updates["password_hash"] = string(hashed)
	}

	if len(updates) > 0 {
		if err := uc.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			if utils.IsDuplicateKey(err) {
				return utils.BadRequest(c, "Email already in use")
			}
			return utils.Respond(c, uc.Log, err, "Server error updating profile")
		}
	}

	return c.JSON(userResponse(&user))
}

// ToggleBookmark godoc
// @Summary Bookmark or unbookmark an article
// @Tags users
// @Produce json
// @Param articleId path int true "Article ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/bookmark/{articleId} [post]
func (uc *UserController) ToggleBookmark(c *fiber.Ctx) error {
	articleID, err := parseID(c, "articleId")
	if err != nil {
		return utils.BadRequest(c, "Invalid article ID")
	}
	userID := utils.CurrentUserID(c)

	var bookmarked bool
	err = uc.DB.Transaction(func(tx *gorm.DB) error {
		var article models.Article
		if err := tx.Select("id").First(&article, articleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("Article not found")
			}
			return err
		}

		res := tx.Where("user_id = ? AND article_id = ?", userID, articleID).Delete(&models.UserBookmark{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			bookmarked = true
			return tx.Create(&models.UserBookmark{UserID: userID, ArticleID: articleID}).Error
		}
		return nil
	})
	if err != nil {
		return utils.Respond(c, uc.Log, err, "Server error bookmarking article")
	}

	ids := []uint{}
	if err := uc.DB.Model(&models.UserBookmark{}).Where("user_id = ?", userID).Order("created_at ASC").Pluck("article_id", &ids).Error; err != nil {
		return utils.Respond(c, uc.Log, err, "Server error bookmarking article")
	}

	return c.JSON(fiber.Map{
		"bookmarked":         bookmarked,
		"bookmarkedArticles": ids,
	})
}

// GetQuizHistory godoc
// @Summary Get the caller's quiz attempts
// @Tags users
// @Produce json
// @Success 200 {array} map[string]interface{}
// @Security ApiKeyAuth
// @Router /users/quiz-history [get]
func (uc *UserController) GetQuizHistory(c *fiber.Ctx) error {
	history, err := uc.quizHistory(utils.CurrentUserID(c))
	if err != nil {
		return utils.Respond(c, uc.Log, err, "Server error fetching quiz history")
	}
	return c.JSON(history)
}
