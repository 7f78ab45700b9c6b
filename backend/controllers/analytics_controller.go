package controllers

import (
	"time"

	"legalaware/backend/config"
	"legalaware/backend/gamification"
	"legalaware/backend/models"
	"legalaware/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AnalyticsController struct {
	DB  *gorm.DB
	Cfg *config.Config
	Log *utils.Logger
}

func NewAnalyticsController(db *gorm.DB, cfg *config.Config, log *utils.Logger) *AnalyticsController {
	return &AnalyticsController{DB: db, Cfg: cfg, Log: log}
}

type PlatformMetrics struct {
	TotalUsers               int64   `json:"totalUsers"`
	ActiveUsers              int64   `json:"activeUsers"`
	NewUsers                 int64   `json:"newUsers"`
	TotalArticles            int64   `json:"totalArticles"`
	TotalQuizzes             int64   `json:"totalQuizzes"`
	QuizAttempts             int64   `json:"quizAttempts"`
	AverageQuizScore         float64 `json:"averageQuizScore"`
	ChallengesCompletedToday int64   `json:"challengesCompletedToday"`
}

type popularArticle struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Views int    `json:"views"`
	Likes int    `json:"likes"`
}

type popularQuiz struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Attempts int    `json:"attempts"`
}

// GetPlatformAnalytics godoc
// @Summary Platform analytics
// @Description Usage totals, the most read articles and the most attempted quizzes
// @Tags admin
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/analytics [get]
func (ac *AnalyticsController) GetPlatformAnalytics(c *fiber.Ctx) error {
	now := time.Now().In(ac.Cfg.Location)
	today := gamification.DayKey(now)

	var metrics PlatformMetrics
	queries := []*gorm.DB{
		ac.DB.Model(&models.User{}).Count(&metrics.TotalUsers),
		ac.DB.Model(&models.User{}).Where("last_activity_date >= ?", now.AddDate(0, 0, -30)).Count(&metrics.ActiveUsers),
		ac.DB.Model(&models.User{}).Where("created_at >= ?", now.AddDate(0, 0, -7)).Count(&metrics.NewUsers),
		ac.DB.Model(&models.Article{}).Count(&metrics.TotalArticles),
		ac.DB.Model(&models.Quiz{}).Count(&metrics.TotalQuizzes),
		ac.DB.Model(&models.QuizAttempt{}).Count(&metrics.QuizAttempts),
		ac.DB.Model(&models.QuizAttempt{}).Select("COALESCE(AVG(percentage), 0)").Scan(&metrics.AverageQuizScore),
		ac.DB.Model(&models.DailyChallenge{}).Where("day = ? AND completed = ?", today, true).Count(&metrics.ChallengesCompletedToday),
	}
	for _, q := range queries {
		if q.Error != nil {
			return utils.Respond(c, ac.Log, q.Error, "Could not load analytics")
		}
	}

	var articles []popularArticle
	if err := ac.DB.Model(&models.Article{}).
		Select("id", "title", "views", "likes").
		Order("views DESC").Limit(5).
		Scan(&articles).Error; err != nil {
		return utils.Respond(c, ac.Log, err, "Could not load analytics")
	}

	var quizzes []popularQuiz
	if err := ac.DB.Model(&models.Quiz{}).
		Select("id", "title", "attempts").
		Order("attempts DESC").Limit(5).
		Scan(&quizzes).Error; err != nil {
		return utils.Respond(c, ac.Log, err, "Could not load analytics")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"metrics":         metrics,
		"popularArticles": articles,
		"popularQuizzes":  quizzes,
		"timestamp":       now.Format(time.RFC3339),
	})
}
