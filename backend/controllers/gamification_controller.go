package controllers

import (
	"errors"

	"legalaware/backend/config"
	"legalaware/backend/services"
	"legalaware/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type GamificationController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Log      *utils.Logger
	Progress *services.ProgressService
}

func NewGamificationController(db *gorm.DB, cfg *config.Config, log *utils.Logger, progress *services.ProgressService) *GamificationController {
	return &GamificationController{DB: db, Cfg: cfg, Log: log, Progress: progress}
}

type CompleteChallengeRequest struct {
	Points int `json:"points" validate:"omitempty,gt=0" example:"50"`
}

// GetLeaderboard godoc
// @Summary Get top users by points
// @Tags gamification
// @Produce json
// @Param period query string false "all, week or month"
// @Param limit query int false "Number of users, 1 to 100"
// @Success 200 {array} services.LeaderEntry
// @Failure 400 {object} utils.ErrorResponse
// @Router /gamification/leaderboard [get]
func (gc *GamificationController) GetLeaderboard(c *fiber.Ctx) error {
	period, err := services.ParsePeriod(c.Query("period"))
	if err != nil {
		return utils.Respond(c, gc.Log, err, "Server error fetching leaderboard")
	}

	entries, err := gc.Progress.Leaderboard(c.UserContext(), period, c.QueryInt("limit", services.DefaultLeaderboardLimit))
	if err != nil {
		return utils.Respond(c, gc.Log, err, "Server error fetching leaderboard")
	}
	return c.JSON(entries)
}

// GetDailyChallenge godoc
// @Summary Get today's daily challenge
// @Tags gamification
// @Produce json
// @Success 200 {object} services.DailyChallengeView
// @Security ApiKeyAuth
// @Router /gamification/daily-challenge [get]
func (gc *GamificationController) GetDailyChallenge(c *fiber.Ctx) error {
	view, err := gc.Progress.DailyChallenge(c.UserContext(), utils.CurrentUserID(c))
	if err != nil {
		return utils.Respond(c, gc.Log, err, "Server error")
	}
	return c.JSON(view)
}

// CompleteChallenge godoc
// @Summary Mark today's challenge as complete
// @Description Awards the given points (50 when omitted) once per day
// @Tags gamification
// @Accept json
// @Produce json
// @Param input body CompleteChallengeRequest false "Points to award"
// @Success 200 {object} services.ChallengeCompletion
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /gamification/complete-challenge [post]
func (gc *GamificationController) CompleteChallenge(c *fiber.Ctx) error {
	var input CompleteChallengeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return utils.BadRequest(c, "Cannot parse JSON")
		}
	}
	if errs := utils.Validate(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	result, err := gc.Progress.CompleteChallenge(c.UserContext(), utils.CurrentUserID(c), input.Points)
	if errors.Is(err, services.ErrChallengeAlreadyCompleted) {
		return utils.BadRequest(c, "Challenge already completed today")
	}
	if err != nil {
		return utils.Respond(c, gc.Log, err, "Server error")
	}
	return c.JSON(result)
}

func (gc *GamificationController) GetAchievements(c *fiber.Ctx) error {
	view, err := gc.Progress.Achievements(c.UserContext(), utils.CurrentUserID(c))
	if err != nil {
		return utils.Respond(c, gc.Log, err, "Server error")
	}
	return c.JSON(view)
}

func (gc *GamificationController) GetStats(c *fiber.Ctx) error {
	stats, err := gc.Progress.Stats(c.UserContext(), utils.CurrentUserID(c))
	if err != nil {
		return utils.Respond(c, gc.Log, err, "Server error")
	}
	return c.JSON(stats)
}

// GetActivity godoc
// @Summary Get daily activity history
// @Description Articles read, comments and challenge completion per day, oldest first
// @Tags gamification
// @Produce json
// @Param days query int false "Number of days, up to 90"
// @Success 200 {array} services.DayActivity
// @Security ApiKeyAuth
// @Router /gamification/activity [get]
func (gc *GamificationController) GetActivity(c *fiber.Ctx) error {
	history, err := gc.Progress.ActivityHistory(c.UserContext(), utils.CurrentUserID(c), c.QueryInt("days", 30))
	if err != nil {
		return utils.Respond(c, gc.Log, err, "Server error")
	}
	return c.JSON(history)
}
