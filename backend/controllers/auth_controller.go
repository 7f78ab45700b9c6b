package controllers

import (
	"errors"
	"strconv"
	"strings"

	"legalaware/backend/config"
	"legalaware/backend/models"
	"legalaware/backend/services"
	"legalaware/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Log      *utils.Logger
	Progress *services.ProgressService
}

func NewAuthController(db *gorm.DB, cfg *config.Config, log *utils.Logger, progress *services.ProgressService) *AuthController {
	return &AuthController{DB: db, Cfg: cfg, Log: log, Progress: progress}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50" example:"Jane Doe"`
	Email    string `json:"email" validate:"required,email" example:"jane@example.com"`
	Password string `json:"password" validate:"required,min=6" example:"secret123"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func userResponse(u *models.User) fiber.Map {
	return fiber.Map{
		"id":     u.ID,
		"name":   u.Name,
		"email":  u.Email,
		"role":   u.Role,
		"points": u.Points,
		"level":  u.Level,
		"streak": u.Streak,
	}
}

// Register godoc
// @Summary Register a new user
// @Description Creates a new user account and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "User registration data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if errs := utils.Validate(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var existing int64
	if err := ac.DB.Model(&models.User{}).Where("email = ?", input.Email).Count(&existing).Error; err != nil {
		return utils.Respond(c, ac.Log, err, "Could not query database")
	}
	if existing > 0 {
		return utils.BadRequest(c, "User already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.Respond(c, ac.Log, err, "Could not hash password")
	}

	user := models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleUser,
		Level:        1,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		// Lost a race with another registration, or the email belongs to a
		// deleted account that still holds the unique index.
		if utils.IsDuplicateKey(err) {
			return utils.BadRequest(c, "User already exists")
		}
		return utils.Respond(c, ac.Log, err, "Could not create user")
	}
	ac.Progress.TrackUser(c.UserContext(), user.ID)

	token, err := utils.GenerateJWTToken(user.ID, user.Role, ac.Cfg)
	if err != nil {
		return utils.Respond(c, ac.Log, err, "Could not generate token")
	}

	ac.Log.Info("user registered", "user_id", user.ID)
	return utils.Created(c, fiber.Map{
		"token": token,
		"user":  userResponse(&user),
	})
}

// Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input LoginRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if errs := utils.Validate(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var user models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Unauthorized(c, "Invalid email or password")
		}
		return utils.Respond(c, ac.Log, err, "Could not query database")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Unauthorized(c, "Invalid email or password")
	}

	token, err := utils.GenerateJWTToken(user.ID, user.Role, ac.Cfg)
	if err != nil {
		return utils.Respond(c, ac.Log, err, "Could not generate token")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  userResponse(&user),
	})
}

// parseID reads a positive numeric route parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
