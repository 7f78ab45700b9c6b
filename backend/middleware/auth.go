package middleware

import (
	"errors"

	"legalaware/backend/config"
	"legalaware/backend/models"
	"legalaware/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthMiddleware rejects requests without a valid token and stores the
// caller's id under the "user_id" local.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "No token, authorization denied")
		}
		c.Locals("user_id", userID)
		return c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware. The role is read from the
// database so a demoted admin loses access before the token expires.
func AdminMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := utils.CurrentUserID(c)
		if userID == 0 {
			return utils.Unauthorized(c, "No token, authorization denied")
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).Select("id", "role").First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.Unauthorized(c, "User not found")
			}
			return utils.InternalServerError(c, "Failed to verify user")
		}

		if !user.IsAdmin() {
			return utils.Forbidden(c, "Admin access required")
		}

		return c.Next()
	}
}
