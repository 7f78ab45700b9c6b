package utils

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// SuccessResponse wraps a payload for endpoints that report an outcome.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// Success sends a SuccessResponse with the given status.
func Success(c *fiber.Ctx, status int, data interface{}, meta ...interface{}) error {
	response := SuccessResponse{
		Success: true,
		Data:    data,
	}

	if len(meta) > 0 {
		response.Meta = meta[0]
	}

	return c.Status(status).JSON(response)
}

// Message sends {"success": true, "message": msg}.
func Message(c *fiber.Ctx, msg string) error {
	return c.JSON(SuccessResponse{Success: true, Message: msg})
}

// Error sends an ErrorResponse built from err.
func Error(c *fiber.Ctx, status int, err error, details ...interface{}) error {
	response := ErrorResponse{
		Success: false,
		Error:   http.StatusText(status),
		Message: err.Error(),
	}

	if len(details) > 0 && details[0] != nil {
		response.Details = details[0]
	}

	return c.Status(status).JSON(response)
}

// Paginate sends a page of items under key together with paging metadata.
func Paginate(c *fiber.Ctx, key string, data interface{}, total int64, page int, pageSize int) error {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return c.JSON(fiber.Map{
		key:           data,
		"total":       total,
		"currentPage": page,
		"totalPages":  totalPages,
	})
}

// ValidationError sends a 400 with per-field messages.
func ValidationError(c *fiber.Ctx, errors map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Success: false,
		Error:   "Validation Error",
		Message: "Invalid request",
		Details: errors,
	})
}

// Created sends 201 with the payload as the body.
func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

// NoContent sends 204 No Content.
func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// NotFound sends 404 Not Found.
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, fiber.NewError(fiber.StatusNotFound, message))
}

// BadRequest sends 400 Bad Request.
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, fiber.NewError(fiber.StatusBadRequest, message))
}

// Unauthorized sends 401 Unauthorized.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, fiber.NewError(fiber.StatusUnauthorized, message))
}

// Forbidden sends 403 Forbidden.
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, fiber.NewError(fiber.StatusForbidden, message))
}

// InternalServerError sends 500 Internal Server Error.
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, fiber.NewError(fiber.StatusInternalServerError, message))
}

// Respond renders err according to its kind. Internal errors are logged and
// answered with fallback instead of the underlying message.
func Respond(c *fiber.Ctx, log *Logger, err error, fallback string) error {
	var appErr *AppError
	if !asAppError(err, &appErr) {
		appErr = InternalError(fallback, err)
	}

	switch appErr.Kind {
	case KindNotFound:
		return NotFound(c, appErr.Message)
	case KindValidation:
		if len(appErr.Details) > 0 {
			return Error(c, fiber.StatusBadRequest, fiber.NewError(fiber.StatusBadRequest, appErr.Message), appErr.Details)
		}
		return BadRequest(c, appErr.Message)
	case KindConflict:
		return BadRequest(c, appErr.Message)
	case KindUnauthorized:
		return Unauthorized(c, appErr.Message)
	case KindForbidden:
		return Forbidden(c, appErr.Message)
	default:
		log.Error(fallback, "path", c.Path(), "method", c.Method(), "error", err)
		return InternalServerError(c, fallback)
	}
}
