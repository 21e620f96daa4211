package handlers

import (
	"errors"
	"log"

	"github.com/opiquem/blog-app-be/internal/models"

	"github.com/gofiber/fiber/v2"
)

// validationFailure carries per-field messages for a 422 response.
type validationFailure struct {
	Fields map[string][]string
}

func (v *validationFailure) Error() string {
	return "validation failed"
}

func newValidationFailure(field, message string) *validationFailure {
	return &validationFailure{Fields: map[string][]string{field: {message}}}
}

func statusForCode(code string) int {
	switch code {
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeBadRequest:
		return fiber.StatusBadRequest
	case models.CodeConflict:
		return fiber.StatusConflict
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// respondWithError writes err as JSON with the status its code maps to.
func respondWithError(c *fiber.Ctx, err error) error {
	var vf *validationFailure
	if errors.As(err, &vf) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": vf.Fields})
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		status := statusForCode(appErr.Code)
		if status == fiber.StatusInternalServerError {
			log.Printf("Error on %s %s: %v", c.Method(), c.Path(), err)
			return c.Status(status).JSON(models.ErrorResponse{Error: "Internal server error", Code: models.CodeInternal})
		}
		return c.Status(status).JSON(models.ErrorResponse{Error: appErr.Message, Code: appErr.Code})
	}

	log.Printf("Error on %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error: "Internal server error",
		Code:  models.CodeInternal,
	})
}
