package response

import (
	"errors"
	"fmt"

	"portfolio-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// StatusOf maps a store error to its HTTP status.
func StatusOf(err error) int {
	var cv *domain.ConstraintViolation
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrNoTenantContext), errors.Is(err, domain.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrCrossTenantReference):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrReadOnlyView):
		return fiber.StatusMethodNotAllowed
	case errors.Is(err, domain.ErrInvalidUsername), errors.Is(err, domain.ErrInvalidPassword):
		return fiber.StatusBadRequest
	case errors.As(err, &cv):
		if cv.Kind == domain.UniqueConflict {
			return fiber.StatusConflict
		}
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// FromError sends err in the standard error format. Unmapped errors are
// logged and reported as a generic 500. Constraint violations report only
// their kind, table and column; the message text stays in the log.
func FromError(c *fiber.Ctx, err error) error {
	code := StatusOf(err)
	if code == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		return Error(c, "Internal Server Error", code, nil)
	}
	var cv *domain.ConstraintViolation
	if errors.As(err, &cv) {
		log.Warn().Err(err).AnErr("cause", cv.Cause).Str("path", c.Path()).Msg("constraint violation")
		return Error(c, violationMessage(cv), code, map[string]interface{}{
			"kind":   cv.Kind,
			"table":  cv.Table,
			"column": cv.Column,
		})
	}
	return Error(c, err.Error(), code, nil)
}

func violationMessage(cv *domain.ConstraintViolation) string {
	if cv.Column == "" {
		return fmt.Sprintf("%s on %s", cv.Kind, cv.Table)
	}
	return fmt.Sprintf("%s on %s.%s", cv.Kind, cv.Table, cv.Column)
}
