package middleware

import (
	"errors"

	"portfolio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the global error handler. Fiber errors keep their code;
// store errors are mapped by response.FromError.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= fiber.StatusInternalServerError {
			Logger(c).Error().Err(err).Str("path", c.Path()).Msg("request failed")
		}
		return response.Error(c, fe.Message, fe.Code, nil)
	}
	return response.FromError(c, err)
}
