package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// ErrorHandler is installed as fiber's error handler. Unexpected errors are
// logged once here and answered with a plain 500.
func ErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if asFiberError(err, &fiberErr) {
			return c.Status(fiberErr.Code).SendString(fiberErr.Message)
		}

		logger.Error().
			Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("request failed")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}
}

func asFiberError(err error, target **fiber.Error) bool {
	return errors.As(err, target)
}
