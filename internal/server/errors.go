package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/tellerbank/account-service/internal/account"
)

// InternalErrorMessage is the only message clients see for unexpected failures.
const InternalErrorMessage = "Something went wrong on our side, please try again."

type errorResponse struct {
	Message string `json:"message"`
}

// ErrorHandler renders every failure as {"message": ...}. Domain errors map to
// 400, fiber errors keep their code, anything else is logged and becomes 500.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var domainErr *account.Error
		if errors.As(err, &domainErr) {
			return c.Status(http.StatusBadRequest).JSON(errorResponse{Message: domainErr.Error()})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			if fiberErr.Code >= http.StatusInternalServerError {
				logger.Error("request failed", slog.String("path", c.Path()), slog.Any("error", err))
			}
			return c.Status(fiberErr.Code).JSON(errorResponse{Message: fiberErr.Message})
		}

		logger.Error("unhandled error",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Any("error", err),
		)
		return c.Status(http.StatusInternalServerError).JSON(errorResponse{Message: InternalErrorMessage})
	}
}
