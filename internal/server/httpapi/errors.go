package httpapi

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/proposals/internal/common"
	"github.com/dmitrijs2005/proposals/internal/logging"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

const internalErrorMessage = "internal server error"

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// classify maps an error to an HTTP status and a message that is safe to
// show to the client.
func classify(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}

	var ve validation.Errors
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest, ve.Error()
	}

	switch {
	case errors.Is(err, common.ErrInvalidEmailFormat),
		errors.Is(err, common.ErrInvalidAnswer),
		errors.Is(err, common.ErrValidation):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, common.ErrorUnauthorized):
		return fiber.StatusUnauthorized, "authentication required"
	case errors.Is(err, common.ErrForbidden):
		return fiber.StatusForbidden, "you do not have access to this proposal"
	case errors.Is(err, common.ErrorNotFound):
		return fiber.StatusNotFound, "proposal not found"
	case errors.Is(err, common.ErrAlreadyAnswered):
		return fiber.StatusConflict, "proposal has already been answered"
	case errors.Is(err, common.ErrEmailAlreadyExists):
		return fiber.StatusConflict, "email already registered"
	}

	return fiber.StatusInternalServerError, internalErrorMessage
}

func writeError(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(ErrorResponse{Error: utils.StatusMessage(code), Message: msg})
}

// errorHandler is installed as fiber's ErrorHandler. Details of 5xx errors
// go to the log only.
func errorHandler(l logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, msg := classify(err)
		if code >= fiber.StatusInternalServerError {
			l.Error(requestContext(c), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
		}
		return writeError(c, code, msg)
	}
}

func requestContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
