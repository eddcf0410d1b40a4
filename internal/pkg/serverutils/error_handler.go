package serverutils

import (
	"errors"

	"edushelf-be/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the error envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		status, message := StatusFor(err)
		if status >= fiber.StatusInternalServerError {
			span := trace.SpanFromContext(ctx.UserContext())
			span.RecordError(err)
			span.SetStatus(codes.Error, message)
		}
		return ctx.Status(status).JSON(ErrorResponse(status, message))
	}
}

// StatusFor maps an error to an HTTP status and a message safe to show clients.
func StatusFor(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}

	var ae *apperror.Error
	if !errors.As(err, &ae) {
		return fiber.StatusInternalServerError, "internal server error"
	}

	switch ae.Kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest, ae.Message
	case apperror.KindNotFound:
		return fiber.StatusNotFound, ae.Message
	case apperror.KindUnauthorized:
		return fiber.StatusForbidden, ae.Message
	case apperror.KindProvider, apperror.KindParse:
		return fiber.StatusBadGateway, "upstream model provider failed"
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}
