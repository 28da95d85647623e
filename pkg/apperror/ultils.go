package apperror

import (
	"errors"
	"fmt"

	"pdf2tsv/config"
	"pdf2tsv/pkg/apperror/status"
	"pdf2tsv/pkg/logger"

	"github.com/gofiber/fiber/v3"
)

const codePrefix = "P2T"

// WriteError logs a structured warning and returns a standardized JSON error
func WriteError(module config.Module, c fiber.Ctx, httpStatus int, code string, message string) error {
	logger.WithFields(map[string]interface{}{
		"module":        module,
		"status_code":   httpStatus,
		"error_code":    code,
		"error_message": message,
		"http_method":   c.Method(),
		"path":          c.Path(),
		"url":           c.OriginalURL(),
		"ip":            c.IP(),
		"tracking_id":   c.Get("X-Request-ID"),
	}).Warnf("http error")

	return c.Status(httpStatus).JSON(ErrorResponse{
		Error:     message,
		ErrorCode: formatCode(code),
	})
}

func formatCode(code string) string {
	return fmt.Sprintf("%s-%s", codePrefix, code)
}

// Shorthands for common error responses
func BadRequest(module config.Module, c fiber.Ctx, code status.ErrorCode, message string) error {
	return WriteError(module, c, fiber.StatusBadRequest, fmt.Sprintf("%d", code), message)
}

// NotFound writes a 404 with the given code
func NotFound(module config.Module, c fiber.Ctx, code status.ErrorCode, message string) error {
	return WriteError(module, c, fiber.StatusNotFound, fmt.Sprintf("%d", code), message)
}

// UnprocessableEntity writes a 422 for input that parsed but could not be processed
func UnprocessableEntity(module config.Module, c fiber.Ctx, code status.ErrorCode, err error) error {
	return WriteError(module, c, fiber.StatusUnprocessableEntity, fmt.Sprintf("%d", code), err.Error())
}

// InternalError writes a structured warning and returns a standardized JSON error.
// A status.CodedError keeps its own code.
func InternalError(module config.Module, c fiber.Ctx, err error) error {
	code := status.ErrorCodeInternal
	var coded status.CodedError
	if errors.As(err, &coded) {
		code = coded.ErrorCode()
	}
	return WriteError(module, c, fiber.StatusInternalServerError, fmt.Sprintf("%d", code), err.Error())
}

// Success writes a standardized JSON success response
func Success(module config.Module, c fiber.Ctx, response FiberSuccessMessage) error {
	return c.Status(fiber.StatusOK).JSON(response)
}

// Accepted writes a 202 for work handed to a background job
func Accepted(module config.Module, c fiber.Ctx, response FiberSuccessMessage) error {
	return c.Status(fiber.StatusAccepted).JSON(response)
}
