package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"smartinventory/internal/http/middleware"
	"smartinventory/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeErrorDetails(c, status, code, message, nil)
}

func writeErrorDetails(c *fiber.Ctx, status int, code, message string, details map[string]string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	return c.Status(status).JSON(res)
}

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

var serviceErrors = []errorMapping{
	{service.ErrIDRequired, fiber.StatusBadRequest, "MISSING_ID", "id is required"},
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "item not found"},
	{service.ErrRegisterFailed, fiber.StatusBadRequest, "REGISTER_FAILED", "username, email or password is invalid"},
	{service.ErrLoginFailed, fiber.StatusBadRequest, "LOGIN_FAILED", "username and password are required"},
	{service.ErrUserNotFound, fiber.StatusUnauthorized, "USER_NOT_FOUND", "user not found"},
	{service.ErrWrongPassword, fiber.StatusUnauthorized, "WRONG_PASSWORD", "wrong password"},
	{service.ErrUsernameTaken, fiber.StatusConflict, "USERNAME_TAKEN", "username already taken"},
	{service.ErrEmailInUse, fiber.StatusConflict, "EMAIL_IN_USE", "email already in use"},
	{service.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required"},
	{service.ErrNumberRequired, fiber.StatusBadRequest, "NUMBER_REQUIRED", "a phone number is required"},
	{service.ErrExportUnavailable, fiber.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "export storage is not configured"},
}

// writeServiceError maps service sentinels onto the error envelope.
// Unknown errors become 500 and are recorded for the request logger.
func writeServiceError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrInvalidInput) {
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	}

	var unavailable *service.SMSUnavailableError
	if errors.As(err, &unavailable) {
		return writeErrorDetails(c, fiber.StatusConflict, "SMS_UNAVAILABLE", "sms sending is not available; use the composer link",
			map[string]string{"composer_url": unavailable.ComposerURL})
	}

	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			return writeError(c, m.status, m.code, m.message)
		}
	}

	c.Locals(middleware.ErrorLocalKey, err.Error())
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		} else {
			c.Locals(middleware.ErrorLocalKey, err.Error())
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}

// AuthError renders RequireAuth failures.
func AuthError(c *fiber.Ctx, err error) error {
	if err != nil && !errors.Is(err, service.ErrUnauthorized) {
		return writeServiceError(c, err)
	}
	return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
}
