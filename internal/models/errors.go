package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes form a closed set; each maps to exactly one HTTP status.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeModeration      = "MODERATION_REJECTED"
	CodeNotFound        = "NOT_FOUND"
	CodeAlreadyReported = "ALREADY_REPORTED"
	CodeRetryLater      = "RETRY_LATER"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeInternal        = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response.
// Status carries the marker clients branch on ("error", "UNSAFE", "retry_later").
type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Reason  string `json:"reason"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewModerationError marks content refused by the profanity filter.
func NewModerationError(message string) *AppError {
	return &AppError{
		Code:    CodeModeration,
		Message: message,
	}
}

func NewAlreadyReportedError(message string) *AppError {
	return &AppError{
		Code:    CodeAlreadyReported,
		Message: message,
	}
}

// NewRetryLaterError wraps a transient store failure.
func NewRetryLaterError(err error) *AppError {
	return &AppError{
		Code:    CodeRetryLater,
		Message: "Service busy, please retry",
		Err:     err,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// IsCode reports whether err wraps an AppError with the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// HTTPStatus maps an error to its response status.
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeValidation, CodeModeration:
		return fiber.StatusBadRequest
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeAlreadyReported:
		return fiber.StatusTooManyRequests
	case CodeRetryLater:
		return fiber.StatusServiceUnavailable
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

func statusMarker(code string) string {
	switch code {
	case CodeModeration:
		return "UNSAFE"
	case CodeRetryLater:
		return "retry_later"
	default:
		return "error"
	}
}

// RespondWithError creates a standardized error response.
// Internal error details are never echoed to clients.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Status: statusMarker(appErr.Code),
			Code:   appErr.Code,
			Reason: appErr.Message,
		}
	} else {
		response = ErrorResponse{
			Status: "error",
			Code:   CodeInternal,
			Reason: "Internal server error",
		}
	}

	return c.Status(status).JSON(response)
}

// RespondWithAppError writes err using its mapped status.
func RespondWithAppError(c *fiber.Ctx, err error) error {
	return RespondWithError(c, HTTPStatus(err), err)
}
