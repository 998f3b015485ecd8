package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes returned to API clients. Every expected, recoverable outcome maps
// to one of these; anything else is an internal error.
const (
	CodeNotAuthenticated  = "NOT_AUTHENTICATED"
	CodeNotFound          = "NOT_FOUND"
	CodePermissionDenied  = "PERMISSION_DENIED"
	CodeInvalidState      = "INVALID_STATE"
	CodeValidation        = "VALIDATION_ERROR"
	CodeDuplicateInterest = "DUPLICATE_INTEREST"
	CodeSelfInterest      = "SELF_INTEREST"
	CodeSelfTarget        = "SELF_TARGET"
	CodeAlreadyFriends    = "ALREADY_FRIENDS"
	CodeDuplicatePending  = "DUPLICATE_PENDING"
	CodeInternal          = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
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

// CodeOf returns the application error code for err, or CodeInternal when err
// is not an AppError.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
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

func NewNotAuthenticatedError(message string) *AppError {
	return &AppError{
		Code:    CodeNotAuthenticated,
		Message: message,
	}
}

func NewPermissionDeniedError(message string) *AppError {
	return &AppError{
		Code:    CodePermissionDenied,
		Message: message,
	}
}

// NewInvalidStateError marks an operation attempted in the wrong lifecycle
// stage (e.g. accepting an interest on a posting that is no longer open).
func NewInvalidStateError(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidState,
		Message: message,
	}
}

func NewDuplicateInterestError() *AppError {
	return &AppError{
		Code:    CodeDuplicateInterest,
		Message: "You have already expressed interest in this posting",
	}
}

func NewSelfInterestError() *AppError {
	return &AppError{
		Code:    CodeSelfInterest,
		Message: "You cannot express interest in your own posting",
	}
}

func NewSelfTargetError() *AppError {
	return &AppError{
		Code:    CodeSelfTarget,
		Message: "You cannot send a friend request to yourself",
	}
}

func NewAlreadyFriendsError() *AppError {
	return &AppError{
		Code:    CodeAlreadyFriends,
		Message: "You are already friends",
	}
}

func NewDuplicatePendingError() *AppError {
	return &AppError{
		Code:    CodeDuplicatePending,
		Message: "A pending friend request already exists between you",
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// HTTPStatus maps an application error code to its HTTP status.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeNotAuthenticated:
		return fiber.StatusUnauthorized
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodePermissionDenied:
		return fiber.StatusForbidden
	case CodeInvalidState, CodeDuplicateInterest, CodeAlreadyFriends, CodeDuplicatePending:
		return fiber.StatusConflict
	case CodeValidation, CodeSelfInterest, CodeSelfTarget:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil && appErr.Code != CodeInternal {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
