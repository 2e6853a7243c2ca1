package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/taskforge-app/taskforge-api/internal/domain"
	"github.com/taskforge-app/taskforge-api/internal/service"
	"github.com/taskforge-app/taskforge-api/internal/service/auth"
	"github.com/taskforge-app/taskforge-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes so handlers
// never leak internal error types to clients. Note that a duplicate
// registration maps to 400, not 409, matching the public API contract.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Not found errors: ownership and existence are indistinguishable
	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrUserNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrUnsupportedFileType),
		errors.Is(err, service.ErrFileTooLarge),
		isDomainValidationError(err):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly message for the
// error. Internal details never reach the client.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already registered"

	case errors.Is(err, service.ErrUnsupportedFileType):
		return "Unsupported attachment file type"

	case errors.Is(err, service.ErrFileTooLarge):
		return "Attachment exceeds the maximum allowed size"

	case isDomainValidationError(err):
		return "Invalid task data: " + validationRoot(err).Error()

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// domainValidationErrors are the domain sentinel errors that indicate bad
// client input rather than an internal failure.
var domainValidationErrors = []error{
	domain.ErrEmptyTaskTitle,
	domain.ErrEmptyTaskDueDate,
	domain.ErrInvalidStatus,
	domain.ErrInvalidPriority,
	domain.ErrInvalidAttachment,
	domain.ErrEmptyEmail,
	domain.ErrInvalidEmail,
	domain.ErrEmptyName,
	domain.ErrEmptyPassword,
	domain.ErrPasswordTooLong,
}

func isDomainValidationError(err error) bool {
	return validationRoot(err) != nil
}

// validationRoot returns the matching domain validation sentinel, or nil.
func validationRoot(err error) error {
	for _, sentinel := range domainValidationErrors {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return nil
}

// SanitizeValidationError turns a validator error into a short message
// naming the offending field without echoing the submitted value.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example: "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, validationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// validationTagMessage maps validator tags to user-friendly fragments.
func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
