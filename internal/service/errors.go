// Package service provides application-level services for managing tasks and
// their attachments.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrUnsupportedFileType indicates an attachment upload with a content
	// type outside the allowlist. Maps to HTTP 400.
	ErrUnsupportedFileType = errors.New("unsupported attachment file type")

	// ErrFileTooLarge indicates an attachment upload exceeding the size cap.
	// Maps to HTTP 400.
	ErrFileTooLarge = errors.New("attachment exceeds maximum file size")
)
