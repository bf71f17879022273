package services

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("authentication required")
	ErrTaskNotFound = errors.New("task not found")
	ErrUserNotFound = errors.New("user not found")
)

// ValidationError reports malformed, missing or out-of-enum input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UploadError wraps a failure of the external image store.
type UploadError struct {
	Detail string
	Err    error
}

func (e *UploadError) Error() string {
	return "failed to upload image: " + e.Detail
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// AggregationError wraps a read failure while building the admin dashboard.
type AggregationError struct {
	Report string
	Err    error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("failed to compute %s: %v", e.Report, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}
