package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType categorizes application failures for status mapping and logging.
type ErrorType string

const (
	ErrorTypeMissingInput   ErrorType = "missing_input"
	ErrorTypeTooLarge       ErrorType = "too_large"
	ErrorTypeUnauthorized   ErrorType = "unauthorized"
	ErrorTypeUpload         ErrorType = "upload"
	ErrorTypeOCR            ErrorType = "ocr"
	ErrorTypeNoReadableText ErrorType = "no_readable_text"
	ErrorTypeLLM            ErrorType = "llm"
	ErrorTypeDatabase       ErrorType = "database"
	ErrorTypeInternal       ErrorType = "internal"
)

// AppError is a structured application error. PublicMessage is the static,
// non-leaking text returned to the client; Cause carries the internal detail
// that only ever reaches the server log.
type AppError struct {
	Type          ErrorType
	PublicMessage string
	StatusCode    int
	Cause         error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.PublicMessage, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.PublicMessage)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewMissingInput(message string) *AppError {
	return &AppError{
		Type:          ErrorTypeMissingInput,
		PublicMessage: message,
		StatusCode:    http.StatusBadRequest,
	}
}

func NewFileTooLarge(cause error) *AppError {
	return &AppError{
		Type:          ErrorTypeTooLarge,
		PublicMessage: "Uploaded file is too large.",
		StatusCode:    http.StatusRequestEntityTooLarge,
		Cause:         cause,
	}
}

func NewUnauthorized(cause error) *AppError {
	return &AppError{
		Type:          ErrorTypeUnauthorized,
		PublicMessage: "Unauthorized",
		StatusCode:    http.StatusUnauthorized,
		Cause:         cause,
	}
}

func NewUploadFailure(cause error) *AppError {
	return &AppError{
		Type:          ErrorTypeUpload,
		PublicMessage: "Failed to analyze document.",
		StatusCode:    http.StatusInternalServerError,
		Cause:         cause,
	}
}

func NewOCRFailure(cause error) *AppError {
	return &AppError{
		Type:          ErrorTypeOCR,
		PublicMessage: "Failed to analyze document.",
		StatusCode:    http.StatusInternalServerError,
		Cause:         cause,
	}
}

func NewNoReadableText() *AppError {
	return &AppError{
		Type:          ErrorTypeNoReadableText,
		PublicMessage: "We couldn't find any readable text in your document. Please try a different file.",
		StatusCode:    http.StatusBadRequest,
	}
}

func NewLLMFailure(message string, cause error) *AppError {
	return &AppError{
		Type:          ErrorTypeLLM,
		PublicMessage: message,
		StatusCode:    http.StatusInternalServerError,
		Cause:         cause,
	}
}

func NewDatabaseFailure(message string, cause error) *AppError {
	return &AppError{
		Type:          ErrorTypeDatabase,
		PublicMessage: message,
		StatusCode:    http.StatusInternalServerError,
		Cause:         cause,
	}
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// StatusCode extracts the HTTP status for an error, defaulting to 500.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// PublicMessage extracts the client-safe message for an error. Unknown errors
// fall back to a generic message so internal detail never leaks.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.PublicMessage
	}
	return "Internal server error."
}
