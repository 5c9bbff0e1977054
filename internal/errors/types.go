package errors

import (
	"fmt"
	"net/http"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	ErrorTypeValidation        ErrorType = "VALIDATION_ERROR"
	ErrorTypeUnknownIngredient ErrorType = "UNKNOWN_INGREDIENT_ERROR"
	ErrorTypeRateLimit         ErrorType = "RATE_LIMIT_ERROR"
	ErrorTypeGenerationParse   ErrorType = "GENERATION_PARSE_ERROR"
	ErrorTypeGenerationTimeout ErrorType = "GENERATION_TIMEOUT_ERROR"
	ErrorTypeStoreUnavailable  ErrorType = "STORE_UNAVAILABLE_ERROR"
	ErrorTypeNotFound          ErrorType = "NOT_FOUND_ERROR"
	ErrorTypeInternal          ErrorType = "INTERNAL_ERROR"
)

// AppError represents a structured error for the application
type AppError struct {
	Type          ErrorType `json:"type"`
	Message       string    `json:"message"`
	StatusCode    int       `json:"statusCode"`
	ErrorCode     string    `json:"errorCode"`
	IsOperational bool      `json:"isOperational"`
	Recovery      string    `json:"recoverySuggestion,omitempty"`
	Err           error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause to errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Code returns the application-specific error code
func (e *AppError) Code() string {
	return e.ErrorCode
}

// RecoverySuggestion returns the suggestion on how to recover from the error
func (e *AppError) RecoverySuggestion() string {
	return e.Recovery
}

// IsRetryable determines if the operation that caused the error should be retried
func (e *AppError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeStoreUnavailable:
		return true
	case ErrorTypeGenerationTimeout:
		// Re-delivery of the job is the queue's concern, not the engine's.
		return false
	default:
		return false
	}
}

// NewValidationError creates a new validation error (400)
func NewValidationError(message string, errorCode string, suggestion string) *AppError {
	return &AppError{
		Type:          ErrorTypeValidation,
		Message:       message,
		StatusCode:    http.StatusBadRequest,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      suggestion,
	}
}

// NewUnknownIngredientError creates an error for an ingredient the AI marked
// as non-existent. It applies to a single ingredient, never the whole request.
func NewUnknownIngredientError(ingredient string) *AppError {
	return &AppError{
		Type:          ErrorTypeUnknownIngredient,
		Message:       fmt.Sprintf("ingredient %q is not a recognized edible item", ingredient),
		StatusCode:    http.StatusUnprocessableEntity,
		ErrorCode:     "UNKNOWN_INGREDIENT",
		IsOperational: true,
		Recovery:      "Check the spelling or remove the ingredient from the list.",
	}
}

// NewNotFoundError creates a new not found error (404)
func NewNotFoundError(message string, errorCode string, suggestion string) *AppError {
	return &AppError{
		Type:          ErrorTypeNotFound,
		Message:       message,
		StatusCode:    http.StatusNotFound,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      suggestion,
	}
}

// NewRateLimitError creates a new rate limit error (429)
func NewRateLimitError(message string, errorCode string, suggestion string) *AppError {
	return &AppError{
		Type:          ErrorTypeRateLimit,
		Message:       message,
		StatusCode:    http.StatusTooManyRequests,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      suggestion,
	}
}

// NewGenerationParseError creates an error for an AI response that matched
// neither the compatibility envelope nor the bare recipe list format.
func NewGenerationParseError(message string, err error) *AppError {
	return &AppError{
		Type:          ErrorTypeGenerationParse,
		Message:       message,
		StatusCode:    http.StatusInternalServerError,
		ErrorCode:     "GENERATION_PARSE_FAILED",
		IsOperational: true,
		Recovery:      "Submit the request again; the model output was malformed.",
		Err:           err,
	}
}

// NewGenerationTimeoutError creates an error for a generation call that
// exceeded its deadline.
func NewGenerationTimeoutError(err error) *AppError {
	return &AppError{
		Type:          ErrorTypeGenerationTimeout,
		Message:       "generation backend did not respond in time",
		StatusCode:    http.StatusGatewayTimeout,
		ErrorCode:     "GENERATION_TIMEOUT",
		IsOperational: true,
		Recovery:      "Submit the request again later.",
		Err:           err,
	}
}

// NewStoreUnavailableError creates an error for a transient store failure (503)
func NewStoreUnavailableError(message string, err error) *AppError {
	return &AppError{
		Type:          ErrorTypeStoreUnavailable,
		Message:       message,
		StatusCode:    http.StatusServiceUnavailable,
		ErrorCode:     "STORE_UNAVAILABLE",
		IsOperational: true,
		Recovery:      "Retry the operation after a short delay.",
		Err:           err,
	}
}

// NewInternalError creates a new internal error (500)
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:          ErrorTypeInternal,
		Message:       message,
		StatusCode:    http.StatusInternalServerError,
		ErrorCode:     "INTERNAL",
		IsOperational: false,
		Err:           err,
	}
}
