package errors

import (
	"errors"
	"fmt"
)

// Common application errors
var (
	ErrEmptyFrame       = errors.New("frame has no rows")
	ErrColumnNotFound   = errors.New("column not found")
	ErrInvalidFormat    = errors.New("invalid output format")
	ErrInvalidThreshold = errors.New("invalid threshold: must be between 0 and 1")
	ErrInsufficientData = errors.New("insufficient data")
	ErrModelNotFitted   = errors.New("model not fitted")
	ErrGenerationFailed = errors.New("data generation failed")
	ErrTrainingFailed   = errors.New("model training failed")
	ErrAnalyzerNotFound = errors.New("analyzer not found")
	ErrEvaluationFailed = errors.New("evaluation failed")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrMissingConfig    = errors.New("missing configuration")
	ErrInternal         = errors.New("internal error")
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeEvaluation    ErrorType = "evaluation"
	ErrorTypeGeneration    ErrorType = "generation"
	ErrorTypeDataset       ErrorType = "dataset"
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeInternal      ErrorType = "internal"
)

// AppError represents an application-specific error with additional context
type AppError struct {
	Type    ErrorType              `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details string                 `json:"details,omitempty"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with application context
func WrapError(err error, errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// NewValidationError creates a validation error
func NewValidationError(code, message string) *AppError {
	return NewAppError(ErrorTypeValidation, code, message)
}

// NewEvaluationError creates an evaluation error
func NewEvaluationError(code, message string) *AppError {
	return NewAppError(ErrorTypeEvaluation, code, message)
}

// NewGenerationError creates a generation error
func NewGenerationError(code, message string) *AppError {
	return NewAppError(ErrorTypeGeneration, code, message)
}

// NewDatasetError creates a dataset error
func NewDatasetError(code, message string) *AppError {
	return NewAppError(ErrorTypeDataset, code, message)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return NewAppError(ErrorTypeInternal, "INTERNAL_ERROR", message)
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Error codes for different error scenarios
const (
	// Validation error codes
	CodeInvalidInput  = "INVALID_INPUT"
	CodeMissingField  = "MISSING_FIELD"
	CodeOutOfRange    = "OUT_OF_RANGE"
	CodeMissingTarget = "MISSING_TARGET"

	// Evaluation error codes
	CodeEvaluationFailed   = "EVALUATION_FAILED"
	CodeInsufficientData   = "INSUFFICIENT_DATA"
	CodeDegenerateTraining = "DEGENERATE_TRAINING"
	CodeAnalyzerNotFound   = "ANALYZER_NOT_FOUND"

	// Generation error codes
	CodeGenerationFailed = "GENERATION_FAILED"
	CodeModelNotFitted   = "MODEL_NOT_FITTED"
	CodeTrainingFailed   = "TRAINING_FAILED"

	// Dataset error codes
	CodeReadFailed     = "READ_FAILED"
	CodeWriteFailed    = "WRITE_FAILED"
	CodeColumnNotFound = "COLUMN_NOT_FOUND"
	CodeEmptyFrame     = "EMPTY_FRAME"

	// Internal error codes
	CodeInternalError = "INTERNAL_ERROR"
)
