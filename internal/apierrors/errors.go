package apierrors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorCode represents standardized error codes returned by the HTTP surface
type ErrorCode string

const (
	// Upload / conversion errors
	ErrMissingFile       ErrorCode = "MISSING_FILE"
	ErrFileTooLarge      ErrorCode = "FILE_TOO_LARGE"
	ErrInvalidFileFormat ErrorCode = "INVALID_FILE_FORMAT"
	ErrConversionFailed  ErrorCode = "CONVERSION_FAILED"

	// Axis inference / traversal errors
	ErrAxisInference    ErrorCode = "AXIS_INFERENCE_FAILED"
	ErrNumericCoercion  ErrorCode = "NUMERIC_COERCION_FAILED"
	ErrTraversalLookup  ErrorCode = "CELL_LOOKUP_FAILED"
	ErrReportIndexRange ErrorCode = "REPORT_INDEX_OUT_OF_RANGE"

	// Formula errors
	ErrFormulaSyntax    ErrorCode = "FORMULA_SYNTAX_ERROR"
	ErrUnknownFunction  ErrorCode = "UNKNOWN_FUNCTION"
	ErrArity            ErrorCode = "FUNCTION_ARITY_MISMATCH"
	ErrEvaluationFailed ErrorCode = "EVALUATION_FAILED"

	// API errors
	ErrInvalidParameter ErrorCode = "INVALID_PARAMETER"
	ErrMissingParameter ErrorCode = "MISSING_PARAMETER"
	ErrRateLimited      ErrorCode = "RATE_LIMITED"

	// Internal errors
	ErrInternalServer     ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrNotImplemented     ErrorCode = "NOT_IMPLEMENTED"
	ErrConfigurationError ErrorCode = "CONFIGURATION_ERROR"
)

// ValidationError represents a field-level validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value"`
	Message string      `json:"message"`
}

// APIError represents a standardized API error response
type APIError struct {
	Code          ErrorCode         `json:"code"`
	Message       string            `json:"message"`
	Details       interface{}       `json:"details,omitempty"`
	Validations   []ValidationError `json:"validations,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
	RequestID     string            `json:"request_id"`
	Path          string            `json:"path,omitempty"`
	Method        string            `json:"method,omitempty"`
	UserMessage   string            `json:"user_message,omitempty"`
	Suggestions   []string          `json:"suggestions,omitempty"`
	Documentation string            `json:"documentation,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewAPIError creates a new API error
func NewAPIError(code ErrorCode, message string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewValidationError creates a new validation error
func NewValidationError(code ErrorCode, message string, validations []ValidationError) *APIError {
	return &APIError{
		Code:        code,
		Message:     message,
		Validations: validations,
		Timestamp:   time.Now(),
	}
}

// WithDetails adds details to the error
func (e *APIError) WithDetails(details interface{}) *APIError {
	e.Details = details
	return e
}

// WithRequestID adds request ID to the error
func (e *APIError) WithRequestID(requestID string) *APIError {
	e.RequestID = requestID
	return e
}

// WithPath adds request path to the error
func (e *APIError) WithPath(path string) *APIError {
	e.Path = path
	return e
}

// WithMethod adds request method to the error
func (e *APIError) WithMethod(method string) *APIError {
	e.Method = method
	return e
}

// WithUserMessage adds a user-friendly message
func (e *APIError) WithUserMessage(message string) *APIError {
	e.UserMessage = message
	return e
}

// WithSuggestions adds suggestions for fixing the error
func (e *APIError) WithSuggestions(suggestions []string) *APIError {
	e.Suggestions = suggestions
	return e
}

// WithDocumentation adds a documentation link
func (e *APIError) WithDocumentation(doc string) *APIError {
	e.Documentation = doc
	return e
}

// ToJSON converts the error to JSON
func (e *APIError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// GetHTTPStatus returns the appropriate HTTP status code for the error
func (e *APIError) GetHTTPStatus() int {
	switch e.Code {
	case ErrMissingFile, ErrFileTooLarge, ErrInvalidFileFormat, ErrInvalidParameter,
		ErrMissingParameter, ErrFormulaSyntax, ErrUnknownFunction, ErrArity,
		ErrReportIndexRange:
		return http.StatusBadRequest
	case ErrRateLimited:
		return http.StatusTooManyRequests
	case ErrNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors
func BadRequest(message string) *APIError {
	return NewAPIError(ErrInvalidParameter, message)
}

func InternalServer(message string) *APIError {
	return NewAPIError(ErrInternalServer, message)
}

func ValidationFailed(validations []ValidationError) *APIError {
	return NewAPIError(ErrInvalidParameter, "validation failed")
}

// AxisInferenceFailed wraps a report.ErrAxisInference-class error for the HTTP boundary
func AxisInferenceFailed(err error) *APIError {
	return NewAPIError(ErrAxisInference, "could not infer date/title axes for report").
		WithDetails(err.Error()).
		WithUserMessage("The uploaded report does not have a recognizable date or title axis.").
		WithSuggestions([]string{
			"Ensure one row or column contains dates",
			"Ensure another row or column contains row/column titles",
		})
}

// EvaluationFailed wraps a formula evaluation error for the HTTP boundary
func EvaluationFailed(err error) *APIError {
	return NewAPIError(ErrEvaluationFailed, "formula evaluation failed").
		WithDetails(err.Error())
}

// ConversionFailed wraps a spreadsheet conversion error for the HTTP boundary
func ConversionFailed(reason string) *APIError {
	return NewAPIError(ErrConversionFailed, reason).
		WithUserMessage("The uploaded workbook could not be converted to tabular data.").
		WithSuggestions([]string{
			"Ensure the file is a valid .xlsx or .xlsb workbook",
			"Verify the file is not corrupted",
		})
}

func FileUploadError(reason string) *APIError {
	suggestions := []string{
		"Ensure the file is a spreadsheet (.xlsx, .xlsb or .csv)",
		"Check that the file size is under the configured limit",
		"Verify the file is not corrupted",
	}

	var code ErrorCode
	var userMessage string

	switch reason {
	case "file_too_large":
		code = ErrFileTooLarge
		userMessage = "The uploaded file is too large."
	case "invalid_format":
		code = ErrInvalidFileFormat
		userMessage = "The uploaded file format is not supported."
	default:
		code = ErrInvalidFileFormat
		userMessage = "There was an error with the uploaded file. Please try again."
	}

	return NewAPIError(code, reason).
		WithUserMessage(userMessage).
		WithSuggestions(suggestions)
}

// ErrorHandler is a Gin middleware for centralized error handling
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			var apiError *APIError

			if ae, ok := err.Err.(*APIError); ok {
				apiError = ae
			} else {
				apiError = InternalServer(err.Error())
			}

			apiError.WithRequestID(c.GetString("request_id")).
				WithPath(c.Request.URL.Path).
				WithMethod(c.Request.Method)

			c.JSON(apiError.GetHTTPStatus(), apiError)
			return
		}
	}
}

// SendError sends a standardized error response
func SendError(c *gin.Context, err *APIError) {
	if err.RequestID == "" {
		err.WithRequestID(c.GetString("request_id"))
	}
	if err.Path == "" {
		err.WithPath(c.Request.URL.Path)
	}
	if err.Method == "" {
		err.WithMethod(c.Request.Method)
	}

	c.JSON(err.GetHTTPStatus(), err)
}

// AbortWithError aborts the request with an error
func AbortWithError(c *gin.Context, err *APIError) {
	SendError(c, err)
	c.Abort()
}

// RecoveryHandler is a Gin middleware for panic recovery
func RecoveryHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		err := InternalServer("internal server error").
			WithRequestID(c.GetString("request_id")).
			WithPath(c.Request.URL.Path).
			WithMethod(c.Request.Method).
			WithDetails(fmt.Sprintf("panic: %v", recovered))

		c.JSON(err.GetHTTPStatus(), err)
		c.Abort()
	})
}

// IsRetryableError checks if an error is retryable
func IsRetryableError(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		switch apiErr.Code {
		case ErrRateLimited, ErrInternalServer:
			return true
		}
	}
	return false
}

// GetErrorSeverity returns the severity level of an error
func GetErrorSeverity(err error) string {
	if apiErr, ok := err.(*APIError); ok {
		switch apiErr.Code {
		case ErrInternalServer, ErrConfigurationError:
			return "critical"
		case ErrEvaluationFailed, ErrConversionFailed, ErrAxisInference:
			return "high"
		case ErrFormulaSyntax, ErrUnknownFunction, ErrArity, ErrInvalidParameter:
			return "medium"
		case ErrMissingParameter:
			return "low"
		}
	}
	return "unknown"
}
