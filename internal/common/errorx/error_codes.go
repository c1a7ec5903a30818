package errorx

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/amoylab/catalog/internal/i18n"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryValidation     ErrorCategory = "validation"
	CategoryAuthentication ErrorCategory = "authentication"
	CategoryAuthorization  ErrorCategory = "authorization"
	CategoryNotFound       ErrorCategory = "not_found"
	CategoryConflict       ErrorCategory = "conflict"
	CategoryInternal       ErrorCategory = "internal"
)

// Severity represents the severity level of an error
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// APIError represents a structured API error with comprehensive information
type APIError struct {
	Code        string         `json:"code"`
	MessageID   string         `json:"-"`
	Message     string         `json:"message"`
	Category    ErrorCategory  `json:"category"`
	Severity    Severity       `json:"severity"`
	HTTPStatus  int            `json:"-"`
	Details     map[string]any `json:"details,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
	TraceID     string         `json:"trace_id,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Category, e.Message)
}

// JSON returns the error as a JSON string
func (e *APIError) JSON() string {
	out, _ := json.Marshal(e)
	return string(out)
}

// WithDetail adds a detail to the error
func (e *APIError) WithDetail(key string, value any) *APIError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds a suggestion to the error
func (e *APIError) WithSuggestion(suggestion string) *APIError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithTraceID adds a trace ID to the error
func (e *APIError) WithTraceID(traceID string) *APIError {
	e.TraceID = traceID
	return e
}

// clone returns a copy that can be decorated without touching e
func (e *APIError) clone() *APIError {
	cp := *e
	if e.Details != nil {
		cp.Details = make(map[string]any, len(e.Details))
		for k, v := range e.Details {
			cp.Details[k] = v
		}
	}
	cp.Suggestions = append([]string(nil), e.Suggestions...)
	return &cp
}

func newError(code, msgID, message string, category ErrorCategory, severity Severity, status int, suggestions ...string) *APIError {
	return &APIError{
		Code:        code,
		MessageID:   msgID,
		Message:     message,
		Category:    category,
		Severity:    severity,
		HTTPStatus:  status,
		Suggestions: suggestions,
	}
}

// Validation Errors (E1000-E1999)

// InvalidInput reports a field that failed validation
func InvalidInput(field, reason string) *APIError {
	err := newError("E1001", i18n.ErrorInvalidInput, "Invalid input provided",
		CategoryValidation, SeverityInfo, http.StatusBadRequest)
	if field != "" {
		err.WithDetail("field", field).
			WithSuggestion(fmt.Sprintf("Fix the '%s' field and try again", field))
	}
	if reason != "" {
		err.WithDetail("reason", reason)
	}
	return err
}

// MissingField reports a required field that was not provided
func MissingField(field string) *APIError {
	return newError("E1002", i18n.ErrorMissingField, "Required field is missing",
		CategoryValidation, SeverityInfo, http.StatusBadRequest,
		"Check the API documentation for required fields").
		WithDetail("field", field)
}

// InvalidFormat reports a value that could not be parsed
func InvalidFormat(field string, value any) *APIError {
	return newError("E1003", i18n.ErrorInvalidFormat, "Invalid data format",
		CategoryValidation, SeverityInfo, http.StatusBadRequest).
		WithDetail("field", field).
		WithDetail("value", value)
}

// InvalidStatus reports a product status the caller may not set
func InvalidStatus(field string, value any, reason string) *APIError {
	return newError("E1004", i18n.ErrorInvalidStatus, "Invalid product status",
		CategoryValidation, SeverityInfo, http.StatusBadRequest,
		"Products are created as draft or pending_approval; use the approve action to approve").
		WithDetail("field", field).
		WithDetail("value", value).
		WithDetail("reason", reason)
}

// Authentication Errors (E2000-E2999)

func Unauthorized() *APIError {
	return newError("E2001", i18n.ErrorAuthenticationRequired, "Authentication required",
		CategoryAuthentication, SeverityWarning, http.StatusUnauthorized,
		"Provide a valid bearer token in the Authorization header")
}

func InvalidCredentials() *APIError {
	return newError("E2002", i18n.ErrorInvalidCredentials, "Invalid credentials provided",
		CategoryAuthentication, SeverityWarning, http.StatusUnauthorized)
}

func InvalidToken() *APIError {
	return newError("E2003", i18n.ErrorInvalidToken, "Token is invalid or has expired",
		CategoryAuthentication, SeverityWarning, http.StatusUnauthorized,
		"Log in again or refresh your token")
}

func UserDisabled() *APIError {
	return newError("E2004", i18n.ErrorUserDisabled, "User account is disabled",
		CategoryAuthentication, SeverityWarning, http.StatusUnauthorized)
}

// Authorization Errors (E3000-E3999)

// Forbidden reports an authorization denial; reason is the decision reason
func Forbidden(reason string) *APIError {
	err := newError("E3001", i18n.ErrorForbidden, "Access forbidden",
		CategoryAuthorization, SeverityWarning, http.StatusForbidden)
	if reason != "" {
		err.WithDetail("reason", reason)
	}
	return err
}

// Not Found Errors (E4000-E4099)

func NotFound(resourceType string) *APIError {
	return newError("E4001", i18n.ErrorResourceNotFound, "Resource not found",
		CategoryNotFound, SeverityInfo, http.StatusNotFound).
		WithDetail("resource_type", resourceType)
}

func EndpointNotFound(path string) *APIError {
	return newError("E4002", i18n.ErrorEndpointNotFound, "API endpoint not found",
		CategoryNotFound, SeverityInfo, http.StatusNotFound).
		WithDetail("path", path)
}

// Conflict Errors (E4090-E4099)

func Conflict(resourceType, field string) *APIError {
	return newError("E4091", i18n.ErrorResourceExists, "Resource already exists",
		CategoryConflict, SeverityInfo, http.StatusConflict,
		fmt.Sprintf("Use a different %s value", field)).
		WithDetail("resource_type", resourceType).
		WithDetail("field", field)
}

func ConcurrentModification() *APIError {
	return newError("E4092", i18n.ErrorConcurrentModification, "Resource was modified concurrently",
		CategoryConflict, SeverityWarning, http.StatusConflict,
		"Reload the resource and retry the update")
}

func AlreadyApproved() *APIError {
	return newError("E4093", i18n.ErrorAlreadyApproved, "Product is already approved",
		CategoryConflict, SeverityInfo, http.StatusConflict)
}

// Internal Errors (E5000-E5999)

func Internal() *APIError {
	return newError("E5001", i18n.ErrorInternalServer, "Internal server error occurred",
		CategoryInternal, SeverityCritical, http.StatusInternalServerError,
		"Please try again later",
		"Contact support if the issue persists")
}

func Panic(v any) *APIError {
	return newError("E5000", i18n.ErrorInternalServer, "Server panic occurred",
		CategoryInternal, SeverityCritical, http.StatusInternalServerError).
		WithDetail("panic", fmt.Sprintf("%v", v))
}
