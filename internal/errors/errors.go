package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrInvalidCredentials is returned when login fails for any credential reason.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailAlreadyExists is returned when registering an email that is already taken.
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrTokenExpired is returned when a bearer token is past its expiry.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenInvalid is returned for tokens that fail signature or claim checks.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrAuthenticationRequired is returned when no Authorization header is sent.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrInvalidAuthorizationFormat is returned when the header is not "Bearer <token>".
	ErrInvalidAuthorizationFormat = errors.New("invalid authorization format")
	// ErrAuthenticationFailed covers any other failure of the token check.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrUserNotFound is returned when a verified token names a user that no longer exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrCategoryInUse is returned when deleting a category still referenced by transactions.
	ErrCategoryInUse = errors.New("category is used in transactions")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError is returned when a resource does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// NewNotFoundError creates a not found error for resource.
func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// ForbiddenError is returned when the caller does not own the resource.
type ForbiddenError struct {
	Resource string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden: you can only access your own %s", e.Resource)
}

// NewForbiddenError creates a forbidden error for resource.
func NewForbiddenError(resource string) *ForbiddenError {
	return &ForbiddenError{Resource: resource}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// IsInternal reports whether the error maps to a 5xx response.
func (e *HTTPError) IsInternal() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

type sentinelMapping struct {
	err     error
	status  int
	message string
	code    string
}

var sentinels = []sentinelMapping{
	{ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials", "INVALID_CREDENTIALS"},
	{ErrTokenExpired, http.StatusUnauthorized, "Token has expired", "TOKEN_EXPIRED"},
	{ErrTokenInvalid, http.StatusUnauthorized, "Invalid token", "INVALID_TOKEN"},
	{ErrAuthenticationRequired, http.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED"},
	{ErrInvalidAuthorizationFormat, http.StatusUnauthorized, "Invalid authorization format", "INVALID_AUTHORIZATION_FORMAT"},
	{ErrAuthenticationFailed, http.StatusUnauthorized, "Authentication failed", "AUTHENTICATION_FAILED"},
	{ErrUserNotFound, http.StatusUnauthorized, "User not found", "USER_NOT_FOUND"},
	{ErrEmailAlreadyExists, http.StatusConflict, "Email already exists", "EMAIL_ALREADY_EXISTS"},
	{ErrCategoryInUse, http.StatusConflict, "Cannot delete category that is used in transactions", "CATEGORY_IN_USE"},
}

// MapErrorToHTTP maps domain errors to HTTP errors.
// Anything it does not recognise becomes a generic 500 without the cause.
func MapErrorToHTTP(err error) *HTTPError {
	if err == nil {
		return nil
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return NewHTTPError(http.StatusBadRequest, validationErr.Message, "VALIDATION_ERROR")
	}

	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return NewHTTPError(http.StatusNotFound, capitalize(notFoundErr.Error()), "NOT_FOUND")
	}

	var forbiddenErr *ForbiddenError
	if errors.As(err, &forbiddenErr) {
		return NewHTTPError(http.StatusForbidden, capitalize(forbiddenErr.Error()), "FORBIDDEN")
	}

	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return NewHTTPError(s.status, s.message, s.code)
		}
	}

	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
