package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrValidation = errors.New("invalid or missing field")
	ErrAuth       = errors.New("please login to access this resource")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("resource not found")
	ErrUpstream   = errors.New("upstream failure")
	ErrNoRoute    = errors.New("page not found")
)

// AppError is a custom error type that can hold an HTTP status code
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation wraps a message in the 400 validation class.
func Validation(message string) *AppError {
	return New(http.StatusBadRequest, message, ErrValidation)
}

// Auth wraps a message in the auth class. The API reports auth failures
// as 400, not 401.
func Auth(message string) *AppError {
	return New(http.StatusBadRequest, message, ErrAuth)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message, ErrForbidden)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, ErrNotFound)
}

func Upstream(err error) *AppError {
	return New(http.StatusInternalServerError, "", errors.Join(ErrUpstream, err))
}

// MapErrorToStatus maps taxonomy errors to HTTP status codes
func MapErrorToStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrAuth) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoRoute) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
