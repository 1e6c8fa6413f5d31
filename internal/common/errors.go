package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrForbidden          = errors.New("forbidden access")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource conflict") // e.g. username already exists
	ErrValidation         = errors.New("validation failed")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// GenericServerMessage is the only text a 500 response ever carries.
const GenericServerMessage = "Something went wrong!"

// PublicError is an error whose message is safe to show to API clients.
// Kind decides the status code, Message is the response text.
type PublicError struct {
	Kind    error
	Message string
}

func (e *PublicError) Error() string { return e.Message }
func (e *PublicError) Unwrap() error { return e.Kind }

// NewPublicError builds a client-facing error of the given kind.
func NewPublicError(kind error, message string) error {
	return &PublicError{Kind: kind, Message: message}
}

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrServiceUnavailable) {
		return http.StatusServiceUnavailable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // unique violation
			return http.StatusConflict
		}
	}
	if mongo.IsDuplicateKeyError(err) {
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}

// PublicMessage returns the text to send for err. Server errors collapse to
// GenericServerMessage.
func PublicMessage(err error) string {
	var pubErr *PublicError
	if errors.As(err, &pubErr) {
		return pubErr.Message
	}
	switch HTTPStatusFromError(err) {
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return GenericServerMessage
	case http.StatusNotFound:
		return "Resource not found"
	case http.StatusUnauthorized:
		return "User not authorized"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusConflict:
		return "Resource already exists"
	}
	return err.Error()
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
