package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/resource-curator/internal/pipeline"
	"github.com/jonathan/resource-curator/internal/service"
)

// Error codes returned in the "code" field of error responses
const (
	CodeInvalidRequest     = "invalid_request"
	CodeNotFound           = "not_found"
	CodeConflict           = "conflict"
	CodePersistenceFailure = "persistence_failure"
	CodeInternal           = "internal_error"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		invalidRef *service.ErrInvalidReference
		validation *service.ErrValidation
		notFound   *service.ErrUserNotFound
		noAnswers  *service.ErrNoAnswers
		noBundle   *service.ErrBundleNotFound
		exists     *service.ErrEmailAlreadyExists
	)
	switch {
	case errors.As(err, &invalidRef), errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound), errors.As(err, &noAnswers), errors.As(err, &noBundle):
		return http.StatusNotFound
	case errors.As(err, &exists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode returns the machine-readable code for an error
func ErrorCode(err error) string {
	var perr *pipeline.PersistenceError
	if errors.As(err, &perr) {
		return CodePersistenceFailure
	}
	switch HTTPStatus(err) {
	case http.StatusBadRequest:
		return CodeInvalidRequest
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	default:
		return CodeInternal
	}
}
