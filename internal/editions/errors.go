package editions

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/zeroecho/internal/articles"
	"github.com/JaimeStill/zeroecho/internal/state"
	"github.com/JaimeStill/zeroecho/pkg/repository"
	"github.com/JaimeStill/zeroecho/pkg/storage"
)

// Domain errors for edition operations.
var (
	ErrNotFound        = errors.New("edition not found")
	ErrDuplicate       = errors.New("edition code already exists")
	ErrEmptyEdition    = errors.New("edition requires at least one article")
	ErrAlreadyReleased = errors.New("edition already released")
	ErrInvalidCode     = errors.New("invalid edition code")
	ErrNameRequired    = errors.New("edition name required")
)

// MapHTTPStatus maps edition domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, articles.ErrNotFound),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrAlreadyReleased),
		errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, state.ErrIllegalTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrEmptyEdition),
		errors.Is(err, ErrInvalidCode),
		errors.Is(err, ErrNameRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
