package articles

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/zeroecho/internal/state"
	"github.com/JaimeStill/zeroecho/pkg/repository"
)

// Domain errors for article operations.
var (
	ErrNotFound        = errors.New("article not found")
	ErrDuplicate       = errors.New("article already exists")
	ErrInvalidArticle  = errors.New("invalid article")
	ErrInvalidCategory = errors.New("category required")
	ErrInvalidReason   = errors.New("invalid rejection reason")
	ErrNoIDs           = errors.New("at least one article id required")
)

// FailureKind classifies a per-item failure in a batch operation.
type FailureKind string

const (
	KindMatch       FailureKind = "match"
	KindTransition  FailureKind = "transition"
	KindPersistence FailureKind = "persistence"
	KindConflict    FailureKind = "conflict"
)

// Failure describes one item that could not be applied. Title is included
// so the operator can identify the article to retry.
type Failure struct {
	ArticleID string      `json:"article_id"`
	Title     string      `json:"title,omitempty"`
	Kind      FailureKind `json:"kind"`
	Error     string      `json:"error"`
}

// NewFailure builds a Failure, classifying err.
func NewFailure(id, title string, err error) Failure {
	return Failure{ArticleID: id, Title: title, Kind: KindOf(err), Error: err.Error()}
}

// KindOf maps an error to its failure kind.
func KindOf(err error) FailureKind {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindMatch
	case errors.Is(err, state.ErrIllegalTransition), errors.Is(err, ErrInvalidCategory):
		return KindTransition
	case errors.Is(err, repository.ErrConflict):
		return KindConflict
	default:
		return KindPersistence
	}
}

// MapHTTPStatus maps article domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, state.ErrIllegalTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidArticle),
		errors.Is(err, ErrInvalidCategory),
		errors.Is(err, ErrInvalidReason),
		errors.Is(err, ErrNoIDs):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
