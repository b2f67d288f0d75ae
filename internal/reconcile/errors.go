package reconcile

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/zeroecho/internal/prompts"
)

// Domain errors for reconciliation.
var (
	ErrParse             = errors.New("response could not be parsed")
	ErrBatchNotFound     = errors.New("batch not found or expired")
	ErrPositionalRefused = errors.New("no record carries an article id; positional matching requires confirmation")
	ErrInvalidStage      = prompts.ErrInvalidStage
	ErrEmptyBatch        = errors.New("no articles available for the batch")
)

// MapHTTPStatus maps reconciliation errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrBatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrParse), errors.Is(err, ErrInvalidStage), errors.Is(err, ErrEmptyBatch):
		return http.StatusBadRequest
	case errors.Is(err, ErrPositionalRefused):
		return http.StatusPreconditionRequired
	default:
		return http.StatusInternalServerError
	}
}
