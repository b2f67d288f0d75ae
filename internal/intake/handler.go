package intake

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/zeroecho/pkg/handlers"
	"github.com/JaimeStill/zeroecho/pkg/routes"
)

// Handler provides the HTTP trigger for intake runs.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "intake"),
	}
}

// Routes returns the route group definition for intake endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/intake",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/run", Handler: h.Run},
		},
	}
}

// Run collects from every source and reports the outcome.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	result, err := h.sys.Run(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, ErrRunning):
			status = http.StatusConflict
		case errors.Is(err, ErrInvalidSource):
			status = http.StatusUnprocessableEntity
		}
		handlers.RespondError(w, h.logger, status, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
