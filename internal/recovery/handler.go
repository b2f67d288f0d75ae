package recovery

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/zeroecho/pkg/handlers"
	"github.com/JaimeStill/zeroecho/pkg/routes"
)

// Handler provides HTTP endpoints for orphan recovery.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// RecoverRequest is the optional body of POST /recovery/orphans.
type RecoverRequest struct {
	IDs []string `json:"ids"`
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "recovery"),
	}
}

// Routes returns the route group definition for recovery endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/recovery",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/orphans", Handler: h.Scan},
			{Method: "POST", Pattern: "/orphans", Handler: h.Sweep},
		},
	}
}

// Scan lists the current orphans.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	report, err := h.sys.Scan(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}

// Sweep recovers orphans, optionally limited to the given ids.
func (h *Handler) Sweep(w http.ResponseWriter, r *http.Request) {
	var req RecoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.Sweep(r.Context(), req.IDs)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
