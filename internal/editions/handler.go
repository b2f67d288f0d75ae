package editions

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/zeroecho/pkg/handlers"
	"github.com/JaimeStill/zeroecho/pkg/pagination"
	"github.com/JaimeStill/zeroecho/pkg/routes"
)

// Handler provides HTTP endpoints for edition operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "editions"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for edition endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/editions",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Publish},
			{Method: "GET", Pattern: "/preview", Handler: h.Preview},
			{Method: "POST", Pattern: "/cutline", Handler: h.Cutline},
			{Method: "GET", Pattern: "/{code}", Handler: h.Find},
			{Method: "GET", Pattern: "/{code}/snapshot", Handler: h.Snapshot},
			{Method: "POST", Pattern: "/{code}/release", Handler: h.Release},
			{Method: "DELETE", Pattern: "/{code}", Handler: h.Delete},
		},
	}
}

// List returns a paginated list of editions.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Preview returns the ranked CLASSIFIED pool.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	entries, err := h.sys.Preview(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, entries)
}

// Cutline rejects the pool articles outside the thresholds. An empty body
// uses the configured thresholds.
func (h *Handler) Cutline(w http.ResponseWriter, r *http.Request) {
	var cmd CutlineCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil && !errors.Is(err, io.EOF) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.ApplyCutline(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Publish creates a PREVIEW edition.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	var cmd PublishCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	e, err := h.sys.Publish(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, e)
}

// Find returns a single edition.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	e, err := h.sys.Find(r.Context(), r.PathValue("code"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, e)
}

// Snapshot returns the edition with its articles embedded.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sys.Snapshot(r.Context(), r.PathValue("code"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, snap)
}

// Release makes the edition public.
func (h *Handler) Release(w http.ResponseWriter, r *http.Request) {
	e, err := h.sys.Release(r.Context(), r.PathValue("code"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, e)
}

// Delete removes the edition and resets its articles.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.Delete(r.Context(), r.PathValue("code")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
