package articles

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/zeroecho/internal/state"
	"github.com/JaimeStill/zeroecho/pkg/handlers"
	"github.com/JaimeStill/zeroecho/pkg/pagination"
	"github.com/JaimeStill/zeroecho/pkg/routes"
)

// Handler provides HTTP endpoints for article operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// RejectRequest is the body of POST /articles/reject.
type RejectRequest struct {
	IDs    []string `json:"ids"`
	Reason string   `json:"reason"`
}

// IDsRequest is the body of POST /articles/restore.
type IDsRequest struct {
	IDs []string `json:"ids"`
}

// ClassifyRequest is the body of POST /articles/classify.
type ClassifyRequest struct {
	IDs      []string `json:"ids"`
	Category string   `json:"category"`
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "articles"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for article endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/articles",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "POST", Pattern: "/reject", Handler: h.Reject},
			{Method: "POST", Pattern: "/restore", Handler: h.Restore},
			{Method: "POST", Pattern: "/classify", Handler: h.Classify},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/score", Handler: h.Score},
			{Method: "POST", Pattern: "/{id}/reset-publication", Handler: h.ResetPublication},
		},
	}
}

// List returns a paginated list of articles with optional query parameter filters.
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

// Search accepts a JSON body with pagination and filter criteria.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single article.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	a, err := h.sys.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, a)
}

// Score returns the recomputed score breakdown for an article.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	view, err := h.sys.Score(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, view)
}

// Create registers a crawled article in COLLECTED.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	a, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, a)
}

// Reject rejects the listed articles with the given reason.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	var req RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if len(req.IDs) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoIDs)
		return
	}

	reason, err := state.ParseReason(req.Reason)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidReason)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.sys.Reject(r.Context(), req.IDs, reason))
}

// Restore returns the listed rejected articles to CLASSIFIED.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	var req IDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if len(req.IDs) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoIDs)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.sys.Restore(r.Context(), req.IDs))
}

// Classify assigns a category to the listed articles.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if len(req.IDs) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoIDs)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.sys.Classify(r.Context(), req.IDs, req.Category))
}

// ResetPublication unwinds a mistaken publication or release.
func (h *Handler) ResetPublication(w http.ResponseWriter, r *http.Request) {
	a, err := h.sys.ResetPublication(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, a)
}
