package inventory

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"mechanic-service/internal/httputil"
	"mechanic-service/internal/listcache"
	"mechanic-service/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  Service
	cache    *listcache.Coordinator
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service Service, cache *listcache.Coordinator, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		cache:    cache,
		validate: validator.New(),
		logger:   logger,
		metrics:  m,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router, limit func(http.Handler) http.Handler) {
	router.Route("/inventory", func(r chi.Router) {
		r.With(limit).Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithValidationErrors(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "creating part", "name", req.Name)
	created, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.cache.Invalidate(listcache.KindParts)

	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := httputil.ParsePageParams(r)
	key := listcache.PageKey(listcache.KindParts, params)

	if page, ok := h.cache.Get(r.Context(), key); ok {
		httputil.RespondWithJSON(w, http.StatusOK, page)
		return
	}

	parts, total, err := h.service.ListPage(r.Context(), params)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	page := httputil.NewPageResponse(params, total, parts)
	h.cache.Set(key, page)

	httputil.RespondWithJSON(w, http.StatusOK, page)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid part ID")
		return
	}

	part, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, part)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid part ID")
		return
	}

	var req UpdatePartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithValidationErrors(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "updating part", "part_id", id)
	part, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.cache.Invalidate(listcache.KindParts)

	httputil.RespondWithJSON(w, http.StatusOK, part)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid part ID")
		return
	}

	h.logger.InfoContext(r.Context(), "deleting part", "part_id", id)
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	// detaching the part changes ticket part sets too
	h.cache.Invalidate(listcache.KindParts, listcache.KindTickets)

	httputil.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Part deleted"})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPartNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Part not found")
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
