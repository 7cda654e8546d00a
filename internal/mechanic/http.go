package mechanic

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
	router.Route("/mechanics", func(r chi.Router) {
		r.With(limit).Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/leaderboard", h.Leaderboard)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateMechanicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithValidationErrors(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "creating mechanic", "email", req.Email)
	created, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.cache.Invalidate(listcache.KindMechanics)

	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := httputil.ParsePageParams(r)
	key := listcache.PageKey(listcache.KindMechanics, params)

	if page, ok := h.cache.Get(r.Context(), key); ok {
		httputil.RespondWithJSON(w, http.StatusOK, page)
		return
	}

	mechanics, total, err := h.service.ListPage(r.Context(), params)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	page := httputil.NewPageResponse(params, total, mechanics)
	h.cache.Set(key, page)

	httputil.RespondWithJSON(w, http.StatusOK, page)
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	key := listcache.Key(listcache.KindMechanics, "leaderboard")

	if entries, ok := h.cache.Get(r.Context(), key); ok {
		httputil.RespondWithJSON(w, http.StatusOK, entries)
		return
	}

	entries, err := h.service.Leaderboard(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.cache.Set(key, entries)

	httputil.RespondWithJSON(w, http.StatusOK, entries)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid mechanic ID")
		return
	}

	mech, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, mech)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid mechanic ID")
		return
	}

	var req UpdateMechanicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithValidationErrors(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "updating mechanic", "mechanic_id", id)
	mech, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.cache.Invalidate(listcache.KindMechanics)

	httputil.RespondWithJSON(w, http.StatusOK, mech)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid mechanic ID")
		return
	}

	h.logger.InfoContext(r.Context(), "deleting mechanic", "mechanic_id", id)
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	// detaching the mechanic changes ticket association sets too
	h.cache.Invalidate(listcache.KindMechanics, listcache.KindTickets)

	httputil.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Mechanic deleted"})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMechanicNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Mechanic not found")
	case errors.Is(err, ErrEmailExists):
		httputil.RespondWithError(w, http.StatusConflict, ErrEmailExists.Error())
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
