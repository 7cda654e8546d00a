package customer

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"mechanic-service/internal/auth"
	"mechanic-service/internal/httputil"
	"mechanic-service/internal/listcache"
	"mechanic-service/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  Service
	tokens   *auth.TokenService
	cache    *listcache.Coordinator
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service Service, tokens *auth.TokenService, cache *listcache.Coordinator, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		tokens:   tokens,
		cache:    cache,
		validate: validator.New(),
		logger:   logger,
		metrics:  m,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router, limit func(http.Handler) http.Handler) {
	router.Route("/customers", func(r chi.Router) {
		r.With(limit).Post("/", h.Create)
		r.Get("/", h.List)
		r.Post("/login", h.Login)
		r.With(auth.RequireToken(h.tokens, h.logger)).Get("/my-tickets", h.MyTickets)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithValidationErrors(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "creating customer", "email", req.Email)
	created, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.metrics.RecordCustomerRegistration(r.Context())
	h.cache.Invalidate(listcache.KindCustomers)

	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := httputil.ParsePageParams(r)
	key := listcache.PageKey(listcache.KindCustomers, params)

	if page, ok := h.cache.Get(r.Context(), key); ok {
		httputil.RespondWithJSON(w, http.StatusOK, page)
		return
	}

	customers, total, err := h.service.ListPage(r.Context(), params)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	page := httputil.NewPageResponse(params, total, customers)
	h.cache.Set(key, page)

	httputil.RespondWithJSON(w, http.StatusOK, page)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid customer ID")
		return
	}

	cust, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, cust)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid customer ID")
		return
	}

	var req UpdateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithValidationErrors(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "updating customer", "customer_id", id)
	cust, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.cache.Invalidate(listcache.KindCustomers)

	httputil.RespondWithJSON(w, http.StatusOK, cust)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid customer ID")
		return
	}

	h.logger.InfoContext(r.Context(), "deleting customer", "customer_id", id)
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	// tickets go with the customer, so both kinds are stale now
	h.cache.Invalidate(listcache.KindCustomers, listcache.KindTickets, listcache.KindMechanics)

	httputil.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Customer deleted"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithValidationErrors(w, err)
		return
	}

	token, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "customer logged in", "email", req.Email)
	h.metrics.RecordCustomerLogin(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, LoginResponse{Token: token})
}

func (h *Handler) MyTickets(w http.ResponseWriter, r *http.Request) {
	customerID, ok := auth.CustomerID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return
	}

	items, err := h.service.MyTickets(r.Context(), customerID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCustomerNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Customer not found")
	case errors.Is(err, ErrEmailExists):
		httputil.RespondWithError(w, http.StatusConflict, ErrEmailExists.Error())
	case errors.Is(err, ErrInvalidCredentials):
		httputil.RespondWithError(w, http.StatusUnauthorized, ErrInvalidCredentials.Error())
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
