package ticket

import (
	"context"
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

// RegisterRoutes mounts the ticket routes. Reads are open; every
// mutation on an existing ticket requires a bearer token for the
// owning customer.
func (h *Handler) RegisterRoutes(router chi.Router, limit func(http.Handler) http.Handler) {
	requireToken := auth.RequireToken(h.tokens, h.logger)
	requireOwner := auth.RequireOwner(h.ownerOf, h.logger)

	router.Route("/service_tickets", func(r chi.Router) {
		r.With(limit).Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(requireToken, requireOwner)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Put("/{id}/edit", h.EditMechanics)
			r.Post("/{id}/add-part/{part_id}", h.AttachPart)
		})
	})
}

// ownerOf adapts the ticket repository to the auth guard contract.
func (h *Handler) ownerOf(ctx context.Context, ticketID int) (int, error) {
	ownerID, err := h.service.OwnerID(ctx, ticketID)
	if errors.Is(err, ErrTicketNotFound) {
		return 0, auth.ErrUnknownResource
	}
	return ownerID, err
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithValidationErrors(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "creating service ticket", "customer_id", req.CustomerID, "vin", req.VIN)
	created, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.metrics.RecordTicketCreated(r.Context())
	h.cache.Invalidate(listcache.KindTickets, listcache.KindMechanics)

	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := httputil.ParsePageParams(r)
	key := listcache.PageKey(listcache.KindTickets, params)

	if page, ok := h.cache.Get(r.Context(), key); ok {
		httputil.RespondWithJSON(w, http.StatusOK, page)
		return
	}

	tickets, total, err := h.service.ListPage(r.Context(), params)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	page := httputil.NewPageResponse(params, total, tickets)
	h.cache.Set(key, page)

	httputil.RespondWithJSON(w, http.StatusOK, page)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid ticket ID")
		return
	}

	ticket, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, ticket)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid ticket ID")
		return
	}

	var req UpdateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithValidationErrors(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "updating service ticket", "ticket_id", id)
	ticket, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.cache.Invalidate(listcache.KindTickets, listcache.KindMechanics)

	httputil.RespondWithJSON(w, http.StatusOK, ticket)
}

func (h *Handler) EditMechanics(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid ticket ID")
		return
	}

	var req EditMechanicsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithValidationErrors(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "editing ticket mechanics", "ticket_id", id,
		"add", len(req.AddIDs), "remove", len(req.RemoveIDs))
	ticket, err := h.service.EditMechanics(r.Context(), id, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	// the leaderboard depends on assignment counts
	h.cache.Invalidate(listcache.KindTickets, listcache.KindMechanics)

	httputil.RespondWithJSON(w, http.StatusOK, ticket)
}

func (h *Handler) AttachPart(w http.ResponseWriter, r *http.Request) {
	ticketID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid ticket ID")
		return
	}
	partID, err := strconv.Atoi(chi.URLParam(r, "part_id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid part ID")
		return
	}

	h.logger.InfoContext(r.Context(), "attaching part", "ticket_id", ticketID, "part_id", partID)
	ticket, err := h.service.AttachPart(r.Context(), ticketID, partID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.metrics.RecordPartAttached(r.Context())
	h.cache.Invalidate(listcache.KindTickets)

	httputil.RespondWithJSON(w, http.StatusOK, ticket)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid ticket ID")
		return
	}

	h.logger.InfoContext(r.Context(), "deleting service ticket", "ticket_id", id)
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.cache.Invalidate(listcache.KindTickets, listcache.KindMechanics)

	httputil.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Service ticket deleted"})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTicketNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Service ticket not found")
	case errors.Is(err, ErrUnknownCustomer):
		httputil.RespondWithError(w, http.StatusNotFound, ErrUnknownCustomer.Error())
	case errors.Is(err, ErrUnknownMechanic):
		httputil.RespondWithError(w, http.StatusNotFound, ErrUnknownMechanic.Error())
	case errors.Is(err, ErrUnknownPart):
		httputil.RespondWithError(w, http.StatusNotFound, ErrUnknownPart.Error())
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
