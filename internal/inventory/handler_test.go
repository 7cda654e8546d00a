package inventory_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mechanic-service/internal/inventory"
	"mechanic-service/internal/listcache"
	"mechanic-service/internal/logger"
	"mechanic-service/internal/metrics"
	"mechanic-service/internal/models"
	"mechanic-service/internal/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noLimit(next http.Handler) http.Handler { return next }

func TestInventoryHandler(t *testing.T) {
	db := testdb.Setup(t)

	mockMetrics := metrics.NewMock()
	cache := listcache.New(time.Minute, mockMetrics)

	repo := inventory.NewRepository(db, mockMetrics)
	service := inventory.NewService(repo, nil)
	handler := inventory.NewHandler(service, cache, logger.New(), mockMetrics)

	router := chi.NewRouter()
	handler.RegisterRoutes(router, noLimit)

	cleanup := func() {
		testdb.CleanupTables(t, db, "ticket_parts", "service_tickets", "customers", "inventory")
		cache.Invalidate(listcache.KindParts, listcache.KindTickets)
	}

	createPart := func(t *testing.T, name string, price float64) models.Part {
		t.Helper()
		payload := map[string]interface{}{
			"name":  name,
			"price": price,
		}
		body, _ := json.Marshal(payload)

		req := httptest.NewRequest(http.MethodPost, "/inventory", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var created models.Part
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		return created
	}

	t.Run("Create", func(t *testing.T) {
		cleanup()

		created := createPart(t, "brake pad", 49.99)
		assert.NotZero(t, created.ID)
		assert.Equal(t, 49.99, created.Price)
	})

	t.Run("CreateFreePart", func(t *testing.T) {
		cleanup()

		created := createPart(t, "sticker", 0)
		assert.NotZero(t, created.ID)
		assert.Zero(t, created.Price)
	})

	t.Run("CreateMissingPrice", func(t *testing.T) {
		cleanup()

		body, _ := json.Marshal(map[string]interface{}{"name": "mystery part"})
		req := httptest.NewRequest(http.MethodPost, "/inventory", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("CreateNegativePrice", func(t *testing.T) {
		cleanup()

		body, _ := json.Marshal(map[string]interface{}{"name": "refund", "price": -5.0})
		req := httptest.NewRequest(http.MethodPost, "/inventory", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("List", func(t *testing.T) {
		cleanup()

		createPart(t, "oil filter", 12.50)
		createPart(t, "air filter", 18.00)

		type page struct {
			Total int           `json:"total"`
			Items []models.Part `json:"items"`
		}

		req := httptest.NewRequest(http.MethodGet, "/inventory", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var got page
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, 2, got.Total)
		assert.Len(t, got.Items, 2)
	})

	t.Run("Get", func(t *testing.T) {
		cleanup()

		created := createPart(t, "spark plug", 7.25)

		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/inventory/%d", created.ID), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var got models.Part
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, "spark plug", got.Name)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		cleanup()

		req := httptest.NewRequest(http.MethodGet, "/inventory/99999", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Update", func(t *testing.T) {
		cleanup()

		created := createPart(t, "battery", 95.00)

		body, _ := json.Marshal(map[string]interface{}{"price": 105.00})
		req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/inventory/%d", created.ID), bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var updated models.Part
		require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
		assert.Equal(t, 105.00, updated.Price)
		assert.Equal(t, "battery", updated.Name)
	})

	t.Run("DeleteDetachesFromTickets", func(t *testing.T) {
		cleanup()

		created := createPart(t, "alternator", 210.00)

		ctx := context.Background()
		cust := &models.Customer{Name: "Owner", Email: "owner-pd@example.com", Phone: "555-0400", PasswordHash: "x"}
		_, err := db.NewInsert().Model(cust).Exec(ctx)
		require.NoError(t, err)

		ticket := &models.ServiceTicket{VIN: "VIN-PD", ServiceDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), ServiceDesc: "charging", CustomerID: cust.ID}
		_, err = db.NewInsert().Model(ticket).Exec(ctx)
		require.NoError(t, err)
		_, err = db.NewInsert().Model(&models.TicketPart{TicketID: ticket.ID, PartID: created.ID}).Exec(ctx)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/inventory/%d", created.ID), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		linkCount, err := db.NewSelect().Model((*models.TicketPart)(nil)).Where("part_id = ?", created.ID).Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, linkCount)

		ticketCount, err := db.NewSelect().Model((*models.ServiceTicket)(nil)).Where("id = ?", ticket.ID).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, ticketCount)
	})

	t.Run("DeleteNotFound", func(t *testing.T) {
		cleanup()

		req := httptest.NewRequest(http.MethodDelete, "/inventory/99999", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
