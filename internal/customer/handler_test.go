package customer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mechanic-service/internal/auth"
	"mechanic-service/internal/config"
	"mechanic-service/internal/customer"
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

func testTokens() *auth.TokenService {
	return auth.NewTokenService(config.AuthConfig{
		Secret:     "test-secret-key",
		Issuer:     "mechanic_api",
		Audience:   "mechanic_clients",
		ExpiresMin: 60,
	})
}

func TestCustomerHandler(t *testing.T) {
	db := testdb.Setup(t)

	mockMetrics := metrics.NewMock()
	tokens := testTokens()
	cache := listcache.New(time.Minute, mockMetrics)

	repo := customer.NewRepository(db, mockMetrics)
	service := customer.NewService(repo, tokens, nil)
	handler := customer.NewHandler(service, tokens, cache, logger.New(), mockMetrics)

	router := chi.NewRouter()
	handler.RegisterRoutes(router, noLimit)

	cleanup := func() {
		testdb.CleanupTables(t, db, "ticket_mechanics", "ticket_parts", "service_tickets", "customers")
		cache.Invalidate(listcache.KindCustomers, listcache.KindTickets)
	}

	createCustomer := func(t *testing.T, email string) models.Customer {
		t.Helper()
		payload := map[string]interface{}{
			"name":     "Test Customer",
			"email":    email,
			"phone":    "555-0100",
			"password": "hunter2hunter2",
		}
		body, _ := json.Marshal(payload)

		req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var created models.Customer
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		return created
	}

	t.Run("Create", func(t *testing.T) {
		cleanup()

		created := createCustomer(t, "alice@example.com")
		assert.NotZero(t, created.ID)
		assert.Equal(t, "alice@example.com", created.Email)

		// stored hash never leaves the API
		assert.Empty(t, created.PasswordHash)
	})

	t.Run("CreateDuplicateEmail", func(t *testing.T) {
		cleanup()

		createCustomer(t, "bob@example.com")

		payload := map[string]interface{}{
			"name":     "Bob Again",
			"email":    "bob@example.com",
			"phone":    "555-0101",
			"password": "hunter2hunter2",
		}
		body, _ := json.Marshal(payload)

		req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("CreateInvalidPayload", func(t *testing.T) {
		cleanup()

		payload := map[string]interface{}{
			"name":     "No Password",
			"email":    "not-an-email",
			"phone":    "555-0102",
			"password": "short",
		}
		body, _ := json.Marshal(payload)

		req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Login", func(t *testing.T) {
		cleanup()

		created := createCustomer(t, "carol@example.com")

		body, _ := json.Marshal(map[string]string{
			"email":    "carol@example.com",
			"password": "hunter2hunter2",
		})
		req := httptest.NewRequest(http.MethodPost, "/customers/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp customer.LoginResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.NotEmpty(t, resp.Token)

		customerID, err := testTokens().Validate(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, created.ID, customerID)
	})

	t.Run("LoginWrongPassword", func(t *testing.T) {
		cleanup()

		createCustomer(t, "dave@example.com")

		body, _ := json.Marshal(map[string]string{
			"email":    "dave@example.com",
			"password": "wrong-password",
		})
		req := httptest.NewRequest(http.MethodPost, "/customers/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("LoginUnknownEmail", func(t *testing.T) {
		cleanup()

		body, _ := json.Marshal(map[string]string{
			"email":    "nobody@example.com",
			"password": "hunter2hunter2",
		})
		req := httptest.NewRequest(http.MethodPost, "/customers/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("MyTickets", func(t *testing.T) {
		cleanup()

		owner := createCustomer(t, "erin@example.com")
		other := createCustomer(t, "frank@example.com")

		ctx := context.Background()
		tickets := []*models.ServiceTicket{
			{VIN: "VIN-1", ServiceDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), ServiceDesc: "brakes", CustomerID: owner.ID},
			{VIN: "VIN-2", ServiceDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), ServiceDesc: "oil change", CustomerID: other.ID},
		}
		for _, ticket := range tickets {
			_, err := db.NewInsert().Model(ticket).Exec(ctx)
			require.NoError(t, err)
		}

		token, err := testTokens().Issue(owner.ID)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/customers/my-tickets", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var items []customer.TicketSummary
		require.NoError(t, json.NewDecoder(w.Body).Decode(&items))
		require.Len(t, items, 1)
		assert.Equal(t, "VIN-1", items[0].VIN)
		assert.Equal(t, "2026-03-01", items[0].ServiceDate)
	})

	t.Run("MyTicketsWithoutToken", func(t *testing.T) {
		cleanup()

		req := httptest.NewRequest(http.MethodGet, "/customers/my-tickets", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("ListPagination", func(t *testing.T) {
		cleanup()

		for i := 0; i < 25; i++ {
			createCustomer(t, fmt.Sprintf("pag%02d@example.com", i))
		}

		type page struct {
			Page    int               `json:"page"`
			PerPage int               `json:"per_page"`
			Total   int               `json:"total"`
			Pages   int               `json:"pages"`
			Items   []models.Customer `json:"items"`
		}

		req := httptest.NewRequest(http.MethodGet, "/customers?page=3&per_page=10", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var got page
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, 25, got.Total)
		assert.Equal(t, 3, got.Pages)
		assert.Len(t, got.Items, 5)

		// a page past the end is empty, not an error
		req = httptest.NewRequest(http.MethodGet, "/customers?page=9&per_page=10", nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		// items must be an empty list on the wire, not null
		raw := w.Body.String()
		assert.Contains(t, raw, `"items":[]`)

		require.NoError(t, json.Unmarshal([]byte(raw), &got))
		assert.Equal(t, 25, got.Total)
		assert.Equal(t, 3, got.Pages)
		assert.Empty(t, got.Items)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		cleanup()

		req := httptest.NewRequest(http.MethodGet, "/customers/99999", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Update", func(t *testing.T) {
		cleanup()

		created := createCustomer(t, "grace@example.com")

		body, _ := json.Marshal(map[string]string{"phone": "555-9999"})
		req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/customers/%d", created.ID), bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var updated models.Customer
		require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
		assert.Equal(t, "555-9999", updated.Phone)

		// untouched fields keep their values
		assert.Equal(t, "grace@example.com", updated.Email)
		assert.Equal(t, "Test Customer", updated.Name)
	})

	t.Run("UpdateEmailConflict", func(t *testing.T) {
		cleanup()

		createCustomer(t, "taken@example.com")
		created := createCustomer(t, "heidi@example.com")

		body, _ := json.Marshal(map[string]string{"email": "taken@example.com"})
		req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/customers/%d", created.ID), bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("DeleteCascadesTickets", func(t *testing.T) {
		cleanup()

		created := createCustomer(t, "ivan@example.com")

		ctx := context.Background()
		mech := &models.Mechanic{Name: "Mech", Email: "mech-del@example.com", Phone: "555-0001", Salary: 50000}
		_, err := db.NewInsert().Model(mech).Exec(ctx)
		require.NoError(t, err)

		ticket := &models.ServiceTicket{VIN: "VIN-DEL", ServiceDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), ServiceDesc: "tires", CustomerID: created.ID}
		_, err = db.NewInsert().Model(ticket).Exec(ctx)
		require.NoError(t, err)
		_, err = db.NewInsert().Model(&models.TicketMechanic{TicketID: ticket.ID, MechanicID: mech.ID}).Exec(ctx)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/customers/%d", created.ID), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		ticketCount, err := db.NewSelect().Model((*models.ServiceTicket)(nil)).Where("customer_id = ?", created.ID).Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, ticketCount)

		linkCount, err := db.NewSelect().Model((*models.TicketMechanic)(nil)).Where("ticket_id = ?", ticket.ID).Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, linkCount)

		// the mechanic survives its assignments
		mechCount, err := db.NewSelect().Model((*models.Mechanic)(nil)).Where("id = ?", mech.ID).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, mechCount)
	})

	t.Run("DeleteNotFound", func(t *testing.T) {
		cleanup()

		req := httptest.NewRequest(http.MethodDelete, "/customers/99999", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
