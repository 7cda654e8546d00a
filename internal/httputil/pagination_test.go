package httputil_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"mechanic-service/internal/httputil"
	"mechanic-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageParams(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/customers", nil)
		params := httputil.ParsePageParams(req)
		assert.Equal(t, 1, params.Page)
		assert.Equal(t, 10, params.PerPage)
	})

	t.Run("Clamps", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/customers?page=-2&per_page=500", nil)
		params := httputil.ParsePageParams(req)
		assert.Equal(t, 1, params.Page)
		assert.Equal(t, 100, params.PerPage)
	})

	t.Run("Offset", func(t *testing.T) {
		params := httputil.PageParams{Page: 3, PerPage: 10}
		assert.Equal(t, 20, params.Offset())
	})
}

func TestNewPageResponse(t *testing.T) {
	t.Run("PageCount", func(t *testing.T) {
		resp := httputil.NewPageResponse(httputil.PageParams{Page: 1, PerPage: 10}, 25, []models.Customer{})
		assert.Equal(t, 25, resp.Total)
		assert.Equal(t, 3, resp.Pages)
	})

	t.Run("NilItemsSerializeAsEmptyList", func(t *testing.T) {
		var customers []models.Customer
		resp := httputil.NewPageResponse(httputil.PageParams{Page: 9, PerPage: 10}, 25, customers)

		body, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"items":[]`)
		assert.NotContains(t, string(body), `"items":null`)
	})

	t.Run("NonNilItemsPassThrough", func(t *testing.T) {
		resp := httputil.NewPageResponse(httputil.PageParams{Page: 1, PerPage: 10}, 1, []models.Part{{ID: 1, Name: "bolt", Price: 0.5}})

		items, ok := resp.Items.([]models.Part)
		require.True(t, ok)
		assert.Len(t, items, 1)
	})
}
