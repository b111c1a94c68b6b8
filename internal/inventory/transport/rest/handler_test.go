package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abgdnv/inventory/internal/inventory/gateway"
	"github.com/abgdnv/inventory/internal/inventory/service"
	"github.com/abgdnv/inventory/internal/inventory/store"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGateway is a stub implementation of the coordinator's Gateway
type stubGateway struct {
	products []store.Product
	error    error
}

func (s *stubGateway) FetchProducts(_ context.Context) ([]store.Product, error) {
	if s.error != nil {
		return nil, s.error
	}
	return s.products, nil
}

func newTestMux(gw *stubGateway) *chi.Mux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	coordinator := service.NewCoordinator(gw, store.NewInMemoryStore(), RoleAuthorizer{}, logger)
	mux := chi.NewRouter()
	NewHandler(coordinator, logger).RegisterRoutes(mux)
	return mux
}

func penGateway() *stubGateway {
	return &stubGateway{products: []store.Product{
		{ID: 1, Name: "Pen", Category: "Office", Price: "$2", Quantity: 10, Status: store.StatusActive},
	}}
}

func doRequest(mux *chi.Mux, method, target, body string, admin bool) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if admin {
		req.Header.Set("X-User-Role", "admin")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func refresh(t *testing.T, mux *chi.Mux) {
	t.Helper()
	rec := doRequest(mux, http.MethodPost, "/api/v1/inventory/refresh", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
}

func Test_Handler_Snapshot_Idle(t *testing.T) {
	// given
	mux := newTestMux(penGateway())
	// when
	rec := doRequest(mux, http.MethodGet, "/api/v1/inventory", "", false)
	// then
	require.Equal(t, http.StatusOK, rec.Code)
	var snap service.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, service.StateIdle, snap.State)
	assert.Empty(t, snap.Products)
}

func Test_Handler_Refresh(t *testing.T) {
	t.Run("Success - snapshot returned", func(t *testing.T) {
		// given
		mux := newTestMux(penGateway())
		// when
		rec := doRequest(mux, http.MethodPost, "/api/v1/inventory/refresh", "", false)
		// then
		require.Equal(t, http.StatusOK, rec.Code)
		var snap service.Snapshot
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
		assert.Equal(t, service.StateReady, snap.State)
		require.Len(t, snap.Products, 1)
		assert.Equal(t, "$20.00", snap.Products[0].Value)
		assert.Equal(t, 1, snap.Stats.TotalProducts)
	})

	t.Run("Error - upstream failure maps to 502", func(t *testing.T) {
		// given
		gw := &stubGateway{error: &gateway.FetchError{Cause: errors.New("connection refused")}}
		mux := newTestMux(gw)
		// when
		rec := doRequest(mux, http.MethodPost, "/api/v1/inventory/refresh", "", false)
		// then
		require.Equal(t, http.StatusBadGateway, rec.Code)
		var snap service.Snapshot
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
		assert.Equal(t, service.StateFailed, snap.State)
		assert.Equal(t, "failed to fetch inventory: connection refused", snap.Error)
	})
}

func Test_Handler_EditProduct(t *testing.T) {
	body := `{"name":"Pen","category":"Office","price":"3","quantity":5}`

	t.Run("Success", func(t *testing.T) {
		// given
		mux := newTestMux(penGateway())
		refresh(t, mux)
		// when
		rec := doRequest(mux, http.MethodPut, "/api/v1/inventory/products/1", body, true)
		// then
		require.Equal(t, http.StatusOK, rec.Code)
		var updated service.ProductDto
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, "$3", updated.Price)
		assert.Equal(t, "$15.00", updated.Value)
	})

	t.Run("Error - no admin role", func(t *testing.T) {
		mux := newTestMux(penGateway())
		refresh(t, mux)
		rec := doRequest(mux, http.MethodPut, "/api/v1/inventory/products/1", body, false)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Error - inventory not loaded", func(t *testing.T) {
		mux := newTestMux(penGateway())
		rec := doRequest(mux, http.MethodPut, "/api/v1/inventory/products/1", body, true)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Error - product not found", func(t *testing.T) {
		mux := newTestMux(penGateway())
		refresh(t, mux)
		rec := doRequest(mux, http.MethodPut, "/api/v1/inventory/products/42", body, true)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Error - edit-form rules rejected", func(t *testing.T) {
		mux := newTestMux(penGateway())
		refresh(t, mux)
		invalid := `{"name":"Pen","category":"Office","price":"12.345","quantity":5}`
		rec := doRequest(mux, http.MethodPut, "/api/v1/inventory/products/1", invalid, true)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var payload map[string]map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, "Invalid price format", payload["validation_errors"]["price"])
	})

	t.Run("Error - body shape rejected", func(t *testing.T) {
		mux := newTestMux(penGateway())
		refresh(t, mux)
		rec := doRequest(mux, http.MethodPut, "/api/v1/inventory/products/1", `{"category":"Office"}`, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "validation_errors")
	})

	t.Run("Error - invalid id", func(t *testing.T) {
		mux := newTestMux(penGateway())
		refresh(t, mux)
		rec := doRequest(mux, http.MethodPut, "/api/v1/inventory/products/abc", body, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_Handler_DeleteProduct(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// given
		mux := newTestMux(penGateway())
		refresh(t, mux)
		// when
		rec := doRequest(mux, http.MethodDelete, "/api/v1/inventory/products/1", "", true)
		// then
		require.Equal(t, http.StatusNoContent, rec.Code)

		snapRec := doRequest(mux, http.MethodGet, "/api/v1/inventory", "", false)
		var snap service.Snapshot
		require.NoError(t, json.Unmarshal(snapRec.Body.Bytes(), &snap))
		assert.Empty(t, snap.Products)
		assert.Equal(t, 0, snap.Stats.TotalProducts)
	})

	t.Run("Error - no admin role", func(t *testing.T) {
		mux := newTestMux(penGateway())
		refresh(t, mux)
		rec := doRequest(mux, http.MethodDelete, "/api/v1/inventory/products/1", "", false)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Error - product not found", func(t *testing.T) {
		mux := newTestMux(penGateway())
		refresh(t, mux)
		rec := doRequest(mux, http.MethodDelete, "/api/v1/inventory/products/42", "", true)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_Handler_ToggleVisibility(t *testing.T) {
	// given
	mux := newTestMux(penGateway())
	refresh(t, mux)

	// when
	rec := doRequest(mux, http.MethodPost, "/api/v1/inventory/products/1/visibility", "", true)

	// then
	require.Equal(t, http.StatusOK, rec.Code)
	var toggled service.ProductDto
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &toggled))
	assert.Equal(t, "disabled", toggled.Status)

	snapRec := doRequest(mux, http.MethodGet, "/api/v1/inventory", "", false)
	var snap service.Snapshot
	require.NoError(t, json.Unmarshal(snapRec.Body.Bytes(), &snap))
	assert.Equal(t, 0, snap.Stats.TotalProducts, "disabled product leaves the aggregates")
	assert.Len(t, snap.Products, 1, "disabled product stays in the collection")
}

func Test_Handler_ValidateField(t *testing.T) {
	mux := newTestMux(penGateway())

	testCases := []struct {
		name     string
		body     string
		expected string
	}{
		{name: "valid price", body: `{"field":"price","value":"$12.30"}`, expected: ""},
		{name: "invalid price", body: `{"field":"price","value":"12.345"}`, expected: "Invalid price format"},
		{name: "negative quantity", body: `{"field":"quantity","value":"-1"}`, expected: "Quantity cannot be negative"},
		{name: "empty category", body: `{"field":"category","value":""}`, expected: "Category is required"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(mux, http.MethodPost, "/api/v1/inventory/validate", tc.body, false)

			require.Equal(t, http.StatusOK, rec.Code)
			var result map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
			assert.Equal(t, tc.expected, result["error"])
		})
	}
}

func Test_Handler_HealthCheck(t *testing.T) {
	mux := newTestMux(penGateway())
	rec := doRequest(mux, http.MethodGet, "/healthz", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
}
