package gateway

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abgdnv/inventory/internal/inventory/store"
	"github.com/abgdnv/inventory/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	cfg := config.UpstreamConfig{URL: url, Timeout: 2 * time.Second}
	return NewClient(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func Test_Client_FetchProducts_Normalization(t *testing.T) {
	// given
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"name":"Pen","category":"Office","price":"2","quantity":10,"value":"20"},
			{"name":"Mug","category":"Kitchen","price":"$8.50","quantity":0,"value":"$0"}
		]`))
	}))
	defer srv.Close()

	// when
	products, err := newTestClient(srv.URL).FetchProducts(context.Background())

	// then
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, int64(1), products[0].ID)
	assert.Equal(t, "Pen", products[0].Name)
	assert.Equal(t, "$2", products[0].Price, "unprefixed price must be normalized")
	assert.Equal(t, store.StatusActive, products[0].Status)
	assert.Equal(t, "$20.00", products[0].Value(), "value is derived, not taken from upstream")

	assert.Equal(t, int64(2), products[1].ID)
	assert.Equal(t, "$8.50", products[1].Price)
}

func Test_Client_FetchProducts_EmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	products, err := newTestClient(srv.URL).FetchProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func Test_Client_FetchProducts_Failures(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "upstream error status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"not":"an array"`))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			// when
			products, err := newTestClient(srv.URL).FetchProducts(context.Background())
			// then
			require.Error(t, err)
			var fetchErr *FetchError
			assert.ErrorAs(t, err, &fetchErr)
			assert.NotNil(t, fetchErr.Cause)
			assert.Nil(t, products, "no partial result on failure")
		})
	}
}

func Test_Client_FetchProducts_ConnectionRefused(t *testing.T) {
	// given a server that is already gone
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	// when
	_, err := newTestClient(url).FetchProducts(context.Background())

	// then
	var fetchErr *FetchError
	assert.ErrorAs(t, err, &fetchErr)
}
