// Package gateway fetches the raw product list from the remote inventory
// endpoint and normalizes it into the internal product shape.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/inventory/internal/inventory/money"
	"github.com/abgdnv/inventory/internal/inventory/store"
	"github.com/abgdnv/inventory/pkg/config"
)

// FetchError reports a failed inventory fetch. Network, status and decode
// failures all collapse into it; no partial result is ever produced.
type FetchError struct {
	Cause error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("inventory fetch failed: %v", e.Cause)
	}
	return "inventory fetch failed"
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// rawProduct is the upstream record shape. The remote source supplies no
// stable ids, and its value field is discarded since value is derived.
type rawProduct struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	Quantity int64  `json:"quantity"`
	Value    string `json:"value"`
}

// Client fetches products from the configured inventory endpoint.
type Client struct {
	httpClient *http.Client
	url        string
	logger     *slog.Logger
}

// NewClient creates a gateway client for the configured upstream.
// The timeout bounds the whole fetch, connection included.
func NewClient(cfg config.UpstreamConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		url:        cfg.URL,
		logger:     logger.With("component", "gateway"),
	}
}

// FetchProducts performs a single GET against the inventory endpoint and
// returns the normalized product list: ids are assigned from the 1-based
// position in the response, every product starts active, and prices carry
// the currency prefix. Any failure is returned as *FetchError; there are
// no retries.
func (c *Client) FetchProducts(ctx context.Context) ([]store.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &FetchError{Cause: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &FetchError{Cause: fmt.Errorf("unexpected status: %s", resp.Status)}
	}

	var raw []rawProduct
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &FetchError{Cause: fmt.Errorf("decoding response: %w", err)}
	}

	products := make([]store.Product, len(raw))
	for i, r := range raw {
		products[i] = store.Product{
			ID:       int64(i + 1),
			Name:     r.Name,
			Category: r.Category,
			Price:    money.EnsureCurrencyPrefix(r.Price),
			Quantity: r.Quantity,
			Status:   store.StatusActive,
		}
	}
	c.logger.DebugContext(ctx, "Fetched inventory", "count", len(products))
	return products, nil
}
