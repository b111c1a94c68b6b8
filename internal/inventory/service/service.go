// Package service provides the coordinator for the inventory dashboard:
// it orchestrates fetch, normalization, storage and stats derivation, and
// exposes the read model and mutation commands to the transport layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/abgdnv/inventory/internal/inventory/gateway"
	"github.com/abgdnv/inventory/internal/inventory/money"
	"github.com/abgdnv/inventory/internal/inventory/store"
	"github.com/abgdnv/inventory/internal/inventory/validation"
)

// State is the coordinator's lifecycle state.
type State string

const (
	// StateIdle is the initial state, before any fetch.
	StateIdle State = "idle"
	// StateLoading means a fetch is in flight.
	StateLoading State = "loading"
	// StateReady means the last fetch succeeded and mutations are accepted.
	StateReady State = "ready"
	// StateFailed means the last fetch failed; refresh may be retried.
	StateFailed State = "failed"
)

// Gateway produces the normalized product list from the remote source.
type Gateway interface {
	FetchProducts(ctx context.Context) ([]store.Product, error)
}

// Authorizer answers the single permission question the coordinator asks.
type Authorizer interface {
	IsAdmin(ctx context.Context) bool
}

// ProductDto represents the data transfer object for a product.
// Value is computed from price and quantity on every read.
type ProductDto struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	Quantity int64  `json:"quantity"`
	Value    string `json:"value"`
	Status   string `json:"status"`
}

// ProductUpdateDto represents the data transfer object for editing a product.
// Price and quantity arrive as the operator typed them; the coordinator
// runs the edit-form rules before accepting them.
type ProductUpdateDto struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"     validate:"required,max=100"`
	Category string `json:"category" validate:"required,max=100"`
	Price    string `json:"price"    validate:"required"`
	Quantity int64  `json:"quantity"`
}

// StatsDto represents the aggregate statistics over the active products.
type StatsDto struct {
	TotalProducts   int     `json:"totalProducts"`
	TotalStoreValue float64 `json:"totalStoreValue"`
	OutOfStock      int     `json:"outOfStock"`
	TotalCategories int     `json:"totalCategories"`
}

// Snapshot is the read model handed to the presentation layer.
type Snapshot struct {
	State    State        `json:"state"`
	Products []ProductDto `json:"products"`
	Stats    StatsDto     `json:"stats"`
	Error    string       `json:"error,omitempty"`
}

// FieldError is a single edit-form rule violation. It is data, not a
// thrown failure: the presentation layer renders it next to the field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors aggregates the rule violations that block an edit.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Coordinator owns the dashboard state machine. All mutations and stats
// recomputation execute atomically under one lock; the only suspension
// point is the fetch, which runs outside it.
type Coordinator struct {
	gateway Gateway
	store   store.ProductStore
	auth    Authorizer
	logger  *slog.Logger

	mu         sync.Mutex
	state      State
	stats      store.Stats
	lastErr    string
	refreshing bool
}

// NewCoordinator creates a coordinator in the Idle state.
func NewCoordinator(gw Gateway, st store.ProductStore, auth Authorizer, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		gateway: gw,
		store:   st,
		auth:    auth,
		logger:  logger.With("component", "coordinator"),
		state:   StateIdle,
	}
}

// Refresh fetches the product list and moves the coordinator to Ready, or
// to Failed with a descriptive message. Only one refresh may be in flight;
// a concurrent call returns ErrRefreshInFlight. A failed refresh retains
// any previously loaded products and stats, so the operator keeps the last
// good view next to the error.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.refreshing {
		c.mu.Unlock()
		return inverrors.ErrRefreshInFlight
	}
	c.refreshing = true
	c.state = StateLoading
	c.mu.Unlock()

	products, err := c.gateway.FetchProducts(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshing = false
	if err != nil {
		c.state = StateFailed
		c.lastErr = fetchFailureMessage(err)
		c.logger.WarnContext(ctx, "Inventory refresh failed", "error", err)
		return fmt.Errorf("refresh: %w", err)
	}
	c.store.Load(products)
	c.stats = store.ComputeStats(products)
	c.state = StateReady
	c.lastErr = ""
	c.logger.InfoContext(ctx, "Inventory refreshed", "count", len(products))
	return nil
}

// EditProduct applies an operator edit: the edit-form rules run first,
// then the store replaces the product (normalizing the price) and the
// stats are recomputed. Requires the admin role and the Ready state.
// Returns ErrProductNotFound if no product exists with the given ID.
func (c *Coordinator) EditProduct(ctx context.Context, update ProductUpdateDto) (*ProductDto, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.auth.IsAdmin(ctx) {
		return nil, inverrors.ErrUnauthorized
	}
	if c.state != StateReady {
		return nil, inverrors.ErrNotReady
	}
	if verrs := validateUpdate(update); len(verrs) > 0 {
		return nil, verrs
	}

	updated, err := c.store.Update(update.ID, update.Name, update.Category, update.Price, update.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", update.ID, err)
	}
	c.stats = store.ComputeStats(c.store.FindAll())
	c.logger.InfoContext(ctx, "Product updated", "ID", updated.ID, "Name", updated.Name)
	return toDto(updated), nil
}

// DeleteProduct removes a product from the collection and recomputes the
// stats. Requires the admin role and the Ready state.
// Returns ErrProductNotFound if no product exists with the given ID.
func (c *Coordinator) DeleteProduct(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.auth.IsAdmin(ctx) {
		return inverrors.ErrUnauthorized
	}
	if c.state != StateReady {
		return inverrors.ErrNotReady
	}

	if err := c.store.DeleteByID(id); err != nil {
		return fmt.Errorf("failed to delete product with ID %d: %w", id, err)
	}
	c.stats = store.ComputeStats(c.store.FindAll())
	c.logger.InfoContext(ctx, "Product deleted", "ID", id)
	return nil
}

// ToggleVisibility flips a product between active and disabled and
// recomputes the stats. Requires the admin role and the Ready state.
// Returns ErrProductNotFound if no product exists with the given ID.
func (c *Coordinator) ToggleVisibility(ctx context.Context, id int64) (*ProductDto, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.auth.IsAdmin(ctx) {
		return nil, inverrors.ErrUnauthorized
	}
	if c.state != StateReady {
		return nil, inverrors.ErrNotReady
	}

	toggled, err := c.store.ToggleStatus(id)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle product with ID %d: %w", id, err)
	}
	c.stats = store.ComputeStats(c.store.FindAll())
	c.logger.InfoContext(ctx, "Product visibility toggled", "ID", id, "Status", toggled.Status)
	return toDto(toggled), nil
}

// Snapshot returns the current read model: state, products in load order
// with derived values, stats and the last fetch error, if any.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	products := c.store.FindAll()
	dtos := make([]ProductDto, len(products))
	for i, p := range products {
		dtos[i] = *toDto(&p)
	}
	value, _ := c.stats.TotalStoreValue.Float64()
	return Snapshot{
		State:    c.state,
		Products: dtos,
		Stats: StatsDto{
			TotalProducts:   c.stats.TotalProducts,
			TotalStoreValue: value,
			OutOfStock:      c.stats.OutOfStock,
			TotalCategories: c.stats.TotalCategories,
		},
		Error: c.lastErr,
	}
}

// validateUpdate runs the edit-form rules over the editable fields.
func validateUpdate(update ProductUpdateDto) ValidationErrors {
	fields := map[string]string{
		validation.FieldCategory: update.Category,
		validation.FieldPrice:    update.Price,
		validation.FieldQuantity: strconv.FormatInt(update.Quantity, 10),
	}
	var verrs ValidationErrors
	for _, field := range []string{validation.FieldCategory, validation.FieldPrice, validation.FieldQuantity} {
		if msg := validation.ValidateField(field, fields[field]); msg != "" {
			verrs = append(verrs, FieldError{Field: field, Message: msg})
		}
	}
	return verrs
}

// fetchFailureMessage converts a gateway error into the message shown in
// the Failed state.
func fetchFailureMessage(err error) string {
	var fetchErr *gateway.FetchError
	if errors.As(err, &fetchErr) && fetchErr.Cause != nil {
		return "failed to fetch inventory: " + fetchErr.Cause.Error()
	}
	return "Failed to fetch products"
}

// toDto converts a store.Product to a ProductDto, deriving the value.
func toDto(p *store.Product) *ProductDto {
	return &ProductDto{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Price:    money.EnsureCurrencyPrefix(p.Price),
		Quantity: p.Quantity,
		Value:    p.Value(),
		Status:   string(p.Status),
	}
}
