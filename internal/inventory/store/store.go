// Package store holds the canonical in-memory product collection and the
// aggregate statistics derived from it.
package store

import (
	"github.com/abgdnv/inventory/internal/inventory/money"
	"github.com/shopspring/decimal"
)

// Status is the visibility status of a product. Disabled products stay in
// the collection but are excluded from the aggregate statistics.
type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// Toggle flips active to disabled and back.
func (s Status) Toggle() Status {
	if s == StatusActive {
		return StatusDisabled
	}
	return StatusActive
}

// Product is one inventory item. Price and Quantity are the source of
// truth; the total value is always derived from them, never stored.
type Product struct {
	ID       int64
	Name     string
	Category string
	Price    string // canonical form "$<number>"
	Quantity int64
	Status   Status
}

// Value returns the product's total value, price multiplied by quantity,
// as a currency string with two decimal places.
func (p Product) Value() string {
	return money.Value(p.Price, p.Quantity)
}

// Stats are the aggregates over the active subset of the collection.
type Stats struct {
	TotalProducts   int
	TotalStoreValue decimal.Decimal
	OutOfStock      int
	TotalCategories int
}

// ProductStore is an interface for the in-memory product collection.
// It abstracts the underlying storage, allowing for different implementations.
type ProductStore interface {
	// Load replaces the entire collection. Used once after the initial fetch.
	Load(products []Product)

	// FindAll returns the collection in load order, disabled products included.
	FindAll() []Product

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(id int64) (*Product, error)

	// Update replaces the named fields of the product with the given ID,
	// normalizing the price to carry the currency prefix.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(id int64, name, category, price string, quantity int64) (*Product, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(id int64) error

	// ToggleStatus flips the product's visibility status.
	// Returns ErrProductNotFound if no product exists with the given ID.
	ToggleStatus(id int64) (*Product, error)
}

// ComputeStats derives the aggregate statistics from a product collection.
// Only active products count; the store value sum is exact decimal math.
func ComputeStats(products []Product) Stats {
	stats := Stats{TotalStoreValue: decimal.Zero}
	categories := make(map[string]struct{})
	for _, p := range products {
		if p.Status == StatusDisabled {
			continue
		}
		stats.TotalProducts++
		stats.TotalStoreValue = stats.TotalStoreValue.Add(
			money.ParseAmount(p.Price).Mul(decimal.NewFromInt(p.Quantity)))
		if p.Quantity == 0 {
			stats.OutOfStock++
		}
		categories[p.Category] = struct{}{}
	}
	stats.TotalCategories = len(categories)
	return stats
}
