package store

import (
	"sync"

	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/abgdnv/inventory/internal/inventory/money"
)

// InMemoryStore implements ProductStore over an ordered slice. Fetch order
// defines both the ID assignment and the listing order, so a map would not do.
type InMemoryStore struct {
	mu       sync.RWMutex
	products []Product
}

// NewInMemoryStore creates an empty in-memory product store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		products: make([]Product, 0),
	}
}

// Load replaces the entire collection.
func (s *InMemoryStore) Load(products []Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = make([]Product, len(products))
	copy(s.products, products)
}

// FindAll returns a copy of the collection in load order.
func (s *InMemoryStore) FindAll() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, len(s.products))
	copy(list, s.products)
	return list
}

// FindByID retrieves a single product by its ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *InMemoryStore) FindByID(id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, inverrors.ErrProductNotFound
	}
	p := s.products[i]
	return &p, nil
}

// Update replaces the editable fields of the product with the given ID.
// The price is normalized to carry the currency prefix before storage;
// ID and status are untouched.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *InMemoryStore) Update(id int64, name, category, price string, quantity int64) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, inverrors.ErrProductNotFound
	}
	s.products[i].Name = name
	s.products[i].Category = category
	s.products[i].Price = money.EnsureCurrencyPrefix(price)
	s.products[i].Quantity = quantity

	p := s.products[i]
	return &p, nil
}

// DeleteByID removes the product with the given ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *InMemoryStore) DeleteByID(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return inverrors.ErrProductNotFound
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	return nil
}

// ToggleStatus flips the visibility status of the product with the given ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *InMemoryStore) ToggleStatus(id int64) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, inverrors.ErrProductNotFound
	}
	s.products[i].Status = s.products[i].Status.Toggle()

	p := s.products[i]
	return &p, nil
}

// indexOf returns the slice index of the product with the given ID, or -1.
// Callers must hold the lock.
func (s *InMemoryStore) indexOf(id int64) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}
