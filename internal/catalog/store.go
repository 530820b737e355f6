package catalog

import (
	"context"
	"strconv"
	"sync"

	"parley/internal/logging"
	"parley/internal/watcher"
)

// Store holds the supplier roster and product catalog. The roster is
// fixed at startup; the product catalog can be reloaded at runtime.
type Store struct {
	mu        sync.RWMutex
	suppliers []Supplier
	products  []Product
	logger    *logging.Logger
}

func NewStore(suppliers []Supplier, products []Product, logger *logging.Logger) *Store {
	return &Store{
		suppliers: suppliers,
		products:  products,
		logger:    logger,
	}
}

func (s *Store) Suppliers() []Supplier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Supplier, len(s.suppliers))
	copy(out, s.suppliers)
	return out
}

func (s *Store) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Store) Product(code string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, product := range s.products {
		if product.Code == code {
			return product, true
		}
	}
	return Product{}, false
}

func (s *Store) Supplier(id int) (Supplier, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, supplier := range s.suppliers {
		if supplier.ID == id {
			return supplier, true
		}
	}
	return Supplier{}, false
}

// ReloadProducts replaces the product catalog from a file. On failure
// the previous catalog stays in effect.
func (s *Store) ReloadProducts(path string) error {
	products, err := LoadProducts(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
	if s.logger != nil {
		s.logger.Info("product catalog reloaded", map[string]string{
			"path":     path,
			"products": strconv.Itoa(len(products)),
		})
	}
	return nil
}

// WatchProducts hot-reloads the catalog whenever the file changes.
// The watch runs until ctx is cancelled.
func (s *Store) WatchProducts(ctx context.Context, path string) error {
	w, err := watcher.New(watcher.Options{Logger: s.logger})
	if err != nil {
		return err
	}
	if err := w.Add(path, func() {
		if err := s.ReloadProducts(path); err != nil && s.logger != nil {
			s.logger.Warn("product catalog reload failed", map[string]string{
				"path":  path,
				"error": err.Error(),
			})
		}
	}); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		<-ctx.Done()
		_ = w.Close()
	}()
	return nil
}
