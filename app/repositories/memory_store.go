package repositories

import (
	"context"
	"sync"

	"github.com/shashiranjanraj/furnivision/app/models"
)

// MemoryProductStore keeps the catalog in process. It backs route listing
// and tests, where no database is configured.
type MemoryProductStore struct {
	mu       sync.Mutex
	products []models.Product
}

func NewMemoryProductStore(seed ...models.Product) *MemoryProductStore {
	return &MemoryProductStore{products: append([]models.Product(nil), seed...)}
}

func (s *MemoryProductStore) All(_ context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Product(nil), s.products...), nil
}

func (s *MemoryProductStore) ReplaceAll(_ context.Context, products []models.Product) error {
	s.mu.Lock()
	s.products = append([]models.Product(nil), products...)
	s.mu.Unlock()
	return nil
}
