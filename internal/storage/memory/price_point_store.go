package memory

import (
	"context"
	"fmt"
	"sync"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/storage"
)

// PricePointStore is an in-memory implementation of storage.PricePointStore.
type PricePointStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PricePoint // keyed by (mint, hour_bucket)
}

// NewPricePointStore creates a new in-memory price point store.
func NewPricePointStore() *PricePointStore {
	return &PricePointStore{
		data: make(map[string]*domain.PricePoint),
	}
}

var _ storage.PricePointStore = (*PricePointStore)(nil)

// pointKey generates a unique key for a price point.
func pointKey(mint string, hourBucket int64) string {
	return fmt.Sprintf("%s|%d", mint, hourBucket)
}

// Insert stores price points; last write wins per (mint, hour_bucket).
func (s *PricePointStore) Insert(_ context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		if p == nil || p.Mint == "" {
			return storage.ErrInvalidInput
		}
		pointCopy := *p
		s.data[pointKey(p.Mint, p.HourBucket)] = &pointCopy
	}

	return nil
}

// GetAt retrieves the price point for a mint at an hour bucket.
func (s *PricePointStore) GetAt(_ context.Context, mint string, hourBucket int64) (*domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data[pointKey(mint, hourBucket)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	pointCopy := *p
	return &pointCopy, nil
}
