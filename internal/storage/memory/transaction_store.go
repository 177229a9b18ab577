package memory

import (
	"context"
	"sort"
	"sync"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/storage"
)

// TransactionStore is an in-memory implementation of storage.TransactionStore.
type TransactionStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.Transaction // wallet -> signature -> tx
}

// NewTransactionStore creates a new in-memory transaction store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		data: make(map[string]map[string]*domain.Transaction),
	}
}

var _ storage.TransactionStore = (*TransactionStore)(nil)

// Upsert stores transactions for a wallet, skipping known signatures.
func (s *TransactionStore) Upsert(_ context.Context, wallet string, txs []*domain.Transaction) error {
	if wallet == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bySig, ok := s.data[wallet]
	if !ok {
		bySig = make(map[string]*domain.Transaction, len(txs))
		s.data[wallet] = bySig
	}

	for _, tx := range txs {
		if tx == nil || tx.Signature == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := bySig[tx.Signature]; exists {
			continue
		}
		txCopy := *tx
		txCopy.Movements = append([]domain.TokenMovement(nil), tx.Movements...)
		bySig[tx.Signature] = &txCopy
	}

	return nil
}

// GetByWallet retrieves transactions within [from, to], ordered by timestamp ASC.
func (s *TransactionStore) GetByWallet(_ context.Context, wallet string, from, to int64) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Transaction
	for _, tx := range s.data[wallet] {
		if tx.Timestamp < from || tx.Timestamp > to {
			continue
		}
		txCopy := *tx
		txCopy.Movements = append([]domain.TokenMovement(nil), tx.Movements...)
		result = append(result, &txCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp < result[j].Timestamp
		}
		return result[i].Signature < result[j].Signature
	})

	return result, nil
}

// LatestSignature returns the newest stored signature for a wallet.
func (s *TransactionStore) LatestSignature(_ context.Context, wallet string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.Transaction
	for _, tx := range s.data[wallet] {
		if latest == nil || tx.Timestamp > latest.Timestamp {
			latest = tx
		}
	}
	if latest == nil {
		return "", storage.ErrNotFound
	}
	return latest.Signature, nil
}

// DeleteByWallet drops all stored transactions for a wallet.
func (s *TransactionStore) DeleteByWallet(_ context.Context, wallet string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, wallet)
	return nil
}
