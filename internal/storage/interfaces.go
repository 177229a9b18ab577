package storage

import (
	"context"

	"solana-wallet-pnl/internal/domain"
)

// TransactionStore persists classified wallet transactions so repeat
// analyses only fetch and classify signatures newer than what is stored.
// Classified transactions are immutable; Upsert ignores known signatures.
type TransactionStore interface {
	// Upsert stores transactions for a wallet, skipping signatures that
	// already exist.
	Upsert(ctx context.Context, wallet string, txs []*domain.Transaction) error

	// GetByWallet retrieves stored transactions with timestamp within
	// [from, to], ordered by timestamp ASC.
	GetByWallet(ctx context.Context, wallet string, from, to int64) ([]*domain.Transaction, error)

	// LatestSignature returns the signature of the newest stored
	// transaction for a wallet. Returns ErrNotFound when none exist.
	LatestSignature(ctx context.Context, wallet string) (string, error)

	// DeleteByWallet drops all stored transactions for a wallet, used
	// when the watcher marks stored history stale.
	DeleteByWallet(ctx context.Context, wallet string) error
}

// PricePointStore persists resolved token prices at hour granularity.
// It serves as a durable resolver tier ahead of any network source.
// Writes are idempotent upserts on (mint, hour_bucket).
type PricePointStore interface {
	// Insert stores resolved price points. Re-inserting an existing
	// (mint, hour_bucket) is not an error.
	Insert(ctx context.Context, points []*domain.PricePoint) error

	// GetAt retrieves the price point for a mint at an hour bucket.
	// Returns ErrNotFound when the point was never resolved.
	GetAt(ctx context.Context, mint string, hourBucket int64) (*domain.PricePoint, error)
}
