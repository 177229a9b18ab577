package clickhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/storage"
)

// PricePointStore implements storage.PricePointStore using ClickHouse.
// The table is a ReplacingMergeTree on (mint, hour_bucket) keyed by
// resolved_at, so repeated inserts of the same bucket converge to the
// freshest resolution without explicit duplicate handling.
type PricePointStore struct {
	conn *Conn
}

// NewPricePointStore creates a new PricePointStore.
func NewPricePointStore(conn *Conn) *PricePointStore {
	return &PricePointStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PricePointStore = (*PricePointStore)(nil)

// Insert stores resolved price points.
func (s *PricePointStore) Insert(ctx context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_points (mint, hour_bucket, price, source, resolved_at)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		if p == nil || p.Mint == "" {
			return storage.ErrInvalidInput
		}
		if err := batch.Append(p.Mint, p.HourBucket, p.Price, p.Source, p.ResolvedAt); err != nil {
			return fmt.Errorf("append point: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetAt retrieves the freshest price point for a mint at an hour bucket.
func (s *PricePointStore) GetAt(ctx context.Context, mint string, hourBucket int64) (*domain.PricePoint, error) {
	query := `
		SELECT mint, hour_bucket, price, source, resolved_at
		FROM price_points
		WHERE mint = ? AND hour_bucket = ?
		ORDER BY resolved_at DESC
		LIMIT 1
	`

	row := s.conn.QueryRow(ctx, query, mint, hourBucket)

	var p domain.PricePoint
	if err := row.Scan(&p.Mint, &p.HourBucket, &p.Price, &p.Source, &p.ResolvedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("query price point: %w", err)
	}

	return &p, nil
}
