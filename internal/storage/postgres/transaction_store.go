package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/storage"
)

// TransactionStore implements storage.TransactionStore using PostgreSQL.
type TransactionStore struct {
	pool *Pool
}

// NewTransactionStore creates a new TransactionStore.
func NewTransactionStore(pool *Pool) *TransactionStore {
	return &TransactionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TransactionStore = (*TransactionStore)(nil)

// Upsert stores transactions for a wallet, skipping known signatures.
// Classified transactions are immutable, so conflicts are ignored
// rather than updated.
func (s *TransactionStore) Upsert(ctx context.Context, wallet string, txs []*domain.Transaction) error {
	if wallet == "" {
		return storage.ErrInvalidInput
	}
	if len(txs) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO wallet_transactions (
			wallet, signature, timestamp, type, native_change, total_usd, movements
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (wallet, signature) DO NOTHING
	`

	for _, t := range txs {
		if t == nil || t.Signature == "" {
			return storage.ErrInvalidInput
		}
		movements, err := json.Marshal(t.Movements)
		if err != nil {
			return fmt.Errorf("marshal movements: %w", err)
		}
		if _, err := tx.Exec(ctx, query,
			wallet,
			t.Signature,
			t.Timestamp,
			string(t.Type),
			t.NativeChange,
			t.TotalUSD,
			movements,
		); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByWallet retrieves transactions within [from, to], ordered by timestamp ASC.
func (s *TransactionStore) GetByWallet(ctx context.Context, wallet string, from, to int64) ([]*domain.Transaction, error) {
	query := `
		SELECT signature, timestamp, type, native_change, total_usd, movements
		FROM wallet_transactions
		WHERE wallet = $1 AND timestamp >= $2 AND timestamp <= $3
		ORDER BY timestamp ASC, signature ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet, from, to)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var result []*domain.Transaction
	for rows.Next() {
		var (
			t         domain.Transaction
			txType    string
			movements []byte
		)
		if err := rows.Scan(&t.Signature, &t.Timestamp, &txType, &t.NativeChange, &t.TotalUSD, &movements); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = domain.TransactionType(txType)
		if len(movements) > 0 {
			if err := json.Unmarshal(movements, &t.Movements); err != nil {
				return nil, fmt.Errorf("unmarshal movements: %w", err)
			}
		}
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return result, nil
}

// LatestSignature returns the signature of the newest stored transaction.
func (s *TransactionStore) LatestSignature(ctx context.Context, wallet string) (string, error) {
	query := `
		SELECT signature
		FROM wallet_transactions
		WHERE wallet = $1
		ORDER BY timestamp DESC, signature DESC
		LIMIT 1
	`

	var signature string
	err := s.pool.QueryRow(ctx, query, wallet).Scan(&signature)
	if err != nil {
		if isNotFoundError(err) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("query latest signature: %w", err)
	}
	return signature, nil
}

// DeleteByWallet drops all stored transactions for a wallet.
func (s *TransactionStore) DeleteByWallet(ctx context.Context, wallet string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM wallet_transactions WHERE wallet = $1`, wallet); err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}
	return nil
}
