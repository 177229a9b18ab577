package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/storage"
	. "solana-wallet-pnl/internal/storage/postgres"
)

func makeTx(sig string, ts int64, txType domain.TransactionType) *domain.Transaction {
	return &domain.Transaction{
		Signature: sig,
		Timestamp: ts,
		Type:      txType,
		Movements: []domain.TokenMovement{
			{Mint: "mintA", Symbol: "A", Amount: 12.5, Direction: domain.DirIn},
			{Mint: "mintB", Symbol: "B", Amount: 3, Direction: domain.DirOut},
		},
		NativeChange: -1.25,
		TotalUSD:     187.5,
	}
}

func TestTransactionStore_RoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTransactionStore(pool)

	txs := []*domain.Transaction{
		makeTx("sig2", 2000, domain.TxSell),
		makeTx("sig1", 1000, domain.TxBuy),
	}
	require.NoError(t, store.Upsert(ctx, "wallet1", txs))

	got, err := store.GetByWallet(ctx, "wallet1", 0, 3000)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ascending by timestamp, movements preserved through JSONB.
	require.Equal(t, "sig1", got[0].Signature)
	require.Equal(t, domain.TxBuy, got[0].Type)
	require.Len(t, got[0].Movements, 2)
	require.Equal(t, "mintA", got[0].Movements[0].Mint)
	require.Equal(t, domain.DirIn, got[0].Movements[0].Direction)
	require.InDelta(t, -1.25, got[0].NativeChange, 1e-9)
	require.InDelta(t, 187.5, got[0].TotalUSD, 1e-9)
}

func TestTransactionStore_UpsertIgnoresConflicts(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTransactionStore(pool)

	require.NoError(t, store.Upsert(ctx, "wallet1", []*domain.Transaction{makeTx("sig1", 1000, domain.TxBuy)}))

	changed := makeTx("sig1", 1000, domain.TxBuy)
	changed.TotalUSD = 999
	require.NoError(t, store.Upsert(ctx, "wallet1", []*domain.Transaction{changed}))

	got, err := store.GetByWallet(ctx, "wallet1", 0, 3000)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.InDelta(t, 187.5, got[0].TotalUSD, 1e-9, "re-upsert must not overwrite")
}

func TestTransactionStore_WindowAndIsolationByWallet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTransactionStore(pool)

	require.NoError(t, store.Upsert(ctx, "wallet1", []*domain.Transaction{
		makeTx("sig1", 1000, domain.TxBuy),
		makeTx("sig2", 5000, domain.TxSell),
	}))
	require.NoError(t, store.Upsert(ctx, "wallet2", []*domain.Transaction{
		makeTx("sig3", 1500, domain.TxBuy),
	}))

	got, err := store.GetByWallet(ctx, "wallet1", 0, 2000)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "sig1", got[0].Signature)
}

func TestTransactionStore_LatestSignature(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTransactionStore(pool)

	_, err := store.LatestSignature(ctx, "wallet1")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Upsert(ctx, "wallet1", []*domain.Transaction{
		makeTx("sig1", 1000, domain.TxBuy),
		makeTx("sig2", 2000, domain.TxSell),
	}))

	sig, err := store.LatestSignature(ctx, "wallet1")
	require.NoError(t, err)
	require.Equal(t, "sig2", sig)
}

func TestTransactionStore_DeleteByWallet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTransactionStore(pool)

	require.NoError(t, store.Upsert(ctx, "wallet1", []*domain.Transaction{makeTx("sig1", 1000, domain.TxBuy)}))
	require.NoError(t, store.DeleteByWallet(ctx, "wallet1"))

	got, err := store.GetByWallet(ctx, "wallet1", 0, 3000)
	require.NoError(t, err)
	require.Empty(t, got)
}
