package pnl

import (
	"testing"

	"solana-wallet-pnl/internal/domain"
)

func tx(sig string, ts int64, txType domain.TransactionType, movements ...domain.TokenMovement) *domain.Transaction {
	return &domain.Transaction{Signature: sig, Timestamp: ts, Type: txType, Movements: movements, TotalUSD: 100}
}

func TestExtractEvents_DropsTransferIn(t *testing.T) {
	txs := []*domain.Transaction{
		tx("s1", 1000, domain.TxBuy),
		tx("s2", 2000, domain.TxTransferIn),
		tx("s3", 3000, domain.TxSell),
		tx("s4", 4000, domain.TxTransferOut),
	}

	events := ExtractEvents(txs)
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for _, e := range events {
		if e.Type == domain.TxTransferIn {
			t.Errorf("TRANSFER_IN leaked into events")
		}
	}
}

func TestExtractEvents_KeepsTypeConsistentMovements(t *testing.T) {
	in := domain.TokenMovement{Mint: "mintA", Amount: 10, Direction: domain.DirIn}
	out := domain.TokenMovement{Mint: "mintB", Amount: 5, Direction: domain.DirOut}

	cases := []struct {
		txType  domain.TransactionType
		wantDir domain.Direction
	}{
		{domain.TxBuy, domain.DirIn},
		{domain.TxSell, domain.DirOut},
		{domain.TxTransferOut, domain.DirOut},
	}

	for _, tc := range cases {
		events := ExtractEvents([]*domain.Transaction{tx("s", 1000, tc.txType, in, out)})
		if len(events) != 1 {
			t.Fatalf("%v: got %d events, want 1", tc.txType, len(events))
		}
		for _, m := range events[0].Movements {
			if m.Direction != tc.wantDir {
				t.Errorf("%v kept %v movement, want only %v", tc.txType, m.Direction, tc.wantDir)
			}
		}
		if len(events[0].Movements) != 1 {
			t.Errorf("%v: kept %d movements, want 1", tc.txType, len(events[0].Movements))
		}
	}
}

func TestExtractEvents_Empty(t *testing.T) {
	if got := ExtractEvents(nil); len(got) != 0 {
		t.Errorf("got %d events from nil input", len(got))
	}
}
