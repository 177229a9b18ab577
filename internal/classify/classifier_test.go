package classify

import (
	"context"
	"math"
	"testing"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/ledger"
)

const wallet = "WaLLet11111111111111111111111111111111111111"

// stubResolver returns fixed prices per mint and counts lookups.
type stubResolver struct {
	prices map[string]float64
	calls  int
}

func (s *stubResolver) Resolve(_ context.Context, mint string, _ int64) float64 {
	s.calls++
	return s.prices[mint]
}

func solOut(amount float64) ledger.NativeTransfer {
	return ledger.NativeTransfer{
		FromUserAccount: wallet,
		ToUserAccount:   "someoneelse",
		Amount:          int64(amount * domain.LamportsPerSOL),
	}
}

func tokenIn(mint string, amount float64) ledger.TokenTransfer {
	return ledger.TokenTransfer{
		FromUserAccount: "someoneelse",
		ToUserAccount:   wallet,
		Mint:            mint,
		TokenAmount:     ledger.TokenAmount(amount),
	}
}

func tokenOut(mint string, amount float64) ledger.TokenTransfer {
	return ledger.TokenTransfer{
		FromUserAccount: wallet,
		ToUserAccount:   "someoneelse",
		Mint:            mint,
		TokenAmount:     ledger.TokenAmount(amount),
	}
}

func TestClassify_BuyWithSol(t *testing.T) {
	resolver := &stubResolver{prices: map[string]float64{domain.NativeMint: 150}}
	c := NewClassifier(resolver)

	tx := c.Classify(context.Background(), wallet, &ledger.EnhancedTransaction{
		Signature:       "sig1",
		Timestamp:       1700000000,
		NativeTransfers: []ledger.NativeTransfer{solOut(1.0)},
		TokenTransfers:  []ledger.TokenTransfer{tokenIn(memeMint, 10)},
	})
	if tx == nil {
		t.Fatal("expected a classified transaction")
	}
	if tx.Type != domain.TxBuy {
		t.Errorf("type = %v, want BUY", tx.Type)
	}
	if math.Abs(tx.NativeChange+1.0) > 1e-9 {
		t.Errorf("nativeChange = %v, want -1.0", tx.NativeChange)
	}
	if math.Abs(tx.TotalUSD-150) > 1e-9 {
		t.Errorf("totalUSD = %v, want 150", tx.TotalUSD)
	}
	if len(tx.Movements) != 1 || tx.Movements[0].Direction != domain.DirIn {
		t.Errorf("movements = %+v, want one inbound", tx.Movements)
	}
}

func TestClassify_StableValuationFallback(t *testing.T) {
	// No SOL leg: value comes from the stable side at par.
	resolver := &stubResolver{prices: map[string]float64{}}
	c := NewClassifier(resolver)

	tx := c.Classify(context.Background(), wallet, &ledger.EnhancedTransaction{
		Signature: "sig2",
		Timestamp: 1700000000,
		TokenTransfers: []ledger.TokenTransfer{
			tokenOut(usdcMint, 250),
			tokenIn(memeMint, 1000),
		},
	})
	if tx == nil {
		t.Fatal("expected a classified transaction")
	}
	if tx.Type != domain.TxBuy {
		t.Errorf("type = %v, want BUY", tx.Type)
	}
	if math.Abs(tx.TotalUSD-250) > 1e-9 {
		t.Errorf("totalUSD = %v, want 250", tx.TotalUSD)
	}
}

func TestClassify_TokenPriceValuationFallback(t *testing.T) {
	// No SOL leg, no stable leg: each non-stable movement is priced.
	resolver := &stubResolver{prices: map[string]float64{memeMint: 0.05}}
	c := NewClassifier(resolver)

	tx := c.Classify(context.Background(), wallet, &ledger.EnhancedTransaction{
		Signature:      "sig3",
		Timestamp:      1700000000,
		TokenTransfers: []ledger.TokenTransfer{tokenIn(memeMint, 1000)},
	})
	if tx == nil {
		t.Fatal("expected a classified transaction")
	}
	if tx.Type != domain.TxTransferIn {
		t.Errorf("type = %v, want TRANSFER_IN", tx.Type)
	}
	if math.Abs(tx.TotalUSD-50) > 1e-9 {
		t.Errorf("totalUSD = %v, want 50", tx.TotalUSD)
	}
}

func TestClassify_UnpriceableValuesZero(t *testing.T) {
	resolver := &stubResolver{prices: map[string]float64{}}
	c := NewClassifier(resolver)

	tx := c.Classify(context.Background(), wallet, &ledger.EnhancedTransaction{
		Signature:      "sig4",
		Timestamp:      1700000000,
		TokenTransfers: []ledger.TokenTransfer{tokenIn(memeMint, 1000)},
	})
	if tx == nil {
		t.Fatal("expected a classified transaction")
	}
	if tx.TotalUSD != 0 {
		t.Errorf("totalUSD = %v, want 0", tx.TotalUSD)
	}
}

func TestClassify_DropsFeeOnlyTransaction(t *testing.T) {
	resolver := &stubResolver{}
	c := NewClassifier(resolver)

	tx := c.Classify(context.Background(), wallet, &ledger.EnhancedTransaction{
		Signature: "sig5",
		Timestamp: 1700000000,
		NativeTransfers: []ledger.NativeTransfer{{
			FromUserAccount: wallet,
			ToUserAccount:   "feecollector",
			Amount:          0, // rounding already removed the fee
		}},
	})
	if tx != nil {
		t.Errorf("expected nil for fee-only transaction, got %+v", tx)
	}
}

func TestClassify_IgnoresThirdPartyTransfers(t *testing.T) {
	resolver := &stubResolver{prices: map[string]float64{domain.NativeMint: 150}}
	c := NewClassifier(resolver)

	tx := c.Classify(context.Background(), wallet, &ledger.EnhancedTransaction{
		Signature:       "sig6",
		Timestamp:       1700000000,
		NativeTransfers: []ledger.NativeTransfer{solOut(0.5)},
		TokenTransfers: []ledger.TokenTransfer{{
			FromUserAccount: "bystanderA",
			ToUserAccount:   "bystanderB",
			Mint:            memeMint,
			TokenAmount:     99,
		}},
	})
	if tx == nil {
		t.Fatal("expected a classified transaction")
	}
	if len(tx.Movements) != 0 {
		t.Errorf("third-party movement leaked in: %+v", tx.Movements)
	}
	if tx.Type != domain.TxTransferOut {
		t.Errorf("type = %v, want TRANSFER_OUT", tx.Type)
	}
}

func TestClassify_SymbolFallbacks(t *testing.T) {
	resolver := &stubResolver{}
	c := NewClassifier(resolver)

	tx := c.Classify(context.Background(), wallet, &ledger.EnhancedTransaction{
		Signature: "sig7",
		Timestamp: 1700000000,
		TokenTransfers: []ledger.TokenTransfer{
			tokenIn(usdcMint, 10),
			tokenIn(memeMint, 20),
		},
	})
	if tx == nil {
		t.Fatal("expected a classified transaction")
	}
	if tx.Movements[0].Symbol != "USDC" {
		t.Errorf("stable symbol = %q, want USDC", tx.Movements[0].Symbol)
	}
	if tx.Movements[1].Symbol != memeMint[:6] {
		t.Errorf("fallback symbol = %q, want %q", tx.Movements[1].Symbol, memeMint[:6])
	}
}
