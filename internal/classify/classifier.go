package classify

import (
	"context"
	"math"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/ledger"
	"solana-wallet-pnl/internal/observability"
)

// dustThreshold drops transactions whose only effect on the wallet is
// fee-level SOL noise with no token movement.
const dustThreshold = 1e-9

// PriceResolver is the slice of the pricing resolver the classifier
// needs for valuation.
type PriceResolver interface {
	Resolve(ctx context.Context, mint string, ts int64) float64
}

// Classifier turns enriched raw transactions into classified,
// USD-valued portfolio transactions.
type Classifier struct {
	prices PriceResolver
}

// NewClassifier creates a Classifier valuing transactions through the
// given resolver.
func NewClassifier(prices PriceResolver) *Classifier {
	return &Classifier{prices: prices}
}

// Classify processes one enriched transaction from the wallet's point
// of view. Returns nil when the transaction has no bearing on the
// portfolio.
func (c *Classifier) Classify(ctx context.Context, wallet string, tx *ledger.EnhancedTransaction) *domain.Transaction {
	nativeChange, movements := extract(wallet, tx)

	if len(movements) == 0 && math.Abs(nativeChange) < dustThreshold {
		observability.RecordDropped()
		return nil
	}

	e := evidence{
		isSwap:       tx.IsSwap(),
		nativeChange: nativeChange,
		movements:    movements,
	}
	txType := classifyType(e)
	observability.RecordClassified(string(txType))

	return &domain.Transaction{
		Signature:    tx.Signature,
		Timestamp:    tx.Timestamp,
		Type:         txType,
		Movements:    movements,
		NativeChange: nativeChange,
		TotalUSD:     c.value(ctx, tx.Timestamp, nativeChange, movements),
	}
}

// ClassifyAll processes a batch in order, skipping dropped entries.
func (c *Classifier) ClassifyAll(ctx context.Context, wallet string, txs []*ledger.EnhancedTransaction) []*domain.Transaction {
	out := make([]*domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if classified := c.Classify(ctx, wallet, tx); classified != nil {
			out = append(out, classified)
		}
	}
	return out
}

// value estimates the transaction's USD size. Preference order: the
// SOL leg at historical SOL price, then the stable leg at par, then
// pricing every non-stable movement individually. An unpriceable
// transaction values at 0 rather than failing.
func (c *Classifier) value(ctx context.Context, ts int64, nativeChange float64, movements []domain.TokenMovement) float64 {
	if math.Abs(nativeChange) > domain.NativeChangeEpsilon {
		if solPrice := c.prices.Resolve(ctx, domain.NativeMint, ts); solPrice > 0 {
			return math.Abs(nativeChange) * solPrice
		}
	}

	var stable float64
	for _, m := range movements {
		if domain.IsStableMint(m.Mint) {
			stable += math.Abs(m.Amount)
		}
	}
	if stable > 0 {
		return stable
	}

	var total float64
	for _, m := range movements {
		if domain.IsStableMint(m.Mint) {
			continue
		}
		if price := c.prices.Resolve(ctx, m.Mint, ts); price > 0 {
			total += math.Abs(m.Amount) * price
		}
	}
	return total
}
