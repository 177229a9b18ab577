package timeline

import (
	"math"

	"solana-wallet-pnl/internal/domain"
)

// balanceLedger tracks running per-mint balances during day-by-day
// replay. SOL accumulates under the native mint like any other token.
type balanceLedger struct {
	balances map[string]*position
}

type position struct {
	amount float64
	symbol string
}

func newBalanceLedger() *balanceLedger {
	return &balanceLedger{balances: make(map[string]*position)}
}

// apply folds one classified transaction into the running balances.
func (l *balanceLedger) apply(tx *domain.Transaction) {
	for _, m := range tx.Movements {
		var delta float64
		switch m.Direction {
		case domain.DirIn:
			delta = m.Amount
		case domain.DirOut:
			delta = -m.Amount
		}
		if delta == 0 {
			continue
		}
		l.add(m.Mint, delta, m.Symbol)
	}

	if math.Abs(tx.NativeChange) > 0 {
		l.add(domain.NativeMint, tx.NativeChange, domain.NativeSymbol)
	}
}

func (l *balanceLedger) add(mint string, delta float64, symbol string) {
	p := l.balances[mint]
	if p == nil {
		if symbol == "" {
			symbol = domain.ShortMint(mint)
		}
		p = &position{symbol: symbol}
		l.balances[mint] = p
	}
	p.amount += delta
}

// positions returns the current holdings. Non-positive balances are
// skipped by the caller, not here, so the ledger keeps tracking mints
// that may go positive again later in the replay.
func (l *balanceLedger) positions() map[string]*position {
	return l.balances
}
