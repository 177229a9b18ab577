package engine

import (
	"context"
	"log"
	"time"

	"solana-wallet-pnl/internal/observability"
	"solana-wallet-pnl/internal/solana"
)

// refreshTimeout bounds one watcher-triggered refresh.
const refreshTimeout = 30 * time.Second

// Watcher keeps stored wallet history fresh by listening for on-chain
// activity mentioning the watched wallets and refreshing incrementally
// on each notification.
type Watcher struct {
	ws      solana.WSClient
	engine  *Engine
	wallets []string
	logger  *log.Logger
}

// NewWatcher creates a Watcher over the given wallets. Addresses that
// fail validation are dropped with a warning rather than poisoning the
// subscription.
func NewWatcher(ws solana.WSClient, eng *Engine, wallets []string, logger *log.Logger) *Watcher {
	if logger == nil {
		logger = log.Default()
	}
	valid := make([]string, 0, len(wallets))
	for _, w := range wallets {
		if err := solana.ValidateWalletAddress(w); err != nil {
			logger.Printf("[watcher] skipping wallet %s: %v", w, err)
			continue
		}
		valid = append(valid, w)
	}
	return &Watcher{ws: ws, engine: eng, wallets: valid, logger: logger}
}

// Run subscribes and processes notifications until ctx is cancelled or
// the subscription channel closes. Refreshes run inline; notification
// bursts for the same wallet collapse into cheap no-op refreshes once
// the watermark catches up.
func (w *Watcher) Run(ctx context.Context) error {
	if len(w.wallets) == 0 {
		w.logger.Printf("[watcher] no valid wallets to watch")
		return nil
	}
	observability.SetWatchedWallets(len(w.wallets))

	notifications, err := w.ws.SubscribeLogs(ctx, solana.LogsFilter{Mentions: w.wallets})
	if err != nil {
		return err
	}
	w.logger.Printf("[watcher] watching %d wallets", len(w.wallets))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-notifications:
			if !ok {
				return nil
			}
			if n.Err != nil {
				continue
			}
			w.refreshAll(ctx, n.Signature)
		}
	}
}

// refreshAll refreshes every watched wallet. The logs subscription
// only says some watched wallet was mentioned, not which, so all of
// them re-check their watermark.
func (w *Watcher) refreshAll(ctx context.Context, signature string) {
	for _, wallet := range w.wallets {
		rctx, cancel := context.WithTimeout(ctx, refreshTimeout)
		if err := w.engine.Refresh(rctx, wallet); err != nil {
			w.logger.Printf("[watcher] refresh %s after %s: %v", wallet, signature, err)
		}
		cancel()
	}
}
