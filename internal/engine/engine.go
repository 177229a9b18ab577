// Package engine orchestrates a full portfolio P&L analysis: fetch,
// classify, replay, aggregate.
package engine

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"solana-wallet-pnl/internal/classify"
	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/ledger"
	"solana-wallet-pnl/internal/observability"
	"solana-wallet-pnl/internal/pnl"
	"solana-wallet-pnl/internal/pricing"
	"solana-wallet-pnl/internal/storage"
	"solana-wallet-pnl/internal/timeline"
)

// Request is one wallet analysis request.
type Request struct {
	WalletAddress string                `json:"walletAddress"`
	TimeRange     string                `json:"timeRange"`
	CurrentTokens []domain.TokenHolding `json:"currentTokens"`
}

// Result is the complete analysis. All slices are non-nil so the JSON
// encoding always carries arrays, never null.
type Result struct {
	Timeline         []domain.TimelinePoint  `json:"timeline"`
	Events           []domain.PortfolioEvent `json:"events"`
	Stats            domain.Stats            `json:"stats"`
	TransactionCount int                     `json:"transactionCount"`
}

// Options configures an Engine. Source is required for any analysis to
// return data; a nil Source makes every Analyze fail with
// ErrNotConfigured. Everything else is optional.
type Options struct {
	Source   ledger.Source
	TxStore  storage.TransactionStore // stored history + incremental watermark
	Resolver *pricing.Resolver
	Logger   *log.Logger
	Now      func() time.Time
}

// Engine runs wallet analyses.
type Engine struct {
	source     ledger.Source
	txStore    storage.TransactionStore
	resolver   *pricing.Resolver
	classifier *classify.Classifier
	builder    *timeline.Builder
	logger     *log.Logger
	now        func() time.Time
}

// New creates an Engine.
func New(opts Options) *Engine {
	e := &Engine{
		source:   opts.Source,
		txStore:  opts.TxStore,
		resolver: opts.Resolver,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if e.resolver == nil {
		e.resolver = pricing.NewResolver(pricing.ResolverOptions{})
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	e.classifier = classify.NewClassifier(e.resolver)
	e.builder = timeline.NewBuilder(e.resolver)
	return e
}

// Analyze reconstructs the wallet's P&L over the requested range. Only
// a missing wallet address or a missing indexer credential fail the
// call; every upstream problem degrades toward an empty but
// structurally valid result.
func (e *Engine) Analyze(ctx context.Context, req Request) (*Result, error) {
	wallet := strings.TrimSpace(req.WalletAddress)
	if wallet == "" {
		return nil, ErrMissingWallet
	}
	if e.source == nil {
		return nil, ErrNotConfigured
	}

	rng := domain.ParseTimeRange(req.TimeRange)
	to := e.now().Unix()
	from := to - int64(rng.Duration()/time.Second)

	txs, err := e.loadTransactions(ctx, wallet, from, to)
	if err != nil {
		return nil, err
	}

	points := e.builder.Build(ctx, txs, from, to, req.CurrentTokens, rng)

	result := &Result{
		Timeline:         points,
		Events:           pnl.ExtractEvents(txs),
		Stats:            pnl.CalculateStats(points, txs),
		TransactionCount: len(txs),
	}
	if result.Timeline == nil {
		result.Timeline = []domain.TimelinePoint{}
	}

	return result, nil
}

// loadTransactions combines stored history with an incremental fetch
// of anything newer than the stored watermark. Fetch failures degrade
// to whatever is already stored.
func (e *Engine) loadTransactions(ctx context.Context, wallet string, from, to int64) ([]*domain.Transaction, error) {
	var stored []*domain.Transaction
	var watermark string

	if e.txStore != nil {
		var err error
		stored, err = e.txStore.GetByWallet(ctx, wallet, from, to)
		if err != nil {
			e.logger.Printf("[engine] stored history for %s unavailable: %v", wallet, err)
			stored = nil
		}
		watermark, err = e.txStore.LatestSignature(ctx, wallet)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			e.logger.Printf("[engine] watermark for %s unavailable: %v", wallet, err)
		}
	}

	raw, err := e.source.FetchSince(ctx, wallet, from, to, watermark)
	if err != nil {
		if errors.Is(err, ledger.ErrNoAPIKey) {
			return nil, ErrNotConfigured
		}
		e.logger.Printf("[engine] fetch for %s failed, using stored history only: %v", wallet, err)
		raw = nil
	}

	e.warmPrices(ctx, raw)
	fresh := e.classifier.ClassifyAll(ctx, wallet, raw)

	if e.txStore != nil && len(fresh) > 0 {
		if err := e.txStore.Upsert(ctx, wallet, fresh); err != nil {
			e.logger.Printf("[engine] persist %d transactions for %s: %v", len(fresh), wallet, err)
		}
	}

	return mergeTransactions(stored, fresh), nil
}

// warmPrices issues every price lookup classification will need
// concurrently, so the sequential valuation pass mostly hits the
// cache. Individual lookup failures are absorbed by the resolver.
func (e *Engine) warmPrices(ctx context.Context, raw []*ledger.EnhancedTransaction) {
	var lookups []pricing.Lookup
	for _, tx := range raw {
		lookups = append(lookups, pricing.Lookup{Mint: domain.NativeMint, Timestamp: tx.Timestamp})
		for _, tt := range tx.TokenTransfers {
			mint := tt.ResolvedMint()
			if mint == "" || domain.IsStableMint(mint) {
				continue
			}
			lookups = append(lookups, pricing.Lookup{Mint: mint, Timestamp: tx.Timestamp})
		}
	}
	e.resolver.Warm(ctx, lookups)
}

// mergeTransactions combines stored and freshly classified history,
// deduplicating by signature and sorting ascending exactly once.
func mergeTransactions(stored, fresh []*domain.Transaction) []*domain.Transaction {
	merged := make([]*domain.Transaction, 0, len(stored)+len(fresh))
	seen := make(map[string]struct{}, len(stored)+len(fresh))
	for _, tx := range stored {
		if _, ok := seen[tx.Signature]; ok {
			continue
		}
		seen[tx.Signature] = struct{}{}
		merged = append(merged, tx)
	}
	for _, tx := range fresh {
		if _, ok := seen[tx.Signature]; ok {
			continue
		}
		seen[tx.Signature] = struct{}{}
		merged = append(merged, tx)
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Timestamp != merged[j].Timestamp {
			return merged[i].Timestamp < merged[j].Timestamp
		}
		return merged[i].Signature < merged[j].Signature
	})
	return merged
}

// Refresh fetches, classifies and persists any wallet activity newer
// than the stored watermark. Used by the activity watcher; analysis
// requests then serve mostly from the store.
func (e *Engine) Refresh(ctx context.Context, wallet string) error {
	if e.source == nil {
		return ErrNotConfigured
	}
	if e.txStore == nil {
		return nil
	}

	to := e.now().Unix()
	from := to - int64(domain.Range1y.Duration()/time.Second)

	watermark, err := e.txStore.LatestSignature(ctx, wallet)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	raw, err := e.source.FetchSince(ctx, wallet, from, to, watermark)
	if err != nil {
		observability.RecordWalletRefresh("error")
		return err
	}
	if len(raw) == 0 {
		observability.RecordWalletRefresh("noop")
		return nil
	}

	e.warmPrices(ctx, raw)
	fresh := e.classifier.ClassifyAll(ctx, wallet, raw)
	if len(fresh) == 0 {
		observability.RecordWalletRefresh("noop")
		return nil
	}
	if err := e.txStore.Upsert(ctx, wallet, fresh); err != nil {
		observability.RecordWalletRefresh("error")
		return err
	}
	observability.RecordWalletRefresh("success")
	return nil
}
