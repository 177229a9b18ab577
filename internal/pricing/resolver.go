package pricing

import (
	"context"
	"log"
	"sync"
	"time"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/observability"
	"solana-wallet-pnl/internal/storage"
)

// RecentWindow separates "recent" timestamps, where the realtime
// source is a fair stand-in, from old ones that warrant spending
// historical-candle quota.
const RecentWindow = 7 * 24 * time.Hour

// WarmWorkers bounds concurrent lookups during a warm pass.
const WarmWorkers = 8

// ResolverOptions configures a Resolver. Every source and the store
// are optional; a missing tier is skipped, never an error.
type ResolverOptions struct {
	Cache      Cache                   // defaults to a bounded LRU
	Store      storage.PricePointStore // durable tier ahead of network sources
	Realtime   RealtimeSource
	Latest     LatestSource
	Historical HistoricalSource
	Logger     *log.Logger
	Now        func() time.Time // test hook
}

// Resolver resolves a token's USD price at or near a timestamp.
// Resolution never fails outward: any lookup failure degrades to 0,
// which callers must treat as "unknown", not "worthless".
type Resolver struct {
	cache      Cache
	store      storage.PricePointStore
	realtime   RealtimeSource
	latest     LatestSource
	historical HistoricalSource
	logger     *log.Logger
	now        func() time.Time
}

// NewResolver creates a Resolver.
func NewResolver(opts ResolverOptions) *Resolver {
	r := &Resolver{
		cache:      opts.Cache,
		store:      opts.Store,
		realtime:   opts.Realtime,
		latest:     opts.Latest,
		historical: opts.Historical,
		logger:     opts.Logger,
		now:        opts.Now,
	}
	if r.cache == nil {
		r.cache = NewLRUCache(DefaultCacheEntries, DefaultCacheTTL)
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Resolve returns the USD price for mint at ts (Unix seconds).
// Tier order: cache, durable store, realtime (recent timestamps only),
// latest traded, historical candles (old timestamps only). Exhausting
// every tier caches 0 so the same unknown token doesn't re-attempt
// within the cache TTL.
func (r *Resolver) Resolve(ctx context.Context, mint string, ts int64) float64 {
	bucket := domain.HourBucket(ts)

	if price, ok := r.cache.Get(ctx, mint, bucket); ok {
		observability.RecordPriceCache(true)
		observability.RecordPriceLookup("cache")
		return price
	}
	observability.RecordPriceCache(false)

	if r.store != nil {
		point, err := r.store.GetAt(ctx, mint, bucket)
		if err == nil && point.Price > 0 {
			r.cache.Set(ctx, mint, bucket, point.Price)
			observability.RecordPriceLookup(domain.PriceSourceStore)
			return point.Price
		}
	}

	age := r.now().Sub(time.Unix(ts, 0))

	if r.realtime != nil && age < RecentWindow {
		if price, err := r.realtime.Price(ctx, mint); err == nil && price > 0 {
			r.commit(ctx, mint, bucket, price, domain.PriceSourceRealtime)
			return price
		}
	}

	if r.latest != nil {
		if price, err := r.latest.LatestPrice(ctx, mint); err == nil && price > 0 {
			r.commit(ctx, mint, bucket, price, domain.PriceSourceLatest)
			return price
		}
	}

	if r.historical != nil && age >= RecentWindow {
		from, to := ts-86400, ts+86400
		if price, err := r.historical.CandleClose(ctx, mint, from, to); err == nil && price > 0 {
			r.commit(ctx, mint, bucket, price, domain.PriceSourceHistorical)
			return price
		}
	}

	// Confirmed unknown: cache the 0 so repeated requests in the same
	// process don't re-attempt every tier.
	r.cache.Set(ctx, mint, bucket, 0)
	observability.RecordPriceLookup("unknown")
	return 0
}

// commit caches a resolved price and persists it best-effort.
func (r *Resolver) commit(ctx context.Context, mint string, bucket int64, price float64, source string) {
	r.cache.Set(ctx, mint, bucket, price)
	observability.RecordPriceLookup(source)

	if r.store == nil {
		return
	}
	point := &domain.PricePoint{
		Mint:       mint,
		HourBucket: bucket,
		Price:      price,
		Source:     source,
		ResolvedAt: r.now().Unix(),
	}
	if err := r.store.Insert(ctx, []*domain.PricePoint{point}); err != nil {
		r.logger.Printf("persist price point %s@%d: %v", mint, bucket, err)
	}
}

// Lookup is one (mint, timestamp) pair for a warm pass.
type Lookup struct {
	Mint      string
	Timestamp int64
}

// Warm resolves many (mint, timestamp) pairs concurrently, joining all
// and ignoring individual outcomes. Used before classification so the
// sequential valuation path mostly hits the cache. Duplicate hour
// buckets are collapsed first.
func (r *Resolver) Warm(ctx context.Context, lookups []Lookup) {
	seen := make(map[string]struct{}, len(lookups))
	unique := lookups[:0:0]
	for _, l := range lookups {
		key := cacheKey(l.Mint, domain.HourBucket(l.Timestamp))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, l)
	}

	if len(unique) == 0 {
		return
	}

	work := make(chan Lookup)
	var wg sync.WaitGroup

	workers := WarmWorkers
	if workers > len(unique) {
		workers = len(unique)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for l := range work {
				r.Resolve(ctx, l.Mint, l.Timestamp)
			}
		}()
	}

	for _, l := range unique {
		select {
		case work <- l:
		case <-ctx.Done():
			close(work)
			wg.Wait()
			return
		}
	}
	close(work)
	wg.Wait()
}
