package pricing

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/storage/memory"
)

const testMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"

type stubRealtime struct {
	price float64
	err   error
	calls int32
}

func (s *stubRealtime) Price(context.Context, string) (float64, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.price, s.err
}

type stubLatest struct {
	price float64
	err   error
	calls int32
}

func (s *stubLatest) LatestPrice(context.Context, string) (float64, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.price, s.err
}

type stubHistorical struct {
	price float64
	err   error
	calls int32
}

func (s *stubHistorical) CandleClose(context.Context, string, int64, int64) (float64, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.price, s.err
}

func fixedNow() time.Time { return time.Unix(1700000000, 0) }

func TestResolve_RealtimeForRecentTimestamps(t *testing.T) {
	realtime := &stubRealtime{price: 1.25}
	latest := &stubLatest{price: 9.99}
	r := NewResolver(ResolverOptions{Realtime: realtime, Latest: latest, Now: fixedNow})

	ts := fixedNow().Unix() - 3600
	if got := r.Resolve(context.Background(), testMint, ts); got != 1.25 {
		t.Errorf("Resolve = %v, want 1.25", got)
	}
	if realtime.calls != 1 {
		t.Errorf("realtime calls = %d, want 1", realtime.calls)
	}
	if latest.calls != 0 {
		t.Errorf("latest calls = %d, want 0", latest.calls)
	}
}

func TestResolve_SkipsRealtimeForOldTimestamps(t *testing.T) {
	realtime := &stubRealtime{price: 1.25}
	latest := &stubLatest{price: 2.5}
	r := NewResolver(ResolverOptions{Realtime: realtime, Latest: latest, Now: fixedNow})

	ts := fixedNow().Add(-30 * 24 * time.Hour).Unix()
	if got := r.Resolve(context.Background(), testMint, ts); got != 2.5 {
		t.Errorf("Resolve = %v, want 2.5", got)
	}
	if realtime.calls != 0 {
		t.Errorf("realtime calls = %d, want 0", realtime.calls)
	}
}

func TestResolve_FallsThroughToHistorical(t *testing.T) {
	latest := &stubLatest{err: errors.New("rate limited")}
	historical := &stubHistorical{price: 0.07}
	r := NewResolver(ResolverOptions{Latest: latest, Historical: historical, Now: fixedNow})

	ts := fixedNow().Add(-30 * 24 * time.Hour).Unix()
	if got := r.Resolve(context.Background(), testMint, ts); got != 0.07 {
		t.Errorf("Resolve = %v, want 0.07", got)
	}
	if latest.calls != 1 || historical.calls != 1 {
		t.Errorf("calls = %d latest, %d historical, want 1 and 1", latest.calls, historical.calls)
	}
}

func TestResolve_SecondLookupHitsCache(t *testing.T) {
	realtime := &stubRealtime{price: 1.25}
	r := NewResolver(ResolverOptions{Realtime: realtime, Now: fixedNow})

	ts := fixedNow().Unix() - 3600

	first := r.Resolve(context.Background(), testMint, ts)
	// Same hour bucket, different second.
	second := r.Resolve(context.Background(), testMint, ts+30)

	if first != second {
		t.Errorf("cache returned %v after %v", second, first)
	}
	if realtime.calls != 1 {
		t.Errorf("realtime calls = %d, want 1 (second lookup cached)", realtime.calls)
	}
}

func TestResolve_CachesConfirmedUnknown(t *testing.T) {
	realtime := &stubRealtime{err: errors.New("down")}
	latest := &stubLatest{err: errors.New("down")}
	r := NewResolver(ResolverOptions{Realtime: realtime, Latest: latest, Now: fixedNow})

	ts := fixedNow().Unix() - 3600

	if got := r.Resolve(context.Background(), testMint, ts); got != 0 {
		t.Errorf("Resolve = %v, want 0", got)
	}
	r.Resolve(context.Background(), testMint, ts)

	if realtime.calls != 1 || latest.calls != 1 {
		t.Errorf("calls = %d realtime, %d latest, want 1 and 1 (zero cached)", realtime.calls, latest.calls)
	}
}

func TestResolve_StoreTierAndWriteThrough(t *testing.T) {
	store := memory.NewPricePointStore()
	realtime := &stubRealtime{price: 3.0}
	r := NewResolver(ResolverOptions{Store: store, Realtime: realtime, Now: fixedNow})

	ts := fixedNow().Unix() - 3600
	r.Resolve(context.Background(), testMint, ts)

	point, err := store.GetAt(context.Background(), testMint, domain.HourBucket(ts))
	if err != nil {
		t.Fatalf("expected persisted point, got %v", err)
	}
	if point.Price != 3.0 || point.Source != domain.PriceSourceRealtime {
		t.Errorf("persisted point = %+v", point)
	}

	// A fresh resolver sharing the store serves from it without
	// touching the network.
	realtime2 := &stubRealtime{price: 9.99}
	r2 := NewResolver(ResolverOptions{Store: store, Realtime: realtime2, Now: fixedNow})
	if got := r2.Resolve(context.Background(), testMint, ts); got != 3.0 {
		t.Errorf("Resolve from store = %v, want 3.0", got)
	}
	if realtime2.calls != 0 {
		t.Errorf("realtime calls = %d, want 0", realtime2.calls)
	}
}

func TestWarm_DeduplicatesAndResolvesAll(t *testing.T) {
	realtime := &stubRealtime{price: 1.0}
	r := NewResolver(ResolverOptions{Realtime: realtime, Now: fixedNow})

	base := fixedNow().Unix() - 7200
	lookups := []Lookup{
		{Mint: "mintA", Timestamp: base},
		{Mint: "mintA", Timestamp: base + 10}, // same hour bucket
		{Mint: "mintB", Timestamp: base},
		{Mint: "mintA", Timestamp: base + 3600},
	}
	r.Warm(context.Background(), lookups)

	if realtime.calls != 3 {
		t.Errorf("realtime calls = %d, want 3", realtime.calls)
	}
}

func TestResolve_NoSourcesDegradesToZero(t *testing.T) {
	r := NewResolver(ResolverOptions{Now: fixedNow})
	if got := r.Resolve(context.Background(), testMint, fixedNow().Unix()); got != 0 {
		t.Errorf("Resolve = %v, want 0", got)
	}
}
