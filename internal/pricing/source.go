package pricing

import "context"

// RealtimeSource serves the current price of a token. Cheap and
// accurate for recent activity; useless for anything older.
type RealtimeSource interface {
	// Price returns the current USD price, 0 when unknown.
	Price(ctx context.Context, mint string) (float64, error)
}

// LatestSource serves the most recently traded price from a DEX
// aggregator. No temporal parameter; for old timestamps this is an
// approximation, which is exactly how the resolver uses it.
type LatestSource interface {
	// LatestPrice returns the last traded USD price, 0 when unknown.
	LatestPrice(ctx context.Context, mint string) (float64, error)
}

// HistoricalSource serves OHLC candles around a timestamp. Typically
// rate-limited, so the resolver only consults it for genuinely old
// lookups.
type HistoricalSource interface {
	// CandleClose returns close-or-open of the first daily candle in
	// [from, to], 0 when no candle exists.
	CandleClose(ctx context.Context, mint string, from, to int64) (float64, error)
}
