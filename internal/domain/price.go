package domain

// Price source tiers, recorded with every resolved point.
const (
	PriceSourceRealtime   = "realtime"   // current price from the realtime API
	PriceSourceLatest     = "latest"     // most recent traded price from a DEX aggregator
	PriceSourceHistorical = "historical" // OHLC candle close/open around the timestamp
	PriceSourceStore      = "store"      // served from the persistent point store
)

// PricePoint is a resolved USD price for a mint at hour granularity.
// Price 0 is a confirmed "no discoverable price", distinct from a point
// that was never resolved.
type PricePoint struct {
	Mint       string  // token mint address
	HourBucket int64   // Unix seconds floored to the hour
	Price      float64 // USD price, >= 0
	Source     string  // tier that produced the price
	ResolvedAt int64   // Unix seconds when the lookup happened
}

// HourBucket floors a Unix timestamp to the start of its hour, the
// cache and store granularity for resolved prices.
func HourBucket(ts int64) int64 {
	return ts - ts%3600
}
