package timeline

import (
	"context"
	"math"
	"time"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/observability"
)

const secondsPerDay = 86400

// PriceResolver is the slice of the pricing resolver the builder needs
// for historical day valuations.
type PriceResolver interface {
	Resolve(ctx context.Context, mint string, ts int64) float64
}

// Builder assembles portfolio value timelines from classified
// transactions and current holdings.
type Builder struct {
	prices PriceResolver
}

// NewBuilder creates a Builder.
func NewBuilder(prices PriceResolver) *Builder {
	return &Builder{prices: prices}
}

// Build produces the timeline for the window [startTime, endTime].
// With transaction history it replays balances day by day from the
// first buy or sell. With holdings but no history it synthesizes an
// approximate curve from each token's 24h change. With neither it
// returns an empty timeline. Transactions must already be sorted by
// timestamp ascending.
func (b *Builder) Build(ctx context.Context, txs []*domain.Transaction, startTime, endTime int64, holdings []domain.TokenHolding, tr domain.TimeRange) []domain.TimelinePoint {
	var points []domain.TimelinePoint
	switch {
	case len(txs) == 0 && len(holdings) > 0:
		points = b.synthesize(startTime, endTime, holdings, tr)
	case len(txs) > 0:
		points = b.replay(ctx, txs, endTime, holdings)
	}
	observability.RecordTimeline(len(points))
	return points
}

// synthesize builds an approximation from current holdings alone,
// interpolating each token's price linearly between its estimated
// 24h-ago price and its current price across the window.
func (b *Builder) synthesize(startTime, endTime int64, holdings []domain.TokenHolding, tr domain.TimeRange) []domain.TimelinePoint {
	interval := int64(tr.BucketInterval() / time.Second)
	points := int64(math.Ceil(float64(endTime-startTime) / float64(interval)))
	if points <= 0 {
		return nil
	}

	timeline := make([]domain.TimelinePoint, 0, points+1)
	for i := int64(0); i <= points; i++ {
		ts := startTime + i*interval
		progress := float64(i) / float64(points)

		var value float64
		for _, h := range holdings {
			if h.Balance <= 0 || h.Price <= 0 {
				continue
			}
			price24hAgo := h.Price / (1 + h.Change24h/100)
			value += h.Balance * (price24hAgo + (h.Price-price24hAgo)*progress)
		}

		timeline = append(timeline, domain.TimelinePoint{
			Timestamp:      ts,
			Label:          tr.PointLabel(ts),
			PortfolioValue: value,
		})
	}

	// Approximation baseline is always the first point.
	applyBaseline(timeline, timeline[0].PortfolioValue)
	return timeline
}

// replay walks one bucket per day from the first buy or sell through
// endTime, folding each day's transactions into a running balance
// ledger and valuing the resulting positions at each day boundary.
// Positions still held now are valued at their current price; the rest
// fall back to a historical lookup at the day's timestamp.
func (b *Builder) replay(ctx context.Context, txs []*domain.Transaction, endTime int64, holdings []domain.TokenHolding) []domain.TimelinePoint {
	anchor := firstTrade(txs)
	if anchor == nil {
		return nil
	}

	startDay := anchor.Timestamp / secondsPerDay * secondsPerDay
	days := int64(math.Ceil(float64(endTime-startDay) / float64(secondsPerDay)))

	ledger := newBalanceLedger()
	timeline := make([]domain.TimelinePoint, 0, days+1)
	next := 0

	for i := int64(0); i <= days; i++ {
		dayStart := startDay + i*secondsPerDay
		dayEnd := dayStart + secondsPerDay

		for next < len(txs) && txs[next].Timestamp < dayEnd {
			if txs[next].Timestamp >= dayStart {
				ledger.apply(txs[next])
			}
			next++
		}

		var value float64
		for mint, pos := range ledger.positions() {
			if pos.amount <= 0 {
				continue
			}
			if h := findHolding(holdings, mint, pos.symbol); h != nil && h.Price > 0 {
				value += pos.amount * h.Price
				continue
			}
			if price := b.prices.Resolve(ctx, mint, dayStart); price > 0 {
				value += pos.amount * price
			}
		}

		timeline = append(timeline, domain.TimelinePoint{
			Timestamp:      dayStart,
			Label:          time.Unix(dayStart, 0).UTC().Format("Jan 2"),
			PortfolioValue: value,
		})
	}

	if len(timeline) == 0 {
		return nil
	}
	applyBaseline(timeline, replayBaseline(timeline))
	return timeline
}

// firstTrade finds the earliest BUY or SELL, falling back to the
// earliest transaction of any type. Input is sorted ascending.
func firstTrade(txs []*domain.Transaction) *domain.Transaction {
	for _, tx := range txs {
		if tx.Type == domain.TxBuy || tx.Type == domain.TxSell {
			return tx
		}
	}
	if len(txs) > 0 {
		return txs[0]
	}
	return nil
}

// replayBaseline picks the first point with positive value, or the
// first point when the whole timeline is flat zero.
func replayBaseline(timeline []domain.TimelinePoint) float64 {
	for _, p := range timeline {
		if p.PortfolioValue > 0 {
			return p.PortfolioValue
		}
	}
	return timeline[0].PortfolioValue
}

// applyBaseline computes pnl and pnlPercent for every point against a
// single fixed baseline.
func applyBaseline(timeline []domain.TimelinePoint, baseline float64) {
	for i := range timeline {
		pnl := timeline[i].PortfolioValue - baseline
		timeline[i].PnL = pnl
		if baseline > 0 {
			timeline[i].PnLPercent = pnl / baseline * 100
		}
	}
}

// findHolding matches a replayed position to a current holding by mint
// first, then by symbol for wrapped or re-minted listings.
func findHolding(holdings []domain.TokenHolding, mint, symbol string) *domain.TokenHolding {
	for i := range holdings {
		if holdings[i].Mint == mint || (symbol != "" && holdings[i].Symbol == symbol) {
			return &holdings[i]
		}
	}
	return nil
}
