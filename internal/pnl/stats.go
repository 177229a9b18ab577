package pnl

import (
	"solana-wallet-pnl/internal/domain"
)

// CalculateStats derives headline numbers from a finished timeline.
// Invested capital is the timeline baseline, current value the last
// point. Best day ties resolve to the first occurrence. A zero
// baseline yields a zero percentage, never a division by zero.
func CalculateStats(timeline []domain.TimelinePoint, txs []*domain.Transaction) domain.Stats {
	var stats domain.Stats

	if len(timeline) > 0 {
		stats.InvestedCapital = timeline[0].PortfolioValue
		stats.CurrentValue = timeline[len(timeline)-1].PortfolioValue

		best := timeline[0]
		for _, p := range timeline[1:] {
			if p.PortfolioValue > best.PortfolioValue {
				best = p
			}
		}
		stats.BestDayValue = best.PortfolioValue
		stats.BestDayDate = best.Label
	}

	stats.TotalPnL = stats.CurrentValue - stats.InvestedCapital
	if stats.InvestedCapital > 0 {
		stats.TotalPnLPercent = stats.TotalPnL / stats.InvestedCapital * 100
	}

	for _, tx := range txs {
		switch tx.Type {
		case domain.TxBuy:
			stats.TotalBuys++
		case domain.TxSell:
			stats.TotalSells++
		case domain.TxTransferOut:
			stats.TotalTransfers++
		}
	}
	return stats
}
