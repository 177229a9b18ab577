package domain

// TimelinePoint is one bucket of the portfolio valuation timeline.
// PnL figures are relative to the timeline's baseline, not the prior point.
type TimelinePoint struct {
	Timestamp      int64   `json:"timestamp"` // Unix seconds, bucket start
	Label          string  `json:"date"`      // preformatted axis label
	PortfolioValue float64 `json:"portfolioValue"`
	PnL            float64 `json:"pnl"`
	PnLPercent     float64 `json:"pnlPercent"`
}

// PortfolioEvent is a transaction projected down to the movements worth
// plotting as a chart marker. TRANSFER_IN transactions produce no event.
type PortfolioEvent struct {
	Timestamp int64           `json:"timestamp"`
	Type      TransactionType `json:"type"`
	Movements []TokenMovement `json:"tokens"`
	TotalUSD  float64         `json:"totalValue"`
}

// Stats holds the headline figures derived from a timeline and its
// transaction list.
type Stats struct {
	InvestedCapital float64 `json:"investedCapital"` // baseline valuation
	CurrentValue    float64 `json:"currentValue"`
	BestDayValue    float64 `json:"bestDayValue"`
	BestDayDate     string  `json:"bestDayDate"`
	TotalPnL        float64 `json:"totalPnl"`
	TotalPnLPercent float64 `json:"totalPnlPercent"`
	TotalBuys       int     `json:"totalBuys"`
	TotalSells      int     `json:"totalSells"`
	TotalTransfers  int     `json:"totalTransfers"` // outgoing transfers only
}
