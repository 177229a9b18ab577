package domain

// TokenHolding is a wallet's current position in one token, supplied by
// the caller together with a live price. Change24h is a percentage
// (+6.28 means the price rose 6.28% over the last day).
type TokenHolding struct {
	Mint      string  `json:"mint"`
	Symbol    string  `json:"symbol"`
	Balance   float64 `json:"balance"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change24h"`
}
