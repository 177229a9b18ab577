// Package pnl holds the pure aggregation steps of a portfolio
// analysis: chart events and headline statistics.
package pnl

import (
	"solana-wallet-pnl/internal/domain"
)

// ExtractEvents picks the transactions worth plotting on the chart.
// Inbound transfers are noise for visualization and are dropped. The
// movements on each event are narrowed to the side that defines it:
// what was acquired for a buy, what left the wallet for a sell or an
// outbound transfer.
func ExtractEvents(txs []*domain.Transaction) []domain.PortfolioEvent {
	events := make([]domain.PortfolioEvent, 0, len(txs))
	for _, tx := range txs {
		if tx.Type == domain.TxTransferIn {
			continue
		}
		events = append(events, domain.PortfolioEvent{
			Timestamp: tx.Timestamp,
			Type:      tx.Type,
			Movements: relevantMovements(tx),
			TotalUSD:  tx.TotalUSD,
		})
	}
	return events
}

func relevantMovements(tx *domain.Transaction) []domain.TokenMovement {
	want := domain.DirIn
	switch tx.Type {
	case domain.TxSell, domain.TxTransferOut:
		want = domain.DirOut
	}

	kept := make([]domain.TokenMovement, 0, len(tx.Movements))
	for _, m := range tx.Movements {
		if m.Direction == want {
			kept = append(kept, m)
		}
	}
	return kept
}
