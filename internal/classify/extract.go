package classify

import (
	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/ledger"
)

// extract reduces an enriched transaction to the wallet's point of
// view: the signed SOL delta and the token movements touching the
// wallet. Transfers between third parties inside the same transaction
// are ignored.
func extract(wallet string, tx *ledger.EnhancedTransaction) (float64, []domain.TokenMovement) {
	var nativeChange float64
	for _, nt := range tx.NativeTransfers {
		if nt.FromUserAccount == wallet {
			nativeChange -= float64(nt.Amount) / domain.LamportsPerSOL
		}
		if nt.ToUserAccount == wallet {
			nativeChange += float64(nt.Amount) / domain.LamportsPerSOL
		}
	}

	var movements []domain.TokenMovement
	for _, tt := range tx.TokenTransfers {
		if tt.FromUserAccount != wallet && tt.ToUserAccount != wallet {
			continue
		}
		mint := tt.ResolvedMint()
		if mint == "" || tt.TokenAmount == 0 {
			continue
		}
		dir := domain.DirOut
		if tt.ToUserAccount == wallet {
			dir = domain.DirIn
		}
		movements = append(movements, domain.TokenMovement{
			Mint:      mint,
			Symbol:    symbolFor(mint, tt.TokenSymbol),
			Amount:    float64(tt.TokenAmount),
			Direction: dir,
		})
	}

	return nativeChange, movements
}

func symbolFor(mint, symbol string) string {
	if symbol != "" {
		return symbol
	}
	if s := domain.StableSymbol(mint); s != "" {
		return s
	}
	if mint == domain.NativeMint {
		return domain.NativeSymbol
	}
	return domain.ShortMint(mint)
}
