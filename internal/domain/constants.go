package domain

// NativeMint is the wrapped SOL mint, used as the ledger key for the
// wallet's native balance.
const NativeMint = "So11111111111111111111111111111111111111112"

// NativeSymbol is the display symbol for the native asset.
const NativeSymbol = "SOL"

// LamportsPerSOL converts lamports to SOL.
const LamportsPerSOL = 1e9

// NativeChangeEpsilon is the threshold below which a native balance
// change is treated as zero (fees and rent churn).
const NativeChangeEpsilon = 1e-8

// stableMints maps USD-pegged mints to their symbols. Stable movements
// anchor BUY/SELL classification and value 1:1 in USD.
var stableMints = map[string]string{
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": "USDC",
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": "USDT",
}

// IsStableMint reports whether mint is a recognized USD-pegged token.
func IsStableMint(mint string) bool {
	_, ok := stableMints[mint]
	return ok
}

// StableSymbol returns the symbol for a stable mint, or "" if not stable.
func StableSymbol(mint string) string {
	return stableMints[mint]
}

// ShortMint returns a display fallback for tokens without a known symbol.
func ShortMint(mint string) string {
	if len(mint) <= 6 {
		return mint
	}
	return mint[:6]
}
