package engine

import "errors"

// The only two hard failures an analysis can surface. Every other
// upstream problem degrades to partial or empty data.
var (
	// ErrMissingWallet means the request carried no wallet address.
	ErrMissingWallet = errors.New("wallet address is required")

	// ErrNotConfigured means the ledger indexer credential is absent,
	// so raw transaction history cannot be fetched at all.
	ErrNotConfigured = errors.New("ledger indexer not configured")
)
