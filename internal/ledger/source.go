package ledger

import "context"

// Source provides a wallet's enhanced transaction history.
type Source interface {
	// Fetch returns enhanced transactions for a wallet with block time
	// within [from, to]. Results may be unordered; callers sort before
	// replay. An unreachable indexer yields an empty slice, not an error,
	// except for missing configuration which is reported up front.
	Fetch(ctx context.Context, wallet string, from, to int64) ([]*EnhancedTransaction, error)

	// FetchSince behaves like Fetch but walks signatures only until the
	// given one is reached, for incremental refresh on top of stored
	// history. An empty untilSignature means a full fetch.
	FetchSince(ctx context.Context, wallet string, from, to int64, untilSignature string) ([]*EnhancedTransaction, error)
}
