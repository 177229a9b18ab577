package solana

import "context"

// WSClient defines the Solana WebSocket subscription surface used to
// watch wallets for fresh activity.
type WSClient interface {
	// SubscribeLogs subscribes to transaction logs mentioning any of the
	// filter addresses. The returned channel is closed on Close.
	SubscribeLogs(ctx context.Context, filter LogsFilter) (<-chan LogNotification, error)

	// Close closes the WebSocket connection.
	Close() error
}

// LogsFilter selects which transactions to receive.
type LogsFilter struct {
	// Mentions filters for transactions that mention any of these
	// addresses (wallets, for the activity watcher). Empty means all.
	Mentions []string
}

// LogNotification is one logs subscription message.
type LogNotification struct {
	Signature string
	Slot      int64
	Logs      []string
	Err       interface{}
}
