package solana

import "context"

// RPCClient is the subset of the Solana JSON-RPC surface the engine
// needs to walk a wallet's transaction history.
type RPCClient interface {
	// GetSignaturesForAddress lists transaction signatures touching an
	// address, newest first.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)

	// GetBlockTime returns the estimated production time of a slot.
	// Returns nil when the node has no timestamp for the slot.
	GetBlockTime(ctx context.Context, slot int64) (*int64, error)

	// GetSlot returns the current slot.
	GetSlot(ctx context.Context) (int64, error)
}
