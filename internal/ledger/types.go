// Package ledger fetches a wallet's raw transaction history from a
// ledger-indexing service: signature listing over Solana RPC, then
// enrichment into parsed transfer records over the indexer's REST API.
package ledger

import (
	"encoding/json"
	"strconv"
	"strings"
)

// EnhancedTransaction is one parsed transaction from the indexer.
// It is raw input for the classifier and carries no economic intent.
type EnhancedTransaction struct {
	Signature       string           `json:"signature"`
	Timestamp       int64            `json:"timestamp"` // Unix seconds
	Type            string           `json:"type"`      // indexer tag: SWAP, TRANSFER, ...
	NativeTransfers []NativeTransfer `json:"nativeTransfers"`
	TokenTransfers  []TokenTransfer  `json:"tokenTransfers"`
}

// IsSwap reports whether the indexer tagged this transaction as a swap.
func (t *EnhancedTransaction) IsSwap() bool {
	return strings.EqualFold(t.Type, "SWAP")
}

// NativeTransfer is a lamport movement between two accounts.
type NativeTransfer struct {
	FromUserAccount string `json:"fromUserAccount"`
	ToUserAccount   string `json:"toUserAccount"`
	Amount          int64  `json:"amount"` // lamports
}

// TokenTransfer is an SPL token movement between two accounts.
type TokenTransfer struct {
	FromUserAccount string      `json:"fromUserAccount"`
	ToUserAccount   string      `json:"toUserAccount"`
	Mint            string      `json:"mint"`
	TokenAddress    string      `json:"tokenAddress"` // some payloads carry the mint here
	TokenSymbol     string      `json:"tokenSymbol"`
	TokenAmount     TokenAmount `json:"tokenAmount"` // UI units, not raw
}

// ResolvedMint returns the mint, falling back to the tokenAddress field.
func (t *TokenTransfer) ResolvedMint() string {
	if t.Mint != "" {
		return t.Mint
	}
	return t.TokenAddress
}

// TokenAmount tolerates the indexer serializing amounts as either a
// JSON number or a decimal string.
type TokenAmount float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *TokenAmount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*a = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			// Malformed amount degrades to zero rather than dropping the batch.
			*a = 0
			return nil
		}
		*a = TokenAmount(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*a = TokenAmount(f)
	return nil
}
