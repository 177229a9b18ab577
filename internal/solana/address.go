package solana

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ValidateWalletAddress checks that address is a plausible wallet
// public key: base58, 32 bytes, and on the ed25519 curve. Program
// derived addresses are deliberately off-curve and are rejected,
// since a PDA cannot sign transactions and is never a user wallet.
func ValidateWalletAddress(address string) error {
	if address == "" {
		return fmt.Errorf("empty address")
	}

	decoded, err := base58.Decode(address)
	if err != nil {
		return fmt.Errorf("decode address: %w", err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("address must decode to 32 bytes, got %d", len(decoded))
	}

	if _, err := new(edwards25519.Point).SetBytes(decoded); err != nil {
		return fmt.Errorf("address is not an ed25519 public key")
	}

	return nil
}
