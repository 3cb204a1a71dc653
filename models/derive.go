package models

import (
	"crypto/sha256"
	"encoding/hex"
)

// DeriveAddress computes the deterministic identifier for a record or custody
// account from its seed tuple, e.g. ("match", player1, currency). The same
// seeds always locate the same record, so no separately issued ID is needed.
func DeriveAddress(seeds ...string) string {
	h := sha256.New()
	for _, s := range seeds {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// WalletAddress is the custody account holding a user's spendable balance in
// one currency.
func WalletAddress(userID, currency string) string {
	return DeriveAddress("wallet", userID, currency)
}

// FeeWalletAddress is the platform fee-collection account for one currency.
func FeeWalletAddress(currency string) string {
	return DeriveAddress("treasury", "fees", currency)
}

// SubscriptionVaultAddress receives subscription payments for one currency.
func SubscriptionVaultAddress(currency string) string {
	return DeriveAddress("treasury", "subscriptions", currency)
}
