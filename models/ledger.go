package models

import (
	"time"
)

// ExternalSource marks journal rows whose funds entered the ledger from the
// upstream custody gateway (confirmed on-chain deposits) rather than from
// another custody account.
const ExternalSource = "external"

// PlatformOwner owns treasury accounts (fee wallet, subscription vault).
const PlatformOwner = "platform"

// CustodyAccount holds a balance of a single currency's smallest unit.
// Every account is exclusively attributable to one owner: a user for wallet
// accounts, a state record (match/tournament ID) for escrow accounts, or the
// platform for treasury accounts. Funds can only leave an account when the
// transfer is authorized by that owner.
type CustodyAccount struct {
	Address    string `gorm:"primaryKey;type:varchar(64)" json:"address"`
	OwnerID    string `gorm:"index;not null" json:"owner_id"`
	Currency   string `gorm:"type:varchar(32);not null;index" json:"currency"`
	Balance    uint64 `gorm:"not null;default:0" json:"balance"`
	IsTreasury bool   `gorm:"not null;default:false" json:"is_treasury"`
	IsActive   bool   `gorm:"not null;default:true" json:"is_active"`

	Timestamps
}

// LedgerTransfer is one append-only journal row per successful transfer.
// FromAddress is ExternalSource for deposit credits.
type LedgerTransfer struct {
	ID           string    `gorm:"primaryKey;type:uuid" json:"id"`
	FromAddress  string    `gorm:"index;not null" json:"from_address"`
	ToAddress    string    `gorm:"index;not null" json:"to_address"`
	Currency     string    `gorm:"type:varchar(32);not null" json:"currency"`
	Amount       uint64    `gorm:"not null" json:"amount"`
	AuthorizedBy string    `gorm:"not null" json:"authorized_by"`
	Reference    string    `json:"reference"` // e.g. "match-payout:<id>"
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// DepositEvent mirrors a confirmed deposit reported by the upstream custody
// gateway. ExternalTxID is unique so replayed poll windows never double-credit.
type DepositEvent struct {
	ID           string    `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalTxID string    `gorm:"uniqueIndex;not null" json:"external_tx_id"`
	OwnerID      string    `gorm:"index;not null" json:"owner_id"`
	Currency     string    `gorm:"type:varchar(32);not null" json:"currency"`
	Amount       uint64    `gorm:"not null" json:"amount"`
	ConfirmedAt  time.Time `json:"confirmed_at"`
	CreditedAt   time.Time `gorm:"autoCreateTime" json:"credited_at"`
}
