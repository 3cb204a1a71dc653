package models

// Subscription is a single-party recurring entitlement. One record per
// (owner, currency), created on the first renewal and updated in place on
// every later one. ExpiresAt is a unix timestamp in seconds and never moves
// backwards: renewing before expiry stacks the new duration on top of the
// remaining paid time.
type Subscription struct {
	ID        string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	OwnerID   string `gorm:"index;not null" json:"owner_id"`
	Currency  string `gorm:"type:varchar(32);not null" json:"currency"`
	ExpiresAt int64  `gorm:"not null;default:0" json:"expires_at"`
	IsActive  bool   `gorm:"not null;default:true" json:"is_active"`

	Timestamps
}
