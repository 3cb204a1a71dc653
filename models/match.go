package models

// Wager match lifecycle. States only ever advance; resolved is terminal and
// the record is kept for audit.
const (
	MatchAwaitingOpponent = "awaiting_opponent"
	MatchReadyToResolve   = "ready_to_resolve"
	MatchResolved         = "resolved"
)

// WagerMatch is a two-party escrowed bet. The ID is derived from
// (player1, currency), so a player holds at most one match record per
// currency. Amount is fixed at creation; player2 stakes the same amount on
// join. The escrow account is owned by the match itself and is drained
// exactly once, at resolution.
type WagerMatch struct {
	ID            string  `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Player1ID     string  `gorm:"index;not null" json:"player1_id"`
	Player2ID     *string `gorm:"index" json:"player2_id,omitempty"`
	Currency      string  `gorm:"type:varchar(32);not null" json:"currency"`
	Amount        uint64  `gorm:"not null" json:"amount"`
	EscrowAddress string  `gorm:"not null" json:"escrow_address"`
	State         string  `gorm:"type:varchar(24);not null;default:'awaiting_opponent'" json:"state"`

	// Set at resolution.
	WinnerID *string `json:"winner_id,omitempty"`
	FeeBps   *uint32 `json:"fee_bps,omitempty"`
	Payout   uint64  `gorm:"default:0" json:"payout"`
	FeePaid  uint64  `gorm:"default:0" json:"fee_paid"`

	Timestamps
}
