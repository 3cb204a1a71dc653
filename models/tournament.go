package models

// Tournament lifecycle. The organizer locks the roster with the explicit
// open -> started transition; payout is only reachable from started and
// complete is terminal.
const (
	TournamentOpen     = "open"
	TournamentStarted  = "started"
	TournamentComplete = "complete"
)

// Tournament is an N-party pooled competition. The ID is derived from
// (organizer, currency). PrizePool always equals EntryFee times the number of
// entries; the whole pool goes to a single winner drawn from the roster.
type Tournament struct {
	ID            string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	OrganizerID   string `gorm:"index;not null" json:"organizer_id"`
	Currency      string `gorm:"type:varchar(32);not null" json:"currency"`
	EntryFee      uint64 `gorm:"not null" json:"entry_fee"`
	MaxPlayers    int    `gorm:"not null" json:"max_players"`
	PrizePool     uint64 `gorm:"not null;default:0" json:"prize_pool"`
	EscrowAddress string `gorm:"not null" json:"escrow_address"`
	State         string `gorm:"type:varchar(16);not null;default:'open'" json:"state"`

	WinnerID *string `json:"winner_id,omitempty"`

	Timestamps

	Entries []TournamentEntry `json:"entries,omitempty" gorm:"foreignKey:TournamentID"`
}

// TournamentEntry is one roster seat. Seat numbers are assigned 0..MaxPlayers-1
// in join order; the unique (tournament_id, seat) index makes the capacity
// bound structural, and (tournament_id, player_id) keeps entrants unique.
type TournamentEntry struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	TournamentID string `gorm:"not null;uniqueIndex:idx_tournament_seat;uniqueIndex:idx_tournament_player" json:"tournament_id"`
	PlayerID     string `gorm:"not null;uniqueIndex:idx_tournament_player" json:"player_id"`
	Seat         int    `gorm:"not null;uniqueIndex:idx_tournament_seat" json:"seat"`

	Timestamps
}
