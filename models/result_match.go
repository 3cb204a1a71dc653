package models

// Result-claim match status. Pending accepts claims; completed, disputed and
// void are terminal.
const (
	ResultPending   = "pending"
	ResultCompleted = "completed"
	ResultDisputed  = "disputed"
	ResultVoid      = "void"
)

// ResultMatch is the lightweight wager variant: two parties self-report an
// outcome and no funds move. Each party may only ever write its own claim
// field. Once both claims are present the record settles to completed on an
// exact claim match or disputed on a mismatch.
type ResultMatch struct {
	ID          string  `gorm:"primaryKey;type:uuid" json:"id"`
	CreatorID   string  `gorm:"index;not null" json:"creator_id"`
	JoinerID    *string `gorm:"index" json:"joiner_id,omitempty"`
	WagerAmount uint64  `gorm:"not null" json:"wager_amount"`

	CreatorResult *string `json:"creator_result,omitempty"`
	JoinerResult  *string `json:"joiner_result,omitempty"`

	Status string `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`

	Timestamps
}
