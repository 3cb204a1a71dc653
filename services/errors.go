// services/errors.go
package services

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Settlement error taxonomy. Every check runs before any transfer is
// attempted, and transfers plus state writes share one transaction, so a
// failed transition never leaves a partial write behind.
var (
	// Validation
	ErrZeroAmount    = errors.New("amount must be greater than zero")
	ErrZeroMonths    = errors.New("months must be greater than zero")
	ErrFeeOutOfRange = errors.New("fee_bps must be between 0 and 10000")
	ErrBadMaxPlayers = errors.New("max_players must be at least 2")

	// State
	ErrDuplicateMatch      = errors.New("match already exists for this player and currency")
	ErrMatchNotOpen        = errors.New("match is not awaiting an opponent")
	ErrMatchNotReady       = errors.New("match is not ready to resolve")
	ErrDuplicateTournament = errors.New("tournament already exists for this organizer and currency")
	ErrNotOpen             = errors.New("tournament is not open for joining")
	ErrNotStarted          = errors.New("tournament has not started")
	ErrTournamentFull      = errors.New("tournament is full")
	ErrAlreadyEntered      = errors.New("player already entered this tournament")
	ErrNotEnoughPlayers    = errors.New("tournament needs at least two entrants to start")
	ErrResultClosed        = errors.New("result match no longer accepts this action")
	ErrJoinerTaken         = errors.New("joiner slot already claimed")

	// Authorization
	ErrUnauthorized    = errors.New("caller is not a party to this record")
	ErrInvalidWinner   = errors.New("winner is not a participant")
	ErrNotAPlayer      = errors.New("winner is not on the roster")
	ErrNotAccountOwner = errors.New("authorizing party does not own the source account")

	// Arithmetic
	ErrMathOverflow = errors.New("arithmetic overflow")

	// Transfer
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrAccountNotFound   = errors.New("custody account not found")
	ErrAccountInactive   = errors.New("custody account is inactive")
)

// errorResponse maps a settlement error onto an HTTP status in one place so
// handlers stay thin.
func errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrZeroAmount), errors.Is(err, ErrZeroMonths),
		errors.Is(err, ErrFeeOutOfRange), errors.Is(err, ErrBadMaxPlayers),
		errors.Is(err, ErrMathOverflow):
		status = fiber.StatusBadRequest
	case errors.Is(err, ErrDuplicateMatch), errors.Is(err, ErrMatchNotOpen),
		errors.Is(err, ErrMatchNotReady), errors.Is(err, ErrDuplicateTournament),
		errors.Is(err, ErrNotOpen), errors.Is(err, ErrNotStarted),
		errors.Is(err, ErrTournamentFull), errors.Is(err, ErrAlreadyEntered),
		errors.Is(err, ErrNotEnoughPlayers), errors.Is(err, ErrResultClosed),
		errors.Is(err, ErrJoinerTaken):
		status = fiber.StatusConflict
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidWinner),
		errors.Is(err, ErrNotAPlayer), errors.Is(err, ErrNotAccountOwner):
		status = fiber.StatusForbidden
	case errors.Is(err, ErrInsufficientFunds):
		status = fiber.StatusPaymentRequired
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		status = fiber.StatusNotFound
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
