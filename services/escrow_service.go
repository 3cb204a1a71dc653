// services/escrow_service.go
package services

import (
	"errors"
	"fmt"
	"log"

	"wager-settlement-system/middleware"
	"wager-settlement-system/models"
	"wager-settlement-system/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// EscrowService runs the two-party wager state machine: player1 deposits on
// create, player2 matches the stake on join, and an admin-triggered resolve
// splits the doubled stake into a payout and a platform fee. The escrow
// account belongs to the match record, so nothing but the resolve path can
// drain it, and it drains exactly once.
type EscrowService struct {
	DB     *gorm.DB
	Ledger *LedgerService
}

func NewEscrowService(db *gorm.DB, ledger *LedgerService) *EscrowService {
	return &EscrowService{DB: db, Ledger: ledger}
}

// CreateMatch opens a wager: derives the match key from (player1, currency),
// deposits the stake into a fresh escrow account and records the match as
// awaiting an opponent. The deposit and the record creation commit together.
func (s *EscrowService) CreateMatch(player1, currency string, amount uint64) (*models.WagerMatch, error) {
	if amount == 0 {
		return nil, ErrZeroAmount
	}

	matchID := models.DeriveAddress("match", player1, currency)
	escrowAddr := models.DeriveAddress("escrow", matchID)

	match := models.WagerMatch{
		ID:            matchID,
		Player1ID:     player1,
		Currency:      currency,
		Amount:        amount,
		EscrowAddress: escrowAddr,
		State:         models.MatchAwaitingOpponent,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.WagerMatch
		if err := tx.Where("id = ?", matchID).First(&existing).Error; err == nil {
			return ErrDuplicateMatch
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check for existing match: %w", err)
		}

		if _, err := s.Ledger.GetOrCreateAccount(tx, models.WalletAddress(player1, currency), player1, currency, false); err != nil {
			return err
		}
		if _, err := s.Ledger.OpenAccount(tx, escrowAddr, matchID, currency, false); err != nil {
			return err
		}
		if err := s.Ledger.Transfer(tx, models.WalletAddress(player1, currency), escrowAddr, amount, player1, "match-stake:"+matchID); err != nil {
			return err
		}
		return tx.Create(&match).Error
	})
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// JoinMatch stakes the same amount from player2 and moves the match to
// ready_to_resolve. The stake is read from the record, never re-specified.
func (s *EscrowService) JoinMatch(matchID, player2 string) (*models.WagerMatch, error) {
	var match models.WagerMatch
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", matchID).First(&match).Error; err != nil {
			return err
		}
		if match.State != models.MatchAwaitingOpponent {
			return ErrMatchNotOpen
		}

		if _, err := s.Ledger.GetOrCreateAccount(tx, models.WalletAddress(player2, match.Currency), player2, match.Currency, false); err != nil {
			return err
		}
		if err := s.Ledger.Transfer(tx, models.WalletAddress(player2, match.Currency), match.EscrowAddress, match.Amount, player2, "match-stake:"+matchID); err != nil {
			return err
		}

		match.Player2ID = &player2
		match.State = models.MatchReadyToResolve
		return tx.Save(&match).Error
	})
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// ResolveMatch pays the winner 2*amount minus the fee and sends the fee to
// the platform fee wallet. Both transfers and the terminal state write commit
// as one unit; on any failure the match stays ready_to_resolve and the call
// may be resubmitted. payout + fee always equals exactly 2*amount.
func (s *EscrowService) ResolveMatch(matchID, winnerID string, feeBps uint32) (*models.WagerMatch, error) {
	if feeBps > 10000 {
		return nil, ErrFeeOutOfRange
	}

	var match models.WagerMatch
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", matchID).First(&match).Error; err != nil {
			return err
		}
		if match.State != models.MatchReadyToResolve {
			return ErrMatchNotReady
		}
		if winnerID != match.Player1ID && (match.Player2ID == nil || winnerID != *match.Player2ID) {
			return ErrInvalidWinner
		}

		total, ok := utils.CheckedMul(match.Amount, 2)
		if !ok {
			return ErrMathOverflow
		}
		feeTimesBps, ok := utils.CheckedMul(total, uint64(feeBps))
		if !ok {
			return ErrMathOverflow
		}
		fee := feeTimesBps / 10000
		payout := total - fee

		if _, err := s.Ledger.GetOrCreateAccount(tx, models.WalletAddress(winnerID, match.Currency), winnerID, match.Currency, false); err != nil {
			return err
		}
		// The escrow account is owned by the match itself; its identity is the
		// release capability.
		if payout > 0 {
			if err := s.Ledger.Transfer(tx, match.EscrowAddress, models.WalletAddress(winnerID, match.Currency), payout, match.ID, "match-payout:"+matchID); err != nil {
				return err
			}
		}
		if fee > 0 {
			feeWallet, err := s.Ledger.GetOrCreateAccount(tx, models.FeeWalletAddress(match.Currency), models.PlatformOwner, match.Currency, true)
			if err != nil {
				return err
			}
			if err := s.Ledger.Transfer(tx, match.EscrowAddress, feeWallet.Address, fee, match.ID, "match-fee:"+matchID); err != nil {
				return err
			}
		}

		match.State = models.MatchResolved
		match.WinnerID = &winnerID
		match.FeeBps = &feeBps
		match.Payout = payout
		match.FeePaid = fee
		return tx.Save(&match).Error
	})
	if err != nil {
		return nil, err
	}
	log.Printf("✅ [ESCROW] match %s resolved: winner=%s payout=%d fee=%d", match.ID, winnerID, match.Payout, match.FeePaid)
	return &match, nil
}

// --- Handlers ---

func (s *EscrowService) CreateMatchEndpoint(c *fiber.Ctx) error {
	var req struct {
		Currency string `json:"currency"`
		Amount   uint64 `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Currency == "" {
		return c.Status(400).JSON(fiber.Map{"error": "currency is required"})
	}

	match, err := s.CreateMatch(middleware.CallerID(c), req.Currency, req.Amount)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "match created", "match": match})
}

func (s *EscrowService) JoinMatchEndpoint(c *fiber.Ctx) error {
	match, err := s.JoinMatch(c.Params("id"), middleware.CallerID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "match joined", "match": match})
}

func (s *EscrowService) ResolveMatchEndpoint(c *fiber.Ctx) error {
	var req struct {
		WinnerID string `json:"winner_id"`
		FeeBps   uint32 `json:"fee_bps"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.WinnerID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "winner_id is required"})
	}

	match, err := s.ResolveMatch(c.Params("id"), req.WinnerID, req.FeeBps)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "match resolved", "match": match})
}

func (s *EscrowService) GetMatch(c *fiber.Ctx) error {
	var match models.WagerMatch
	if err := s.DB.Where("id = ?", c.Params("id")).First(&match).Error; err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(match)
}
