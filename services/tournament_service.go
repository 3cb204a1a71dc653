// services/tournament_service.go
package services

import (
	"errors"
	"fmt"
	"log"

	"wager-settlement-system/middleware"
	"wager-settlement-system/models"
	"wager-settlement-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TournamentService runs the N-party pooled competition: entrants each
// deposit the entry fee into the tournament's escrow, the organizer locks the
// roster, and the whole pool goes to a single winner from the roster.
// prize_pool == entry_fee * len(entries) holds after every successful join.
type TournamentService struct {
	DB     *gorm.DB
	Ledger *LedgerService
}

func NewTournamentService(db *gorm.DB, ledger *LedgerService) *TournamentService {
	return &TournamentService{DB: db, Ledger: ledger}
}

// InitTournament creates an open tournament with an empty roster and a fresh
// escrow account owned by the tournament record.
func (s *TournamentService) InitTournament(organizer, currency string, entryFee uint64, maxPlayers int) (*models.Tournament, error) {
	if entryFee == 0 {
		return nil, ErrZeroAmount
	}
	if maxPlayers < 2 {
		return nil, ErrBadMaxPlayers
	}

	tournamentID := models.DeriveAddress("tournament", organizer, currency)
	escrowAddr := models.DeriveAddress("escrow", tournamentID)

	t := models.Tournament{
		ID:            tournamentID,
		OrganizerID:   organizer,
		Currency:      currency,
		EntryFee:      entryFee,
		MaxPlayers:    maxPlayers,
		PrizePool:     0,
		EscrowAddress: escrowAddr,
		State:         models.TournamentOpen,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Tournament
		if err := tx.Where("id = ?", tournamentID).First(&existing).Error; err == nil {
			return ErrDuplicateTournament
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check for existing tournament: %w", err)
		}
		if _, err := s.Ledger.OpenAccount(tx, escrowAddr, tournamentID, currency, false); err != nil {
			return err
		}
		return tx.Create(&t).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// JoinTournament deposits the entry fee and appends the player to the roster.
// The deposit runs before any roster mutation, and both commit together, so a
// failed deposit leaves roster and pool untouched. Seat numbers make the
// capacity bound structural: a seat past MaxPlayers-1 is never assigned.
func (s *TournamentService) JoinTournament(tournamentID, player string) (*models.Tournament, error) {
	var t models.Tournament
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", tournamentID).First(&t).Error; err != nil {
			return err
		}
		if t.State != models.TournamentOpen {
			return ErrNotOpen
		}

		var seats int64
		if err := tx.Model(&models.TournamentEntry{}).
			Where("tournament_id = ?", tournamentID).Count(&seats).Error; err != nil {
			return fmt.Errorf("failed to count entries: %w", err)
		}
		if int(seats) >= t.MaxPlayers {
			return ErrTournamentFull
		}

		var existing models.TournamentEntry
		if err := tx.Where("tournament_id = ? AND player_id = ?", tournamentID, player).
			First(&existing).Error; err == nil {
			return ErrAlreadyEntered
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check roster: %w", err)
		}

		if _, err := s.Ledger.GetOrCreateAccount(tx, models.WalletAddress(player, t.Currency), player, t.Currency, false); err != nil {
			return err
		}
		if err := s.Ledger.Transfer(tx, models.WalletAddress(player, t.Currency), t.EscrowAddress, t.EntryFee, player, "tournament-entry:"+tournamentID); err != nil {
			return err
		}

		entry := models.TournamentEntry{
			ID:           uuid.NewString(),
			TournamentID: tournamentID,
			PlayerID:     player,
			Seat:         int(seats),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to create entry: %w", err)
		}

		pool, ok := utils.CheckedAdd(t.PrizePool, t.EntryFee)
		if !ok {
			return ErrMathOverflow
		}
		t.PrizePool = pool
		return tx.Save(&t).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// StartTournament locks the roster: organizer-only, open -> started, and at
// least two entrants so a winner is meaningful. No funds move.
func (s *TournamentService) StartTournament(tournamentID, caller string) (*models.Tournament, error) {
	var t models.Tournament
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", tournamentID).First(&t).Error; err != nil {
			return err
		}
		if caller != t.OrganizerID {
			return ErrUnauthorized
		}
		if t.State != models.TournamentOpen {
			return ErrNotOpen
		}
		var seats int64
		if err := tx.Model(&models.TournamentEntry{}).
			Where("tournament_id = ?", tournamentID).Count(&seats).Error; err != nil {
			return fmt.Errorf("failed to count entries: %w", err)
		}
		if seats < 2 {
			return ErrNotEnoughPlayers
		}
		t.State = models.TournamentStarted
		return tx.Save(&t).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// PayoutWinner drains the entire pool to a roster member and completes the
// tournament. Only reachable from started; a second call fails with no fund
// movement because complete is terminal.
func (s *TournamentService) PayoutWinner(tournamentID, winner string) (*models.Tournament, error) {
	var t models.Tournament
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", tournamentID).First(&t).Error; err != nil {
			return err
		}
		if t.State != models.TournamentStarted {
			return ErrNotStarted
		}

		var entry models.TournamentEntry
		if err := tx.Where("tournament_id = ? AND player_id = ?", tournamentID, winner).
			First(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotAPlayer
			}
			return fmt.Errorf("failed to check roster: %w", err)
		}

		if _, err := s.Ledger.GetOrCreateAccount(tx, models.WalletAddress(winner, t.Currency), winner, t.Currency, false); err != nil {
			return err
		}
		if err := s.Ledger.Transfer(tx, t.EscrowAddress, models.WalletAddress(winner, t.Currency), t.PrizePool, t.ID, "tournament-payout:"+tournamentID); err != nil {
			return err
		}

		t.State = models.TournamentComplete
		t.WinnerID = &winner
		return tx.Save(&t).Error
	})
	if err != nil {
		return nil, err
	}
	log.Printf("✅ [TOURNAMENT] %s complete: winner=%s pool=%d", t.ID, winner, t.PrizePool)
	return &t, nil
}

// --- Handlers ---

func (s *TournamentService) InitTournamentEndpoint(c *fiber.Ctx) error {
	var req struct {
		Currency   string `json:"currency"`
		EntryFee   uint64 `json:"entry_fee"`
		MaxPlayers int    `json:"max_players"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Currency == "" {
		return c.Status(400).JSON(fiber.Map{"error": "currency is required"})
	}

	t, err := s.InitTournament(middleware.CallerID(c), req.Currency, req.EntryFee, req.MaxPlayers)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "tournament created", "tournament": t})
}

func (s *TournamentService) JoinTournamentEndpoint(c *fiber.Ctx) error {
	t, err := s.JoinTournament(c.Params("id"), middleware.CallerID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "tournament joined", "tournament": t})
}

func (s *TournamentService) StartTournamentEndpoint(c *fiber.Ctx) error {
	t, err := s.StartTournament(c.Params("id"), middleware.CallerID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "tournament started", "tournament": t})
}

func (s *TournamentService) PayoutWinnerEndpoint(c *fiber.Ctx) error {
	var req struct {
		WinnerID string `json:"winner_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.WinnerID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "winner_id is required"})
	}

	t, err := s.PayoutWinner(c.Params("id"), req.WinnerID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "winner paid", "tournament": t})
}

func (s *TournamentService) GetTournament(c *fiber.Ctx) error {
	var t models.Tournament
	if err := s.DB.Preload("Entries", func(db *gorm.DB) *gorm.DB {
		return db.Order("seat ASC")
	}).Where("id = ?", c.Params("id")).First(&t).Error; err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(t)
}
