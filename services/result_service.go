// services/result_service.go
package services

import (
	"log"

	"wager-settlement-system/middleware"
	"wager-settlement-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResultService is the lightweight wager variant: two parties self-report an
// outcome and no funds move. Each party may only write its own claim. Once
// both claims exist the record settles itself — matching claims complete it,
// conflicting claims mark it disputed for manual review. Admins can void a
// pending or disputed record.
type ResultService struct {
	DB *gorm.DB
}

func NewResultService(db *gorm.DB) *ResultService {
	return &ResultService{DB: db}
}

// InitializeMatch records a new pending result match for the creator.
func (s *ResultService) InitializeMatch(creator string, wagerAmount uint64) (*models.ResultMatch, error) {
	if wagerAmount == 0 {
		return nil, ErrZeroAmount
	}
	match := models.ResultMatch{
		ID:          uuid.NewString(),
		CreatorID:   creator,
		WagerAmount: wagerAmount,
		Status:      models.ResultPending,
	}
	if err := s.DB.Create(&match).Error; err != nil {
		return nil, err
	}
	return &match, nil
}

// JoinMatch claims the joiner slot. The slot is claimed at most once and the
// creator cannot claim it.
func (s *ResultService) JoinMatch(matchID, joiner string) (*models.ResultMatch, error) {
	var match models.ResultMatch
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", matchID).First(&match).Error; err != nil {
			return err
		}
		if match.Status != models.ResultPending {
			return ErrResultClosed
		}
		if match.JoinerID != nil {
			return ErrJoinerTaken
		}
		if joiner == match.CreatorID {
			return ErrUnauthorized
		}
		match.JoinerID = &joiner
		return tx.Save(&match).Error
	})
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// SubmitResult stores the caller's own claim. Anyone else is rejected with no
// state change. When the second claim lands the record settles: equal claims
// complete, unequal claims dispute.
func (s *ResultService) SubmitResult(matchID, caller, result string) (*models.ResultMatch, error) {
	var match models.ResultMatch
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", matchID).First(&match).Error; err != nil {
			return err
		}
		if match.Status != models.ResultPending {
			return ErrResultClosed
		}

		switch {
		case caller == match.CreatorID:
			match.CreatorResult = &result
		case match.JoinerID != nil && caller == *match.JoinerID:
			match.JoinerResult = &result
		default:
			return ErrUnauthorized
		}

		if match.CreatorResult != nil && match.JoinerResult != nil {
			if *match.CreatorResult == *match.JoinerResult {
				match.Status = models.ResultCompleted
			} else {
				match.Status = models.ResultDisputed
			}
		}
		return tx.Save(&match).Error
	})
	if err != nil {
		return nil, err
	}
	if match.Status == models.ResultDisputed {
		log.Printf("⚠️ [RESULT] match %s disputed: %q vs %q", match.ID, *match.CreatorResult, *match.JoinerResult)
	}
	return &match, nil
}

// VoidMatch force-closes a pending or disputed record without an outcome.
func (s *ResultService) VoidMatch(matchID string) (*models.ResultMatch, error) {
	var match models.ResultMatch
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", matchID).First(&match).Error; err != nil {
			return err
		}
		if match.Status != models.ResultPending && match.Status != models.ResultDisputed {
			return ErrResultClosed
		}
		match.Status = models.ResultVoid
		return tx.Save(&match).Error
	})
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// --- Handlers ---

func (s *ResultService) InitializeMatchEndpoint(c *fiber.Ctx) error {
	var req struct {
		WagerAmount uint64 `json:"wager_amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	match, err := s.InitializeMatch(middleware.CallerID(c), req.WagerAmount)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "result match created", "match": match})
}

func (s *ResultService) JoinMatchEndpoint(c *fiber.Ctx) error {
	match, err := s.JoinMatch(c.Params("id"), middleware.CallerID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "joined", "match": match})
}

func (s *ResultService) SubmitResultEndpoint(c *fiber.Ctx) error {
	var req struct {
		Result string `json:"result"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Result == "" {
		return c.Status(400).JSON(fiber.Map{"error": "result is required"})
	}
	match, err := s.SubmitResult(c.Params("id"), middleware.CallerID(c), req.Result)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "result recorded", "match": match})
}

func (s *ResultService) VoidMatchEndpoint(c *fiber.Ctx) error {
	match, err := s.VoidMatch(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "match voided", "match": match})
}

func (s *ResultService) GetMatch(c *fiber.Ctx) error {
	var match models.ResultMatch
	if err := s.DB.Where("id = ?", c.Params("id")).First(&match).Error; err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(match)
}
