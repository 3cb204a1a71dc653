// services/subscription_service.go
package services

import (
	"log"
	"time"

	"wager-settlement-system/middleware"
	"wager-settlement-system/models"
	"wager-settlement-system/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	// 14.99 TC per month in 9-decimal base units.
	PricePerMonth uint64 = 14_990_000_000
	// Billing month: 30 days in seconds.
	SecondsPerMonth int64 = 2_592_000
)

// SubscriptionService extends time-based entitlements. One record per
// (owner, currency), created on the first renewal and mutated in place after
// that, so repeated renewals never fail with "already exists". Renewing
// before expiry stacks on the remaining paid time; renewing after expiry
// extends from now.
type SubscriptionService struct {
	DB     *gorm.DB
	Ledger *LedgerService
}

func NewSubscriptionService(db *gorm.DB, ledger *LedgerService) *SubscriptionService {
	return &SubscriptionService{DB: db, Ledger: ledger}
}

// Subscribe charges months * PricePerMonth into the subscription vault and
// pushes the expiry out by months * SecondsPerMonth from max(expiry, now).
// Payment and the expiry write commit together.
func (s *SubscriptionService) Subscribe(owner, currency string, months int, now int64) (*models.Subscription, error) {
	if months <= 0 {
		return nil, ErrZeroMonths
	}

	totalPrice, ok := utils.CheckedMul(PricePerMonth, uint64(months))
	if !ok {
		return nil, ErrMathOverflow
	}
	duration, ok := utils.CheckedMul(uint64(SecondsPerMonth), uint64(months))
	if !ok || duration > uint64(1)<<62 {
		return nil, ErrMathOverflow
	}

	subID := models.DeriveAddress("sub", owner, currency)

	var sub models.Subscription
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", subID).
			Attrs(models.Subscription{OwnerID: owner, Currency: currency}).
			FirstOrCreate(&sub, models.Subscription{ID: subID}).Error; err != nil {
			return err
		}

		if _, err := s.Ledger.GetOrCreateAccount(tx, models.WalletAddress(owner, currency), owner, currency, false); err != nil {
			return err
		}
		vault, err := s.Ledger.GetOrCreateAccount(tx, models.SubscriptionVaultAddress(currency), models.PlatformOwner, currency, true)
		if err != nil {
			return err
		}
		if err := s.Ledger.Transfer(tx, models.WalletAddress(owner, currency), vault.Address, totalPrice, owner, "subscription:"+subID); err != nil {
			return err
		}

		base := sub.ExpiresAt
		if now > base {
			base = now
		}
		expiry, ok := utils.CheckedAddI64(base, int64(duration))
		if !ok {
			return ErrMathOverflow
		}
		sub.ExpiresAt = expiry
		sub.IsActive = true
		return tx.Save(&sub).Error
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// SweepLapsed flags subscriptions whose paid time has run out. The expiry
// itself is never touched here; the flag is a reporting convenience.
func (s *SubscriptionService) SweepLapsed(now int64) (int64, error) {
	res := s.DB.Model(&models.Subscription{}).
		Where("is_active = ? AND expires_at < ?", true, now).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// --- Handlers ---

func (s *SubscriptionService) SubscribeEndpoint(c *fiber.Ctx) error {
	var req struct {
		Currency string `json:"currency"`
		Months   int    `json:"months"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Currency == "" {
		return c.Status(400).JSON(fiber.Map{"error": "currency is required"})
	}

	sub, err := s.Subscribe(middleware.CallerID(c), req.Currency, req.Months, time.Now().Unix())
	if err != nil {
		return errorResponse(c, err)
	}
	log.Printf("✅ [SUBSCRIPTION] %s renewed %d month(s), expires %d", sub.OwnerID, req.Months, sub.ExpiresAt)
	return c.JSON(fiber.Map{"message": "subscription renewed", "subscription": sub})
}

func (s *SubscriptionService) GetMySubscription(c *fiber.Ctx) error {
	subID := models.DeriveAddress("sub", middleware.CallerID(c), c.Params("currency"))
	var sub models.Subscription
	if err := s.DB.Where("id = ?", subID).First(&sub).Error; err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(sub)
}
