// services/ledger_service.go
package services

import (
	"fmt"
	"log"

	"wager-settlement-system/middleware"
	"wager-settlement-system/models"
	"wager-settlement-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerService is the value-transfer primitive every settlement engine sits
// on: it moves an exact quantity of a currency's smallest unit between
// custody accounts, atomically, or fails with no effect. All moves happen
// inside the caller's transaction so a failed transfer rolls back any state
// mutation committed alongside it, and vice versa.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// OpenAccount creates a custody account at a derived address. Creating an
// address twice is an error — escrow accounts are created exactly once,
// alongside their owning record.
func (s *LedgerService) OpenAccount(tx *gorm.DB, address, ownerID, currency string, treasury bool) (*models.CustodyAccount, error) {
	acct := models.CustodyAccount{
		Address:    address,
		OwnerID:    ownerID,
		Currency:   currency,
		Balance:    0,
		IsTreasury: treasury,
		IsActive:   true,
	}
	if err := tx.Create(&acct).Error; err != nil {
		return nil, fmt.Errorf("failed to open account %s: %w", address, err)
	}
	return &acct, nil
}

// GetOrCreateAccount fetches the account at a derived address, creating it
// empty if absent. Used for wallet and treasury accounts, whose addresses are
// deterministic per (owner, currency).
func (s *LedgerService) GetOrCreateAccount(tx *gorm.DB, address, ownerID, currency string, treasury bool) (*models.CustodyAccount, error) {
	var acct models.CustodyAccount
	err := tx.Where("address = ?", address).
		Attrs(models.CustodyAccount{
			OwnerID:    ownerID,
			Currency:   currency,
			IsTreasury: treasury,
			IsActive:   true,
		}).
		FirstOrCreate(&acct, models.CustodyAccount{Address: address}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get-or-create account %s: %w", address, err)
	}
	return &acct, nil
}

// Transfer moves amount from one custody account to another. authorizedBy
// must be the owner of the source account — for escrow accounts that owner is
// the match/tournament record itself, so only the record's own resolution
// path can release its funds. Balance updates are guarded by compare-and-set
// writes; a concurrent change makes the whole enclosing transaction fail and
// the caller may resubmit.
func (s *LedgerService) Transfer(tx *gorm.DB, from, to string, amount uint64, authorizedBy, reference string) error {
	if amount == 0 {
		return ErrZeroAmount
	}

	var src, dst models.CustodyAccount
	if err := tx.Where("address = ?", from).First(&src).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to load source account: %w", err)
	}
	if err := tx.Where("address = ?", to).First(&dst).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to load destination account: %w", err)
	}

	if !src.IsActive || !dst.IsActive {
		return ErrAccountInactive
	}
	if src.OwnerID != authorizedBy {
		return ErrNotAccountOwner
	}
	if src.Currency != dst.Currency {
		return fmt.Errorf("currency mismatch: %s -> %s", src.Currency, dst.Currency)
	}

	newSrc, ok := utils.CheckedSub(src.Balance, amount)
	if !ok {
		return ErrInsufficientFunds
	}
	newDst, ok := utils.CheckedAdd(dst.Balance, amount)
	if !ok {
		return ErrMathOverflow
	}

	// Compare-and-set on the previously read balance so a concurrent write
	// aborts the transition instead of losing an update.
	res := tx.Model(&models.CustodyAccount{}).
		Where("address = ? AND balance = ?", src.Address, src.Balance).
		Update("balance", newSrc)
	if res.Error != nil {
		return fmt.Errorf("failed to debit %s: %w", src.Address, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("concurrent balance change on %s", src.Address)
	}

	res = tx.Model(&models.CustodyAccount{}).
		Where("address = ? AND balance = ?", dst.Address, dst.Balance).
		Update("balance", newDst)
	if res.Error != nil {
		return fmt.Errorf("failed to credit %s: %w", dst.Address, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("concurrent balance change on %s", dst.Address)
	}

	journal := models.LedgerTransfer{
		ID:           uuid.NewString(),
		FromAddress:  src.Address,
		ToAddress:    dst.Address,
		Currency:     src.Currency,
		Amount:       amount,
		AuthorizedBy: authorizedBy,
		Reference:    reference,
	}
	if err := tx.Create(&journal).Error; err != nil {
		return fmt.Errorf("failed to journal transfer: %w", err)
	}
	return nil
}

// Credit books a confirmed external deposit into a custody account. Only the
// deposit sync path uses this; the journal row records the external origin.
func (s *LedgerService) Credit(tx *gorm.DB, address string, amount uint64, reference string) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	var acct models.CustodyAccount
	if err := tx.Where("address = ?", address).First(&acct).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to load account: %w", err)
	}
	newBalance, ok := utils.CheckedAdd(acct.Balance, amount)
	if !ok {
		return ErrMathOverflow
	}
	res := tx.Model(&models.CustodyAccount{}).
		Where("address = ? AND balance = ?", acct.Address, acct.Balance).
		Update("balance", newBalance)
	if res.Error != nil {
		return fmt.Errorf("failed to credit %s: %w", acct.Address, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("concurrent balance change on %s", acct.Address)
	}

	journal := models.LedgerTransfer{
		ID:           uuid.NewString(),
		FromAddress:  models.ExternalSource,
		ToAddress:    acct.Address,
		Currency:     acct.Currency,
		Amount:       amount,
		AuthorizedBy: models.ExternalSource,
		Reference:    reference,
	}
	if err := tx.Create(&journal).Error; err != nil {
		return fmt.Errorf("failed to journal deposit credit: %w", err)
	}
	return nil
}

// Balance reads the current balance at an address.
func (s *LedgerService) Balance(address string) (uint64, error) {
	var acct models.CustodyAccount
	if err := s.DB.Where("address = ?", address).First(&acct).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}
	return acct.Balance, nil
}

// --- Handlers ---

// GetMyWallet returns the caller's wallet account for a currency, creating it
// empty on first sight so the response shape is stable.
func (s *LedgerService) GetMyWallet(c *fiber.Ctx) error {
	userID := middleware.CallerID(c)
	currency := c.Params("currency")
	if currency == "" {
		return c.Status(400).JSON(fiber.Map{"error": "currency required in URL"})
	}

	var acct *models.CustodyAccount
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		acct, err = s.GetOrCreateAccount(tx, models.WalletAddress(userID, currency), userID, currency, false)
		return err
	})
	if err != nil {
		log.Printf("❌ [LEDGER] wallet lookup failed for %s/%s: %v", userID, currency, err)
		return errorResponse(c, err)
	}
	return c.JSON(acct)
}

// GetAccount returns any custody account by address (admin audit view).
func (s *LedgerService) GetAccount(c *fiber.Ctx) error {
	var acct models.CustodyAccount
	if err := s.DB.Where("address = ?", c.Params("address")).First(&acct).Error; err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(acct)
}

// GetJournal lists journal rows touching an address, newest first.
func (s *LedgerService) GetJournal(c *fiber.Ctx) error {
	address := c.Params("address")
	var rows []models.LedgerTransfer
	if err := s.DB.
		Where("from_address = ? OR to_address = ?", address, address).
		Order("created_at DESC").Limit(200).
		Find(&rows).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to load journal", "details": err.Error()})
	}
	return c.JSON(fiber.Map{"address": address, "transfers": rows})
}
