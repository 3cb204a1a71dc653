package services

import (
	"fmt"
	"testing"

	"wager-settlement-system/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.CustodyAccount{},
		&models.LedgerTransfer{},
		&models.DepositEvent{},
		&models.WagerMatch{},
		&models.Tournament{},
		&models.TournamentEntry{},
		&models.Subscription{},
		&models.ResultMatch{},
	))
	return db
}

// fundWallet credits a user's wallet as if the deposit sync worker had booked
// a confirmed deposit.
func fundWallet(t *testing.T, ledger *LedgerService, owner, currency string, amount uint64) {
	t.Helper()
	err := ledger.DB.Transaction(func(tx *gorm.DB) error {
		addr := models.WalletAddress(owner, currency)
		if _, err := ledger.GetOrCreateAccount(tx, addr, owner, currency, false); err != nil {
			return err
		}
		return ledger.Credit(tx, addr, amount, "test-funding")
	})
	require.NoError(t, err)
}

// walletBalance reads a user's wallet balance, zero if the wallet was never
// created.
func walletBalance(t *testing.T, ledger *LedgerService, owner, currency string) uint64 {
	t.Helper()
	bal, err := ledger.Balance(models.WalletAddress(owner, currency))
	if err == ErrAccountNotFound {
		return 0
	}
	require.NoError(t, err)
	return bal
}
