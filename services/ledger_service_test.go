package services

import (
	"testing"

	"wager-settlement-system/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTransferMovesExactAmount(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)

	fundWallet(t, ledger, "alice", "TC", 1_000)
	fundWallet(t, ledger, "bob", "TC", 50)

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Transfer(tx, models.WalletAddress("alice", "TC"), models.WalletAddress("bob", "TC"), 300, "alice", "test")
	})
	require.NoError(t, err)

	require.Equal(t, uint64(700), walletBalance(t, ledger, "alice", "TC"))
	require.Equal(t, uint64(350), walletBalance(t, ledger, "bob", "TC"))

	var journal models.LedgerTransfer
	require.NoError(t, db.Where("reference = ?", "test").First(&journal).Error)
	require.Equal(t, uint64(300), journal.Amount)
	require.Equal(t, "alice", journal.AuthorizedBy)
}

func TestTransferConservesTotalValue(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)

	fundWallet(t, ledger, "alice", "TC", 800)
	fundWallet(t, ledger, "bob", "TC", 200)

	for _, amount := range []uint64{1, 17, 250} {
		err := db.Transaction(func(tx *gorm.DB) error {
			return ledger.Transfer(tx, models.WalletAddress("alice", "TC"), models.WalletAddress("bob", "TC"), amount, "alice", "test")
		})
		require.NoError(t, err)

		total := walletBalance(t, ledger, "alice", "TC") + walletBalance(t, ledger, "bob", "TC")
		require.Equal(t, uint64(1_000), total)
	}
}

func TestTransferInsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)

	fundWallet(t, ledger, "alice", "TC", 100)
	fundWallet(t, ledger, "bob", "TC", 0)

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Transfer(tx, models.WalletAddress("alice", "TC"), models.WalletAddress("bob", "TC"), 101, "alice", "test")
	})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// No effect on either side.
	require.Equal(t, uint64(100), walletBalance(t, ledger, "alice", "TC"))
	require.Equal(t, uint64(0), walletBalance(t, ledger, "bob", "TC"))
}

func TestTransferRequiresSourceOwner(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)

	fundWallet(t, ledger, "alice", "TC", 100)
	fundWallet(t, ledger, "mallory", "TC", 0)

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Transfer(tx, models.WalletAddress("alice", "TC"), models.WalletAddress("mallory", "TC"), 100, "mallory", "theft")
	})
	require.ErrorIs(t, err, ErrNotAccountOwner)
	require.Equal(t, uint64(100), walletBalance(t, ledger, "alice", "TC"))
}

func TestTransferUnknownAccount(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)

	fundWallet(t, ledger, "alice", "TC", 100)

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Transfer(tx, models.WalletAddress("alice", "TC"), "no-such-address", 10, "alice", "test")
	})
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestTransferZeroAmount(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)

	fundWallet(t, ledger, "alice", "TC", 100)
	fundWallet(t, ledger, "bob", "TC", 0)

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Transfer(tx, models.WalletAddress("alice", "TC"), models.WalletAddress("bob", "TC"), 0, "alice", "test")
	})
	require.ErrorIs(t, err, ErrZeroAmount)
}

func TestOpenAccountTwiceFails(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)

	addr := models.DeriveAddress("escrow", "some-record")
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := ledger.OpenAccount(tx, addr, "some-record", "TC", false)
		return err
	})
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := ledger.OpenAccount(tx, addr, "some-record", "TC", false)
		return err
	})
	require.Error(t, err)
}

func TestDeriveAddressDeterministic(t *testing.T) {
	a := models.DeriveAddress("match", "alice", "TC")
	b := models.DeriveAddress("match", "alice", "TC")
	require.Equal(t, a, b)
	require.NotEqual(t, a, models.DeriveAddress("match", "alice", "USDC"))
	require.NotEqual(t, a, models.DeriveAddress("match", "bob", "TC"))
	// Seed boundaries matter: ("ab","c") != ("a","bc").
	require.NotEqual(t, models.DeriveAddress("ab", "c"), models.DeriveAddress("a", "bc"))
}
