package services

import (
	"fmt"
	"testing"

	"wager-settlement-system/models"

	"github.com/stretchr/testify/require"
)

func newTournamentFixture(t *testing.T) (*TournamentService, *LedgerService) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	return NewTournamentService(db, ledger), ledger
}

func TestTournamentLifecycle(t *testing.T) {
	svc, ledger := newTournamentFixture(t)

	fundWallet(t, ledger, "a", "TC", 100)
	fundWallet(t, ledger, "b", "TC", 100)

	tournament, err := svc.InitTournament("org", "TC", 10, 2)
	require.NoError(t, err)
	require.Equal(t, models.TournamentOpen, tournament.State)
	require.Equal(t, uint64(0), tournament.PrizePool)

	tournament, err = svc.JoinTournament(tournament.ID, "a")
	require.NoError(t, err)
	require.Equal(t, uint64(10), tournament.PrizePool)

	tournament, err = svc.JoinTournament(tournament.ID, "b")
	require.NoError(t, err)
	require.Equal(t, uint64(20), tournament.PrizePool)

	escrowBal, err := ledger.Balance(tournament.EscrowAddress)
	require.NoError(t, err)
	require.Equal(t, uint64(20), escrowBal)

	tournament, err = svc.StartTournament(tournament.ID, "org")
	require.NoError(t, err)
	require.Equal(t, models.TournamentStarted, tournament.State)

	tournament, err = svc.PayoutWinner(tournament.ID, "a")
	require.NoError(t, err)
	require.Equal(t, models.TournamentComplete, tournament.State)
	require.Equal(t, "a", *tournament.WinnerID)

	// a paid 10 in, got the 20 pool back.
	require.Equal(t, uint64(110), walletBalance(t, ledger, "a", "TC"))

	escrowBal, err = ledger.Balance(tournament.EscrowAddress)
	require.NoError(t, err)
	require.Equal(t, uint64(0), escrowBal)
}

func TestTournamentPoolInvariant(t *testing.T) {
	svc, ledger := newTournamentFixture(t)

	tournament, err := svc.InitTournament("org", "TC", 7, 5)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		player := fmt.Sprintf("player-%d", i)
		fundWallet(t, ledger, player, "TC", 7)
		tournament, err = svc.JoinTournament(tournament.ID, player)
		require.NoError(t, err)

		var entries int64
		svc.DB.Model(&models.TournamentEntry{}).
			Where("tournament_id = ?", tournament.ID).Count(&entries)
		require.Equal(t, tournament.EntryFee*uint64(entries), tournament.PrizePool)
	}
}

func TestTournamentFull(t *testing.T) {
	svc, ledger := newTournamentFixture(t)

	fundWallet(t, ledger, "a", "TC", 100)
	fundWallet(t, ledger, "b", "TC", 100)
	fundWallet(t, ledger, "c", "TC", 100)

	tournament, err := svc.InitTournament("org", "TC", 10, 2)
	require.NoError(t, err)
	_, err = svc.JoinTournament(tournament.ID, "a")
	require.NoError(t, err)
	_, err = svc.JoinTournament(tournament.ID, "b")
	require.NoError(t, err)

	_, err = svc.JoinTournament(tournament.ID, "c")
	require.ErrorIs(t, err, ErrTournamentFull)

	// Roster and pool unchanged, no funds taken from c.
	var reloaded models.Tournament
	require.NoError(t, svc.DB.First(&reloaded, "id = ?", tournament.ID).Error)
	require.Equal(t, uint64(20), reloaded.PrizePool)
	var entries int64
	svc.DB.Model(&models.TournamentEntry{}).Where("tournament_id = ?", tournament.ID).Count(&entries)
	require.Equal(t, int64(2), entries)
	require.Equal(t, uint64(100), walletBalance(t, ledger, "c", "TC"))
}

func TestJoinTournamentTwice(t *testing.T) {
	svc, ledger := newTournamentFixture(t)
	fundWallet(t, ledger, "a", "TC", 100)

	tournament, err := svc.InitTournament("org", "TC", 10, 4)
	require.NoError(t, err)
	_, err = svc.JoinTournament(tournament.ID, "a")
	require.NoError(t, err)

	_, err = svc.JoinTournament(tournament.ID, "a")
	require.ErrorIs(t, err, ErrAlreadyEntered)
	require.Equal(t, uint64(90), walletBalance(t, ledger, "a", "TC"))
}

func TestJoinTournamentDepositFailure(t *testing.T) {
	svc, ledger := newTournamentFixture(t)
	fundWallet(t, ledger, "broke", "TC", 3)

	tournament, err := svc.InitTournament("org", "TC", 10, 4)
	require.NoError(t, err)

	_, err = svc.JoinTournament(tournament.ID, "broke")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	var reloaded models.Tournament
	require.NoError(t, svc.DB.First(&reloaded, "id = ?", tournament.ID).Error)
	require.Equal(t, uint64(0), reloaded.PrizePool)
	var entries int64
	svc.DB.Model(&models.TournamentEntry{}).Where("tournament_id = ?", tournament.ID).Count(&entries)
	require.Equal(t, int64(0), entries)
}

func TestStartTournamentRules(t *testing.T) {
	svc, ledger := newTournamentFixture(t)
	fundWallet(t, ledger, "a", "TC", 100)
	fundWallet(t, ledger, "b", "TC", 100)

	tournament, err := svc.InitTournament("org", "TC", 10, 4)
	require.NoError(t, err)

	// Only the organizer may lock the roster.
	_, err = svc.StartTournament(tournament.ID, "a")
	require.ErrorIs(t, err, ErrUnauthorized)

	// Needs at least two entrants.
	_, err = svc.JoinTournament(tournament.ID, "a")
	require.NoError(t, err)
	_, err = svc.StartTournament(tournament.ID, "org")
	require.ErrorIs(t, err, ErrNotEnoughPlayers)

	_, err = svc.JoinTournament(tournament.ID, "b")
	require.NoError(t, err)
	_, err = svc.StartTournament(tournament.ID, "org")
	require.NoError(t, err)

	// No joins once started.
	fundWallet(t, ledger, "late", "TC", 100)
	_, err = svc.JoinTournament(tournament.ID, "late")
	require.ErrorIs(t, err, ErrNotOpen)
}

func TestPayoutWinnerGuards(t *testing.T) {
	svc, ledger := newTournamentFixture(t)
	fundWallet(t, ledger, "a", "TC", 100)
	fundWallet(t, ledger, "b", "TC", 100)

	tournament, err := svc.InitTournament("org", "TC", 10, 2)
	require.NoError(t, err)
	_, err = svc.JoinTournament(tournament.ID, "a")
	require.NoError(t, err)
	_, err = svc.JoinTournament(tournament.ID, "b")
	require.NoError(t, err)

	// Payout gated on started.
	_, err = svc.PayoutWinner(tournament.ID, "a")
	require.ErrorIs(t, err, ErrNotStarted)

	_, err = svc.StartTournament(tournament.ID, "org")
	require.NoError(t, err)

	// Winner must be on the roster.
	_, err = svc.PayoutWinner(tournament.ID, "org")
	require.ErrorIs(t, err, ErrNotAPlayer)

	_, err = svc.PayoutWinner(tournament.ID, "b")
	require.NoError(t, err)

	// Terminal: a second payout moves nothing.
	before := walletBalance(t, ledger, "b", "TC")
	_, err = svc.PayoutWinner(tournament.ID, "b")
	require.ErrorIs(t, err, ErrNotStarted)
	require.Equal(t, before, walletBalance(t, ledger, "b", "TC"))
}

func TestInitTournamentValidation(t *testing.T) {
	svc, _ := newTournamentFixture(t)

	_, err := svc.InitTournament("org", "TC", 0, 4)
	require.ErrorIs(t, err, ErrZeroAmount)

	_, err = svc.InitTournament("org", "TC", 10, 1)
	require.ErrorIs(t, err, ErrBadMaxPlayers)

	_, err = svc.InitTournament("org", "TC", 10, 4)
	require.NoError(t, err)
	_, err = svc.InitTournament("org", "TC", 10, 4)
	require.ErrorIs(t, err, ErrDuplicateTournament)
}
