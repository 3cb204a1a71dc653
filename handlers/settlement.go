package handlers

import (
	"wager-settlement-system/middleware"
	"wager-settlement-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupSettlementRoutes wires the four settlement engines. Player-initiated
// transitions sit behind the user-context middleware; resolve, payout and
// void require the admin role forwarded by the Gateway.
func SetupSettlementRoutes(
	app *fiber.App,
	ledger *services.LedgerService,
	escrow *services.EscrowService,
	tournaments *services.TournamentService,
	subscriptions *services.SubscriptionService,
	results *services.ResultService,
) {
	// Public reads
	app.Get("/matches/:id", escrow.GetMatch)
	app.Get("/tournaments/:id", tournaments.GetTournament)
	app.Get("/results/:id", results.GetMatch)

	// Authenticated routes
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Wallets
	secured.Get("/wallets/me/:currency", ledger.GetMyWallet)

	// Wager escrow
	secured.Post("/matches", escrow.CreateMatchEndpoint)
	secured.Post("/matches/:id/join", escrow.JoinMatchEndpoint)

	// Tournament pool
	secured.Post("/tournaments", tournaments.InitTournamentEndpoint)
	secured.Post("/tournaments/:id/join", tournaments.JoinTournamentEndpoint)
	secured.Post("/tournaments/:id/start", tournaments.StartTournamentEndpoint)

	// Subscriptions
	secured.Post("/subscriptions/renew", subscriptions.SubscribeEndpoint)
	secured.Get("/subscriptions/me/:currency", subscriptions.GetMySubscription)

	// Result-claim matches
	secured.Post("/results", results.InitializeMatchEndpoint)
	secured.Post("/results/:id/join", results.JoinMatchEndpoint)
	secured.Post("/results/:id/submit", results.SubmitResultEndpoint)

	// Admin-only settlement authority
	admin := secured.Group("/admin", middleware.RequireRole("admin"))
	admin.Post("/matches/:id/resolve", escrow.ResolveMatchEndpoint)
	admin.Post("/tournaments/:id/payout", tournaments.PayoutWinnerEndpoint)
	admin.Post("/results/:id/void", results.VoidMatchEndpoint)
	admin.Get("/accounts/:address", ledger.GetAccount)
	admin.Get("/accounts/:address/journal", ledger.GetJournal)
}
