package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"wager-settlement-system/handlers"
	"wager-settlement-system/middleware"
	"wager-settlement-system/models"
	"wager-settlement-system/services"
	"wager-settlement-system/utils"
	"wager-settlement-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{})

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOriginsList, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-User-ID, X-User-Roles, X-Service-Token",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitArchiveStore(); err != nil {
		log.Fatal("failed to initialize archive store:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.CustodyAccount{},
		&models.LedgerTransfer{},
		&models.DepositEvent{},
		&models.WagerMatch{},
		&models.Tournament{},
		&models.TournamentEntry{},
		&models.Subscription{},
		&models.ResultMatch{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	ledgerService := services.NewLedgerService(db)
	escrowService := services.NewEscrowService(db, ledgerService)
	tournamentService := services.NewTournamentService(db, ledgerService)
	subscriptionService := services.NewSubscriptionService(db, ledgerService)
	resultService := services.NewResultService(db)
	archiveService := services.NewArchiveService(db)

	depositClient := workers.NewDepositSyncClient(db, ledgerService)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go workers.PollDeposits(ctx, depositClient, 10*time.Second)

	services.StartMaintenanceScheduler(subscriptionService, archiveService)

	handlers.SetupSettlementRoutes(app, ledgerService, escrowService, tournamentService, subscriptionService, resultService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Settlement service running on http://localhost:5300")
	log.Println("✅ Deposit polling running (every 10s)")
	log.Println("✅ Maintenance scheduler running (lapse sweep + journal archive)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")

	<-ctx.Done()
	log.Println("Shutting down server...")
}
