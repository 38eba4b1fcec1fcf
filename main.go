package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"venuebook/config"
	"venuebook/cron"
	"venuebook/database"
	ledgerRepoPkg "venuebook/database/repository/ledger"
	venueRepoPkg "venuebook/database/repository/venue"
	"venuebook/handlers"
	"venuebook/middleware"
	"venuebook/routes"
	"venuebook/services/auth"
	"venuebook/services/availability"
	"venuebook/services/flow"
	"venuebook/services/ledger"
	"venuebook/services/payment"
	"venuebook/services/quote"
	"venuebook/services/venue"
	"venuebook/tasks"
	"venuebook/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitAuthCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	venueRepo := venueRepoPkg.NewMongoVenueRepo()
	ledgerRepo := ledgerRepoPkg.NewMongoLedgerRepo()

	// services.
	catalogService := &venue.DefaultCatalogService{Repo: venueRepo}
	quoteService := quote.NewQuoteService(venueRepo, utils.GetCacheClient(), logger)
	availabilityService := &availability.DefaultAvailabilityService{
		Venues: venueRepo,
		Ledger: ledgerRepo,
	}
	ledgerService := ledger.NewLedgerService(ledgerRepo, logger)
	stripeGateway := payment.NewStripeGateway(logger)
	authProvider := auth.NewAuthProvider(utils.GetAuthCacheClient(), logger)
	reminderScheduler := tasks.NewReminderScheduler()

	flowService := flow.NewFlowService(
		flow.Collaborators{
			Venues:       catalogService,
			Quotes:       quoteService,
			Availability: availabilityService,
			Gateway:      stripeGateway,
			Auth:         authProvider,
			Ledger:       ledgerService,
			Search:       catalogService,
			Reminders:    reminderScheduler,
		},
		flow.Options{
			QuoteInterval:   time.Duration(config.AppConfig.QuoteRefreshSeconds) * time.Second,
			PaymentDeadline: time.Duration(config.AppConfig.PaymentDeadlineSeconds) * time.Second,
			FlowTTL:         time.Duration(config.AppConfig.FlowTTLMinutes) * time.Minute,
		},
		logger,
	)

	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go flowService.StartSweeper(sweeperCtx)

	cron.InitReminderWorker(logger)

	flowHandler := handlers.NewFlowHandler(flowService, logger)
	routes.RegisterRoutes(router, flowHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
