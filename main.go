package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LexiconIndonesia/dqaas-registration-service/common/config"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/db"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/logger"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/messaging"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/services"

	"github.com/rs/zerolog/log"

	"github.com/joho/godotenv"

	_ "github.com/LexiconIndonesia/dqaas-registration-service/docs"
)

// @title          DQaaS Registration Service API
// @version        1.0
// @description    Registers data sources with the data quality service and tracks their run window and record counts.

// @contact.name  API Support
// @contact.url   http://www.example.com/support
// @contact.email support@example.com

// @license.name Apache 2.0
// @license.url  http://www.apache.org/licenses/LICENSE-2.0.html

// @host     localhost:8080
// @BasePath /
// @schemes  http https

func main() {
	// INITIATE CONFIGURATION
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("Error loading .env file, using environment variables")
	}

	cfg := config.DefaultConfig()
	cfg.LoadFromEnv()

	logger.InitializeLogging(cfg)

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	if err := run(context.Background(), cfg, shutdown); err != nil {
		log.Fatal().Err(err).Msg("Service stopped with error")
	}
}

// run wires the service and blocks until shutdown receives a signal.
// Every resource it opens is released before it returns.
func run(ctx context.Context, cfg config.Config, shutdown chan os.Signal) error {
	// Create a base context with cancel for graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// INITIATE DATABASES
	dbConn, err := db.SetupDatabase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("setting up database: %w", err)
	}

	// INITIATE NATS CLIENT
	var publisher services.EventPublisher
	if cfg.Nats.Enabled {
		natsClient, err := messaging.SetupNatsBroker(ctx, cfg)
		if err != nil {
			return fmt.Errorf("setting up NATS client: %w", err)
		}
		defer func() {
			if err := natsClient.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to drain NATS connection")
			}
		}()

		publisher = messaging.NewRegistrationPublisher(natsClient, cfg.Nats.SubjectPrefix)
		log.Info().Str("prefix", cfg.Nats.SubjectPrefix).Msg("Registration events enabled")
	} else {
		log.Info().Msg("NATS disabled, registration events will not be published")
	}

	// INITIATE SERVICES
	repo := services.NewDqRegistrationRepository(
		services.InstrumentDynamoDB(dbConn.Client),
		dbConn.Table,
		services.WithScanPageSize(cfg.DynamoDB.ScanPageSize),
	)
	registrationService := services.NewDqRegistrationService(
		repo,
		publisher,
		services.WithConditionalWrites(cfg.DynamoDB.ConditionalWrites),
	)

	// INITIATE SERVER
	server, err := NewAppHttpServer(cfg)
	if err != nil {
		return fmt.Errorf("creating the server: %w", err)
	}

	// Inject dependencies
	server.SetDB(dbConn)
	server.SetRegistrationService(registrationService)

	if err := server.setupRoute(); err != nil {
		return fmt.Errorf("setting up routes: %w", err)
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.start()
	}()

	log.Info().Str("address", cfg.Listen.Addr()).Msg("Server started successfully")
	log.Info().Str("swagger", fmt.Sprintf("http://%s/swagger/index.html", cfg.Listen.Addr())).Msg("Swagger documentation available at")

	// Wait for shutdown signal or a listener failure
	select {
	case <-shutdown:
		log.Info().Msg("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}
	cancel()

	// Create a timeout context for graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Server gracefully stopped")
	return nil
}
