// main.go
package main

import (
	"log"

	"tour-booking/cmd"
	"tour-booking/internal/data/repository"
	"tour-booking/internal/gateway"
	"tour-booking/internal/wire"
	"tour-booking/pkg/database"
	"tour-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// External collaborators
	catalog := gateway.NewPackageCatalog(repos.Package, logger)
	payments := gateway.NewPaymentClient(config.Payment, logger)

	var notifier gateway.Notifier
	if config.Notification.AMQPURL != "" {
		notifier = gateway.NewAMQPNotifier(config.Notification, logger)
	} else {
		logger.Warn("AMQP_URL not set, confirmations are log-only")
		notifier = gateway.NewLogNotifier(logger)
	}

	// Wire all dependencies
	app := wire.Wiring(repos, catalog, payments, notifier, config, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port, logger)
}
