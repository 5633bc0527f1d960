package main

import (
	"github.com/dietracker/matchserver/config"
	"github.com/dietracker/matchserver/logger"
	"github.com/dietracker/matchserver/monitor"
	"github.com/dietracker/matchserver/persistence"
	"github.com/dietracker/matchserver/server"
)

func main() {
	// Initialize logger
	logger.Init()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database
	var db persistence.Database
	switch cfg.Database.Driver {
	case "sql":
		db, err = persistence.NewPostgreSQL(
			cfg.Database.Postgres.Host,
			cfg.Database.Postgres.Port,
			cfg.Database.Postgres.User,
			cfg.Database.Postgres.Password,
			cfg.Database.Postgres.DBName,
		)
	default:
		db, err = persistence.NewGormPostgreSQL(
			cfg.Database.Postgres.Host,
			cfg.Database.Postgres.Port,
			cfg.Database.Postgres.User,
			cfg.Database.Postgres.Password,
			cfg.Database.Postgres.DBName,
		)
	}
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Log.Info("Database connection successful.")

	// Initialize Match Server
	matchServer := server.NewMatchServer(cfg.Server.HTTPAddress, cfg.Server.RPCAddress, db, cfg.Match)

	// Metrics endpoint
	mon := monitor.NewMonitor("matchserver")
	mon.StartServer(cfg.Server.MetricsAddress)
	matchServer.SetMonitor(mon)

	// Start Server
	logger.Log.Infof("Starting match server on %s", cfg.Server.HTTPAddress)
	if err := matchServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
