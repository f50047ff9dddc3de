package main

import (
	"formsentry/cmd/migration/initialize"
	"formsentry/cmd/migration/seed"
	"formsentry/config"
	"formsentry/internal/database"
	"formsentry/internal/logger"
	"os"
)

func main() {
	log := logger.New("migration")

	cfg, err := config.InitConfig()
	if err != nil {
		log.Er("failed to initialize config", err)
		os.Exit(1)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Er("failed to initialize database", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := initialize.InitializeTables(db.SQL, cfg, log); err != nil {
		log.Er("failed to initialize tables", err)
		os.Exit(1)
	}

	if cfg.Environment == "development" {
		if err := seed.Seed(db.SQL, cfg, log); err != nil {
			log.Er("failed to seed development data", err)
			os.Exit(1)
		}
	}

	log.Info("Migration complete")
}
