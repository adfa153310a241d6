package main

import (
	"github.com/leafcart/internal/app"
	"github.com/leafcart/internal/config"
	"github.com/leafcart/internal/logger"
	"github.com/leafcart/internal/models"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	db, err := app.OpenDatabase(cfg)
	if err != nil {
		stdLog.Fatalf("Failed to open database: %v", err)
	}

	if err := models.SeedDemoData(db, models.DemoCatalog, models.DemoPromoCodes); err != nil {
		stdLog.Fatalf("Failed to seed demo data: %v", err)
	}
	stdLog.Printf("Demo catalog seeded: %d products, %d promo codes", len(models.DemoCatalog), len(models.DemoPromoCodes))
}
