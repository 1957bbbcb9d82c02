package main

import (
	"go.uber.org/zap"

	"backend/config"
	"backend/logger"
	"backend/routes"
)

func main() {
	cfg := config.Load()

	logger.Init()
	defer logger.Close()

	if cfg.FDCAPIKey == "" {
		logger.Warn("No FDC_API_KEY set; nutrition lookups will fail until it is configured")
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}

	r := routes.SetupRouter(cfg, db)

	logger.Info("API ready", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
