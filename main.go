// @title HealMyMind API
// @version 1.0
// @description Mental health screening backend: PHQ-9, GAD-7 and PCL-5 scoring.

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"

	"healmymind_backend/internal/app"
	"healmymind_backend/internal/config"
	"healmymind_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "migrate and seed the database, then exit")
	migrate := flag.Bool("migrate", false, "force database migration on start, even in release mode")
	seed := flag.Bool("seed", false, "insert the built-in instruments that are missing")
	configDir := flag.String("config", "configs", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly
	cfg.Seed = *seed

	application, err := app.NewApp(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to start application", zap.Error(err))
	}
	application.ConfigPath = filepath.Join(*configDir, "config.yaml")

	if *migrateOnly {
		logger.Log.Info("Database migration completed, exiting")
		application.Close(context.Background())
		return
	}

	application.Run()
}
