package main

import (
	"context"
	"log"
	"os"

	"log/slog"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/herdirudian/thelodgemember-sub002/internal/config"
	apphttp "github.com/herdirudian/thelodgemember-sub002/internal/http"
	"github.com/herdirudian/thelodgemember-sub002/internal/mailer"
	"github.com/herdirudian/thelodgemember-sub002/internal/modules/payments"
	"github.com/herdirudian/thelodgemember-sub002/internal/storage"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := gorm.Open(mysql.Open(cfg.DB.DSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	assets, err := storage.FromEnv(context.Background())
	if err != nil {
		log.Fatalf("failed to init voucher storage: %v", err)
	}
	logger.Info("voucher storage ready", "driver", assets.Driver)

	r := apphttp.NewRouter(apphttp.Deps{
		Logger:  logger,
		DB:      db,
		Cfg:     cfg,
		Gateway: payments.NewXenditGateway(cfg.Gateway),
		Mailer:  mailer.NewSMTPMailer(cfg.SMTP),
		Assets:  assets.Storage,
	})
	if err := r.Run(cfg.App.Addr); err != nil {
		log.Fatal(err)
	}
}
