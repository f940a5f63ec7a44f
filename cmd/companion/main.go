// Package main Companion Chat API
//
// @title           Companion Chat API
// @version         1.0
// @description     Локальный бэкенд приложения-компаньона: гейты доступа и подписки, чат, голос и мини-игра

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/magabrotheeeer/companion-chat/docs"
	"github.com/magabrotheeeer/companion-chat/internal/app/companion"
	"github.com/magabrotheeeer/companion-chat/internal/config"
	"github.com/magabrotheeeer/companion-chat/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.SetupLogger(cfg.Env)

	logger.Info("starting companion", slog.String("env", cfg.Env), slog.String("storage", cfg.StorageDriver))
	logger.Debug("config loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := companion.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("companion stopped gracefully")
}
