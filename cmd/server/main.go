package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DillanDevs/linkedin-scraping/internal/api"
	"github.com/DillanDevs/linkedin-scraping/internal/config"
	"github.com/DillanDevs/linkedin-scraping/internal/database"
	"github.com/DillanDevs/linkedin-scraping/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = config.DefaultPath
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot := logging.New("info", false)
		boot.Fatal().Err(err).Msg("❌ Failed to load config")
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Pretty)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("❌ Invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	repo, err := database.Open(startCtx, cfg.DatabaseURL)
	if err == nil {
		err = repo.EnsureSchema(startCtx)
	}
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("❌ Database unreachable")
	}
	defer repo.Close()
	logger.Info().Msg("🗄️ Database ready")

	gin.SetMode(gin.ReleaseMode)
	srv := newServer(cfg.Server.Port, repo, logger)

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("🚀 Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("❌ Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("🛑 Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("⚠️ Graceful shutdown failed")
	}
}

func newServer(port string, store api.Store, logger zerolog.Logger) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           api.NewRouter(store, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
