package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/aswinko/fuel-gate/internal/config"
	"github.com/aswinko/fuel-gate/internal/db"
	fuelhttp "github.com/aswinko/fuel-gate/internal/http"
	"github.com/aswinko/fuel-gate/internal/ocr"
	"github.com/aswinko/fuel-gate/internal/repository"
	"github.com/aswinko/fuel-gate/internal/service"
	"github.com/aswinko/fuel-gate/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := newLogger(cfg.Log)

	if cfg.OCR.APIKey == "" {
		log.Warn().Msg("no OCR API key configured, extraction requests will be rejected by the provider")
	}

	gdb, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	store, err := storage.NewDisk(cfg.Storage.Dir, cfg.Storage.BaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize image storage")
	}

	repo := repository.NewVehicleRepository(gdb)
	recognizer := ocr.NewClient(cfg.OCR.Endpoint, cfg.OCR.APIKey, log)
	verification := service.NewVerificationService(repo, store, recognizer, cfg.Verification.MinYear, log)
	handler := fuelhttp.NewHandler(verification, log)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// stored plate images are served straight off disk
	if strings.HasPrefix(cfg.Storage.BaseURL, "/") {
		router.Static(cfg.Storage.BaseURL, cfg.Storage.Dir)
	}

	handler.Register(router, fuelhttp.JWTAuth(cfg.Auth.JWTSecret))

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	out := io.Writer(os.Stderr)
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
