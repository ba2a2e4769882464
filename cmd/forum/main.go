package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/geo_forum/internal/events"
	"github.com/Skotchmaster/geo_forum/internal/httpserver"
	"github.com/Skotchmaster/geo_forum/internal/middleware"
	"github.com/Skotchmaster/geo_forum/internal/models"
	"github.com/Skotchmaster/geo_forum/internal/repo"
	"github.com/Skotchmaster/geo_forum/internal/search"
	"github.com/Skotchmaster/geo_forum/internal/seed"
	"github.com/Skotchmaster/geo_forum/internal/service"
	"github.com/Skotchmaster/geo_forum/internal/tokens"
	"github.com/Skotchmaster/geo_forum/pkg/config"
	"github.com/Skotchmaster/geo_forum/pkg/db"
	"github.com/Skotchmaster/geo_forum/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if cfg.DBAutoCreate {
		if err := db.EnsureDatabase(initCtx, cfg.DatabaseURL); err != nil {
			cancel()
			log.Fatalf("db create error: %v", err)
		}
	}
	database, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := models.Migrate(database); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	policy := repo.DefaultPasswordPolicy()
	policy.MinLength = cfg.PasswordMinLength
	gormRepo := repo.New(database, policy)

	ts, err := tokens.New(tokens.Config{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	seeder := &seed.Seeder{Repo: gormRepo, Config: seed.Config{
		AdminUsername: cfg.AdminUsername,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	}}
	err = seeder.Seed(logging.IntoContext(seedCtx, logger))
	seedCancel()
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewProducer(cfg.KafkaBrokers)
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	var index search.Index = search.Nop{}
	if cfg.ESURL != "" {
		client, err := search.NewClient(search.Config{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			logger.Error("search_disabled", "reason", "elasticsearch unavailable", "error", err)
		} else {
			index = search.NewESIndex(client, cfg.ESIndex)
		}
	} else {
		logger.Warn("search_disabled", "reason", "ES_URL is empty")
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(middleware.Common(logger, cfg.CORSOrigins)...)

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: &service.AuthService{
			Repo:   gormRepo,
			Tokens: ts,
			Events: publisher,
		}},
		ForumHandler: &httpserver.ForumHTTP{Svc: &service.ForumService{
			Repo:   gormRepo,
			Events: publisher,
			Index:  index,
		}},
		Tokens: ts,
		Ready:  gormRepo.Ping,
	})

	go func() {
		logger.Info("server_started", "addr", cfg.Addr())
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo_shutdown_error", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}
	if err := db.Close(database); err != nil {
		logger.Error("db_close_error", "error", err)
	}
	logger.Info("server_stopped")
}
