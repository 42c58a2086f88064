package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medbook/vaccine-scheduler/internal/api"
	"github.com/medbook/vaccine-scheduler/internal/booking"
	"github.com/medbook/vaccine-scheduler/internal/config"
	"github.com/medbook/vaccine-scheduler/internal/db"
	"github.com/medbook/vaccine-scheduler/internal/identity"
	"github.com/medbook/vaccine-scheduler/internal/inventory"
	"github.com/medbook/vaccine-scheduler/internal/logging"
	redisclient "github.com/medbook/vaccine-scheduler/internal/redis"
	"github.com/medbook/vaccine-scheduler/internal/session"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config load error: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logging.New(cfg.Env)
	log.Info("api-server starting up", "env", cfg.Env, "http_port", cfg.HTTPPort)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Error("postgres connection error", "err", err)
		os.Exit(1)
	}
	defer pgPool.Close()
	log.Info("connected to Postgres")

	migCtx, cancelMig := context.WithTimeout(rootCtx, 30*time.Second)
	err = db.RunMigrations(migCtx, cfg.PostgresDSN)
	cancelMig()
	if err != nil {
		log.Error("migration error", "err", err)
		os.Exit(1)
	}

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Error("redis connection error", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error("error closing redis", "err", err)
		}
	}()
	log.Info("connected to Redis")

	router := api.NewRouter(api.RouterConfig{
		Identities: identity.NewService(identity.NewPgRepository(pgPool), log),
		Inventory:  inventory.NewService(inventory.NewPgRepository(pgPool), log),
		Bookings:   booking.NewService(booking.NewPgRepository(pgPool), log),
		Sessions:   session.NewRedisStore(rdb, cfg.SessionTTL),
		PgPool:     pgPool,
		Redis:      rdb,
		Env:        cfg.Env,
		Version:    version,
		Log:        log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-rootCtx.Done():
		log.Info("shutting down api-server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", "err", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}
