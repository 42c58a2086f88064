package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medbook/vaccine-scheduler/internal/booking"
	"github.com/medbook/vaccine-scheduler/internal/cli"
	"github.com/medbook/vaccine-scheduler/internal/config"
	"github.com/medbook/vaccine-scheduler/internal/db"
	"github.com/medbook/vaccine-scheduler/internal/identity"
	"github.com/medbook/vaccine-scheduler/internal/inventory"
	"github.com/medbook/vaccine-scheduler/internal/memstore"
)

func main() {
	memory := flag.Bool("memory", false, "run against an in-memory store instead of Postgres")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Logs go to stderr so they do not interleave with command output.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var (
		identityRepo  identity.Repository
		inventoryRepo inventory.Repository
		bookingRepo   booking.Repository
	)

	if *memory {
		store := memstore.New()
		identityRepo, inventoryRepo, bookingRepo = store, store, store
	} else {
		cfg, err := config.Load()
		if err != nil {
			log.Error("config load error", "err", err)
			os.Exit(1)
		}

		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancelPg()
		if err != nil {
			log.Error("postgres connection error", "err", err)
			os.Exit(1)
		}
		defer pgPool.Close()

		migCtx, cancelMig := context.WithTimeout(rootCtx, 30*time.Second)
		err = db.RunMigrations(migCtx, cfg.PostgresDSN)
		cancelMig()
		if err != nil {
			log.Error("migration error", "err", err)
			os.Exit(1)
		}

		identityRepo = identity.NewPgRepository(pgPool)
		inventoryRepo = inventory.NewPgRepository(pgPool)
		bookingRepo = booking.NewPgRepository(pgPool)
	}

	runner := cli.New(
		identity.NewService(identityRepo, log),
		inventory.NewService(inventoryRepo, log),
		booking.NewService(bookingRepo, log),
		os.Stdin,
		os.Stdout,
	)

	if err := runner.Run(rootCtx); err != nil {
		log.Error("cli error", "err", err)
		os.Exit(1)
	}
}
