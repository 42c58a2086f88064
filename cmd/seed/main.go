package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medbook/vaccine-scheduler/internal/booking"
	"github.com/medbook/vaccine-scheduler/internal/db"
	"github.com/medbook/vaccine-scheduler/internal/identity"
	"github.com/medbook/vaccine-scheduler/internal/inventory"
	"github.com/medbook/vaccine-scheduler/internal/logging"
)

// Password assigned to every seeded user; satisfies the strength policy.
const seedPassword = "Seeded1!pw"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, dsn); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	seedCtx := context.Background()
	logger := logging.New("dev")
	identities := identity.NewService(identity.NewPgRepository(pool), logger)

	caregivers, err := seedIdentities(seedCtx, identities, identity.RoleCaregiver, 20)
	if err != nil {
		log.Fatalf("seed caregivers: %v", err)
	}
	if _, err := seedIdentities(seedCtx, identities, identity.RolePatient, 200); err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedVaccines(seedCtx, pool); err != nil {
		log.Fatalf("seed vaccines: %v", err)
	}
	if err := seedAvailabilities(seedCtx, pool, caregivers); err != nil {
		log.Fatalf("seed availabilities: %v", err)
	}

	log.Println("seed complete")
}

func seedIdentities(ctx context.Context, svc *identity.Service, role identity.Role, count int) ([]string, error) {
	log.Printf("seeding %d %ss", count, role)

	usernames := make([]string, 0, count)
	for i := 0; i < count; i++ {
		username := fmt.Sprintf("%s_%s%d", role, gofakeit.Username(), i)
		if err := svc.Register(ctx, role, username, seedPassword); err != nil {
			return nil, fmt.Errorf("register %s: %w", username, err)
		}
		usernames = append(usernames, username)
	}

	return usernames, nil
}

func seedVaccines(ctx context.Context, pool *pgxpool.Pool) error {
	names := []string{"Moderna", "Pfizer", "Janssen", "Novavax", "AstraZeneca"}
	log.Printf("seeding %d vaccines", len(names))

	stock := inventory.NewPgRepository(pool)
	for _, name := range names {
		if err := stock.AddDoses(ctx, name, gofakeit.Number(50, 500)); err != nil {
			return fmt.Errorf("add doses for %s: %w", name, err)
		}
	}

	return nil
}

func seedAvailabilities(ctx context.Context, pool *pgxpool.Pool, caregivers []string) error {
	log.Printf("seeding availabilities for %d caregivers", len(caregivers))

	board := booking.NewPgRepository(pool)
	start := time.Now().Truncate(24 * time.Hour)

	for _, caregiver := range caregivers {
		// each caregiver is free on a handful of days in the next month
		for day := 0; day < 30; day++ {
			if gofakeit.Bool() {
				continue
			}
			date := start.AddDate(0, 0, day)
			if err := board.PublishSlot(ctx, caregiver, date); err != nil {
				return fmt.Errorf("publish slot for %s: %w", caregiver, err)
			}
		}
	}

	return nil
}
