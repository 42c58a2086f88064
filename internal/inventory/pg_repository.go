package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) GetDoses(ctx context.Context, name string) (int, error) {
	var doses int
	err := r.pool.QueryRow(ctx, `
		SELECT doses FROM vaccines WHERE name = $1
	`, name).Scan(&doses)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUnknownVaccine
		}
		return 0, fmt.Errorf("select doses: %w", err)
	}

	return doses, nil
}

func (r *PgRepository) ListInStock(ctx context.Context) ([]Vaccine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT name, doses FROM vaccines WHERE doses > 0 ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("select vaccines: %w", err)
	}
	defer rows.Close()

	var result []Vaccine
	for rows.Next() {
		var v Vaccine
		if err := rows.Scan(&v.Name, &v.Doses); err != nil {
			return nil, fmt.Errorf("scan vaccine: %w", err)
		}
		result = append(result, v)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) AddDoses(ctx context.Context, name string, delta int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO vaccines (name, doses)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET doses = vaccines.doses + EXCLUDED.doses
	`, name, delta)
	if err != nil {
		return fmt.Errorf("upsert vaccine: %w", err)
	}

	return nil
}

// Decrement is a single conditional statement, so a concurrent writer on the
// same name can never be lost and the count can never go negative.
func (r *PgRepository) Decrement(ctx context.Context, name string, amount int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE vaccines SET doses = doses - $2
		WHERE name = $1 AND doses >= $2
	`, name, amount)
	if err != nil {
		return fmt.Errorf("decrement doses: %w", err)
	}

	if tag.RowsAffected() == 0 {
		if _, err := r.GetDoses(ctx, name); errors.Is(err, ErrUnknownVaccine) {
			return ErrUnknownVaccine
		}
		return ErrInsufficientDoses
	}

	return nil
}
