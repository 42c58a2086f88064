package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, id *Identity) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO identities (role, username, salt, password_hash, created_at)
		VALUES ($1, $2, $3, $4, now())
	`, id.Role, id.Username, id.Salt, id.PasswordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrUsernameTaken
		}
		return fmt.Errorf("insert identity: %w", err)
	}

	return nil
}

func (r *PgRepository) Get(ctx context.Context, role Role, username string) (*Identity, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT role, username, salt, password_hash, created_at
		FROM identities
		WHERE role = $1 AND username = $2
	`, role, username)

	var id Identity
	err := row.Scan(&id.Role, &id.Username, &id.Salt, &id.PasswordHash, &id.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, fmt.Errorf("select identity: %w", err)
	}

	return &id, nil
}
