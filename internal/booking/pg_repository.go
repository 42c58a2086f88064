package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medbook/vaccine-scheduler/internal/inventory"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) PublishSlot(ctx context.Context, caregiver string, date time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO availabilities (slot_date, caregiver_username)
		VALUES ($1, $2)
	`, date, caregiver)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSlotAlreadyPublished
		}
		return fmt.Errorf("insert availability: %w", err)
	}

	return nil
}

func (r *PgRepository) ListAvailable(ctx context.Context, date time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT caregiver_username FROM availabilities
		WHERE slot_date = $1
		ORDER BY caregiver_username
	`, date)
	if err != nil {
		return nil, fmt.Errorf("select availabilities: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan availability: %w", err)
		}
		result = append(result, name)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Reserve runs the whole booking as one transaction. The slot claim locks
// the chosen row (SKIP LOCKED keeps concurrent claims from queueing on the
// same caregiver) and the dose decrement is a guarded update, so two
// concurrent reservations can never claim the same caregiver or drive the
// dose count negative. A failure at any step rolls everything back.
func (r *PgRepository) Reserve(ctx context.Context, patient string, date time.Time, vaccine string) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin reservation: %w", err)
	}
	defer tx.Rollback(ctx)

	// Fast-fail before touching the board: unknown vaccine and empty stock
	// classify the same way.
	var doses int
	err = tx.QueryRow(ctx, `
		SELECT doses FROM vaccines WHERE name = $1
	`, vaccine).Scan(&doses)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && doses <= 0) {
		return nil, inventory.ErrInsufficientDoses
	}
	if err != nil {
		return nil, fmt.Errorf("check doses: %w", err)
	}

	var caregiver string
	err = tx.QueryRow(ctx, `
		DELETE FROM availabilities
		WHERE slot_date = $1
		  AND caregiver_username = (
			SELECT caregiver_username FROM availabilities
			WHERE slot_date = $1
			ORDER BY caregiver_username
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		  )
		RETURNING caregiver_username
	`, date).Scan(&caregiver)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoCaregiverAvailable
	}
	if err != nil {
		return nil, fmt.Errorf("claim slot: %w", err)
	}

	var appt Appointment
	err = tx.QueryRow(ctx, `
		INSERT INTO appointments (id, slot_date, caregiver_username, patient_username, vaccine_name, created_at)
		VALUES (nextval('appointment_id_seq'), $1, $2, $3, $4, now())
		RETURNING id, slot_date, caregiver_username, patient_username, vaccine_name, created_at
	`, date, caregiver, patient, vaccine).Scan(
		&appt.ID, &appt.Date, &appt.Caregiver, &appt.Patient, &appt.Vaccine, &appt.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE vaccines SET doses = doses - 1
		WHERE name = $1 AND doses >= 1
	`, vaccine)
	if err != nil {
		return nil, fmt.Errorf("consume dose: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// A concurrent reservation took the last dose after our initial
		// check; rolling back restores the claimed slot.
		return nil, inventory.ErrInsufficientDoses
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit reservation: %w", err)
	}

	return &appt, nil
}

func (r *PgRepository) ListByPatient(ctx context.Context, patient string) ([]Appointment, error) {
	return r.list(ctx, `
		SELECT id, slot_date, caregiver_username, patient_username, vaccine_name, created_at
		FROM appointments
		WHERE patient_username = $1
		ORDER BY id
	`, patient)
}

func (r *PgRepository) ListByCaregiver(ctx context.Context, caregiver string) ([]Appointment, error) {
	return r.list(ctx, `
		SELECT id, slot_date, caregiver_username, patient_username, vaccine_name, created_at
		FROM appointments
		WHERE caregiver_username = $1
		ORDER BY id
	`, caregiver)
}

func (r *PgRepository) list(ctx context.Context, query, username string) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("select appointments: %w", err)
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		var a Appointment
		err := rows.Scan(&a.ID, &a.Date, &a.Caregiver, &a.Patient, &a.Vaccine, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
