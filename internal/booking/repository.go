package booking

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSlotAlreadyPublished = errors.New("availability already published for this date")
	ErrNoCaregiverAvailable = errors.New("no caregiver available on this date")
)

// Repository persists availability slots and appointments. Reserve is the
// single transaction boundary across the availability board, the vaccine
// ledger, and the appointment ledger: either every effect commits or none
// does.
type Repository interface {
	// PublishSlot records that caregiver is free on date. Re-publishing the
	// same (date, caregiver) pair returns ErrSlotAlreadyPublished.
	PublishSlot(ctx context.Context, caregiver string, date time.Time) error

	// ListAvailable returns the caregivers free on date, ascending by
	// username. Empty if none.
	ListAvailable(ctx context.Context, date time.Time) ([]string, error)

	// Reserve atomically claims the lexicographically smallest available
	// caregiver for date, allocates the next appointment id, records the
	// appointment, and consumes one dose of vaccine. Returns
	// inventory.ErrInsufficientDoses if the vaccine is unknown or out of
	// stock, ErrNoCaregiverAvailable if no slot exists for date. On any
	// failure no effect remains visible.
	Reserve(ctx context.Context, patient string, date time.Time, vaccine string) (*Appointment, error)

	// ListByPatient returns the patient's appointments ascending by id.
	ListByPatient(ctx context.Context, patient string) ([]Appointment, error)

	// ListByCaregiver returns the caregiver's appointments ascending by id.
	ListByCaregiver(ctx context.Context, caregiver string) ([]Appointment, error)
}
