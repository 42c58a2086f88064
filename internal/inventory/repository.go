package inventory

import (
	"context"
	"errors"
)

var (
	ErrUnknownVaccine    = errors.New("unknown vaccine")
	ErrInsufficientDoses = errors.New("not enough doses available")
	ErrInvalidAmount     = errors.New("dose amount must be a non-negative integer")
)

// Repository persists vaccine stock. Decrement must be atomic with respect
// to concurrent decrements and top-ups on the same name: the count can never
// go negative and no update may be lost.
type Repository interface {
	// GetDoses returns the dose count for name, or ErrUnknownVaccine.
	GetDoses(ctx context.Context, name string) (int, error)

	// ListInStock returns all vaccines with doses > 0, ascending by name.
	ListInStock(ctx context.Context) ([]Vaccine, error)

	// AddDoses creates the vaccine with delta doses if unknown, otherwise
	// adds delta to the existing count. delta has already been validated.
	AddDoses(ctx context.Context, name string, delta int) error

	// Decrement subtracts amount as a single guarded update. Returns
	// ErrUnknownVaccine or ErrInsufficientDoses, leaving the count unchanged.
	Decrement(ctx context.Context, name string, amount int) error
}
