package identity

import (
	"context"
	"errors"
)

var (
	ErrUsernameTaken    = errors.New("username already taken")
	ErrIdentityNotFound = errors.New("identity not found")
)

// Repository persists identities. Usernames are unique per role,
// case-sensitive.
type Repository interface {
	// Create stores a new identity. Returns ErrUsernameTaken if the
	// (role, username) pair already exists.
	Create(ctx context.Context, id *Identity) error

	// Get returns the identity for (role, username), or ErrIdentityNotFound.
	Get(ctx context.Context, role Role, username string) (*Identity, error)
}
