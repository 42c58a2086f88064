package identity

import "time"

type Role string

const (
	RolePatient   Role = "patient"
	RoleCaregiver Role = "caregiver"
)

// Identity is a registered user. Rows are append-only: an identity is never
// mutated or deleted after registration.
type Identity struct {
	Role         Role
	Username     string
	Salt         []byte
	PasswordHash []byte
	CreatedAt    time.Time
}
