package identity

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/pbkdf2"
)

// ErrInvalidCredentials is returned for both unknown usernames and wrong
// passwords, so callers cannot enumerate registered users.
var ErrInvalidCredentials = errors.New("invalid username or password")

const (
	saltLen    = 16
	hashLen    = 32
	iterations = 100_000
)

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Register validates the password policy, derives a salted hash, and
// persists the identity. The plaintext password is never stored.
func (s *Service) Register(ctx context.Context, role Role, username, password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}

	salt, err := newSalt()
	if err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}

	id := &Identity{
		Role:         role,
		Username:     username,
		Salt:         salt,
		PasswordHash: hashPassword(password, salt),
	}

	if err := s.repo.Create(ctx, id); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return err
		}
		return fmt.Errorf("create identity: %w", err)
	}

	s.log.Info("registered identity", "role", role, "username", username)
	return nil
}

// Authenticate recomputes the hash from the supplied password and the stored
// salt. Unknown username and wrong password are indistinguishable to the
// caller; for unknown users a hash is still computed against a throwaway
// salt so the two cases cost the same.
func (s *Service) Authenticate(ctx context.Context, role Role, username, password string) (*Identity, error) {
	id, err := s.repo.Get(ctx, role, username)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			if salt, saltErr := newSalt(); saltErr == nil {
				hashPassword(password, salt)
			}
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load identity: %w", err)
	}

	candidate := hashPassword(password, id.Salt)
	if subtle.ConstantTimeCompare(candidate, id.PasswordHash) != 1 {
		return nil, ErrInvalidCredentials
	}

	return id, nil
}

func newSalt() ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

func hashPassword(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, hashLen, sha256.New)
}
