package identity

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var ErrWeakPassword = errors.New("password does not meet the strength policy")

const specialChars = "!@#?"

// ValidatePassword enforces the registration password policy: at least 8
// characters, one lowercase letter, one uppercase letter, one digit, and one
// character from the special set "!@#?".
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: must be at least 8 characters", ErrWeakPassword)
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, c := range password {
		switch {
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsDigit(c):
			hasDigit = true
		case strings.ContainsRune(specialChars, c):
			hasSpecial = true
		}
	}

	switch {
	case !hasLower:
		return fmt.Errorf("%w: must contain a lowercase letter", ErrWeakPassword)
	case !hasUpper:
		return fmt.Errorf("%w: must contain an uppercase letter", ErrWeakPassword)
	case !hasDigit:
		return fmt.Errorf("%w: must contain a digit", ErrWeakPassword)
	case !hasSpecial:
		return fmt.Errorf("%w: must contain one of %q", ErrWeakPassword, specialChars)
	}

	return nil
}
