package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/terraincognita07/drinktab/internal/security"
	"golang.org/x/crypto/bcrypt"
)

const minAdminPasswordLength = 8

var errAdminPasswordTooShort = fmt.Errorf("password must have at least %d characters", minAdminPasswordLength)

// RunHashPasswordCommand prints a bcrypt hash for ADMIN_PASSWORD_HASH. An
// empty password generates a random one and prints it once.
func RunHashPasswordCommand(password string, out io.Writer) error {
	generated := false
	if password == "" {
		value, err := generateAdminPassword(16)
		if err != nil {
			return fmt.Errorf("generate password: %w", err)
		}
		password = value
		generated = true
	}
	if len(password) < minAdminPasswordLength {
		return errAdminPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return fmt.Errorf("password is too long: %w", err)
		}
		return fmt.Errorf("hash password: %w", err)
	}

	if generated {
		fmt.Fprintf(out, "Generated password: %s\n", password)
	}
	fmt.Fprintf(out, "ADMIN_PASSWORD_HASH=%s\n", hash)
	return nil
}

func generateAdminPassword(length int) (string, error) {
	if length < minAdminPasswordLength {
		length = minAdminPasswordLength
	}
	return security.Password(length)
}
