package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAdminCredentialsMissing = errors.New("admin credentials are required")
	ErrAdminPasswordTooLong    = errors.New("ADMIN_PASSWORD must be at most 72 bytes")
)

// maxAdminPasswordBytes is bcrypt's input limit.
const maxAdminPasswordBytes = 72

// AdminAuthenticator checks the single shared administrator credential.
type AdminAuthenticator struct {
	username     []byte
	passwordHash []byte
}

// NewAdminAuthenticator hashes a plain password, or uses passwordHash when it
// is a bcrypt hash.
func NewAdminAuthenticator(username string, password string, passwordHash string) (*AdminAuthenticator, error) {
	if username == "" {
		return nil, ErrAdminCredentialsMissing
	}

	hash := []byte(strings.TrimSpace(passwordHash))
	if len(hash) == 0 {
		if password == "" {
			return nil, ErrAdminCredentialsMissing
		}
		if len(password) > maxAdminPasswordBytes {
			return nil, ErrAdminPasswordTooLong
		}
		generated, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash ADMIN_PASSWORD: %w", err)
		}
		hash = generated
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("parse ADMIN_PASSWORD_HASH: %w", err)
	}

	return &AdminAuthenticator{
		username:     []byte(username),
		passwordHash: hash,
	}, nil
}

func (authenticator *AdminAuthenticator) Verify(username string, password string) bool {
	usernameMatches := subtle.ConstantTimeCompare([]byte(username), authenticator.username) == 1
	passwordMatches := bcrypt.CompareHashAndPassword(authenticator.passwordHash, []byte(password)) == nil
	return usernameMatches && passwordMatches
}
