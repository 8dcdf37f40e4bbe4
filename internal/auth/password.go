package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrNotConfigured      = errors.New("organizer login is not configured")
)

// OrganizerSubject is the token subject issued to the tournament organizer.
const OrganizerSubject = "organizer"

// PasswordAuthenticator checks the organizer password against a bcrypt hash
// taken from configuration.
type PasswordAuthenticator struct {
	hash []byte
}

// NewPasswordAuthenticator creates an authenticator for the given bcrypt
// hash. An empty hash rejects every login.
func NewPasswordAuthenticator(hash string) *PasswordAuthenticator {
	return &PasswordAuthenticator{hash: []byte(hash)}
}

// ValidateCredential checks if the password meets minimum requirements.
func ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// HashPassword returns the bcrypt hash to configure for password.
func HashPassword(password string) (string, error) {
	if err := ValidateCredential(password); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Authenticate verifies the organizer password.
func (a *PasswordAuthenticator) Authenticate(_ context.Context, credential string) (string, error) {
	if len(a.hash) == 0 {
		return "", ErrNotConfigured
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(credential)); err != nil {
		return "", ErrInvalidCredentials
	}
	return OrganizerSubject, nil
}
