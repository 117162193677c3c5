// Package services provides the business logic layer for the Rengiat backend.
// This file implements authentication: credential verification and password
// hashing using bcrypt.
package services

import (
	"context"
	"errors"

	"github.com/RikiSanjayaa/rengiat/internal/models"
	"github.com/RikiSanjayaa/rengiat/internal/repository"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles authentication and password management operations.
//
// Security Notes:
//   - bcrypt.CompareHashAndPassword is constant-time, preventing timing attacks
//   - Unknown username and wrong password return the same error, so login
//     responses never reveal which usernames exist
//   - Plaintext passwords are never stored or logged
type AuthService struct {
	userRepo   *repository.UserRepository
	bcryptCost int
}

// NewAuthService creates a new AuthService with the given bcrypt cost
// factor (12 in the default configuration).
func NewAuthService(bcryptCost int) *AuthService {
	return &AuthService{
		userRepo:   repository.NewUserRepository(),
		bcryptCost: bcryptCost,
	}
}

// Authenticate verifies user credentials and returns the user record on
// success. Both an unknown username and a password mismatch yield
// ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// HashPassword generates a bcrypt hash of the provided plaintext password.
// Used when creating users or changing passwords.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	return string(hash), err
}
