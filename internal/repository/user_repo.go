// Package repository provides the data access layer for the Rengiat backend.
// This file handles user account persistence.
package repository

import (
	"context"

	"github.com/RikiSanjayaa/rengiat/internal/database"
	"github.com/RikiSanjayaa/rengiat/internal/models"
)

const userColumns = `
	id, name, username, email, role, subdit_id, unit_id, password_hash,
	created_at, updated_at
`

// UserRepository handles user account database operations.
//
// Security Note: password hashes flow through this repository but must
// never be included in API responses; handlers map users onto DTOs.
type UserRepository struct{}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// FindByUsername retrieves a user by login username.
// Returns pgx.ErrNoRows when the username is unknown.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanUser(ctx, query, username)
}

// GetByID retrieves one user by primary key.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

// List retrieves all users ordered by display name.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY name`

	rows, err := database.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Username, &u.Email, &u.Role,
			&u.SubditID, &u.UnitID, &u.PasswordHash,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// Create inserts a new user account.
// Side Effects: populates user.ID and user.CreatedAt.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, username, email, role, subdit_id, unit_id, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	return database.DB.QueryRow(ctx, query,
		user.Name, user.Username, user.Email, user.Role,
		user.SubditID, user.UnitID, user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)
}

// Update overwrites a user's editable fields, including the password
// hash (the service keeps the old hash when no new password was given).
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $1, username = $2, email = $3, role = $4,
		    subdit_id = $5, unit_id = $6, password_hash = $7, updated_at = NOW()
		WHERE id = $8
	`

	_, err := database.DB.Exec(ctx, query,
		user.Name, user.Username, user.Email, user.Role,
		user.SubditID, user.UnitID, user.PasswordHash, user.ID,
	)
	return err
}

// Delete removes a user account. Entries they created reference them
// with RESTRICT, so deleting an author of recorded activity fails with
// an FK violation surfaced by the service layer.
func (r *UserRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM users WHERE id = $1`
	_, err := database.DB.Exec(ctx, query, id)
	return err
}

// CountByRoleExcept counts users holding a role, excluding one user ID.
// Used by the last-super-admin guard: demoting or deleting the final
// super admin must be rejected.
func (r *UserRepository) CountByRoleExcept(ctx context.Context, role string, excludeID int) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE role = $1 AND id <> $2`

	var count int
	if err := database.DB.QueryRow(ctx, query, role, excludeID).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *UserRepository) scanUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var u models.User
	err := database.DB.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Username, &u.Email, &u.Role,
		&u.SubditID, &u.UnitID, &u.PasswordHash,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &u, nil
}
