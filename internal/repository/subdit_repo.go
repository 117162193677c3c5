// Package repository provides the data access layer for the Rengiat backend.
// Repositories issue raw SQL against the shared database pool and map rows
// onto the model structs.
package repository

import (
	"context"

	"github.com/RikiSanjayaa/rengiat/internal/database"
	"github.com/RikiSanjayaa/rengiat/internal/models"
)

// SubditRepository handles subdit (sub-directorate) database operations.
type SubditRepository struct{}

// NewSubditRepository creates a new SubditRepository instance.
func NewSubditRepository() *SubditRepository {
	return &SubditRepository{}
}

// ListOrdered retrieves subdits in display order (order_index, then name).
// A non-nil filterID restricts the result to that single subdit; an
// unknown ID yields an empty slice, not an error.
//
// This ordering is shared by admin listings and report rows, so it must
// stay consistent with the report builder's expectations.
func (r *SubditRepository) ListOrdered(ctx context.Context, filterID *int) ([]models.Subdit, error) {
	query := `
		SELECT id, name, order_index, created_at
		FROM subdits
		WHERE $1::int IS NULL OR id = $1
		ORDER BY order_index, name
	`

	rows, err := database.DB.Query(ctx, query, filterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subdits []models.Subdit
	for rows.Next() {
		var s models.Subdit
		if err := rows.Scan(&s.ID, &s.Name, &s.OrderIndex, &s.CreatedAt); err != nil {
			return nil, err
		}
		subdits = append(subdits, s)
	}

	return subdits, rows.Err()
}

// GetByID retrieves one subdit by primary key.
func (r *SubditRepository) GetByID(ctx context.Context, id int) (*models.Subdit, error) {
	query := `
		SELECT id, name, order_index, created_at
		FROM subdits
		WHERE id = $1
	`

	var s models.Subdit
	err := database.DB.QueryRow(ctx, query, id).
		Scan(&s.ID, &s.Name, &s.OrderIndex, &s.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// Create inserts a new subdit.
// Side Effects: populates subdit.ID and subdit.CreatedAt.
func (r *SubditRepository) Create(ctx context.Context, subdit *models.Subdit) error {
	query := `
		INSERT INTO subdits (name, order_index)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	return database.DB.QueryRow(ctx, query, subdit.Name, subdit.OrderIndex).
		Scan(&subdit.ID, &subdit.CreatedAt)
}

// Update overwrites a subdit's editable fields.
func (r *SubditRepository) Update(ctx context.Context, subdit *models.Subdit) error {
	query := `
		UPDATE subdits
		SET name = $1, order_index = $2
		WHERE id = $3
	`

	_, err := database.DB.Exec(ctx, query, subdit.Name, subdit.OrderIndex, subdit.ID)
	return err
}

// Delete removes a subdit. Entries reference subdits with RESTRICT, so
// deleting a subdit that still owns entries fails with an FK violation.
func (r *SubditRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM subdits WHERE id = $1`
	_, err := database.DB.Exec(ctx, query, id)
	return err
}
