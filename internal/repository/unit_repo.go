// Package repository provides the data access layer for the Rengiat backend.
// This file handles unit management.
package repository

import (
	"context"

	"github.com/RikiSanjayaa/rengiat/internal/database"
	"github.com/RikiSanjayaa/rengiat/internal/models"
)

// UnitRepository handles unit database operations. Units are global
// operational teams; the report builder consumes them as columns.
type UnitRepository struct{}

// NewUnitRepository creates a new UnitRepository instance.
func NewUnitRepository() *UnitRepository {
	return &UnitRepository{}
}

// ListActiveOrdered retrieves active units in display order (order_index,
// then name). A non-nil filterID restricts the result to that single unit;
// an inactive or unknown ID yields an empty slice.
//
// This is the unit resolution used by the daily input screen and the
// report builder, so the ordering must match the report column order.
func (r *UnitRepository) ListActiveOrdered(ctx context.Context, filterID *int) ([]models.Unit, error) {
	query := `
		SELECT id, name, order_index, active, created_at
		FROM units
		WHERE active AND ($1::int IS NULL OR id = $1)
		ORDER BY order_index, name
	`

	return r.queryUnits(ctx, query, filterID)
}

// ListAll retrieves every unit, active or not, in display order.
// Used by the admin management screen.
func (r *UnitRepository) ListAll(ctx context.Context) ([]models.Unit, error) {
	query := `
		SELECT id, name, order_index, active, created_at
		FROM units
		ORDER BY order_index, name
	`

	return r.queryUnits(ctx, query)
}

// GetByID retrieves one unit by primary key.
func (r *UnitRepository) GetByID(ctx context.Context, id int) (*models.Unit, error) {
	query := `
		SELECT id, name, order_index, active, created_at
		FROM units
		WHERE id = $1
	`

	var u models.Unit
	err := database.DB.QueryRow(ctx, query, id).
		Scan(&u.ID, &u.Name, &u.OrderIndex, &u.Active, &u.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// Create inserts a new unit.
// Side Effects: populates unit.ID and unit.CreatedAt.
func (r *UnitRepository) Create(ctx context.Context, unit *models.Unit) error {
	query := `
		INSERT INTO units (name, order_index, active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	return database.DB.QueryRow(ctx, query, unit.Name, unit.OrderIndex, unit.Active).
		Scan(&unit.ID, &unit.CreatedAt)
}

// Update overwrites a unit's editable fields.
func (r *UnitRepository) Update(ctx context.Context, unit *models.Unit) error {
	query := `
		UPDATE units
		SET name = $1, order_index = $2, active = $3
		WHERE id = $4
	`

	_, err := database.DB.Exec(ctx, query, unit.Name, unit.OrderIndex, unit.Active, unit.ID)
	return err
}

// Delete removes a unit. Entries reference units with RESTRICT, so the
// service layer checks EntryCount first to return a friendly error
// instead of an FK violation.
func (r *UnitRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM units WHERE id = $1`
	_, err := database.DB.Exec(ctx, query, id)
	return err
}

// EntryCount returns the number of entries recorded against a unit.
func (r *UnitRepository) EntryCount(ctx context.Context, unitID int) (int, error) {
	query := `SELECT COUNT(*) FROM rengiat_entries WHERE unit_id = $1`

	var count int
	if err := database.DB.QueryRow(ctx, query, unitID).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *UnitRepository) queryUnits(ctx context.Context, query string, args ...interface{}) ([]models.Unit, error) {
	rows, err := database.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []models.Unit
	for rows.Next() {
		var u models.Unit
		if err := rows.Scan(&u.ID, &u.Name, &u.OrderIndex, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		units = append(units, u)
	}

	return units, rows.Err()
}
