// Package repository provides the data access layer for the Rengiat backend.
// This file handles activity entry persistence and the report fetch.
package repository

import (
	"context"
	"time"

	"github.com/RikiSanjayaa/rengiat/internal/database"
	"github.com/RikiSanjayaa/rengiat/internal/models"
)

// entryColumns is the shared select list for entry queries. time_start is
// rendered to "HH24:MI" text so minute precision survives the round trip
// unchanged, and the attachment count feeds the has_attachment flag.
const entryColumns = `
	e.id, e.subdit_id, e.unit_id, e.entry_date,
	to_char(e.time_start, 'HH24:MI') AS time_start,
	e.description, e.case_number, e.created_by, e.updated_by,
	e.created_at, e.updated_at,
	(SELECT COUNT(*) FROM rengiat_attachments a WHERE a.entry_id = e.id) AS attachment_count
`

// EntryRepository handles activity entry database operations.
type EntryRepository struct{}

// NewEntryRepository creates a new EntryRepository instance.
func NewEntryRepository() *EntryRepository {
	return &EntryRepository{}
}

// ListForReport fetches entries for the report window [start, end]
// inclusive, restricted to the resolved subdit and unit sets. An optional
// keyword (already trimmed by the caller) is matched case-insensitively
// as a substring against the description OR the case number.
//
// Rows come back ordered by entry date and creation time; the report
// builder applies the final within-cell chronological ordering.
//
// Callers must not pass empty ID slices; the report builder
// short-circuits before reaching this method when either set is empty.
func (r *EntryRepository) ListForReport(ctx context.Context, start, end time.Time, subditIDs, unitIDs []int, keyword string) ([]models.RengiatEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM rengiat_entries e
		WHERE e.entry_date >= $1 AND e.entry_date <= $2
		  AND e.subdit_id = ANY($3)
		  AND e.unit_id = ANY($4)
	`
	args := []interface{}{start, end, subditIDs, unitIDs}

	if keyword != "" {
		query += ` AND (e.description ILIKE $5 OR e.case_number ILIKE $5)`
		args = append(args, "%"+keyword+"%")
	}

	query += ` ORDER BY e.entry_date, e.created_at`

	return r.queryEntries(ctx, query, args...)
}

// ListForDay fetches the entries of one (date, subdit, unit) bucket in
// chronological order: scheduled entries ascending by start time,
// unscheduled entries last, creation order breaking ties. Used by the
// daily input screen.
func (r *EntryRepository) ListForDay(ctx context.Context, date time.Time, subditID, unitID int) ([]models.RengiatEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM rengiat_entries e
		WHERE e.entry_date = $1 AND e.subdit_id = $2 AND e.unit_id = $3
		ORDER BY e.time_start IS NULL, e.time_start, e.created_at
	`

	return r.queryEntries(ctx, query, date, subditID, unitID)
}

// GetByID retrieves one entry by primary key.
func (r *EntryRepository) GetByID(ctx context.Context, id int) (*models.RengiatEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM rengiat_entries e
		WHERE e.id = $1
	`

	rows, err := r.queryEntries(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	return &rows[0], nil
}

// Create inserts a new entry.
// Side Effects: populates entry.ID and entry.CreatedAt.
func (r *EntryRepository) Create(ctx context.Context, entry *models.RengiatEntry) error {
	query := `
		INSERT INTO rengiat_entries
			(subdit_id, unit_id, entry_date, time_start, description, case_number, created_by)
		VALUES ($1, $2, $3, $4::time, $5, $6, $7)
		RETURNING id, created_at
	`

	return database.DB.QueryRow(ctx, query,
		entry.SubditID, entry.UnitID, entry.EntryDate, entry.TimeStart,
		entry.Description, entry.CaseNumber, entry.CreatedBy,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// Update overwrites an entry's fields in place and stamps updated_by /
// updated_at. The creator is never changed.
func (r *EntryRepository) Update(ctx context.Context, entry *models.RengiatEntry) error {
	query := `
		UPDATE rengiat_entries
		SET subdit_id = $1, unit_id = $2, entry_date = $3, time_start = $4::time,
		    description = $5, case_number = $6, updated_by = $7, updated_at = NOW()
		WHERE id = $8
	`

	_, err := database.DB.Exec(ctx, query,
		entry.SubditID, entry.UnitID, entry.EntryDate, entry.TimeStart,
		entry.Description, entry.CaseNumber, entry.UpdatedBy, entry.ID,
	)
	return err
}

// Delete removes an entry row. Attachment rows cascade; the stored files
// are the entry service's responsibility and must be unlinked before
// this call.
func (r *EntryRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM rengiat_entries WHERE id = $1`
	_, err := database.DB.Exec(ctx, query, id)
	return err
}

func (r *EntryRepository) queryEntries(ctx context.Context, query string, args ...interface{}) ([]models.RengiatEntry, error) {
	rows, err := database.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.RengiatEntry
	for rows.Next() {
		var e models.RengiatEntry
		if err := rows.Scan(
			&e.ID,
			&e.SubditID,
			&e.UnitID,
			&e.EntryDate,
			&e.TimeStart, // nullable
			&e.Description,
			&e.CaseNumber, // nullable
			&e.CreatedBy,
			&e.UpdatedBy, // nullable
			&e.CreatedAt,
			&e.UpdatedAt, // nullable
			&e.AttachmentCount,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
