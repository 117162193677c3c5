// Package repository provides the data access layer for the Rengiat backend.
// This file handles entry attachment rows. The files themselves live on
// disk under the configured attachment directory.
package repository

import (
	"context"

	"github.com/RikiSanjayaa/rengiat/internal/database"
	"github.com/RikiSanjayaa/rengiat/internal/models"
)

// AttachmentRepository handles attachment row persistence.
type AttachmentRepository struct{}

// NewAttachmentRepository creates a new AttachmentRepository instance.
func NewAttachmentRepository() *AttachmentRepository {
	return &AttachmentRepository{}
}

// ListByEntry retrieves the attachments of one entry, oldest first.
func (r *AttachmentRepository) ListByEntry(ctx context.Context, entryID int) ([]models.RengiatAttachment, error) {
	query := `
		SELECT id, entry_id, path, mime_type, size_bytes, created_at
		FROM rengiat_attachments
		WHERE entry_id = $1
		ORDER BY created_at
	`

	rows, err := database.DB.Query(ctx, query, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []models.RengiatAttachment
	for rows.Next() {
		var a models.RengiatAttachment
		if err := rows.Scan(&a.ID, &a.EntryID, &a.Path, &a.MimeType, &a.SizeBytes, &a.CreatedAt); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}

	return attachments, rows.Err()
}

// GetByID retrieves one attachment row by primary key. A missing row
// surfaces as pgx.ErrNoRows from the scan.
func (r *AttachmentRepository) GetByID(ctx context.Context, id int) (*models.RengiatAttachment, error) {
	query := `
		SELECT id, entry_id, path, mime_type, size_bytes, created_at
		FROM rengiat_attachments
		WHERE id = $1
	`

	var a models.RengiatAttachment
	err := database.DB.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.EntryID, &a.Path, &a.MimeType, &a.SizeBytes, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// Create inserts a new attachment row.
// Side Effects: populates attachment.ID and attachment.CreatedAt.
func (r *AttachmentRepository) Create(ctx context.Context, attachment *models.RengiatAttachment) error {
	query := `
		INSERT INTO rengiat_attachments (entry_id, path, mime_type, size_bytes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	return database.DB.QueryRow(ctx, query,
		attachment.EntryID, attachment.Path, attachment.MimeType, attachment.SizeBytes,
	).Scan(&attachment.ID, &attachment.CreatedAt)
}

// DeleteByEntry removes all attachment rows of an entry and returns the
// stored paths so the caller can unlink the files. The entry delete
// cascades over these rows anyway; issuing the delete explicitly keeps
// the returned path list and the removed rows in one statement.
func (r *AttachmentRepository) DeleteByEntry(ctx context.Context, entryID int) ([]string, error) {
	query := `
		DELETE FROM rengiat_attachments
		WHERE entry_id = $1
		RETURNING path
	`

	rows, err := database.DB.Query(ctx, query, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	return paths, rows.Err()
}
