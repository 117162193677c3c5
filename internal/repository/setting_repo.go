// Package repository provides the data access layer for the Rengiat backend.
// This file handles the per-user report settings (TDD signature block).
package repository

import (
	"context"

	"github.com/RikiSanjayaa/rengiat/internal/database"
	"github.com/RikiSanjayaa/rengiat/internal/models"
)

// ReportSettingRepository handles report setting persistence.
type ReportSettingRepository struct{}

// NewReportSettingRepository creates a new ReportSettingRepository instance.
func NewReportSettingRepository() *ReportSettingRepository {
	return &ReportSettingRepository{}
}

// GetByUser retrieves the report settings of one user.
// Returns pgx.ErrNoRows when the user has never saved settings.
func (r *ReportSettingRepository) GetByUser(ctx context.Context, userID int) (*models.ReportSetting, error) {
	query := `
		SELECT id, user_id, atas_nama, jabatan, nama_penandatangan, pangkat_nrp
		FROM report_settings
		WHERE user_id = $1
	`

	var s models.ReportSetting
	err := database.DB.QueryRow(ctx, query, userID).Scan(
		&s.ID, &s.UserID, &s.AtasNama, &s.Jabatan, &s.NamaPenandatangan, &s.PangkatNRP,
	)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// Upsert saves a user's report settings, creating the row on first save.
func (r *ReportSettingRepository) Upsert(ctx context.Context, setting *models.ReportSetting) error {
	query := `
		INSERT INTO report_settings (user_id, atas_nama, jabatan, nama_penandatangan, pangkat_nrp)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET atas_nama = EXCLUDED.atas_nama,
		    jabatan = EXCLUDED.jabatan,
		    nama_penandatangan = EXCLUDED.nama_penandatangan,
		    pangkat_nrp = EXCLUDED.pangkat_nrp
		RETURNING id
	`

	return database.DB.QueryRow(ctx, query,
		setting.UserID, setting.AtasNama, setting.Jabatan,
		setting.NamaPenandatangan, setting.PangkatNRP,
	).Scan(&setting.ID)
}
