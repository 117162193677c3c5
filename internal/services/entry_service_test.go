package services_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RikiSanjayaa/rengiat/internal/audit"
	"github.com/RikiSanjayaa/rengiat/internal/models"
	"github.com/RikiSanjayaa/rengiat/internal/services"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// captureSink collects audit records without touching the database.
type captureSink struct {
	logs []*models.AuditLog
}

func (s *captureSink) Insert(_ context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, log)
	return nil
}

func intPtr(v int) *int { return &v }

// TestEntryService_Create verifies the entity write happens and the
// audit record follows it.
func TestEntryService_Create(t *testing.T) {
	// Arrange
	mock := withMockDB(t)
	sink := &captureSink{}
	recorder := audit.NewRecorder(sink, zap.NewNop())
	svc := services.NewEntryService(recorder, t.TempDir(), zap.NewNop())

	entryDate := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO rengiat_entries").
		WithArgs(1, 10, entryDate, (*string)(nil), "Patroli", (*string)(nil), 3).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(42, entryDate))

	entry := &models.RengiatEntry{
		SubditID:    1,
		UnitID:      10,
		EntryDate:   entryDate,
		Description: "Patroli",
		CreatedBy:   3,
	}

	// Act
	err := svc.Create(context.Background(), intPtr(5), entry)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 42, entry.ID)
	require.Len(t, sink.logs, 1)
	assert.Equal(t, "created", sink.logs[0].Action)
	assert.Equal(t, 42, sink.logs[0].AuditableID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestEntryService_Update verifies the audit diff is taken from the
// state before the write.
func TestEntryService_Update(t *testing.T) {
	mock := withMockDB(t)
	sink := &captureSink{}
	recorder := audit.NewRecorder(sink, zap.NewNop())
	svc := services.NewEntryService(recorder, t.TempDir(), zap.NewNop())

	entryDate := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	before := &models.RengiatEntry{
		ID: 7, SubditID: 1, UnitID: 10, EntryDate: entryDate,
		Description: "Patroli", CreatedBy: 3,
	}
	updated := &models.RengiatEntry{
		ID: 7, SubditID: 1, UnitID: 10, EntryDate: entryDate,
		Description: "Patroli malam", CreatedBy: 3, UpdatedBy: intPtr(5),
	}

	mock.ExpectExec("UPDATE rengiat_entries").
		WithArgs(1, 10, entryDate, (*string)(nil), "Patroli malam", (*string)(nil), intPtr(5), 7).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.Update(context.Background(), intPtr(5), before, updated)

	require.NoError(t, err)
	require.Len(t, sink.logs, 1)
	log := sink.logs[0]
	assert.Equal(t, "updated", log.Action)
	assert.Equal(t, "Patroli", log.OldValues["description"])
	assert.Equal(t, "Patroli malam", log.NewValues["description"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestEntryService_Delete verifies the side-effect order: attachment
// files are unlinked, the row is removed, and the audit record is
// written from the pre-delete snapshot.
func TestEntryService_Delete(t *testing.T) {
	mock := withMockDB(t)
	sink := &captureSink{}
	recorder := audit.NewRecorder(sink, zap.NewNop())

	dir := t.TempDir()
	stored := filepath.Join(dir, "entry-7")
	require.NoError(t, os.MkdirAll(stored, 0o750))
	file := filepath.Join(stored, "a.pdf")
	require.NoError(t, os.WriteFile(file, []byte("pdf"), 0o640))

	svc := services.NewEntryService(recorder, dir, zap.NewNop())

	mock.ExpectQuery("DELETE FROM rengiat_attachments").
		WithArgs(7).
		WillReturnRows(pgxmock.NewRows([]string{"path"}).AddRow("entry-7/a.pdf"))
	mock.ExpectExec("DELETE FROM rengiat_entries").
		WithArgs(7).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	entry := &models.RengiatEntry{
		ID: 7, SubditID: 1, UnitID: 10,
		EntryDate:   time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
		Description: "Patroli", CreatedBy: 3,
	}

	err := svc.Delete(context.Background(), intPtr(5), entry)

	require.NoError(t, err)
	assert.NoFileExists(t, file, "stored attachment file is unlinked")
	require.Len(t, sink.logs, 1)
	assert.Equal(t, "deleted", sink.logs[0].Action)
	assert.Equal(t, "Patroli", sink.logs[0].OldValues["description"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
