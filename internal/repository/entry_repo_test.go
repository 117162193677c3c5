// Package repository_test verifies the repository layer against a
// pgxmock pool swapped in for the global database handle.
package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/RikiSanjayaa/rengiat/internal/database"
	"github.com/RikiSanjayaa/rengiat/internal/models"
	"github.com/RikiSanjayaa/rengiat/internal/repository"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withMockDB swaps the global database handle for a mock pool and
// restores it when the test finishes.
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

// entryRows builds a result set matching the shared entry select list.
func entryRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "subdit_id", "unit_id", "entry_date", "time_start",
		"description", "case_number", "created_by", "updated_by",
		"created_at", "updated_at", "attachment_count",
	})
}

func strPtr(v string) *string { return &v }

// TestEntryRepository_ListForReport verifies the report fetch passes
// the window, the resolved ID sets, and the keyword pattern through.
func TestEntryRepository_ListForReport(t *testing.T) {
	testTime := time.Date(2026, time.January, 5, 9, 30, 0, 0, time.UTC)
	start := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.January, 7, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		keyword   string
		mockSetup func(pgxmock.PgxPoolIface)
		wantLen   int
	}{
		{
			name:    "without keyword",
			keyword: "",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := entryRows().
					AddRow(1, 1, 10, start, strPtr("09:00"), "Patroli", nil, 3, nil, testTime, nil, 0).
					AddRow(2, 1, 20, start, nil, "Penyelidikan", strPtr("LP/12"), 3, nil, testTime, nil, 2)

				mock.ExpectQuery("FROM rengiat_entries e").
					WithArgs(start, end, []int{1, 2}, []int{10, 20}).
					WillReturnRows(rows)
			},
			wantLen: 2,
		},
		{
			name:    "with keyword",
			keyword: "curanmor",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				// The keyword must hit both text fields with one pattern.
				mock.ExpectQuery(`e\.description ILIKE \$5 OR e\.case_number ILIKE \$5`).
					WithArgs(start, end, []int{1, 2}, []int{10, 20}, "%curanmor%").
					WillReturnRows(entryRows())
			},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			mock := withMockDB(t)
			tt.mockSetup(mock)
			repo := repository.NewEntryRepository()

			// Act
			entries, err := repo.ListForReport(context.Background(),
				start, end, []int{1, 2}, []int{10, 20}, tt.keyword)

			// Assert
			require.NoError(t, err)
			assert.Len(t, entries, tt.wantLen)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestEntryRepository_ListForReport_ScansNullables verifies nullable
// columns and the attachment count survive the scan.
func TestEntryRepository_ListForReport_ScansNullables(t *testing.T) {
	mock := withMockDB(t)
	start := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	testTime := start.Add(9 * time.Hour)

	rows := entryRows().
		AddRow(1, 1, 10, start, nil, "Patroli", nil, 3, nil, testTime, nil, 3)
	mock.ExpectQuery("FROM rengiat_entries e").
		WithArgs(start, start, []int{1}, []int{10}).
		WillReturnRows(rows)

	repo := repository.NewEntryRepository()
	entries, err := repo.ListForReport(context.Background(), start, start, []int{1}, []int{10}, "")

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].TimeStart)
	assert.Nil(t, entries[0].CaseNumber)
	assert.Nil(t, entries[0].UpdatedBy)
	assert.Equal(t, 3, entries[0].AttachmentCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestEntryRepository_GetByID verifies lookup and the not-found
// sentinel.
func TestEntryRepository_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock := withMockDB(t)
		testTime := time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)

		rows := entryRows().
			AddRow(7, 1, 10, testTime, strPtr("09:00"), "Patroli", nil, 3, nil, testTime, nil, 0)
		mock.ExpectQuery("FROM rengiat_entries e").
			WithArgs(7).
			WillReturnRows(rows)

		repo := repository.NewEntryRepository()
		entry, err := repo.GetByID(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, 7, entry.ID)
		assert.Equal(t, "09:00", *entry.TimeStart)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock := withMockDB(t)
		mock.ExpectQuery("FROM rengiat_entries e").
			WithArgs(99).
			WillReturnRows(entryRows())

		repo := repository.NewEntryRepository()
		entry, err := repo.GetByID(context.Background(), 99)

		assert.Nil(t, entry)
		assert.True(t, repository.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestEntryRepository_Create verifies the insert populates the
// generated ID and timestamp.
func TestEntryRepository_Create(t *testing.T) {
	mock := withMockDB(t)
	testTime := time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)
	entryDate := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO rengiat_entries").
		WithArgs(1, 10, entryDate, strPtr("09:00"), "Patroli", nil, 3).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(42, testTime))

	repo := repository.NewEntryRepository()
	entry := &models.RengiatEntry{
		SubditID:    1,
		UnitID:      10,
		EntryDate:   entryDate,
		TimeStart:   strPtr("09:00"),
		Description: "Patroli",
		CreatedBy:   3,
	}

	err := repo.Create(context.Background(), entry)

	require.NoError(t, err)
	assert.Equal(t, 42, entry.ID)
	assert.Equal(t, testTime, entry.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestEntryRepository_Update verifies the update stamps the editor.
func TestEntryRepository_Update(t *testing.T) {
	mock := withMockDB(t)
	entryDate := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	editor := 5

	mock.ExpectExec("UPDATE rengiat_entries").
		WithArgs(1, 10, entryDate, strPtr("10:30"), "Patroli malam", nil, &editor, 7).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := repository.NewEntryRepository()
	err := repo.Update(context.Background(), &models.RengiatEntry{
		ID:          7,
		SubditID:    1,
		UnitID:      10,
		EntryDate:   entryDate,
		TimeStart:   strPtr("10:30"),
		Description: "Patroli malam",
		UpdatedBy:   &editor,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestEntryRepository_Delete verifies the delete statement.
func TestEntryRepository_Delete(t *testing.T) {
	mock := withMockDB(t)
	mock.ExpectExec("DELETE FROM rengiat_entries").
		WithArgs(7).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := repository.NewEntryRepository()
	err := repo.Delete(context.Background(), 7)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
