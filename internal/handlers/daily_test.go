package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RikiSanjayaa/rengiat/internal/audit"
	"github.com/RikiSanjayaa/rengiat/internal/handlers"
	"github.com/RikiSanjayaa/rengiat/internal/models"
	"github.com/RikiSanjayaa/rengiat/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// nopSink satisfies the audit sink for handler tests that don't
// inspect audit output.
type nopSink struct{}

func (nopSink) Insert(context.Context, *models.AuditLog) error { return nil }

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

// newDailyApp builds a Fiber app with the daily routes and a stubbed
// authenticated user carrying the given session-derived locals. The
// returned directory is where attachment files live.
func newDailyApp(t *testing.T, role string, subditID, unitID int) (*fiber.App, string) {
	t.Helper()

	dir := t.TempDir()
	recorder := audit.NewRecorder(nopSink{}, zap.NewNop())
	entryService := services.NewEntryService(recorder, dir, zap.NewNop())
	attachmentService := services.NewAttachmentService(dir, 1<<20)
	handler := handlers.NewDailyHandler(entryService, attachmentService, time.UTC)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", 5)
		c.Locals("user_role", role)
		c.Locals("user_subdit_id", subditID)
		c.Locals("user_unit_id", unitID)
		return c.Next()
	})
	app.Get("/api/daily", handler.ListDay)
	app.Post("/api/entries", handler.CreateEntry)
	app.Get("/api/entries/:id/attachments/:attachmentID", handler.DownloadAttachment)
	return app, dir
}

func dailyEntryRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "subdit_id", "unit_id", "entry_date", "time_start",
		"description", "case_number", "created_by", "updated_by",
		"created_at", "updated_at", "attachment_count",
	})
}

// TestDailyHandler_ListDay_DefaultsFromSession verifies that omitted
// filters fall back to the user's own subdit and pinned unit, and that
// the response echoes the resolved values.
func TestDailyHandler_ListDay_DefaultsFromSession(t *testing.T) {
	// Arrange
	mock := withMockDB(t)
	app, _ := newDailyApp(t, models.RoleOperator, 2, 7)

	mock.ExpectQuery("FROM rengiat_entries e").
		WithArgs(pgxmock.AnyArg(), 2, 7).
		WillReturnRows(dailyEntryRows().AddRow(
			1, 2, 7, time.Now().UTC().Truncate(24*time.Hour), (*string)(nil),
			"Patroli dialogis", (*string)(nil), 5, (*int)(nil),
			time.Now(), nil, 0,
		))

	// Act
	resp, err := app.Test(httptest.NewRequest("GET", "/api/daily", nil))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload struct {
		Date     string                `json:"date"`
		SubditID int                   `json:"subdit_id"`
		UnitID   int                   `json:"unit_id"`
		Entries  []models.RengiatEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), payload.Date)
	assert.Equal(t, 2, payload.SubditID)
	assert.Equal(t, 7, payload.UnitID)
	require.Len(t, payload.Entries, 1)
	assert.Equal(t, "Patroli dialogis", payload.Entries[0].Description)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestDailyHandler_ListDay_FirstInOrderFallback verifies that a user
// with neither a subdit nor a pinned unit gets the first subdit and
// first active unit in display order.
func TestDailyHandler_ListDay_FirstInOrderFallback(t *testing.T) {
	// Arrange
	mock := withMockDB(t)
	app, _ := newDailyApp(t, models.RoleAdmin, 0, 0)

	mock.ExpectQuery("FROM subdits").
		WithArgs((*int)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "order_index", "created_at"}).
			AddRow(3, "Subdit III", 1, time.Now()))
	mock.ExpectQuery("FROM units").
		WithArgs((*int)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "order_index", "active", "created_at"}).
			AddRow(9, "Unit Sembilan", 1, true, time.Now()))
	mock.ExpectQuery("FROM rengiat_entries e").
		WithArgs(pgxmock.AnyArg(), 3, 9).
		WillReturnRows(dailyEntryRows())

	// Act
	resp, err := app.Test(httptest.NewRequest("GET", "/api/daily?date=2026-01-05", nil))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload struct {
		Date     string `json:"date"`
		SubditID int    `json:"subdit_id"`
		UnitID   int    `json:"unit_id"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "2026-01-05", payload.Date)
	assert.Equal(t, 3, payload.SubditID)
	assert.Equal(t, 9, payload.UnitID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func attachmentRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "entry_id", "path", "mime_type", "size_bytes", "created_at",
	})
}

// TestDailyHandler_DownloadAttachment verifies a stored file streams
// back with its recorded content type.
func TestDailyHandler_DownloadAttachment(t *testing.T) {
	// Arrange
	mock := withMockDB(t)
	app, dir := newDailyApp(t, models.RoleOperator, 2, 7)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "entry-4"), 0o750))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "entry-4", "foto.png"), []byte("png-bytes"), 0o640))

	mock.ExpectQuery("FROM rengiat_entries e").
		WithArgs(4).
		WillReturnRows(dailyEntryRows().AddRow(
			4, 2, 7, time.Now(), (*string)(nil), "Patroli", (*string)(nil),
			5, (*int)(nil), time.Now(), nil, 1,
		))
	mock.ExpectQuery("FROM rengiat_attachments").
		WithArgs(12).
		WillReturnRows(attachmentRows().
			AddRow(12, 4, "entry-4/foto.png", "image/png", int64(9), time.Now()))

	// Act
	resp, err := app.Test(httptest.NewRequest("GET", "/api/entries/4/attachments/12", nil))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(body))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestDailyHandler_DownloadAttachment_WrongEntry verifies an attachment
// cannot be fetched through a different entry's URL.
func TestDailyHandler_DownloadAttachment_WrongEntry(t *testing.T) {
	// Arrange
	mock := withMockDB(t)
	app, _ := newDailyApp(t, models.RoleAdmin, 0, 0)

	mock.ExpectQuery("FROM rengiat_entries e").
		WithArgs(9).
		WillReturnRows(dailyEntryRows().AddRow(
			9, 2, 7, time.Now(), (*string)(nil), "Patroli", (*string)(nil),
			5, (*int)(nil), time.Now(), nil, 0,
		))
	mock.ExpectQuery("FROM rengiat_attachments").
		WithArgs(12).
		WillReturnRows(attachmentRows().
			AddRow(12, 4, "entry-4/foto.png", "image/png", int64(9), time.Now()))

	// Act
	resp, err := app.Test(httptest.NewRequest("GET", "/api/entries/9/attachments/12", nil))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestDailyHandler_CreateEntry_OperatorPinning verifies an operator
// cannot write into another unit.
func TestDailyHandler_CreateEntry_OperatorPinning(t *testing.T) {
	// Arrange
	mock := withMockDB(t)
	app, _ := newDailyApp(t, models.RoleOperator, 2, 7)

	req := httptest.NewRequest("POST", "/api/entries",
		jsonBody(t, map[string]any{
			"subdit_id":   2,
			"unit_id":     8,
			"entry_date":  "2026-01-05",
			"description": "Giat di unit lain",
		}))
	req.Header.Set("Content-Type", "application/json")

	// Act
	resp, err := app.Test(req)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
