package handlers

import (
	"bytes"
	"time"

	"github.com/RikiSanjayaa/rengiat/internal/export"
	"github.com/RikiSanjayaa/rengiat/internal/models"
	"github.com/RikiSanjayaa/rengiat/internal/report"
	"github.com/RikiSanjayaa/rengiat/internal/repository"
	"github.com/gofiber/fiber/v2"
)

// ReportHandler serves the report grid and its PDF export.
type ReportHandler struct {
	builder     *report.Builder
	renderer    *export.PDFRenderer
	settingRepo *repository.ReportSettingRepository
	location    *time.Location
}

// NewReportHandler creates a new ReportHandler. location is the
// reporting timezone used to resolve "today" for defaulted dates.
func NewReportHandler(builder *report.Builder, location *time.Location) *ReportHandler {
	return &ReportHandler{
		builder:     builder,
		renderer:    export.NewPDFRenderer(),
		settingRepo: repository.NewReportSettingRepository(),
		location:    location,
	}
}

// Show returns the report grid as JSON. Days with no activity anywhere
// are stripped, matching the on-screen view.
//
// Query Parameters:
//   - start_date, end_date: "YYYY-MM-DD"; bad or missing values fall
//     back (start defaults to today, end to start)
//   - subdit_id, unit_id: optional positive integers
//   - keyword: optional substring filter
func (h *ReportHandler) Show(c *fiber.Ctx) error {
	filters := h.parseFilters(c)

	payload, err := h.builder.Build(c.Context(),
		filters.StartDate, filters.EndDate, filters.SubditID, filters.UnitID, filters.Keyword)
	if err != nil {
		return err
	}

	payload.Days = report.FilterDaysWithEntries(payload.Days)

	return c.JSON(payload)
}

// Export renders the report as a landscape PDF download. Restricted to
// roles with export permission; operators never export.
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	role, _ := c.Locals("user_role").(string)
	if !models.CanExport(role) {
		return fiber.NewError(fiber.StatusForbidden, "export not permitted for this role")
	}

	filters := h.parseFilters(c)

	payload, err := h.builder.Build(c.Context(),
		filters.StartDate, filters.EndDate, filters.SubditID, filters.UnitID, filters.Keyword)
	if err != nil {
		return err
	}
	payload.Days = report.FilterDaysWithEntries(payload.Days)

	setting := h.loadSetting(c)

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, payload, setting); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filters.ExportFileName()+`"`)
	return c.Send(buf.Bytes())
}

func (h *ReportHandler) parseFilters(c *fiber.Ctx) report.Filters {
	return report.ParseFilters(
		c.Query("start_date"),
		c.Query("end_date"),
		c.Query("subdit_id"),
		c.Query("unit_id"),
		c.Query("keyword"),
		time.Now().In(h.location),
	)
}

// loadSetting fetches the exporting user's signature block. A missing
// row or load failure just means no footer.
func (h *ReportHandler) loadSetting(c *fiber.Ctx) *models.ReportSetting {
	userID, ok := c.Locals("user_id").(int)
	if !ok {
		return nil
	}

	setting, err := h.settingRepo.GetByUser(c.Context(), userID)
	if err != nil {
		return nil
	}
	return setting
}
