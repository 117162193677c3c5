package handlers

import (
	"strings"
	"time"

	"github.com/RikiSanjayaa/rengiat/internal/middleware"
	"github.com/RikiSanjayaa/rengiat/internal/models"
	"github.com/RikiSanjayaa/rengiat/internal/repository"
	"github.com/RikiSanjayaa/rengiat/internal/services"
	"github.com/gofiber/fiber/v2"
)

// DailyHandler serves the daily input screen: listing one day's
// entries for a (subdit, unit) bucket and the entry CRUD behind it.
type DailyHandler struct {
	entryRepo         *repository.EntryRepository
	subditRepo        *repository.SubditRepository
	unitRepo          *repository.UnitRepository
	entryService      *services.EntryService
	attachmentService *services.AttachmentService
	location          *time.Location
}

// NewDailyHandler creates a new DailyHandler. location resolves "today"
// when the date query parameter is omitted.
func NewDailyHandler(entryService *services.EntryService, attachmentService *services.AttachmentService, location *time.Location) *DailyHandler {
	return &DailyHandler{
		entryRepo:         repository.NewEntryRepository(),
		subditRepo:        repository.NewSubditRepository(),
		unitRepo:          repository.NewUnitRepository(),
		entryService:      entryService,
		attachmentService: attachmentService,
		location:          location,
	}
}

// ListDay returns one day's entries for a (subdit, unit) bucket in
// chronological order. The response echoes the resolved date, subdit,
// and unit so the client knows which defaults applied.
//
// Query Parameters:
//   - date: "YYYY-MM-DD"; defaults to today
//   - subdit_id: defaults to the user's own subdit, then the first
//     subdit in display order
//   - unit_id: defaults to the first active unit
func (h *DailyHandler) ListDay(c *fiber.Ctx) error {
	var date time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return badRequest(c, "invalid date")
		}
		date = parsed
	} else {
		now := time.Now().In(h.location)
		date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	subditID, err := h.resolveSubdit(c)
	if err != nil {
		return err
	}
	unitID, err := h.resolveUnit(c)
	if err != nil {
		return err
	}

	entries := []models.RengiatEntry{}
	if subditID > 0 && unitID > 0 {
		listed, err := h.entryRepo.ListForDay(c.Context(), date, subditID, unitID)
		if err != nil {
			return err
		}
		if listed != nil {
			entries = listed
		}
	}

	return c.JSON(fiber.Map{
		"date":      date.Format("2006-01-02"),
		"subdit_id": subditID,
		"unit_id":   unitID,
		"entries":   entries,
	})
}

// resolveSubdit picks the subdit for the daily view: the query
// parameter, then the user's own subdit, then the first subdit in
// display order. Returns 0 when no subdits exist.
func (h *DailyHandler) resolveSubdit(c *fiber.Ctx) (int, error) {
	if id := c.QueryInt("subdit_id"); id > 0 {
		return id, nil
	}
	if own, _ := c.Locals("user_subdit_id").(int); own > 0 {
		return own, nil
	}

	subdits, err := h.subditRepo.ListOrdered(c.Context(), nil)
	if err != nil {
		return 0, err
	}
	if len(subdits) == 0 {
		return 0, nil
	}
	return subdits[0].ID, nil
}

// resolveUnit picks the unit for the daily view: the query parameter,
// the operator's pinned unit, then the first active unit. Returns 0
// when no active units exist.
func (h *DailyHandler) resolveUnit(c *fiber.Ctx) (int, error) {
	if id := c.QueryInt("unit_id"); id > 0 {
		return id, nil
	}
	if pinned, _ := c.Locals("user_unit_id").(int); pinned > 0 {
		return pinned, nil
	}

	units, err := h.unitRepo.ListActiveOrdered(c.Context(), nil)
	if err != nil {
		return 0, err
	}
	if len(units) == 0 {
		return 0, nil
	}
	return units[0].ID, nil
}

// CreateEntry creates an activity entry from the submitted form.
// Operators may only write into their own unit.
func (h *DailyHandler) CreateEntry(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(int)

	entry, err := h.parseEntryForm(c)
	if err != nil {
		return err
	}
	if err := h.checkUnitPinning(c, entry.UnitID); err != nil {
		return err
	}
	entry.CreatedBy = userID

	if err := h.entryService.Create(c.Context(), middleware.ActorID(c), entry); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

// UpdateEntry overwrites an existing entry with the submitted form.
func (h *DailyHandler) UpdateEntry(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	userID, _ := c.Locals("user_id").(int)

	before, err := h.entryRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.checkUnitPinning(c, before.UnitID); err != nil {
		return err
	}

	updated, err := h.parseEntryForm(c)
	if err != nil {
		return err
	}
	if err := h.checkUnitPinning(c, updated.UnitID); err != nil {
		return err
	}

	updated.ID = before.ID
	updated.CreatedBy = before.CreatedBy
	updated.CreatedAt = before.CreatedAt
	updated.UpdatedBy = &userID

	if err := h.entryService.Update(c.Context(), middleware.ActorID(c), before, updated); err != nil {
		return respondError(c, err)
	}

	return c.JSON(updated)
}

// DeleteEntry removes an entry together with its stored attachments.
func (h *DailyHandler) DeleteEntry(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	entry, err := h.entryRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.checkUnitPinning(c, entry.UnitID); err != nil {
		return err
	}

	if err := h.entryService.Delete(c.Context(), middleware.ActorID(c), entry); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListAttachments returns the stored attachments of an entry.
func (h *DailyHandler) ListAttachments(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	attachments, err := h.attachmentService.ListByEntry(c.Context(), id)
	if err != nil {
		return err
	}
	if attachments == nil {
		attachments = []models.RengiatAttachment{}
	}

	return c.JSON(fiber.Map{"attachments": attachments})
}

// DownloadAttachment streams one stored attachment file with its
// recorded content type. Operators can only reach attachments of
// entries in their own unit, matching the write-side pinning.
func (h *DailyHandler) DownloadAttachment(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	attachmentID, err := c.ParamsInt("attachmentID")
	if err != nil || attachmentID <= 0 {
		return badRequest(c, "invalid attachment id")
	}

	entry, err := h.entryRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.checkUnitPinning(c, entry.UnitID); err != nil {
		return err
	}

	attachment, err := h.attachmentService.Get(c.Context(), entry.ID, attachmentID)
	if err != nil {
		return respondError(c, err)
	}

	file, err := h.attachmentService.Open(attachment.Path)
	if err != nil {
		return respondError(c, err)
	}

	// Fiber closes the stream once the response is written.
	c.Set(fiber.HeaderContentType, attachment.MimeType)
	return c.SendStream(file, int(attachment.SizeBytes))
}

// UploadAttachment stores one multipart file under the entry.
//
// Form Data:
//   - file: the uploaded attachment (jpeg, png, or pdf)
func (h *DailyHandler) UploadAttachment(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	entry, err := h.entryRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.checkUnitPinning(c, entry.UnitID); err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	attachment, err := h.attachmentService.Store(c.Context(), entry.ID,
		fileHeader.Header.Get("Content-Type"), fileHeader.Size, file)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(attachment)
}

// parseEntryForm validates and converts the entry form payload.
func (h *DailyHandler) parseEntryForm(c *fiber.Ctx) (*models.RengiatEntry, error) {
	var form models.EntryForm
	if err := c.BodyParser(&form); err != nil {
		return nil, badRequest(c, "invalid entry payload")
	}

	if form.SubditID <= 0 || form.UnitID <= 0 {
		return nil, badRequest(c, "subdit_id and unit_id are required")
	}
	if strings.TrimSpace(form.Description) == "" {
		return nil, badRequest(c, "description is required")
	}

	date, err := parseDate(form.EntryDate)
	if err != nil {
		return nil, badRequest(c, "invalid entry_date")
	}

	if form.TimeStart != nil {
		trimmed := strings.TrimSpace(*form.TimeStart)
		if trimmed == "" {
			form.TimeStart = nil
		} else {
			if _, err := parseClock(trimmed); err != nil {
				return nil, badRequest(c, "invalid time_start")
			}
			form.TimeStart = &trimmed
		}
	}

	return &models.RengiatEntry{
		SubditID:    form.SubditID,
		UnitID:      form.UnitID,
		EntryDate:   date,
		TimeStart:   form.TimeStart,
		Description: strings.TrimSpace(form.Description),
		CaseNumber:  normalizeOptional(form.CaseNumber),
	}, nil
}

// checkUnitPinning rejects writes outside an operator's own unit.
// Admin-like roles pass through.
func (h *DailyHandler) checkUnitPinning(c *fiber.Ctx, unitID int) error {
	role, _ := c.Locals("user_role").(string)
	if role != models.RoleOperator {
		return nil
	}

	pinned, _ := c.Locals("user_unit_id").(int)
	if pinned == 0 || pinned != unitID {
		return fiber.NewError(fiber.StatusForbidden, "operators may only record entries for their own unit")
	}
	return nil
}

func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
