package handlers

import (
	"errors"

	"github.com/RikiSanjayaa/rengiat/internal/models"
	"github.com/RikiSanjayaa/rengiat/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

// SettingsHandler serves the per-user report settings (the TDD
// signature block rendered on exports).
type SettingsHandler struct {
	settingRepo *repository.ReportSettingRepository
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler() *SettingsHandler {
	return &SettingsHandler{
		settingRepo: repository.NewReportSettingRepository(),
	}
}

// Show returns the current user's report settings. A user who has
// never saved settings gets an empty block, not a 404.
func (h *SettingsHandler) Show(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(int)

	setting, err := h.settingRepo.GetByUser(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(&models.ReportSetting{UserID: userID})
		}
		return err
	}

	return c.JSON(setting)
}

// Save upserts the current user's report settings.
func (h *SettingsHandler) Save(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(int)

	var form models.ReportSettingForm
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, "invalid settings payload")
	}

	setting := &models.ReportSetting{
		UserID:            userID,
		AtasNama:          form.AtasNama,
		Jabatan:           form.Jabatan,
		NamaPenandatangan: form.NamaPenandatangan,
		PangkatNRP:        form.PangkatNRP,
	}

	if err := h.settingRepo.Upsert(c.Context(), setting); err != nil {
		return err
	}

	return c.JSON(setting)
}
