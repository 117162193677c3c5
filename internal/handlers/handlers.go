// Package handlers implements the HTTP request handlers for the Rengiat
// backend. All handlers speak JSON; the SPA frontend consumes them.
package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/RikiSanjayaa/rengiat/internal/repository"
	"github.com/RikiSanjayaa/rengiat/internal/services"
	"github.com/gofiber/fiber/v2"
)

// respondError maps known service errors onto HTTP status codes. Errors
// the map does not know become a 500 and bubble to the Fiber error
// handler, which logs them.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case repository.IsNotFound(err):
		return fiber.NewError(fiber.StatusNotFound, "not found")
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.NewError(fiber.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, services.ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, "access denied")
	case errors.Is(err, services.ErrLastSuperAdmin):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "cannot remove the last super admin")
	case errors.Is(err, services.ErrSelfDelete):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "cannot delete your own account")
	case errors.Is(err, services.ErrUnitRequired):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "operators must be assigned a unit")
	case errors.Is(err, services.ErrUnitHasEntries):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "unit still has entries; deactivate it instead")
	case errors.Is(err, services.ErrInvalidRole):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "unknown role")
	case errors.Is(err, services.ErrAttachmentTooLarge):
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "attachment exceeds the size limit")
	case errors.Is(err, services.ErrAttachmentType):
		return fiber.NewError(fiber.StatusUnsupportedMediaType, "attachment type not allowed")
	}
	return err
}

// badRequest returns a 400 with the given message.
func badRequest(c *fiber.Ctx, message string) error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

// parseDate parses a required "YYYY-MM-DD" value.
func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(raw))
}

// parseClock parses an "HH:MM" value.
func parseClock(raw string) (time.Time, error) {
	return time.Parse("15:04", raw)
}

// pathID parses the :id route parameter, rejecting non-positive values.
func pathID(c *fiber.Ctx) (int, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, badRequest(c, "invalid id")
	}
	return id, nil
}
