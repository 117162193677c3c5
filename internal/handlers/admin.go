package handlers

import (
	"strings"

	"github.com/RikiSanjayaa/rengiat/internal/middleware"
	"github.com/RikiSanjayaa/rengiat/internal/models"
	"github.com/RikiSanjayaa/rengiat/internal/repository"
	"github.com/RikiSanjayaa/rengiat/internal/services"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the admin screens: user, unit, and subdit
// management plus the audit trail listing. All routes behind it require
// an admin-like role.
type AdminHandler struct {
	userRepo    *repository.UserRepository
	unitRepo    *repository.UnitRepository
	subditRepo  *repository.SubditRepository
	auditRepo   *repository.AuditLogRepository
	userService *services.UserService
	unitService *services.UnitService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(userService *services.UserService, unitService *services.UnitService) *AdminHandler {
	return &AdminHandler{
		userRepo:    repository.NewUserRepository(),
		unitRepo:    repository.NewUnitRepository(),
		subditRepo:  repository.NewSubditRepository(),
		auditRepo:   repository.NewAuditLogRepository(),
		userService: userService,
		unitService: unitService,
	}
}

// ----------------------------------------------------------------------------
// Users
// ----------------------------------------------------------------------------

// ListUsers returns all user accounts ordered by name.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.userRepo.List(c.Context())
	if err != nil {
		return err
	}

	views := make([]fiber.Map, 0, len(users))
	for i := range users {
		views = append(views, userView(&users[i]))
	}
	return c.JSON(fiber.Map{"users": views})
}

// CreateUser creates a user account. Only super admins may mint other
// super admins.
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	user, password, err := h.parseUserForm(c)
	if err != nil {
		return err
	}
	if password == "" {
		return badRequest(c, "password is required")
	}
	if err := h.checkRoleGrant(c, user.Role); err != nil {
		return err
	}

	if err := h.userService.Create(c.Context(), middleware.ActorID(c), user, password); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(userView(user))
}

// UpdateUser overwrites a user account. A blank password keeps the
// current one.
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	before, err := h.userRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	updated, password, err := h.parseUserForm(c)
	if err != nil {
		return err
	}
	if err := h.checkRoleGrant(c, updated.Role); err != nil {
		return err
	}
	if before.IsSuperAdmin() {
		if err := h.requireSuperAdmin(c); err != nil {
			return err
		}
	}

	updated.ID = before.ID
	updated.CreatedAt = before.CreatedAt

	if err := h.userService.Update(c.Context(), middleware.ActorID(c), before, updated, password); err != nil {
		return respondError(c, err)
	}

	return c.JSON(userView(updated))
}

// DeleteUser removes a user account.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	user, err := h.userRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	if user.IsSuperAdmin() {
		if err := h.requireSuperAdmin(c); err != nil {
			return err
		}
	}

	if err := h.userService.Delete(c.Context(), middleware.ActorID(c), user); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ----------------------------------------------------------------------------
// Units
// ----------------------------------------------------------------------------

// ListUnits returns all units, including inactive ones, for management.
func (h *AdminHandler) ListUnits(c *fiber.Ctx) error {
	units, err := h.unitRepo.ListAll(c.Context())
	if err != nil {
		return err
	}
	if units == nil {
		units = []models.Unit{}
	}
	return c.JSON(fiber.Map{"units": units})
}

// CreateUnit creates a unit. New units default to active.
func (h *AdminHandler) CreateUnit(c *fiber.Ctx) error {
	unit, err := h.parseUnitForm(c, true)
	if err != nil {
		return err
	}

	if err := h.unitService.Create(c.Context(), middleware.ActorID(c), unit); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(unit)
}

// UpdateUnit overwrites a unit.
func (h *AdminHandler) UpdateUnit(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	before, err := h.unitRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	updated, err := h.parseUnitForm(c, before.Active)
	if err != nil {
		return err
	}
	updated.ID = before.ID
	updated.CreatedAt = before.CreatedAt

	if err := h.unitService.Update(c.Context(), middleware.ActorID(c), before, updated); err != nil {
		return respondError(c, err)
	}

	return c.JSON(updated)
}

// DeleteUnit removes a unit that has no entries.
func (h *AdminHandler) DeleteUnit(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	unit, err := h.unitRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.unitService.Delete(c.Context(), middleware.ActorID(c), unit); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ----------------------------------------------------------------------------
// Subdits
// ----------------------------------------------------------------------------

// ListSubdits returns all subdits in display order.
func (h *AdminHandler) ListSubdits(c *fiber.Ctx) error {
	subdits, err := h.subditRepo.ListOrdered(c.Context(), nil)
	if err != nil {
		return err
	}
	if subdits == nil {
		subdits = []models.Subdit{}
	}
	return c.JSON(fiber.Map{"subdits": subdits})
}

// CreateSubdit creates a subdit. Subdit changes are structural, not
// operational, so they are not audited.
func (h *AdminHandler) CreateSubdit(c *fiber.Ctx) error {
	subdit, err := h.parseSubditForm(c)
	if err != nil {
		return err
	}

	if err := h.subditRepo.Create(c.Context(), subdit); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(subdit)
}

// UpdateSubdit overwrites a subdit.
func (h *AdminHandler) UpdateSubdit(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	before, err := h.subditRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	updated, err := h.parseSubditForm(c)
	if err != nil {
		return err
	}
	updated.ID = before.ID
	updated.CreatedAt = before.CreatedAt

	if err := h.subditRepo.Update(c.Context(), updated); err != nil {
		return err
	}

	return c.JSON(updated)
}

// DeleteSubdit removes a subdit. Entries referencing it block the
// delete at the database (FK restrict).
func (h *AdminHandler) DeleteSubdit(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if _, err := h.subditRepo.GetByID(c.Context(), id); err != nil {
		return respondError(c, err)
	}

	if err := h.subditRepo.Delete(c.Context(), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ----------------------------------------------------------------------------
// Audit trail
// ----------------------------------------------------------------------------

// ListAuditLogs returns the audit trail, newest first, with paging.
//
// Query Parameters:
//   - action: "created" | "updated" | "deleted"
//   - type: subject tag filter, e.g. "rengiat_entry"
//   - search: substring match on actor name or username
//   - from, to: "YYYY-MM-DD" bounds on the record timestamp
//   - page: 1-based page number
func (h *AdminHandler) ListAuditLogs(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	const pageSize = 20

	filters := repository.AuditLogFilters{
		Action:        c.Query("action"),
		AuditableType: c.Query("type"),
		Search:        c.Query("search"),
		DateFrom:      c.Query("from"),
		DateTo:        c.Query("to"),
		Limit:         pageSize,
		Offset:        uint64((page - 1) * pageSize),
	}

	logs, err := h.auditRepo.List(c.Context(), filters)
	if err != nil {
		return err
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}

	total, err := h.auditRepo.Count(c.Context(), filters)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"logs":      logs,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ----------------------------------------------------------------------------
// Form parsing and role guards
// ----------------------------------------------------------------------------

func (h *AdminHandler) parseUserForm(c *fiber.Ctx) (*models.User, string, error) {
	var form models.UserForm
	if err := c.BodyParser(&form); err != nil {
		return nil, "", badRequest(c, "invalid user payload")
	}

	name := strings.TrimSpace(form.Name)
	username := strings.TrimSpace(form.Username)
	if name == "" || username == "" {
		return nil, "", badRequest(c, "name and username are required")
	}

	return &models.User{
		Name:     name,
		Username: username,
		Email:    strings.TrimSpace(form.Email),
		Role:     form.Role,
		SubditID: form.SubditID,
		UnitID:   form.UnitID,
	}, form.Password, nil
}

func (h *AdminHandler) parseUnitForm(c *fiber.Ctx, defaultActive bool) (*models.Unit, error) {
	var form models.UnitForm
	if err := c.BodyParser(&form); err != nil {
		return nil, badRequest(c, "invalid unit payload")
	}

	name := strings.TrimSpace(form.Name)
	if name == "" {
		return nil, badRequest(c, "name is required")
	}

	active := defaultActive
	if form.Active != nil {
		active = *form.Active
	}

	return &models.Unit{
		Name:       name,
		OrderIndex: form.OrderIndex,
		Active:     active,
	}, nil
}

func (h *AdminHandler) parseSubditForm(c *fiber.Ctx) (*models.Subdit, error) {
	var form models.SubditForm
	if err := c.BodyParser(&form); err != nil {
		return nil, badRequest(c, "invalid subdit payload")
	}

	name := strings.TrimSpace(form.Name)
	if name == "" {
		return nil, badRequest(c, "name is required")
	}

	return &models.Subdit{
		Name:       name,
		OrderIndex: form.OrderIndex,
	}, nil
}

// checkRoleGrant stops admins from granting the super_admin role.
func (h *AdminHandler) checkRoleGrant(c *fiber.Ctx, role string) error {
	if role != models.RoleSuperAdmin {
		return nil
	}
	return h.requireSuperAdmin(c)
}

func (h *AdminHandler) requireSuperAdmin(c *fiber.Ctx) error {
	actorRole, _ := c.Locals("user_role").(string)
	if actorRole != models.RoleSuperAdmin {
		return fiber.NewError(fiber.StatusForbidden, "super admin required")
	}
	return nil
}
