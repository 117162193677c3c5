package handlers

import (
	"github.com/RikiSanjayaa/rengiat/internal/models"
	"github.com/RikiSanjayaa/rengiat/internal/repository"
	"github.com/RikiSanjayaa/rengiat/internal/security"
	"github.com/RikiSanjayaa/rengiat/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

// AuthHandler handles login, logout, and the current-user probe.
// Login attempts are throttled per client IP and accounts lock after
// repeated failures.
type AuthHandler struct {
	store       *session.Store
	authService *services.AuthService
	userRepo    *repository.UserRepository
	limiter     *security.RateLimiter
	lockout     *security.AccountLockout
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store *session.Store, authService *services.AuthService, limiter *security.RateLimiter, lockout *security.AccountLockout, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		store:       store,
		authService: authService,
		userRepo:    repository.NewUserRepository(),
		limiter:     limiter,
		lockout:     lockout,
		logger:      logger,
	}
}

// Login authenticates credentials and creates a session.
//
// Side Effects:
//   - Stores user_id, user_role, user_unit_id in the session on success
//   - Records the failed attempt against the account on failure
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	if !h.limiter.Allow(c.IP()) {
		return fiber.NewError(fiber.StatusTooManyRequests, "too many login attempts, try again later")
	}

	var form models.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, "invalid login payload")
	}
	if form.Username == "" || form.Password == "" {
		return badRequest(c, "username and password are required")
	}

	if h.lockout.IsLocked(form.Username) {
		return fiber.NewError(fiber.StatusTooManyRequests, "account temporarily locked")
	}

	user, err := h.authService.Authenticate(c.Context(), form.Username, form.Password)
	if err != nil {
		if locked := h.lockout.RecordFailedAttempt(form.Username); locked {
			h.logger.Warn("account locked after repeated failures",
				zap.String("username", form.Username), zap.String("ip", c.IP()))
		}
		return respondError(c, err)
	}

	h.lockout.ResetAttempts(form.Username)
	h.limiter.Reset(c.IP())

	sess, err := h.store.Get(c)
	if err != nil {
		return err
	}
	sess.Set("user_id", user.ID)
	sess.Set("user_role", user.Role)

	// Stored as plain ints: 0 means no subdit / not pinned to a unit.
	subditID := 0
	if user.SubditID != nil {
		subditID = *user.SubditID
	}
	sess.Set("user_subdit_id", subditID)

	unitID := 0
	if user.UnitID != nil {
		unitID = *user.UnitID
	}
	sess.Set("user_unit_id", unitID)
	if err := sess.Save(); err != nil {
		return err
	}

	h.logger.Info("login",
		zap.Int("user_id", user.ID), zap.String("role", user.Role))

	return c.JSON(userView(user))
}

// Logout destroys the session. Always returns 204, even for requests
// without a live session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err == nil {
		_ = sess.Destroy()
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(int)

	user, err := h.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(userView(user))
}

// userView strips the password hash from API responses.
func userView(user *models.User) fiber.Map {
	return fiber.Map{
		"id":        user.ID,
		"name":      user.Name,
		"username":  user.Username,
		"email":     user.Email,
		"role":      user.Role,
		"subdit_id": user.SubditID,
		"unit_id":   user.UnitID,
	}
}
