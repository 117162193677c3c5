package services

import (
	"context"

	"github.com/RikiSanjayaa/rengiat/internal/audit"
	"github.com/RikiSanjayaa/rengiat/internal/models"
	"github.com/RikiSanjayaa/rengiat/internal/repository"
)

// UserService wraps user repository writes with role validation, the
// last-super-admin guard, and audit recording.
type UserService struct {
	userRepo *repository.UserRepository
	recorder *audit.Recorder
	auth     *AuthService
}

// NewUserService creates a user service. auth is used for password
// hashing so both layers share one bcrypt cost.
func NewUserService(recorder *audit.Recorder, auth *AuthService) *UserService {
	return &UserService{
		userRepo: repository.NewUserRepository(),
		recorder: recorder,
		auth:     auth,
	}
}

// Create validates the role rules, hashes the password, persists the
// user, and records a "created" audit entry.
func (s *UserService) Create(ctx context.Context, actorID *int, user *models.User, password string) error {
	if err := validateUserRules(user); err != nil {
		return err
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	s.recorder.Created(ctx, actorID, audit.UserSubject(user), audit.UserSnapshot(user))
	return nil
}

// Update applies role validation and the last-super-admin guard, then
// overwrites the user row. password is optional; when non-empty the
// hash is replaced. Password changes never appear in the audit diff.
func (s *UserService) Update(ctx context.Context, actorID *int, before, updated *models.User, password string) error {
	if err := validateUserRules(updated); err != nil {
		return err
	}

	// Demoting the only remaining super admin would lock everyone out
	// of user management.
	if before.IsSuperAdmin() && updated.Role != models.RoleSuperAdmin {
		if err := s.ensureAnotherSuperAdmin(ctx, before.ID); err != nil {
			return err
		}
	}

	if password != "" {
		hash, err := s.auth.HashPassword(password)
		if err != nil {
			return err
		}
		updated.PasswordHash = hash
	} else {
		updated.PasswordHash = before.PasswordHash
	}

	oldValues := audit.UserSnapshot(before)

	if err := s.userRepo.Update(ctx, updated); err != nil {
		return err
	}

	s.recorder.Updated(ctx, actorID, audit.UserSubject(updated), oldValues, audit.UserSnapshot(updated))
	return nil
}

// Delete removes a user. A user cannot delete their own account, and
// the last super admin cannot be removed.
func (s *UserService) Delete(ctx context.Context, actorID *int, user *models.User) error {
	if actorID != nil && *actorID == user.ID {
		return ErrSelfDelete
	}
	if user.IsSuperAdmin() {
		if err := s.ensureAnotherSuperAdmin(ctx, user.ID); err != nil {
			return err
		}
	}

	oldValues := audit.UserSnapshot(user)

	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return err
	}

	s.recorder.Deleted(ctx, actorID, audit.UserSubject(user), oldValues)
	return nil
}

// ensureAnotherSuperAdmin fails with ErrLastSuperAdmin unless at least
// one other super admin account exists.
func (s *UserService) ensureAnotherSuperAdmin(ctx context.Context, excludeID int) error {
	count, err := s.userRepo.CountByRoleExcept(ctx, models.RoleSuperAdmin, excludeID)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrLastSuperAdmin
	}
	return nil
}

// validateUserRules checks the role value and the operator unit
// requirement. Operators enter activities for exactly one unit, so the
// assignment is mandatory for them; for every other role the pin is
// meaningless and gets cleared.
func validateUserRules(user *models.User) error {
	if !models.ValidRole(user.Role) {
		return ErrInvalidRole
	}
	if user.IsOperator() {
		if user.UnitID == nil {
			return ErrUnitRequired
		}
	} else {
		user.UnitID = nil
	}
	return nil
}
