package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/RikiSanjayaa/rengiat/internal/audit"
	"github.com/RikiSanjayaa/rengiat/internal/models"
	"github.com/RikiSanjayaa/rengiat/internal/services"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(sink *captureSink) *services.UserService {
	recorder := audit.NewRecorder(sink, zap.NewNop())
	return services.NewUserService(recorder, services.NewAuthService(bcrypt.MinCost))
}

// TestUserService_Create_RoleRules verifies role validation happens
// before any database work.
func TestUserService_Create_RoleRules(t *testing.T) {
	tests := []struct {
		name    string
		user    *models.User
		wantErr error
	}{
		{
			name:    "unknown role",
			user:    &models.User{Name: "X", Username: "x", Role: "manager"},
			wantErr: services.ErrInvalidRole,
		},
		{
			name:    "operator without unit",
			user:    &models.User{Name: "X", Username: "x", Role: models.RoleOperator},
			wantErr: services.ErrUnitRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No DB expectations: validation must fail first.
			mock := withMockDB(t)
			svc := newUserService(&captureSink{})

			err := svc.Create(context.Background(), intPtr(1), tt.user, "rahasia123")

			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestUserService_Create_ClearsUnitForNonOperators verifies the unit
// pin is dropped for roles that do not enter activities themselves.
func TestUserService_Create_ClearsUnitForNonOperators(t *testing.T) {
	// Arrange
	mock := withMockDB(t)
	sink := &captureSink{}
	svc := newUserService(sink)

	unitID := 4
	user := &models.User{Name: "Citra", Username: "citra", Role: models.RoleViewer, UnitID: &unitID}

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Citra", "citra", "", models.RoleViewer,
			(*int)(nil), (*int)(nil), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).
			AddRow(9, time.Now()))

	// Act
	err := svc.Create(context.Background(), intPtr(1), user, "rahasia123")

	// Assert
	require.NoError(t, err)
	assert.Nil(t, user.UnitID)
	require.Len(t, sink.logs, 1)
	assert.Nil(t, sink.logs[0].NewValues["unit_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestUserService_Delete_Guards verifies the self-delete and
// last-super-admin protections.
func TestUserService_Delete_Guards(t *testing.T) {
	t.Run("self delete is rejected", func(t *testing.T) {
		mock := withMockDB(t)
		svc := newUserService(&captureSink{})

		err := svc.Delete(context.Background(), intPtr(3),
			&models.User{ID: 3, Name: "Budi", Username: "budi", Role: models.RoleAdmin})

		assert.ErrorIs(t, err, services.ErrSelfDelete)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("last super admin cannot be deleted", func(t *testing.T) {
		mock := withMockDB(t)
		svc := newUserService(&captureSink{})

		mock.ExpectQuery("SELECT COUNT").
			WithArgs(models.RoleSuperAdmin, 1).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

		err := svc.Delete(context.Background(), intPtr(3),
			&models.User{ID: 1, Name: "Root", Username: "root", Role: models.RoleSuperAdmin})

		assert.ErrorIs(t, err, services.ErrLastSuperAdmin)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("super admin with a peer can be deleted", func(t *testing.T) {
		mock := withMockDB(t)
		sink := &captureSink{}
		svc := newUserService(sink)

		mock.ExpectQuery("SELECT COUNT").
			WithArgs(models.RoleSuperAdmin, 1).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectExec("DELETE FROM users").
			WithArgs(1).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		err := svc.Delete(context.Background(), intPtr(3),
			&models.User{ID: 1, Name: "Root", Username: "root", Role: models.RoleSuperAdmin})

		require.NoError(t, err)
		require.Len(t, sink.logs, 1)
		assert.Equal(t, "deleted", sink.logs[0].Action)
		assert.Equal(t, "user", sink.logs[0].AuditableType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestUserService_Update_DemotionGuard verifies demoting the only super
// admin is rejected before the write.
func TestUserService_Update_DemotionGuard(t *testing.T) {
	mock := withMockDB(t)
	svc := newUserService(&captureSink{})

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(models.RoleSuperAdmin, 1).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

	before := &models.User{ID: 1, Name: "Root", Username: "root", Role: models.RoleSuperAdmin}
	updated := &models.User{ID: 1, Name: "Root", Username: "root", Role: models.RoleAdmin}

	err := svc.Update(context.Background(), intPtr(1), before, updated, "")

	assert.ErrorIs(t, err, services.ErrLastSuperAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestUserService_Update_KeepsPasswordWhenBlank verifies a blank
// password preserves the stored hash and stays out of the audit diff.
func TestUserService_Update_KeepsPasswordWhenBlank(t *testing.T) {
	mock := withMockDB(t)
	sink := &captureSink{}
	svc := newUserService(sink)

	before := &models.User{
		ID: 2, Name: "Budi", Username: "budi", Role: models.RoleAdmin,
		PasswordHash: "$2a$12$existing",
	}
	updated := &models.User{ID: 2, Name: "Budi S.", Username: "budi", Role: models.RoleAdmin}

	mock.ExpectExec("UPDATE users").
		WithArgs("Budi S.", "budi", "", models.RoleAdmin,
			(*int)(nil), (*int)(nil), "$2a$12$existing", 2).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.Update(context.Background(), intPtr(1), before, updated, "")

	require.NoError(t, err)
	assert.Equal(t, "$2a$12$existing", updated.PasswordHash)
	require.Len(t, sink.logs, 1)
	assert.NotContains(t, sink.logs[0].NewValues, "password_hash")
	assert.Equal(t, "Budi S.", sink.logs[0].NewValues["name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
