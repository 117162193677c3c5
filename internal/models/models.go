// Package models defines the domain entities and data transfer objects for Rengiat.
// It includes database models mapped to PostgreSQL tables, form DTOs for user input,
// and enriched view structures returned by the JSON API.
package models

import "time"

// ============================================================================
// Domain Models (Database Entities)
// ============================================================================

// User represents a system user account with role-based access control.
//
// Database Table: users
// Security Note: PasswordHash should never be exposed in API responses or logs
type User struct {
	ID           int        `db:"id"`            // Primary key, auto-increment
	Name         string     `db:"name"`          // Display name
	Username     string     `db:"username"`      // Unique, used for login
	Email        string     `db:"email"`         // Unique contact address
	Role         string     `db:"role"`          // One of the Role* constants
	SubditID     *int       `db:"subdit_id"`     // Owning subdit (nullable)
	UnitID       *int       `db:"unit_id"`       // Operator's unit (nullable, operators only)
	PasswordHash string     `db:"password_hash"` // bcrypt hashed password
	CreatedAt    time.Time  `db:"created_at"`    // Account creation timestamp
	UpdatedAt    *time.Time `db:"updated_at"`    // Last modification timestamp
}

// Roles recognized by the application.
//
// Admin-like roles (super_admin, admin) have full CRUD access everywhere.
// Operators record entries for their own unit only. Viewers have read-only
// access to reports but may export them.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleOperator   = "operator"
	RoleViewer     = "viewer"
)

// IsAdminLike reports whether the user holds an administrative role.
func (u *User) IsAdminLike() bool {
	return u.Role == RoleSuperAdmin || u.Role == RoleAdmin
}

// IsSuperAdmin reports whether the user is a super admin.
func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// IsOperator reports whether the user is an operator.
func (u *User) IsOperator() bool {
	return u.Role == RoleOperator
}

// CanExport reports whether the role may download report exports.
func CanExport(role string) bool {
	return role == RoleSuperAdmin || role == RoleAdmin || role == RoleViewer
}

// ValidRole reports whether the given string is a recognized role value.
func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleOperator, RoleViewer:
		return true
	}
	return false
}

// Subdit represents an organizational sub-division (sub-directorate) that
// owns a subset of entries and users.
//
// Database Table: subdits
// Ordering: (order_index, name) everywhere the list is displayed
type Subdit struct {
	ID         int       `db:"id"`          // Primary key
	Name       string    `db:"name"`        // Unique display name
	OrderIndex int       `db:"order_index"` // Stable sort position
	CreatedAt  time.Time `db:"created_at"`  // Creation timestamp
}

// Unit represents an operational sub-team that performs logged activities.
// Units are global (not owned by a subdit); entries carry the subdit
// assignment directly.
//
// Database Table: units
// Ordering: (order_index, name), consistent between listings and report columns
type Unit struct {
	ID         int       `db:"id"`          // Primary key
	Name       string    `db:"name"`        // Internal name
	OrderIndex int       `db:"order_index"` // Stable sort position, also used for display ("Unit N")
	Active     bool      `db:"active"`      // Inactive units are hidden from input and reports
	CreatedAt  time.Time `db:"created_at"`  // Creation timestamp
}

// RengiatEntry represents one logged activity record tied to a date, an
// optional start time, a unit, and a subdit.
//
// Database Table: rengiat_entries
// Invariant: unit_id and subdit_id must reference existing rows (FK, restrict delete)
type RengiatEntry struct {
	ID          int        `db:"id"`          // Primary key
	SubditID    int        `db:"subdit_id"`   // Owning subdit
	UnitID      int        `db:"unit_id"`     // Unit performing the activity
	EntryDate   time.Time  `db:"entry_date"`  // Calendar date (no time component)
	TimeStart   *string    `db:"time_start"`  // "HH:MM" start time, nullable
	Description string     `db:"description"` // Free text activity description
	CaseNumber  *string    `db:"case_number"` // Optional case reference, appended to the description
	CreatedBy   int        `db:"created_by"`  // Foreign key to users.id
	UpdatedBy   *int       `db:"updated_by"`  // Last editor, nullable
	CreatedAt   time.Time  `db:"created_at"`  // Creation timestamp
	UpdatedAt   *time.Time `db:"updated_at"`  // Last modification timestamp

	// AttachmentCount is populated by report queries (COUNT over
	// rengiat_attachments); it is not a stored column.
	AttachmentCount int `db:"-"`
}

// RengiatAttachment represents a stored binary attachment of an entry.
// Rows cascade-delete with their entry; the stored file is removed by the
// entry service before the row goes away.
//
// Database Table: rengiat_attachments
type RengiatAttachment struct {
	ID        int       `db:"id"`         // Primary key
	EntryID   int       `db:"entry_id"`   // Owning entry
	Path      string    `db:"path"`       // Relative path inside the attachment dir
	MimeType  string    `db:"mime_type"`  // Stored content type
	SizeBytes int64     `db:"size_bytes"` // File size
	CreatedAt time.Time `db:"created_at"` // Upload timestamp
}

// AuditLog represents an immutable audit trail record for entity mutations.
//
// Database Table: audit_logs
// Immutability: audit logs are append-only and must never be modified or deleted
type AuditLog struct {
	ID            int            // Primary key
	ActorUserID   *int           // User who performed the action (nullable for system writes)
	Action        string         // "created", "updated" or "deleted"
	AuditableType string         // Subject tag: "rengiat_entry", "unit", "user"
	AuditableID   int            // ID of the affected row
	OldValues     map[string]any // Pre-mutation values (nil on create)
	NewValues     map[string]any // Post-mutation values (nil on delete)
	CreatedAt     time.Time      // When the mutation occurred
	ActorName     string         // Joined actor display name (listing only)
}

// ReportSetting holds the per-user TDD signature block rendered at the
// bottom of exported reports. All fields are cosmetic free text.
//
// Database Table: report_settings
type ReportSetting struct {
	ID                int    `db:"id"`
	UserID            int    `db:"user_id"`
	AtasNama          string `db:"atas_nama"`
	Jabatan           string `db:"jabatan"`
	NamaPenandatangan string `db:"nama_penandatangan"`
	PangkatNRP        string `db:"pangkat_nrp"`
}

// HasTDD reports whether any signature field carries meaningful content.
// Exports omit the signature footer entirely when this is false.
func (s *ReportSetting) HasTDD() bool {
	return hasContent(s.AtasNama) || hasContent(s.Jabatan) ||
		hasContent(s.NamaPenandatangan) || hasContent(s.PangkatNRP)
}

func hasContent(v string) bool {
	for _, r := range v {
		if r != ' ' && r != '\t' && r != '\n' {
			return true
		}
	}
	return false
}

// ============================================================================
// Data Transfer Objects (DTOs) - Form Input
// ============================================================================

// LoginForm represents user login credentials.
type LoginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// EntryForm represents data for creating or updating an activity entry.
// CaseNumber is accepted for API completeness; the daily input screen
// leaves it empty.
type EntryForm struct {
	SubditID    int     `json:"subdit_id" form:"subdit_id"`
	UnitID      int     `json:"unit_id" form:"unit_id"`
	EntryDate   string  `json:"entry_date" form:"entry_date"` // "YYYY-MM-DD"
	TimeStart   *string `json:"time_start" form:"time_start"` // "HH:MM", optional
	Description string  `json:"description" form:"description"`
	CaseNumber  *string `json:"case_number" form:"case_number"`
}

// UnitForm represents data for creating or updating a unit.
type UnitForm struct {
	Name       string `json:"name" form:"name"`
	OrderIndex int    `json:"order_index" form:"order_index"`
	Active     *bool  `json:"active" form:"active"` // nil on create defaults to true
}

// SubditForm represents data for creating or updating a subdit.
type SubditForm struct {
	Name       string `json:"name" form:"name"`
	OrderIndex int    `json:"order_index" form:"order_index"`
}

// UserForm represents data for creating or updating a user account.
// Password is optional on update (blank keeps the current hash).
type UserForm struct {
	Name     string `json:"name" form:"name"`
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Role     string `json:"role" form:"role"`
	SubditID *int   `json:"subdit_id" form:"subdit_id"`
	UnitID   *int   `json:"unit_id" form:"unit_id"`
	Password string `json:"password" form:"password"`
}

// ReportSettingForm carries the editable TDD signature fields.
type ReportSettingForm struct {
	AtasNama          string `json:"atas_nama" form:"atas_nama"`
	Jabatan           string `json:"jabatan" form:"jabatan"`
	NamaPenandatangan string `json:"nama_penandatangan" form:"nama_penandatangan"`
	PangkatNRP        string `json:"pangkat_nrp" form:"pangkat_nrp"`
}
