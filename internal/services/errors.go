package services

import "errors"

// Sentinel errors surfaced by the service layer. Handlers translate
// these into HTTP statuses; anything else is treated as a server error.
var (
	// ErrInvalidCredentials is returned for unknown usernames and wrong
	// passwords alike, so login responses never reveal which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden is returned when the acting user may not perform the
	// requested mutation (role rules, super admin management).
	ErrForbidden = errors.New("operation not permitted")

	// ErrLastSuperAdmin guards against demoting or deleting the only
	// remaining super admin.
	ErrLastSuperAdmin = errors.New("at least one super admin must remain")

	// ErrSelfDelete is returned when a user tries to delete their own account.
	ErrSelfDelete = errors.New("cannot delete the currently logged in user")

	// ErrUnitRequired is returned when an operator account is saved
	// without a unit assignment.
	ErrUnitRequired = errors.New("operators require a unit assignment")

	// ErrUnitHasEntries is returned when deleting a unit that still owns
	// recorded entries.
	ErrUnitHasEntries = errors.New("unit still has recorded entries")

	// ErrInvalidRole is returned for unrecognized role values.
	ErrInvalidRole = errors.New("invalid role")

	// ErrAttachmentTooLarge is returned when an upload exceeds the
	// configured size cap.
	ErrAttachmentTooLarge = errors.New("attachment exceeds maximum size")

	// ErrAttachmentType is returned for uploads with an unsupported
	// content type.
	ErrAttachmentType = errors.New("unsupported attachment type")
)
