package user

import "github.com/nerrad567/fleetauth-core/internal/fault"

// Domain-specific errors for user operations.
// Each matches one fault kind under errors.Is.
var (
	// ErrUserNotFound is returned when no user has the given email.
	ErrUserNotFound = fault.Wrap(fault.ErrNotFound, "user: not found")

	// ErrUserExists is returned when registering an email twice.
	ErrUserExists = fault.Wrap(fault.ErrConflict, "user: already exists")

	// ErrAlreadyVerified is returned on a second verification attempt.
	ErrAlreadyVerified = fault.Wrap(fault.ErrConflict, "user: already verified")

	// ErrInvalidEmail is returned for malformed email addresses.
	ErrInvalidEmail = fault.Wrap(fault.ErrInvalidArgument, "user: invalid email")

	// ErrInvalidName is returned for an over-long full name.
	ErrInvalidName = fault.Wrap(fault.ErrInvalidArgument, "user: invalid name")

	// ErrMissingPassword is returned when a record has no password hash.
	ErrMissingPassword = fault.Wrap(fault.ErrInvalidArgument, "user: password hash required")
)
