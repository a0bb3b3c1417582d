package team

import "github.com/nerrad567/fleetauth-core/internal/fault"

// Domain-specific errors for team workflows.
var (
	// ErrUnknownActor is returned when the acting account does not exist.
	ErrUnknownActor = fault.Wrap(fault.ErrForbidden, "team: unknown actor")

	// ErrNoCompany is returned when the actor belongs to no company.
	ErrNoCompany = fault.Wrap(fault.ErrForbidden, "team: actor has no company")

	// ErrNotMember is returned when the actor is no longer a member of
	// the company on their account.
	ErrNotMember = fault.Wrap(fault.ErrForbidden, "team: actor is not a member of the company")

	// ErrNotVerified is returned on login before the email is verified.
	ErrNotVerified = fault.Wrap(fault.ErrForbidden, "team: email address not verified")

	// ErrMissingDependency is returned by New when a required collaborator is nil.
	ErrMissingDependency = fault.Wrap(fault.ErrInvalidArgument, "team: missing dependency")
)
