package company

import "github.com/nerrad567/fleetauth-core/internal/fault"

// Domain-specific errors for company operations.
// Use errors.Is() to check for these, or for the fault kind they wrap.
var (
	// ErrCompanyNotFound is returned when no company has the given name.
	ErrCompanyNotFound = fault.Wrap(fault.ErrNotFound, "company: not found")

	// ErrCompanyExists is returned when a company name is already registered.
	ErrCompanyExists = fault.Wrap(fault.ErrConflict, "company: already exists")

	// ErrMemberNotFound is returned when the target is not a member.
	ErrMemberNotFound = fault.Wrap(fault.ErrNotFound, "company: member not found")

	// ErrMemberExists is returned when adding a current member again.
	ErrMemberExists = fault.Wrap(fault.ErrConflict, "company: already a member")

	// ErrMemberOfOtherCompany is returned when the user belongs to another company.
	ErrMemberOfOtherCompany = fault.Wrap(fault.ErrConflict, "company: user belongs to another company")

	// ErrForbidden is returned when the actor's privileges do not allow the operation.
	ErrForbidden = fault.Wrap(fault.ErrForbidden, "company: insufficient privileges")

	// ErrOwnerProtected is returned for any change that would remove the
	// owner, alter the owner's privileges by another actor, or drop owner.
	ErrOwnerProtected = fault.Wrap(fault.ErrForbidden, "company: owner membership is protected")

	// ErrOwnerGrant is returned when owner is requested for a non-owner.
	ErrOwnerGrant = fault.Wrap(fault.ErrForbidden, "company: owner privilege cannot be granted")

	// ErrLocationNotFound is returned for an unknown location index or id.
	ErrLocationNotFound = fault.Wrap(fault.ErrNotFound, "company: location not found")

	// ErrFleetCategoryNotFound is returned for an unknown fleet category index or id.
	ErrFleetCategoryNotFound = fault.Wrap(fault.ErrNotFound, "company: fleet category not found")

	// ErrInvalidName is returned for an empty or over-long name.
	ErrInvalidName = fault.Wrap(fault.ErrInvalidArgument, "company: invalid name")

	// ErrInvalidField is returned when a field fails validation.
	ErrInvalidField = fault.Wrap(fault.ErrInvalidArgument, "company: invalid field")

	// ErrInvalidEnum is returned when a value is outside its closed enumeration.
	ErrInvalidEnum = fault.Wrap(fault.ErrInvalidArgument, "company: value not allowed")
)
