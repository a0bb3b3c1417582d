// Package fault defines the error kinds shared by every fleetauth component.
//
// Components declare their own sentinel errors and wrap one of the kind
// sentinels below, so callers can branch on the kind without matching
// message text:
//
//	var ErrCompanyNotFound = fault.Wrap(fault.ErrNotFound, "company: not found")
//
//	if errors.Is(err, fault.ErrNotFound) {
//	    // 404
//	}
//
// KindOf and HTTPStatus classify an arbitrary error chain.
package fault
