package auth

import "github.com/nerrad567/fleetauth-core/internal/fault"

// Sentinel errors for auth operations.
var (
	ErrInvalidCredentials = fault.Wrap(fault.ErrUnauthenticated, "auth: invalid credentials")
	ErrTokenInvalid       = fault.Wrap(fault.ErrUnauthenticated, "auth: invalid token")
	ErrTokenExpired       = fault.Wrap(fault.ErrUnauthenticated, "auth: token has expired")
	ErrTokenRevoked       = fault.Wrap(fault.ErrUnauthenticated, "auth: token has been revoked")
	ErrTokenReuse         = fault.Wrap(fault.ErrUnauthenticated, "auth: refresh token reuse detected")
	ErrWrongPurpose       = fault.Wrap(fault.ErrUnauthenticated, "auth: token issued for another purpose")
	ErrWeakSecret         = fault.Wrap(fault.ErrInvalidArgument, "auth: signing secret too short")
	ErrWeakPassword       = fault.Wrap(fault.ErrInvalidArgument, "auth: password does not meet length requirements")
)
