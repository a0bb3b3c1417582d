package vault

import (
	"github.com/nerrad567/fleetauth-core/internal/fault"
)

// Sentinel errors for vault operations. All but ErrAbsent are storage errors.
var (
	// ErrAbsent means the store file does not exist yet. Callers treat it as
	// an empty store. It is not a storage failure.
	ErrAbsent = fault.Wrap(fault.ErrNotFound, "vault: store file absent")

	// ErrInvalidKey is returned when the cipher key is not 32 bytes.
	ErrInvalidKey = fault.Wrap(fault.ErrStorage, "vault: key must be 32 bytes")

	// ErrTooShort is returned for payloads shorter than one IV.
	ErrTooShort = fault.Wrap(fault.ErrStorage, "vault: payload too short")

	// ErrMalformed is returned when the ciphertext is not a whole number of blocks.
	ErrMalformed = fault.Wrap(fault.ErrStorage, "vault: malformed ciphertext")

	// ErrIntegrity is returned when the authentication tag does not match.
	ErrIntegrity = fault.Wrap(fault.ErrStorage, "vault: integrity check failed")

	// ErrPadding is returned when PKCS#7 padding is invalid after decryption.
	ErrPadding = fault.Wrap(fault.ErrStorage, "vault: invalid padding")

	// ErrDecode is returned when decrypted bytes are not the expected JSON.
	ErrDecode = fault.Wrap(fault.ErrStorage, "vault: decoding payload failed")

	// ErrEncode is returned when a snapshot cannot be marshalled.
	ErrEncode = fault.Wrap(fault.ErrStorage, "vault: encoding payload failed")

	// ErrIO is returned for file system failures.
	ErrIO = fault.Wrap(fault.ErrStorage, "vault: file i/o failed")
)
