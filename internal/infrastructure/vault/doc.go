// Package vault provides encryption at rest for JSON snapshot stores.
//
// A store file holds one JSON document encrypted as:
//
//	IV (16 bytes) || AES-256-CBC(PKCS#7(JSON)) [|| HMAC-SHA256 tag (32 bytes)]
//
// The AES key is PBKDF2-HMAC-SHA256 over the configured secret with a fixed
// salt, 100000 iterations and a 32 byte output. The trailing tag is written
// unless the cipher runs in legacy layout mode. Its key is derived from the
// AES key with HKDF-SHA256, and it is checked before any decryption so a
// flipped byte anywhere in the file is reported as corruption.
//
// File is a generic whole-snapshot store:
//
//	users := vault.NewFile[map[string]user.User](path, cipher)
//	snapshot, err := users.Load(ctx)
//	if errors.Is(err, vault.ErrAbsent) {
//	    // first run, start empty
//	}
//
// Every error returned by this package except ErrAbsent matches
// fault.ErrStorage.
package vault
