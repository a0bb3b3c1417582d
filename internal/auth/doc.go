// Package auth provides credential and session primitives for FleetAuth.
//
// It implements:
//   - Argon2id password hashing in PHC string format (Hasher)
//   - HS256 access tokens carrying company, privileges and dashboard role,
//     and single-purpose email verification tokens (Tokens)
//   - Opaque refresh tokens stored as SHA-256 hashes in SQLite, rotated
//     within a family, with the whole family revoked on reuse
//
// Every error returned to callers for a bad token or bad credentials
// matches fault.ErrUnauthenticated.
package auth
