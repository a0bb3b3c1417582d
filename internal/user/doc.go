// Package user implements the user directory: a mapping from normalised
// email address to user record, persisted as a whole snapshot through a
// Store (normally an encrypted vault.File).
//
// A user is created unverified, may be marked verified exactly once, and
// carries the name of the company it joined at registration time.
package user
