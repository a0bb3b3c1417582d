// Package api implements the HTTP REST API for FleetAuth.
//
// This package provides:
//   - Account endpoints: register, verify, login, refresh, logout
//   - Team endpoints: list, register, update and remove members
//   - Company endpoints: profile, locations and fleet categories
//   - A per-company audit trail
//   - Middleware stack (request ID, logging, recovery, CORS, rate limiting, JWT)
//   - TLS support for production deployments
//
// # Security
//
// Protected routes require an access token issued by /auth/login or
// /auth/refresh in the Authorization header. Handlers act as the token's
// email; privileges are always re-read from the company registry, so a
// change takes effect before the token expires.
//
// # Errors
//
// Every failure is written as {"status", "code", "message"}. The status and
// code come from the error's fault kind; storage and unclassified errors
// are reported as a generic internal error and logged.
package api
