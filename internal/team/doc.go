// Package team implements the account and team workflows on top of the
// user directory and company registry.
//
// Every workflow follows the same sequence: resolve the actor, resolve the
// actor's company, let the registry authorize and mutate, then shape the
// response and log the outcome. Multi-step registrations undo the user
// record when the company step fails, so a failed call leaves no trace.
//
// Side effects that are not part of the result (verification mail, team
// events, metrics) are fire-and-forget: their failure is logged and never
// fails the workflow.
package team
