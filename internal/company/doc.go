// Package company implements the company registry: company records keyed
// by name, their member lists with per-member privileges, and the profile
// extensions (locations, fleet categories, profile fields).
//
// Every mutating operation runs the same pipeline under the registry lock:
//
//  1. Resolve the company by exact name (NotFound).
//  2. Resolve the actor's privileges from its membership. Non-members get
//     the default {member} set, which authorizes nothing.
//  3. Check the operation's privilege predicate (Forbidden) before any
//     state is touched.
//  4. Apply owner protection: the owner's membership can never be removed,
//     only the owner may change the owner's privileges, and owner is never
//     granted or dropped.
//  5. Apply the change to a copy of the company, persist the whole snapshot
//     through the Store, then publish the copy. A failed write leaves the
//     previous record in place and returns a storage error.
//
// Published *Company values are never modified after they are stored, so
// readers holding the read lock only briefly can copy them out safely.
//
// Locations and fleet categories are ordered and addressed by index. Each
// entry also carries a generated uuid, and the ...ByID variants resolve it
// to the current index under the same lock.
package company
