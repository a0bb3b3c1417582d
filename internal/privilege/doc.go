// Package privilege implements the fixed privilege vocabulary used for
// company team management and the pure decision functions over it.
//
// Vocabulary: owner, admin, add, remove, member, manager, dispatcher, viewer.
//
// Two entry points convert raw token lists into a Set:
//   - Normalize is lenient. Unknown tokens are dropped and an empty result
//     becomes {member}. Used when reading stored data.
//   - Parse is strict. Any unknown token fails the whole call with an
//     InvalidArgument error. Used when accepting caller input.
//
// Nothing in this package performs I/O and no decision function can fail.
package privilege
