package privilege

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nerrad567/fleetauth-core/internal/fault"
)

// Privilege is a single token from the closed vocabulary.
type Privilege string

// Privilege tokens.
const (
	// Owner is held by exactly one member, the company creator.
	Owner Privilege = "owner"

	// Admin may add, remove and manage members.
	Admin Privilege = "admin"

	// Add may add members.
	Add Privilege = "add"

	// Remove may remove members.
	Remove Privilege = "remove"

	// Member is the default privilege. It authorizes nothing.
	Member Privilege = "member"

	// Manager has full dashboard access.
	Manager Privilege = "manager"

	// Dispatcher may manage trips.
	Dispatcher Privilege = "dispatcher"

	// Viewer has read-only dashboard access.
	Viewer Privilege = "viewer"
)

// vocabulary fixes the bit position of each token. Order also controls
// the order returned by Set.Slice.
var vocabulary = [...]Privilege{Owner, Admin, Add, Remove, Member, Manager, Dispatcher, Viewer}

// ErrUnknownPrivilege is returned by Parse for a token outside the vocabulary.
var ErrUnknownPrivilege = fault.Wrap(fault.ErrInvalidArgument, "privilege: unknown token")

// Valid reports whether p belongs to the vocabulary.
func (p Privilege) Valid() bool {
	return p.bit() != 0
}

func (p Privilege) bit() Set {
	for i, v := range vocabulary {
		if v == p {
			return 1 << i
		}
	}
	return 0
}

// All returns every privilege in vocabulary order.
func All() []Privilege {
	out := make([]Privilege, len(vocabulary))
	copy(out, vocabulary[:])
	return out
}

// Set is an immutable set of privileges stored as a bitmask.
// The zero Set is treated as {member} by every decision method.
type Set uint16

// Of builds a Set from known privileges. Unknown values are ignored.
func Of(privileges ...Privilege) Set {
	var s Set
	for _, p := range privileges {
		s |= p.bit()
	}
	return s
}

// Normalize converts raw tokens into a Set, dropping anything outside the
// vocabulary. The result is never empty: no valid tokens yields {member}.
func Normalize(tokens []string) Set {
	var s Set
	for _, tok := range tokens {
		s |= canonical(tok).bit()
	}
	if s == 0 {
		return Of(Member)
	}
	return s
}

// Parse converts raw tokens into a Set and rejects the whole list if any
// token is unknown. An empty list yields {member}.
func Parse(tokens []string) (Set, error) {
	var s Set
	for _, tok := range tokens {
		bit := canonical(tok).bit()
		if bit == 0 {
			return 0, fmt.Errorf("%w: %q", ErrUnknownPrivilege, tok)
		}
		s |= bit
	}
	if s == 0 {
		return Of(Member), nil
	}
	return s, nil
}

func canonical(tok string) Privilege {
	return Privilege(strings.ToLower(strings.TrimSpace(tok)))
}

// norm applies the {member} default to an empty set.
func (s Set) norm() Set {
	if s == 0 {
		return Of(Member)
	}
	return s
}

// Has reports whether p is in the set.
func (s Set) Has(p Privilege) bool {
	bit := p.bit()
	return bit != 0 && s.norm()&bit != 0
}

// With returns a copy of s that also contains p.
func (s Set) With(p Privilege) Set {
	return s | p.bit()
}

// Slice returns the privileges in vocabulary order.
func (s Set) Slice() []Privilege {
	s = s.norm()
	out := make([]Privilege, 0, len(vocabulary))
	for i, p := range vocabulary {
		if s&(1<<i) != 0 {
			out = append(out, p)
		}
	}
	return out
}

// Strings returns the privileges as raw tokens in vocabulary order.
func (s Set) Strings() []string {
	ps := s.Slice()
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return out
}

// String implements fmt.Stringer.
func (s Set) String() string {
	return "{" + strings.Join(s.Strings(), ",") + "}"
}

// MarshalJSON encodes the set as an array of tokens.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// UnmarshalJSON decodes an array of tokens leniently, as Normalize does.
func (s *Set) UnmarshalJSON(data []byte) error {
	var tokens []string
	if err := json.Unmarshal(data, &tokens); err != nil {
		return fmt.Errorf("decoding privilege set: %w", err)
	}
	*s = Normalize(tokens)
	return nil
}
