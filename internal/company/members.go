package company

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/fleetauth-core/internal/privilege"
	"github.com/nerrad567/fleetauth-core/internal/user"
)

// AddMember adds email to the company. The actor must be allowed to add
// members. privileges is validated strictly: one unknown token rejects the
// call before anything changes. An empty list grants {member}.
func (r *Registry) AddMember(ctx context.Context, name, actor, email string, privileges []string) (MemberEntry, error) {
	email = user.NormalizeEmail(email)

	var added Member
	_, err := r.mutate(ctx, name, actor, "add members", privilege.Set.CanAddMembers,
		func(c *Company, actor string, now time.Time) error {
			if err := user.ValidateEmail(email); err != nil {
				return err
			}
			set, err := privilege.Parse(privileges)
			if err != nil {
				return err
			}
			if set.IsOwner() {
				return ErrOwnerGrant
			}
			if _, exists := c.Members[email]; exists {
				return fmt.Errorf("%w: %s", ErrMemberExists, email)
			}
			if other := r.companyOf(email); other != "" {
				return fmt.Errorf("%w: %s is a member of %q", ErrMemberOfOtherCompany, email, other)
			}

			added = Member{
				Privileges: set.Strings(),
				AddedBy:    actor,
				AddedAt:    now,
			}
			c.Members[email] = added
			return nil
		})
	if err != nil {
		return MemberEntry{}, err
	}
	return MemberEntry{Email: email, Member: added.clone()}, nil
}

// RemoveMember removes email from the company. The actor must be allowed
// to remove members and the owner can never be removed.
func (r *Registry) RemoveMember(ctx context.Context, name, actor, email string) error {
	email = user.NormalizeEmail(email)

	_, err := r.mutate(ctx, name, actor, "remove members", privilege.Set.CanRemoveMembers,
		func(c *Company, _ string, _ time.Time) error {
			target, ok := c.Members[email]
			if !ok {
				return fmt.Errorf("%w: %s", ErrMemberNotFound, email)
			}
			if target.Set().IsOwner() {
				return fmt.Errorf("%w: cannot remove the owner", ErrOwnerProtected)
			}
			delete(c.Members, email)
			return nil
		})
	return err
}

// UpdateMemberPrivileges replaces email's privileges. The actor must be
// allowed to manage privileges. Only the owner may touch the owner's
// entry, and the owner privilege is never granted or dropped.
func (r *Registry) UpdateMemberPrivileges(ctx context.Context, name, actor, email string, privileges []string) (MemberEntry, error) {
	email = user.NormalizeEmail(email)

	var updated Member
	_, err := r.mutate(ctx, name, actor, "manage privileges", privilege.Set.CanManagePrivileges,
		func(c *Company, actor string, now time.Time) error {
			target, ok := c.Members[email]
			if !ok {
				return fmt.Errorf("%w: %s", ErrMemberNotFound, email)
			}

			targetIsOwner := target.Set().IsOwner()
			if targetIsOwner && actor != email {
				return fmt.Errorf("%w: only the owner may change the owner's privileges", ErrOwnerProtected)
			}

			set, err := privilege.Parse(privileges)
			if err != nil {
				return err
			}
			switch {
			case targetIsOwner && !set.IsOwner():
				return fmt.Errorf("%w: owner privilege cannot be dropped", ErrOwnerProtected)
			case !targetIsOwner && set.IsOwner():
				return ErrOwnerGrant
			}

			target.Privileges = set.Strings()
			target.UpdatedBy = actor
			target.UpdatedAt = &now
			c.Members[email] = target
			updated = target
			return nil
		})
	if err != nil {
		return MemberEntry{}, err
	}
	return MemberEntry{Email: email, Member: updated.clone()}, nil
}
