package company

import (
	"context"
	"time"

	"github.com/nerrad567/fleetauth-core/internal/privilege"
)

// Profile returns the company's profile fields.
func (r *Registry) Profile(name string) (Profile, error) {
	c, err := r.Get(name)
	if err != nil {
		return Profile{}, err
	}
	return c.Profile, nil
}

// UpdateProfile applies a partial profile change. Requires
// CanManagePrivileges; every supplied field is validated before any is
// applied.
func (r *Registry) UpdateProfile(ctx context.Context, name, actor string, update ProfileUpdate) (Profile, error) {
	next, err := r.mutate(ctx, name, actor, "update the profile", privilege.Set.CanManagePrivileges,
		func(c *Company, _ string, _ time.Time) error {
			return update.apply(&c.Profile)
		})
	if err != nil {
		return Profile{}, err
	}
	return next.Profile, nil
}
