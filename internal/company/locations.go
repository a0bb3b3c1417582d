package company

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/nerrad567/fleetauth-core/internal/privilege"
)

// Locations returns the company's locations in order.
func (r *Registry) Locations(name string) ([]Location, error) {
	c, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return c.Locations, nil
}

// AddLocation appends a location. Requires CanManagePrivileges.
func (r *Registry) AddLocation(ctx context.Context, name, actor string, in LocationInput) (Location, error) {
	var added Location
	_, err := r.mutate(ctx, name, actor, "add locations", privilege.Set.CanManagePrivileges,
		func(c *Company, actor string, now time.Time) error {
			in, err := in.normalize()
			if err != nil {
				return err
			}
			added = Location{
				ID:        r.newID(),
				CompanyID: c.UUID,
				Name:      in.Name,
				Address:   in.Address,
				Type:      in.Type,
				Tags:      in.Tags,
				Stamp:     Stamp{AddedBy: actor, AddedAt: now},
			}
			c.Locations = append(c.Locations, added)
			return nil
		})
	if err != nil {
		return Location{}, err
	}
	return added.clone(), nil
}

// UpdateLocation replaces the editable fields of the location currently
// at index. added_by and added_at are preserved.
func (r *Registry) UpdateLocation(ctx context.Context, name, actor string, index int, in LocationInput) (Location, error) {
	return r.updateLocation(ctx, name, actor, func(c *Company) (int, error) {
		return locationAt(c, index)
	}, in)
}

// UpdateLocationByID is UpdateLocation addressed by the location's uuid.
func (r *Registry) UpdateLocationByID(ctx context.Context, name, actor, id string, in LocationInput) (Location, error) {
	return r.updateLocation(ctx, name, actor, func(c *Company) (int, error) {
		return locationByID(c, id)
	}, in)
}

// RemoveLocation removes the location currently at index. Later entries
// shift down by one.
func (r *Registry) RemoveLocation(ctx context.Context, name, actor string, index int) (Location, error) {
	return r.removeLocation(ctx, name, actor, func(c *Company) (int, error) {
		return locationAt(c, index)
	})
}

// RemoveLocationByID is RemoveLocation addressed by the location's uuid.
func (r *Registry) RemoveLocationByID(ctx context.Context, name, actor, id string) (Location, error) {
	return r.removeLocation(ctx, name, actor, func(c *Company) (int, error) {
		return locationByID(c, id)
	})
}

func (r *Registry) updateLocation(ctx context.Context, name, actor string,
	resolve func(*Company) (int, error), in LocationInput,
) (Location, error) {
	var updated Location
	_, err := r.mutate(ctx, name, actor, "update locations", privilege.Set.CanManagePrivileges,
		func(c *Company, actor string, now time.Time) error {
			in, err := in.normalize()
			if err != nil {
				return err
			}
			i, err := resolve(c)
			if err != nil {
				return err
			}
			l := c.Locations[i]
			l.Name, l.Address, l.Type, l.Tags = in.Name, in.Address, in.Type, in.Tags
			l.touch(actor, now)
			c.Locations[i] = l
			updated = l
			return nil
		})
	if err != nil {
		return Location{}, err
	}
	return updated.clone(), nil
}

func (r *Registry) removeLocation(ctx context.Context, name, actor string,
	resolve func(*Company) (int, error),
) (Location, error) {
	var removed Location
	_, err := r.mutate(ctx, name, actor, "remove locations", privilege.Set.CanManagePrivileges,
		func(c *Company, _ string, _ time.Time) error {
			i, err := resolve(c)
			if err != nil {
				return err
			}
			removed = c.Locations[i]
			c.Locations = slices.Delete(c.Locations, i, i+1)
			return nil
		})
	if err != nil {
		return Location{}, err
	}
	return removed.clone(), nil
}

func locationAt(c *Company, index int) (int, error) {
	if index < 0 || index >= len(c.Locations) {
		return 0, fmt.Errorf("%w: index %d of %d", ErrLocationNotFound, index, len(c.Locations))
	}
	return index, nil
}

func locationByID(c *Company, id string) (int, error) {
	i := slices.IndexFunc(c.Locations, func(l Location) bool { return l.ID == id })
	if i < 0 {
		return 0, fmt.Errorf("%w: %q", ErrLocationNotFound, id)
	}
	return i, nil
}
