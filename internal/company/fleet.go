package company

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/nerrad567/fleetauth-core/internal/privilege"
)

// FleetCategories returns the company's fleet categories in order.
func (r *Registry) FleetCategories(name string) ([]FleetCategory, error) {
	c, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return c.FleetCategories, nil
}

// AddFleetCategory appends a fleet category. Requires CanManagePrivileges.
func (r *Registry) AddFleetCategory(ctx context.Context, name, actor string, in FleetCategoryInput) (FleetCategory, error) {
	var added FleetCategory
	_, err := r.mutate(ctx, name, actor, "add fleet categories", privilege.Set.CanManagePrivileges,
		func(c *Company, actor string, now time.Time) error {
			in, err := in.normalize()
			if err != nil {
				return err
			}
			added = FleetCategory{
				ID:          r.newID(),
				CompanyID:   c.UUID,
				Name:        in.Name,
				Description: in.Description,
				VehicleType: in.VehicleType,
				Capacity:    in.Capacity,
				Tags:        in.Tags,
				Stamp:       Stamp{AddedBy: actor, AddedAt: now},
			}
			c.FleetCategories = append(c.FleetCategories, added)
			return nil
		})
	if err != nil {
		return FleetCategory{}, err
	}
	return added.clone(), nil
}

// UpdateFleetCategory replaces the editable fields of whichever category is
// at index when the call runs. After a removal, an index can refer to a
// different category than the caller last saw; use UpdateFleetCategoryByID
// to pin a specific entry.
func (r *Registry) UpdateFleetCategory(ctx context.Context, name, actor string, index int, in FleetCategoryInput) (FleetCategory, error) {
	return r.updateFleetCategory(ctx, name, actor, func(c *Company) (int, error) {
		return fleetCategoryAt(c, index)
	}, in)
}

// UpdateFleetCategoryByID is UpdateFleetCategory addressed by uuid.
func (r *Registry) UpdateFleetCategoryByID(ctx context.Context, name, actor, id string, in FleetCategoryInput) (FleetCategory, error) {
	return r.updateFleetCategory(ctx, name, actor, func(c *Company) (int, error) {
		return fleetCategoryByID(c, id)
	}, in)
}

// RemoveFleetCategory removes the category currently at index.
func (r *Registry) RemoveFleetCategory(ctx context.Context, name, actor string, index int) (FleetCategory, error) {
	return r.removeFleetCategory(ctx, name, actor, func(c *Company) (int, error) {
		return fleetCategoryAt(c, index)
	})
}

// RemoveFleetCategoryByID is RemoveFleetCategory addressed by uuid.
func (r *Registry) RemoveFleetCategoryByID(ctx context.Context, name, actor, id string) (FleetCategory, error) {
	return r.removeFleetCategory(ctx, name, actor, func(c *Company) (int, error) {
		return fleetCategoryByID(c, id)
	})
}

func (r *Registry) updateFleetCategory(ctx context.Context, name, actor string,
	resolve func(*Company) (int, error), in FleetCategoryInput,
) (FleetCategory, error) {
	var updated FleetCategory
	_, err := r.mutate(ctx, name, actor, "update fleet categories", privilege.Set.CanManagePrivileges,
		func(c *Company, actor string, now time.Time) error {
			in, err := in.normalize()
			if err != nil {
				return err
			}
			i, err := resolve(c)
			if err != nil {
				return err
			}
			f := c.FleetCategories[i]
			f.Name, f.Description, f.VehicleType = in.Name, in.Description, in.VehicleType
			f.Capacity, f.Tags = in.Capacity, in.Tags
			f.touch(actor, now)
			c.FleetCategories[i] = f
			updated = f
			return nil
		})
	if err != nil {
		return FleetCategory{}, err
	}
	return updated.clone(), nil
}

func (r *Registry) removeFleetCategory(ctx context.Context, name, actor string,
	resolve func(*Company) (int, error),
) (FleetCategory, error) {
	var removed FleetCategory
	_, err := r.mutate(ctx, name, actor, "remove fleet categories", privilege.Set.CanManagePrivileges,
		func(c *Company, _ string, _ time.Time) error {
			i, err := resolve(c)
			if err != nil {
				return err
			}
			removed = c.FleetCategories[i]
			c.FleetCategories = slices.Delete(c.FleetCategories, i, i+1)
			return nil
		})
	if err != nil {
		return FleetCategory{}, err
	}
	return removed.clone(), nil
}

func fleetCategoryAt(c *Company, index int) (int, error) {
	if index < 0 || index >= len(c.FleetCategories) {
		return 0, fmt.Errorf("%w: index %d of %d", ErrFleetCategoryNotFound, index, len(c.FleetCategories))
	}
	return index, nil
}

func fleetCategoryByID(c *Company, id string) (int, error) {
	i := slices.IndexFunc(c.FleetCategories, func(f FleetCategory) bool { return f.ID == id })
	if i < 0 {
		return 0, fmt.Errorf("%w: %q", ErrFleetCategoryNotFound, id)
	}
	return i, nil
}
