package company

import (
	"slices"
	"time"

	"github.com/nerrad567/fleetauth-core/internal/privilege"
)

// Company is a stored company record. The JSON shape is the persisted format;
// profile fields are flattened into the top level.
type Company struct {
	Name            string            `json:"name"`
	UUID            string            `json:"uuid"`
	OwnerEmail      string            `json:"owner_email"`
	Members         map[string]Member `json:"members"`
	Locations       []Location        `json:"locations"`
	FleetCategories []FleetCategory   `json:"fleet_categories"`
	CreatedAt       time.Time         `json:"created_at"`
	Profile
}

// Member is one membership entry, keyed by email in Company.Members.
type Member struct {
	Privileges []string   `json:"privileges"`
	AddedBy    string     `json:"added_by"`
	AddedAt    time.Time  `json:"added_at"`
	UpdatedBy  string     `json:"updated_by,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// Set returns the member's privileges, read leniently.
func (m Member) Set() privilege.Set {
	return privilege.Normalize(m.Privileges)
}

// MemberEntry pairs a member with its email for ordered listings.
type MemberEntry struct {
	Email string `json:"email"`
	Member
}

// Stamp records who created and last changed a sub-record.
type Stamp struct {
	AddedBy   string     `json:"added_by"`
	AddedAt   time.Time  `json:"added_at"`
	UpdatedBy string     `json:"updated_by,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Location is a physical site belonging to a company.
type Location struct {
	ID        string   `json:"uuid"`
	CompanyID string   `json:"company_id"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Type      string   `json:"type"`
	Tags      []string `json:"tags"`
	Stamp
}

// LocationInput carries the caller-editable location fields.
type LocationInput struct {
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Type    string   `json:"type"`
	Tags    []string `json:"tags"`
}

// FleetCategory groups vehicles of one kind inside a company.
type FleetCategory struct {
	ID          string   `json:"uuid"`
	CompanyID   string   `json:"company_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	VehicleType string   `json:"vehicle_type"`
	Capacity    int      `json:"capacity,omitempty"`
	Tags        []string `json:"tags"`
	Stamp
}

// FleetCategoryInput carries the caller-editable fleet category fields.
type FleetCategoryInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	VehicleType string   `json:"vehicle_type"`
	Capacity    int      `json:"capacity"`
	Tags        []string `json:"tags"`
}

// Profile holds the descriptive company fields.
type Profile struct {
	Address      string `json:"address,omitempty"`
	Industry     string `json:"industry,omitempty"`
	Size         string `json:"size,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	Website      string `json:"website,omitempty"`
	Timezone     string `json:"timezone,omitempty"`
}

// ProfileUpdate is a partial profile change. Nil fields are left as is;
// an empty string clears the field.
type ProfileUpdate struct {
	Address      *string `json:"address,omitempty"`
	Industry     *string `json:"industry,omitempty"`
	Size         *string `json:"size,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	Website      *string `json:"website,omitempty"`
	Timezone     *string `json:"timezone,omitempty"`
}

// privilegesOf resolves an email's privileges. Non-members get {member}.
func (c *Company) privilegesOf(email string) privilege.Set {
	m, ok := c.Members[email]
	if !ok {
		return privilege.Normalize(nil)
	}
	return m.Set()
}

// clone returns a deep copy of c.
func (c *Company) clone() *Company {
	out := *c

	out.Members = make(map[string]Member, len(c.Members))
	for email, m := range c.Members {
		out.Members[email] = m.clone()
	}

	out.Locations = make([]Location, len(c.Locations))
	for i, l := range c.Locations {
		out.Locations[i] = l.clone()
	}

	out.FleetCategories = make([]FleetCategory, len(c.FleetCategories))
	for i, f := range c.FleetCategories {
		out.FleetCategories[i] = f.clone()
	}

	return &out
}

func (m Member) clone() Member {
	m.Privileges = slices.Clone(m.Privileges)
	m.UpdatedAt = cloneTime(m.UpdatedAt)
	return m
}

func (l Location) clone() Location {
	l.Tags = slices.Clone(l.Tags)
	l.Stamp = l.Stamp.clone()
	return l
}

func (f FleetCategory) clone() FleetCategory {
	f.Tags = slices.Clone(f.Tags)
	f.Stamp = f.Stamp.clone()
	return f
}

func (s Stamp) clone() Stamp {
	s.UpdatedAt = cloneTime(s.UpdatedAt)
	return s
}

func (s *Stamp) touch(actor string, now time.Time) {
	s.UpdatedBy = actor
	s.UpdatedAt = &now
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
