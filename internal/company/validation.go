package company

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
	_ "time/tzdata" // timezone validation must not depend on the host zoneinfo
	"unicode/utf8"

	"github.com/nerrad567/fleetauth-core/internal/user"
)

// Validation limits.
const (
	// MaxNameLength is the maximum length for company, location and fleet names.
	MaxNameLength = 100

	// MaxAddressLength is the maximum length of an address.
	MaxAddressLength = 255

	// MaxDescriptionLength is the maximum length of a fleet category description.
	MaxDescriptionLength = 500

	// MaxTags is the maximum number of tags on a sub-record.
	MaxTags = 20

	// MaxTagLength is the maximum length of one tag.
	MaxTagLength = 50

	// MaxCapacity bounds a fleet category's vehicle capacity.
	MaxCapacity = 100000
)

// Closed enumerations.
var (
	// LocationTypes are the allowed Location.Type values.
	LocationTypes = []string{"depot", "warehouse", "office", "yard", "customer_site", "service_center", "other"}

	// VehicleTypes are the allowed FleetCategory.VehicleType values.
	VehicleTypes = []string{"car", "van", "truck", "motorcycle", "bus", "trailer", "other"}

	// Industries are the allowed Profile.Industry values.
	Industries = []string{"logistics", "transportation", "delivery", "construction",
		"field_services", "passenger_transport", "other"}

	// Sizes are the allowed Profile.Size values.
	Sizes = []string{"1-10", "11-50", "51-200", "201-500", "501+"}
)

// ValidateName checks a company, location or fleet category name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, MaxNameLength)
	}
	return nil
}

// ValidateTimezone checks an IANA zone name such as "Europe/London".
func ValidateTimezone(tz string) error {
	if tz == "" || tz == "Local" {
		return fmt.Errorf("%w: timezone %q", ErrInvalidEnum, tz)
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("%w: timezone %q", ErrInvalidEnum, tz)
	}
	return nil
}

func validateEnum(field, value string, allowed []string) error {
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("%w: %s %q (allowed: %s)", ErrInvalidEnum, field, value, strings.Join(allowed, ", "))
	}
	return nil
}

func validateLength(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidField, field, limit)
	}
	return nil
}

// normalizeTags trims, lowercases and de-duplicates tags, keeping order.
func normalizeTags(tags []string) ([]string, error) {
	if len(tags) > MaxTags {
		return nil, fmt.Errorf("%w: at most %d tags", ErrInvalidField, MaxTags)
	}
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if err := validateLength("tag", tag, MaxTagLength); err != nil {
			return nil, err
		}
		if !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out, nil
}

// normalize validates a location input and returns its cleaned form.
func (in LocationInput) normalize() (LocationInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	if in.Type == "" {
		in.Type = "other"
	}

	if err := ValidateName(in.Name); err != nil {
		return in, err
	}
	if err := validateLength("address", in.Address, MaxAddressLength); err != nil {
		return in, err
	}
	if err := validateEnum("location type", in.Type, LocationTypes); err != nil {
		return in, err
	}
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return in, err
	}
	in.Tags = tags
	return in, nil
}

// normalize validates a fleet category input and returns its cleaned form.
func (in FleetCategoryInput) normalize() (FleetCategoryInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.VehicleType = strings.ToLower(strings.TrimSpace(in.VehicleType))
	if in.VehicleType == "" {
		in.VehicleType = "other"
	}

	if err := ValidateName(in.Name); err != nil {
		return in, err
	}
	if err := validateLength("description", in.Description, MaxDescriptionLength); err != nil {
		return in, err
	}
	if err := validateEnum("vehicle type", in.VehicleType, VehicleTypes); err != nil {
		return in, err
	}
	if in.Capacity < 0 || in.Capacity > MaxCapacity {
		return in, fmt.Errorf("%w: capacity must be between 0 and %d", ErrInvalidField, MaxCapacity)
	}
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return in, err
	}
	in.Tags = tags
	return in, nil
}

// apply validates u and writes the non-nil fields onto p.
func (u ProfileUpdate) apply(p *Profile) error {
	next := *p

	if u.Address != nil {
		next.Address = strings.TrimSpace(*u.Address)
		if err := validateLength("address", next.Address, MaxAddressLength); err != nil {
			return err
		}
	}
	if u.Industry != nil {
		next.Industry = strings.ToLower(strings.TrimSpace(*u.Industry))
		if next.Industry != "" {
			if err := validateEnum("industry", next.Industry, Industries); err != nil {
				return err
			}
		}
	}
	if u.Size != nil {
		next.Size = strings.TrimSpace(*u.Size)
		if next.Size != "" {
			if err := validateEnum("size", next.Size, Sizes); err != nil {
				return err
			}
		}
	}
	if u.ContactEmail != nil {
		next.ContactEmail = user.NormalizeEmail(*u.ContactEmail)
		if next.ContactEmail != "" {
			if err := user.ValidateEmail(next.ContactEmail); err != nil {
				return fmt.Errorf("%w: contact email: %w", ErrInvalidField, err)
			}
		}
	}
	if u.ContactPhone != nil {
		next.ContactPhone = strings.TrimSpace(*u.ContactPhone)
		if err := validatePhone(next.ContactPhone); err != nil {
			return err
		}
	}
	if u.Website != nil {
		next.Website = strings.TrimSpace(*u.Website)
		if err := validateWebsite(next.Website); err != nil {
			return err
		}
	}
	if u.Timezone != nil {
		next.Timezone = strings.TrimSpace(*u.Timezone)
		if next.Timezone != "" {
			if err := ValidateTimezone(next.Timezone); err != nil {
				return err
			}
		}
	}

	*p = next
	return nil
}

// maxPhoneLength is generous enough for extensions.
const maxPhoneLength = 32

func validatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	if len(phone) > maxPhoneLength {
		return fmt.Errorf("%w: contact phone too long", ErrInvalidField)
	}
	for _, r := range phone {
		if !strings.ContainsRune("0123456789+-() .x", r) {
			return fmt.Errorf("%w: contact phone contains %q", ErrInvalidField, r)
		}
	}
	return nil
}

func validateWebsite(site string) error {
	if site == "" {
		return nil
	}
	u, err := url.Parse(site)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: website must be an http(s) URL", ErrInvalidField)
	}
	return nil
}
