package user

import "time"

// User is a stored user record. The JSON shape is the persisted format.
type User struct {
	Email        string     `json:"email"`
	PasswordHash string     `json:"password"`
	Verified     bool       `json:"verified"`
	FullName     string     `json:"full_name,omitempty"`
	CompanyName  string     `json:"company_name,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
}

// Profile is the public view of a user. It never carries the password hash.
type Profile struct {
	Email       string     `json:"email"`
	FullName    string     `json:"full_name,omitempty"`
	Verified    bool       `json:"verified"`
	CompanyName string     `json:"company_name,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
}

// Profile returns the public view of u.
func (u User) Profile() Profile {
	return Profile{
		Email:       u.Email,
		FullName:    u.FullName,
		Verified:    u.Verified,
		CompanyName: u.CompanyName,
		CreatedAt:   u.CreatedAt,
		VerifiedAt:  cloneTime(u.VerifiedAt),
	}
}

// clone returns a copy of u that shares no pointers.
func (u User) clone() User {
	u.VerifiedAt = cloneTime(u.VerifiedAt)
	return u
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
