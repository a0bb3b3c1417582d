package team

import (
	"time"

	"github.com/nerrad567/fleetauth-core/internal/auth"
	"github.com/nerrad567/fleetauth-core/internal/company"
	"github.com/nerrad567/fleetauth-core/internal/privilege"
	"github.com/nerrad567/fleetauth-core/internal/user"
)

// OwnerRegistration is the input to RegisterOwner.
type OwnerRegistration struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	CompanyName string `json:"company_name"`
}

// MemberRegistration is the input to RegisterTeamMember.
type MemberRegistration struct {
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	FullName   string   `json:"full_name"`
	Privileges []string `json:"privileges"`
}

// Registration is the result of RegisterOwner.
type Registration struct {
	User       user.Profile `json:"user"`
	Company    string       `json:"company"`
	CompanyID  string       `json:"company_uuid"`
	Privileges []string     `json:"privileges"`
}

// MemberView is a member as shown to teammates.
type MemberView struct {
	Email         string         `json:"email"`
	FullName      string         `json:"full_name,omitempty"`
	Verified      bool           `json:"verified"`
	Privileges    []string       `json:"privileges"`
	DashboardRole privilege.Role `json:"dashboard_role"`
	AddedBy       string         `json:"added_by"`
	AddedAt       time.Time      `json:"added_at"`
	UpdatedBy     string         `json:"updated_by,omitempty"`
	UpdatedAt     *time.Time     `json:"updated_at,omitempty"`
}

// Session is the credential pair returned by Login and Refresh.
type Session struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int           `json:"expires_in"`
	Identity     auth.Identity `json:"identity"`
}

// Me is the caller's own account view.
type Me struct {
	User         user.Profile           `json:"user"`
	Company      string                 `json:"company,omitempty"`
	Privileges   []string               `json:"privileges"`
	Capabilities privilege.Capabilities `json:"capabilities"`
}

// memberView joins a membership entry with the member's account. A
// missing account leaves the account fields empty.
func (s *Service) memberView(e company.MemberEntry) MemberView {
	set := e.Set()
	v := MemberView{
		Email:         e.Email,
		Privileges:    set.Strings(),
		DashboardRole: set.DashboardRole(),
		AddedBy:       e.AddedBy,
		AddedAt:       e.AddedAt,
		UpdatedBy:     e.UpdatedBy,
		UpdatedAt:     e.UpdatedAt,
	}
	if u, err := s.users.Get(e.Email); err == nil {
		v.FullName = u.FullName
		v.Verified = u.Verified
	}
	return v
}
