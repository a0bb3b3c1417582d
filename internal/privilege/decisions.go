package privilege

// Role is the coarse dashboard role derived from a privilege set.
type Role string

// Dashboard roles, highest first.
const (
	RoleManager    Role = "manager"
	RoleDispatcher Role = "dispatcher"
	RoleViewer     Role = "viewer"
	RoleNone       Role = "none"
)

// Allow-lists for each decision.
var (
	addAllow       = Of(Owner, Admin, Add)
	removeAllow    = Of(Owner, Admin, Remove)
	manageAllow    = Of(Owner, Admin)
	managerAliases = Of(Owner, Admin, Manager)
	tripsAllow     = Of(Owner, Admin, Manager, Dispatcher)
	dashboardAllow = Of(Owner, Admin, Manager, Dispatcher, Viewer)
)

func (s Set) intersects(allow Set) bool {
	return s.norm()&allow != 0
}

// CanAddMembers reports whether the set may add members to a company.
func (s Set) CanAddMembers() bool { return s.intersects(addAllow) }

// CanRemoveMembers reports whether the set may remove members.
func (s Set) CanRemoveMembers() bool { return s.intersects(removeAllow) }

// CanManagePrivileges reports whether the set may change other members'
// privileges. Company profile edits use the same gate.
func (s Set) CanManagePrivileges() bool { return s.intersects(manageAllow) }

// IsOwner reports whether the set contains owner.
func (s Set) IsOwner() bool { return s.Has(Owner) }

// DashboardRole derives the dashboard role. Owner and admin are aliased to
// manager here only; the stored privileges are unchanged.
func (s Set) DashboardRole() Role {
	switch {
	case s.intersects(managerAliases):
		return RoleManager
	case s.Has(Dispatcher):
		return RoleDispatcher
	case s.Has(Viewer):
		return RoleViewer
	default:
		return RoleNone
	}
}

// CanAccessDashboard reports whether any dashboard role applies.
func (s Set) CanAccessDashboard() bool { return s.intersects(dashboardAllow) }

// CanManageDashboard reports whether the set has manager-level dashboard access.
func (s Set) CanManageDashboard() bool { return s.intersects(managerAliases) }

// CanManageTrips reports whether the set may create and assign trips.
func (s Set) CanManageTrips() bool { return s.intersects(tripsAllow) }

// CanViewOnly is true only for viewers holding none of owner, admin,
// manager or dispatcher.
func (s Set) CanViewOnly() bool {
	return s.Has(Viewer) && !s.intersects(tripsAllow)
}

// Capabilities is a snapshot of every decision for one set, shaped for
// API responses.
type Capabilities struct {
	DashboardRole       Role `json:"dashboard_role"`
	IsOwner             bool `json:"is_owner"`
	CanAddMembers       bool `json:"can_add_members"`
	CanRemoveMembers    bool `json:"can_remove_members"`
	CanManagePrivileges bool `json:"can_manage_privileges"`
	CanAccessDashboard  bool `json:"can_access_dashboard"`
	CanManageDashboard  bool `json:"can_manage_dashboard"`
	CanManageTrips      bool `json:"can_manage_trips"`
	CanViewOnly         bool `json:"can_view_only"`
}

// Capabilities evaluates every decision function against s.
func (s Set) Capabilities() Capabilities {
	return Capabilities{
		DashboardRole:       s.DashboardRole(),
		IsOwner:             s.IsOwner(),
		CanAddMembers:       s.CanAddMembers(),
		CanRemoveMembers:    s.CanRemoveMembers(),
		CanManagePrivileges: s.CanManagePrivileges(),
		CanAccessDashboard:  s.CanAccessDashboard(),
		CanManageDashboard:  s.CanManageDashboard(),
		CanManageTrips:      s.CanManageTrips(),
		CanViewOnly:         s.CanViewOnly(),
	}
}
