package privilege

import (
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"github.com/nerrad567/fleetauth-core/internal/fault"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected Set
	}{
		{"nil input", nil, Of(Member)},
		{"empty input", []string{}, Of(Member)},
		{"all invalid", []string{"root", "superuser", ""}, Of(Member)},
		{"single owner", []string{"owner"}, Of(Owner)},
		{"filters unknown", []string{"admin", "god", "viewer"}, Of(Admin, Viewer)},
		{"case and space", []string{" Admin ", "DISPATCHER"}, Of(Admin, Dispatcher)},
		{"duplicates collapse", []string{"add", "add", "remove"}, Of(Add, Remove)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.expected {
				t.Errorf("Normalize(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalize_AlwaysNonEmptySubset(t *testing.T) {
	pool := []string{"owner", "admin", "add", "remove", "member", "manager", "dispatcher", "viewer",
		"bogus", "", "OWNER", "root", "delete"}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		n := rng.Intn(6)
		input := make([]string, n)
		for j := range input {
			input[j] = pool[rng.Intn(len(pool))]
		}

		got := Normalize(input)
		if len(got.Slice()) == 0 {
			t.Fatalf("Normalize(%v) returned an empty set", input)
		}
		for _, p := range got.Slice() {
			if !p.Valid() {
				t.Fatalf("Normalize(%v) contains %q outside the vocabulary", input, p)
			}
		}
	}
}

func TestParse(t *testing.T) {
	got, err := Parse([]string{"admin", "viewer"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got != Of(Admin, Viewer) {
		t.Errorf("Parse() = %v, want %v", got, Of(Admin, Viewer))
	}

	got, err = Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) error = %v", err)
	}
	if got != Of(Member) {
		t.Errorf("Parse(nil) = %v, want {member}", got)
	}

	_, err = Parse([]string{"admin", "superuser"})
	if !errors.Is(err, ErrUnknownPrivilege) {
		t.Errorf("Parse() error = %v, want ErrUnknownPrivilege", err)
	}
	if !errors.Is(err, fault.ErrInvalidArgument) {
		t.Errorf("Parse() error = %v, want kind InvalidArgument", err)
	}
}

func TestMembershipDecisions(t *testing.T) {
	tests := []struct {
		name      string
		set       Set
		canAdd    bool
		canRemove bool
		canManage bool
		isOwner   bool
	}{
		{"owner", Of(Owner), true, true, true, true},
		{"admin", Of(Admin), true, true, true, false},
		{"add only", Of(Add), true, false, false, false},
		{"remove only", Of(Remove), false, true, false, false},
		{"member", Of(Member), false, false, false, false},
		{"manager", Of(Manager), false, false, false, false},
		{"zero value acts as member", Set(0), false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.set.CanAddMembers(); got != tt.canAdd {
				t.Errorf("CanAddMembers() = %v, want %v", got, tt.canAdd)
			}
			if got := tt.set.CanRemoveMembers(); got != tt.canRemove {
				t.Errorf("CanRemoveMembers() = %v, want %v", got, tt.canRemove)
			}
			if got := tt.set.CanManagePrivileges(); got != tt.canManage {
				t.Errorf("CanManagePrivileges() = %v, want %v", got, tt.canManage)
			}
			if got := tt.set.IsOwner(); got != tt.isOwner {
				t.Errorf("IsOwner() = %v, want %v", got, tt.isOwner)
			}
		})
	}
}

func TestDashboardRole(t *testing.T) {
	tests := []struct {
		name     string
		set      Set
		expected Role
	}{
		{"owner aliases manager", Of(Owner), RoleManager},
		{"admin aliases manager", Of(Admin), RoleManager},
		{"manager", Of(Manager), RoleManager},
		{"manager beats dispatcher", Of(Dispatcher, Manager), RoleManager},
		{"dispatcher beats viewer", Of(Viewer, Dispatcher), RoleDispatcher},
		{"viewer", Of(Viewer), RoleViewer},
		{"member has none", Of(Member), RoleNone},
		{"add remove has none", Of(Add, Remove), RoleNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := tt.set.DashboardRole()
			second := tt.set.DashboardRole()
			if first != tt.expected {
				t.Errorf("DashboardRole() = %q, want %q", first, tt.expected)
			}
			if first != second {
				t.Errorf("DashboardRole() not stable: %q then %q", first, second)
			}
		})
	}
}

func TestDashboardPredicates(t *testing.T) {
	tests := []struct {
		name        string
		set         Set
		access      bool
		manageDash  bool
		manageTrips bool
		viewOnly    bool
	}{
		{"owner", Of(Owner), true, true, true, false},
		{"manager", Of(Manager), true, true, true, false},
		{"dispatcher", Of(Dispatcher), true, false, true, false},
		{"viewer", Of(Viewer), true, false, false, true},
		{"viewer plus dispatcher is not view only", Of(Viewer, Dispatcher), true, false, true, false},
		{"viewer plus admin is not view only", Of(Viewer, Admin), true, true, true, false},
		{"viewer plus add stays view only", Of(Viewer, Add), true, false, false, true},
		{"member", Of(Member), false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.set.CanAccessDashboard(); got != tt.access {
				t.Errorf("CanAccessDashboard() = %v, want %v", got, tt.access)
			}
			if got := tt.set.CanManageDashboard(); got != tt.manageDash {
				t.Errorf("CanManageDashboard() = %v, want %v", got, tt.manageDash)
			}
			if got := tt.set.CanManageTrips(); got != tt.manageTrips {
				t.Errorf("CanManageTrips() = %v, want %v", got, tt.manageTrips)
			}
			if got := tt.set.CanViewOnly(); got != tt.viewOnly {
				t.Errorf("CanViewOnly() = %v, want %v", got, tt.viewOnly)
			}
		})
	}
}

func TestSet_StringsOrderAndJSON(t *testing.T) {
	s := Of(Viewer, Owner, Add)

	want := []string{"owner", "add", "viewer"}
	got := s.Strings()
	if len(got) != len(want) {
		t.Fatalf("Strings() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Strings()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `["owner","add","viewer"]` {
		t.Errorf("Marshal() = %s", data)
	}

	var decoded Set
	if err := json.Unmarshal([]byte(`["admin","nonsense"]`), &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded != Of(Admin) {
		t.Errorf("Unmarshal() = %v, want {admin}", decoded)
	}
}

func TestCapabilities(t *testing.T) {
	c := Of(Dispatcher).Capabilities()
	if c.DashboardRole != RoleDispatcher {
		t.Errorf("DashboardRole = %q, want %q", c.DashboardRole, RoleDispatcher)
	}
	if !c.CanManageTrips || c.CanManageDashboard || c.IsOwner {
		t.Errorf("unexpected capabilities: %+v", c)
	}
}
