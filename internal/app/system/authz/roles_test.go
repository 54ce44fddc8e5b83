// internal/app/system/authz/roles_test.go
package authz

import "testing"

func TestRoleOrdering(t *testing.T) {
	ordered := []Role{RoleViewer, RoleContributor, RoleManager, RoleAdmin}
	for i := 1; i < len(ordered); i++ {
		if !ordered[i].AtLeast(ordered[i-1]) {
			t.Errorf("%s should outrank %s", ordered[i], ordered[i-1])
		}
		if ordered[i-1].AtLeast(ordered[i]) {
			t.Errorf("%s should not outrank %s", ordered[i-1], ordered[i])
		}
	}
}

func TestParseRoleRoundTrip(t *testing.T) {
	for _, name := range RoleNames() {
		role, ok := ParseRole(name)
		if !ok {
			t.Fatalf("ParseRole(%q) not ok", name)
		}
		if role.String() != name {
			t.Errorf("ParseRole(%q).String() = %q", name, role.String())
		}
	}
}

func TestParseRoleNormalizes(t *testing.T) {
	role, ok := ParseRole("  Manager ")
	if !ok || role != RoleManager {
		t.Errorf("ParseRole(\"  Manager \") = %v, %v", role, ok)
	}
}

func TestParseRoleRejectsUnknown(t *testing.T) {
	for _, bad := range []string{"", "owner", "superadmin", "ADMIN2"} {
		if _, ok := ParseRole(bad); ok {
			t.Errorf("ParseRole(%q) should fail", bad)
		}
	}
}

// Every action must be permitted at its required role and at every role
// above it, and denied to every role below it.
func TestActionTableMonotonic(t *testing.T) {
	all := []Role{RoleViewer, RoleContributor, RoleManager, RoleAdmin}
	for action, min := range minRoleFor {
		for _, r := range all {
			got := r.Can(action)
			want := r >= min
			if got != want {
				t.Errorf("%s.Can(%s) = %v, want %v", r, action, got, want)
			}
		}
	}
}

func TestUnknownActionDenied(t *testing.T) {
	if RoleAdmin.Can(Action("session.delete")) {
		t.Error("unknown action should be denied even to admin")
	}
	if _, ok := RequiredRole(Action("nope")); ok {
		t.Error("RequiredRole should report unknown actions")
	}
}

func TestPermissionBoundaries(t *testing.T) {
	cases := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleViewer, ActionViewSession, true},
		{RoleViewer, ActionCreateBill, false},
		{RoleContributor, ActionCreateBill, true},
		{RoleContributor, ActionUploadBillDocument, true},
		{RoleContributor, ActionUpdateCategory, true},
		{RoleContributor, ActionCreateCategory, false},
		{RoleContributor, ActionDeleteHearing, false},
		{RoleManager, ActionCreateCategory, true},
		{RoleManager, ActionDeleteHearing, true},
		{RoleManager, ActionUpdateSession, true},
		{RoleManager, ActionArchiveSession, false},
		{RoleManager, ActionInviteMember, false},
		{RoleManager, ActionRemoveMember, false},
		{RoleAdmin, ActionArchiveSession, true},
		{RoleAdmin, ActionUpdateMemberRole, true},
	}
	for _, tc := range cases {
		if got := tc.role.Can(tc.action); got != tc.want {
			t.Errorf("%s.Can(%s) = %v, want %v", tc.role, tc.action, got, tc.want)
		}
	}
}
