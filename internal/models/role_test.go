package models

import "testing"

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"global_admin", "state_admin", "district_admin", "club_admin", "member"} {
		if _, ok := ParseRole(valid); !ok {
			t.Errorf("ParseRole(%q) not recognized", valid)
		}
	}
	for _, invalid := range []string{"", "admin", "GLOBAL_ADMIN", "superuser"} {
		if _, ok := ParseRole(invalid); ok {
			t.Errorf("ParseRole(%q) unexpectedly recognized", invalid)
		}
	}
}

func TestApprovalTarget(t *testing.T) {
	cases := []struct {
		approver Role
		want     Role
		ok       bool
	}{
		{RoleGlobalAdmin, RoleStateAdmin, true},
		{RoleStateAdmin, RoleDistrictAdmin, true},
		{RoleDistrictAdmin, RoleClubAdmin, true},
		{RoleClubAdmin, "", false},
		{RoleMember, "", false},
	}
	for _, tc := range cases {
		got, ok := tc.approver.ApprovalTarget()
		if ok != tc.ok || got != tc.want {
			t.Errorf("%s.ApprovalTarget() = (%q, %v), want (%q, %v)", tc.approver, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCanApprove_ScopeChecks(t *testing.T) {
	stateAdmin := &Account{Role: RoleStateAdmin, StateID: 5}
	sameState := &Account{Role: RoleDistrictAdmin, StateID: 5, DistrictID: 2}
	otherState := &Account{Role: RoleDistrictAdmin, StateID: 6, DistrictID: 2}

	if !CanApprove(stateAdmin, sameState) {
		t.Error("state admin should approve district admin in own state")
	}
	if CanApprove(stateAdmin, otherState) {
		t.Error("state admin must not approve district admin in another state")
	}

	districtAdmin := &Account{Role: RoleDistrictAdmin, StateID: 5, DistrictID: 2}
	sameDistrict := &Account{Role: RoleClubAdmin, StateID: 5, DistrictID: 2}
	otherDistrict := &Account{Role: RoleClubAdmin, StateID: 5, DistrictID: 3}

	if !CanApprove(districtAdmin, sameDistrict) {
		t.Error("district admin should approve club admin in own district")
	}
	if CanApprove(districtAdmin, otherDistrict) {
		t.Error("district admin must not approve club admin in another district")
	}

	globalAdmin := &Account{Role: RoleGlobalAdmin}
	anyState := &Account{Role: RoleStateAdmin, StateID: 9}
	if !CanApprove(globalAdmin, anyState) {
		t.Error("global admin should approve any state admin")
	}
	if CanApprove(globalAdmin, sameDistrict) {
		t.Error("global admin must not skip levels")
	}
}
