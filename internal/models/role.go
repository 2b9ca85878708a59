package models

// Role is the closed set of actor roles in the federation hierarchy.
// The hierarchy is strict: global -> state -> district -> club -> member.
type Role string

const (
	RoleGlobalAdmin   Role = "global_admin"
	RoleStateAdmin    Role = "state_admin"
	RoleDistrictAdmin Role = "district_admin"
	RoleClubAdmin     Role = "club_admin"
	RoleMember        Role = "member"
)

// ParseRole maps a raw string to a Role. The second return value reports
// whether the input named a known role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleGlobalAdmin, RoleStateAdmin, RoleDistrictAdmin, RoleClubAdmin, RoleMember:
		return Role(s), true
	}
	return "", false
}

// IsAdmin reports whether the role sits on the administrative side of the
// hierarchy (everything except plain members).
func (r Role) IsAdmin() bool {
	return r == RoleGlobalAdmin || r == RoleStateAdmin || r == RoleDistrictAdmin || r == RoleClubAdmin
}

// approvalTargets is the single source of truth for the one-level-down
// approval rule: each approver role may act only on the role directly
// below it. Roles absent from the map cannot approve anything.
var approvalTargets = map[Role]Role{
	RoleGlobalAdmin:   RoleStateAdmin,
	RoleStateAdmin:    RoleDistrictAdmin,
	RoleDistrictAdmin: RoleClubAdmin,
}

// ApprovalTarget returns the role an approver with role r is entitled to
// approve, and whether r has any approval authority at all.
func (r Role) ApprovalTarget() (Role, bool) {
	target, ok := approvalTargets[r]
	return target, ok
}

// CanApprove applies the full authorization rule for the approval workflow:
// the target's role must be exactly one level below the approver's, and the
// target must fall inside the approver's subtree. Global admins have global
// scope; state admins are bounded by state, district admins by district.
func CanApprove(approver, target *Account) bool {
	wantRole, ok := approver.Role.ApprovalTarget()
	if !ok || target.Role != wantRole {
		return false
	}
	switch approver.Role {
	case RoleGlobalAdmin:
		return true
	case RoleStateAdmin:
		return target.StateID == approver.StateID
	case RoleDistrictAdmin:
		return target.DistrictID == approver.DistrictID
	}
	return false
}
