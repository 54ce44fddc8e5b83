// internal/app/system/authz/actions.go
package authz

// Action names a session-scoped operation subject to role checks.
type Action string

const (
	ActionViewSession    Action = "session.view"
	ActionUpdateSession  Action = "session.update"
	ActionArchiveSession Action = "session.archive"

	ActionCreateBill         Action = "bill.create"
	ActionUpdateBill         Action = "bill.update"
	ActionDeleteBill         Action = "bill.delete"
	ActionUploadBillDocument Action = "bill.upload_document"

	ActionCreateHearing Action = "hearing.create"
	ActionUpdateHearing Action = "hearing.update"
	ActionDeleteHearing Action = "hearing.delete"

	ActionCreateCategory Action = "category.create"
	ActionUpdateCategory Action = "category.update"
	ActionDeleteCategory Action = "category.delete"

	ActionInviteMember     Action = "member.invite"
	ActionUpdateMemberRole Action = "member.update_role"
	ActionRemoveMember     Action = "member.remove"
)

// minRoleFor is the single source of truth for session permissions.
// An action absent from this table is denied to everyone.
//
// Category create requires manager while category update only requires
// contributor: shaping the taxonomy is a structural decision, keeping
// entries accurate is day-to-day work.
var minRoleFor = map[Action]Role{
	ActionViewSession:    RoleViewer,
	ActionUpdateSession:  RoleManager,
	ActionArchiveSession: RoleAdmin,

	ActionCreateBill:         RoleContributor,
	ActionUpdateBill:         RoleContributor,
	ActionDeleteBill:         RoleManager,
	ActionUploadBillDocument: RoleContributor,

	ActionCreateHearing: RoleContributor,
	ActionUpdateHearing: RoleContributor,
	ActionDeleteHearing: RoleManager,

	ActionCreateCategory: RoleManager,
	ActionUpdateCategory: RoleContributor,
	ActionDeleteCategory: RoleManager,

	ActionInviteMember:     RoleAdmin,
	ActionUpdateMemberRole: RoleAdmin,
	ActionRemoveMember:     RoleAdmin,
}

// RequiredRole returns the minimum role for an action. ok=false means the
// action is unknown and must be denied.
func RequiredRole(a Action) (Role, bool) {
	min, ok := minRoleFor[a]
	return min, ok
}

// Can reports whether a holder of role r may perform action a.
func (r Role) Can(a Action) bool {
	min, ok := minRoleFor[a]
	return ok && r >= min
}
