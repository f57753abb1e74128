package permission

// Set is an immutable-by-convention collection of catalog permissions.
type Set map[Permission]struct{}

// Contains reports whether p is in the set.
func (s Set) Contains(p Permission) bool {
	_, ok := s[p]
	return ok
}

func newSet(perms ...Permission) Set {
	s := make(Set, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// Role grant tables. These are configuration, not behavior: resolution only
// ever does a lookup followed by a set-membership test.
var projectRoleGrants = map[ProjectRole]Set{
	// Everything except project deletion, which no role grants (owner only).
	ProjectRoleAdmin: newSet(
		ProjectView, ProjectEdit, ProjectArchive, ProjectManageTeams,
		ColumnCreate, ColumnEdit, ColumnDelete, ColumnReorder,
		CardCreate, CardEdit, CardDelete, CardAssign, CardMove,
		CommentCreate, CommentEdit, CommentDelete,
		LabelCreate, LabelEdit, LabelDelete,
		AttachmentUpload, AttachmentDelete,
	),
	// Create/edit but never delete. Comment edits are still subject to the
	// authorship check in CanModifyComment.
	ProjectRoleEditor: newSet(
		ProjectView,
		ColumnCreate, ColumnEdit, ColumnReorder,
		CardCreate, CardEdit, CardAssign, CardMove,
		CommentCreate, CommentEdit,
		LabelCreate, LabelEdit,
		AttachmentUpload,
	),
	ProjectRoleViewer: newSet(
		ProjectView,
		CommentCreate,
	),
}

var teamRoleGrants = map[TeamRole]Set{
	// Team deletion is reserved to the creator, not any role.
	TeamRoleOwner: newSet(
		TeamView, TeamEdit, TeamManageMembers, TeamManageRoles,
		TeamInviteMembers, TeamRemoveMembers, TeamLeave,
	),
	TeamRoleAdmin: newSet(
		TeamView, TeamEdit, TeamManageMembers,
		TeamInviteMembers, TeamRemoveMembers,
	),
	TeamRoleMember: newSet(
		TeamView, TeamInviteMembers, TeamLeave,
	),
	TeamRoleViewer: newSet(
		TeamView, TeamLeave,
	),
}

// ProjectRolePermissions returns a copy of the grant set for a project role.
// Unknown roles get an empty set.
func ProjectRolePermissions(r ProjectRole) Set {
	return copySet(projectRoleGrants[r])
}

// TeamRolePermissions returns a copy of the grant set for a team role.
func TeamRolePermissions(r TeamRole) Set {
	return copySet(teamRoleGrants[r])
}

func copySet(s Set) Set {
	out := make(Set, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}
