package permission

// TeamRole is a user's standing within a team. Higher values grant more
// permissions; comparisons use the ordinal, never the string form.
type TeamRole int

const (
	TeamRoleViewer TeamRole = iota + 1
	TeamRoleMember
	TeamRoleAdmin
	TeamRoleOwner
)

func (r TeamRole) String() string {
	switch r {
	case TeamRoleOwner:
		return "owner"
	case TeamRoleAdmin:
		return "admin"
	case TeamRoleMember:
		return "member"
	case TeamRoleViewer:
		return "viewer"
	default:
		return "unknown"
	}
}

// ParseTeamRole converts a stored role string to a TeamRole.
func ParseTeamRole(s string) (TeamRole, bool) {
	switch s {
	case "owner":
		return TeamRoleOwner, true
	case "admin":
		return TeamRoleAdmin, true
	case "member":
		return TeamRoleMember, true
	case "viewer":
		return TeamRoleViewer, true
	default:
		return 0, false
	}
}

// ProjectRole is a team member's standing on one specific project.
type ProjectRole int

const (
	ProjectRoleViewer ProjectRole = iota + 1
	ProjectRoleEditor
	ProjectRoleAdmin
)

func (r ProjectRole) String() string {
	switch r {
	case ProjectRoleAdmin:
		return "admin"
	case ProjectRoleEditor:
		return "editor"
	case ProjectRoleViewer:
		return "viewer"
	default:
		return "unknown"
	}
}

// ParseProjectRole converts a stored role string to a ProjectRole.
func ParseProjectRole(s string) (ProjectRole, bool) {
	switch s {
	case "admin":
		return ProjectRoleAdmin, true
	case "editor":
		return ProjectRoleEditor, true
	case "viewer":
		return ProjectRoleViewer, true
	default:
		return 0, false
	}
}
