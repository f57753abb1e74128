package permission

import "fmt"

// Action is a verb a user may attempt against a resource
type Action string

// Resource is the kind of object an action targets
type Resource string

const (
	ActionView    Action = "view"
	ActionCreate  Action = "create"
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
	ActionArchive Action = "archive"
	ActionReorder Action = "reorder"
	ActionAssign  Action = "assign"
	ActionMove    Action = "move"
	ActionUpload  Action = "upload"

	ActionManageTeams   Action = "manage_teams"
	ActionManageMembers Action = "manage_members"
	ActionManageRoles   Action = "manage_roles"
	ActionInviteMembers Action = "invite_members"
	ActionRemoveMembers Action = "remove_members"
	ActionLeave         Action = "leave"
)

const (
	ResourceProject    Resource = "project"
	ResourceTeam       Resource = "team"
	ResourceColumn     Resource = "column"
	ResourceCard       Resource = "card"
	ResourceComment    Resource = "comment"
	ResourceLabel      Resource = "label"
	ResourceAttachment Resource = "attachment"
)

// Permission is one (action, resource) pair from the catalog
type Permission struct {
	Action   Action   `json:"action"`
	Resource Resource `json:"resource"`
}

func (p Permission) String() string {
	return fmt.Sprintf("%s:%s", p.Resource, p.Action)
}

// The full permission catalog. Anything outside this set is a programming
// error, never a silent denial.
var (
	ProjectView        = Permission{ActionView, ResourceProject}
	ProjectEdit        = Permission{ActionEdit, ResourceProject}
	ProjectDelete      = Permission{ActionDelete, ResourceProject}
	ProjectArchive     = Permission{ActionArchive, ResourceProject}
	ProjectManageTeams = Permission{ActionManageTeams, ResourceProject}

	TeamView          = Permission{ActionView, ResourceTeam}
	TeamEdit          = Permission{ActionEdit, ResourceTeam}
	TeamDelete        = Permission{ActionDelete, ResourceTeam}
	TeamManageMembers = Permission{ActionManageMembers, ResourceTeam}
	TeamManageRoles   = Permission{ActionManageRoles, ResourceTeam}
	TeamInviteMembers = Permission{ActionInviteMembers, ResourceTeam}
	TeamRemoveMembers = Permission{ActionRemoveMembers, ResourceTeam}
	TeamLeave         = Permission{ActionLeave, ResourceTeam}

	ColumnCreate  = Permission{ActionCreate, ResourceColumn}
	ColumnEdit    = Permission{ActionEdit, ResourceColumn}
	ColumnDelete  = Permission{ActionDelete, ResourceColumn}
	ColumnReorder = Permission{ActionReorder, ResourceColumn}

	CardCreate = Permission{ActionCreate, ResourceCard}
	CardEdit   = Permission{ActionEdit, ResourceCard}
	CardDelete = Permission{ActionDelete, ResourceCard}
	CardAssign = Permission{ActionAssign, ResourceCard}
	CardMove   = Permission{ActionMove, ResourceCard}

	CommentCreate = Permission{ActionCreate, ResourceComment}
	CommentEdit   = Permission{ActionEdit, ResourceComment}
	CommentDelete = Permission{ActionDelete, ResourceComment}

	LabelCreate = Permission{ActionCreate, ResourceLabel}
	LabelEdit   = Permission{ActionEdit, ResourceLabel}
	LabelDelete = Permission{ActionDelete, ResourceLabel}

	AttachmentUpload = Permission{ActionUpload, ResourceAttachment}
	AttachmentDelete = Permission{ActionDelete, ResourceAttachment}
)

var catalog = map[Permission]struct{}{}

func init() {
	for _, p := range []Permission{
		ProjectView, ProjectEdit, ProjectDelete, ProjectArchive, ProjectManageTeams,
		TeamView, TeamEdit, TeamDelete, TeamManageMembers, TeamManageRoles,
		TeamInviteMembers, TeamRemoveMembers, TeamLeave,
		ColumnCreate, ColumnEdit, ColumnDelete, ColumnReorder,
		CardCreate, CardEdit, CardDelete, CardAssign, CardMove,
		CommentCreate, CommentEdit, CommentDelete,
		LabelCreate, LabelEdit, LabelDelete,
		AttachmentUpload, AttachmentDelete,
	} {
		catalog[p] = struct{}{}
	}
}

// InCatalog reports whether p is a known permission.
func InCatalog(p Permission) bool {
	_, ok := catalog[p]
	return ok
}

// Catalog returns a copy of the full permission catalog.
func Catalog() []Permission {
	out := make([]Permission, 0, len(catalog))
	for p := range catalog {
		out = append(out, p)
	}
	return out
}
