package permission

import (
	"context"
	"errors"
)

// ErrNotFound means the project/team/comment id does not resolve to an
// existing row. Callers map it to 404, never to a denial.
var ErrNotFound = errors.New("permission: resource not found")

// ErrContextNotLoaded means a permission query ran before Load. That is a
// caller bug, so it surfaces loudly instead of reading as "denied".
var ErrContextNotLoaded = errors.New("permission: context not loaded")

// ErrUnknownPermission means the queried permission is outside the catalog.
var ErrUnknownPermission = errors.New("permission: unknown permission")

// MembershipGrant is one team membership of a user in a team that has been
// granted access to a project. ProjectRole is nil when no project-scoped role
// has been recorded for that membership.
type MembershipGrant struct {
	TeamID      uint
	TeamRole    TeamRole
	ProjectRole *ProjectRole
}

// Store is the read-only persistence collaborator the resolver loads from.
type Store interface {
	// GetProjectOwner returns the owner of a project, or ErrNotFound.
	GetProjectOwner(ctx context.Context, projectID uint) (uint, error)

	// GetTeamCreator returns the creator of a team, or ErrNotFound.
	GetTeamCreator(ctx context.Context, teamID uint) (uint, error)

	// GetUserTeamMembershipsWithProjectAccess returns every membership the
	// user holds in teams granted access to the project.
	GetUserTeamMembershipsWithProjectAccess(ctx context.Context, userID, projectID uint) ([]MembershipGrant, error)

	// GetUserTeamMembership returns the user's role in a team, or nil when
	// the user is not a member.
	GetUserTeamMembership(ctx context.Context, userID, teamID uint) (*TeamRole, error)

	// GetCommentAuthor returns the author of a comment, or ErrNotFound.
	GetCommentAuthor(ctx context.Context, commentID uint) (uint, error)
}
