package permission

import "context"

// ProjectContext is the resolved snapshot of one user's standing on one
// project. It is a read projection: built by LoadProjectContext, never
// mutated, discarded after the request.
type ProjectContext struct {
	UserID         uint
	ProjectID      uint
	IsProjectOwner bool
	Memberships    []MembershipGrant
}

// TeamContext is the resolved snapshot of one user's standing in one team.
type TeamContext struct {
	UserID        uint
	TeamID        uint
	IsTeamCreator bool
	Role          *TeamRole
}

// LoadProjectContext resolves the ownership and membership facts needed to
// answer any project permission query for (userID, projectID).
func LoadProjectContext(ctx context.Context, store Store, userID, projectID uint) (*ProjectContext, error) {
	ownerID, err := store.GetProjectOwner(ctx, projectID)
	if err != nil {
		return nil, err
	}

	memberships, err := store.GetUserTeamMembershipsWithProjectAccess(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	return &ProjectContext{
		UserID:         userID,
		ProjectID:      projectID,
		IsProjectOwner: ownerID == userID,
		Memberships:    memberships,
	}, nil
}

// LoadTeamContext resolves the creator and membership facts for (userID, teamID).
func LoadTeamContext(ctx context.Context, store Store, userID, teamID uint) (*TeamContext, error) {
	creatorID, err := store.GetTeamCreator(ctx, teamID)
	if err != nil {
		return nil, err
	}

	role, err := store.GetUserTeamMembership(ctx, userID, teamID)
	if err != nil {
		return nil, err
	}

	return &TeamContext{
		UserID:        userID,
		TeamID:        teamID,
		IsTeamCreator: creatorID == userID,
		Role:          role,
	}, nil
}

// EffectiveRole computes the highest project-scoped role across the user's
// memberships. Memberships without a recorded project role do not count
// toward "highest"; when the user has team access but no membership carries
// an explicit role, the effective role falls back to viewer, the most
// restrictive default. The second return is false when the user has no team
// path to the project at all.
func (pc *ProjectContext) EffectiveRole() (ProjectRole, bool) {
	if len(pc.Memberships) == 0 {
		return 0, false
	}
	var highest ProjectRole
	for _, m := range pc.Memberships {
		if m.ProjectRole != nil && *m.ProjectRole > highest {
			highest = *m.ProjectRole
		}
	}
	if highest == 0 {
		highest = ProjectRoleViewer
	}
	return highest, true
}

// Allows answers a permission query against the loaded context. Pure: no
// fetches, no side effects.
func (pc *ProjectContext) Allows(p Permission) bool {
	// Ownership supersedes every role table.
	if pc.IsProjectOwner {
		return true
	}
	role, ok := pc.EffectiveRole()
	if !ok {
		return false
	}
	return projectRoleGrants[role].Contains(p)
}

// Allows answers a team permission query against the loaded context.
func (tc *TeamContext) Allows(p Permission) bool {
	if tc.IsTeamCreator {
		return true
	}
	if tc.Role == nil {
		return false
	}
	return teamRoleGrants[*tc.Role].Contains(p)
}
