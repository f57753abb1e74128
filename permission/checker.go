package permission

import (
	"context"
	"fmt"
)

// ProjectChecker answers permission queries for one (user, project) pair.
// Load must run before any query; querying first returns
// ErrContextNotLoaded rather than a denial.
type ProjectChecker struct {
	store     Store
	userID    uint
	projectID uint
	pctx      *ProjectContext
}

func NewProjectChecker(store Store, userID, projectID uint) *ProjectChecker {
	return &ProjectChecker{
		store:     store,
		userID:    userID,
		projectID: projectID,
	}
}

// Load fetches the permission context. Read-only and idempotent.
func (c *ProjectChecker) Load(ctx context.Context) error {
	pctx, err := LoadProjectContext(ctx, c.store, c.userID, c.projectID)
	if err != nil {
		return err
	}
	c.pctx = pctx
	return nil
}

// Context returns the loaded context, or nil before Load.
func (c *ProjectChecker) Context() *ProjectContext {
	return c.pctx
}

// HasPermission reports whether the user holds the permission on the
// project. Denial is the plain false return; errors are reserved for
// contract violations.
func (c *ProjectChecker) HasPermission(p Permission) (bool, error) {
	if c.pctx == nil {
		return false, ErrContextNotLoaded
	}
	if !InCatalog(p) {
		return false, fmt.Errorf("%w: %s", ErrUnknownPermission, p)
	}
	return c.pctx.Allows(p), nil
}

// CanModifyComment decides whether the user may edit or delete the given
// comment. Editing one's own comment needs only the edit grant; touching
// someone else's needs the delete grant. This is the one check that takes a
// second fetch beyond the loaded context.
func (c *ProjectChecker) CanModifyComment(ctx context.Context, commentID uint) (bool, error) {
	if c.pctx == nil {
		return false, ErrContextNotLoaded
	}
	if c.pctx.Allows(CommentDelete) {
		return true, nil
	}
	authorID, err := c.store.GetCommentAuthor(ctx, commentID)
	if err != nil {
		return false, err
	}
	if authorID != c.userID {
		return false, nil
	}
	return c.pctx.Allows(CommentEdit), nil
}

// Convenience predicates. Thin wrappers over HasPermission with a fixed
// catalog entry; no logic of their own.

func (c *ProjectChecker) CanViewProject() (bool, error)    { return c.HasPermission(ProjectView) }
func (c *ProjectChecker) CanEditProject() (bool, error)    { return c.HasPermission(ProjectEdit) }
func (c *ProjectChecker) CanDeleteProject() (bool, error)  { return c.HasPermission(ProjectDelete) }
func (c *ProjectChecker) CanArchiveProject() (bool, error) { return c.HasPermission(ProjectArchive) }
func (c *ProjectChecker) CanManageTeams() (bool, error)    { return c.HasPermission(ProjectManageTeams) }

func (c *ProjectChecker) CanCreateColumns() (bool, error)  { return c.HasPermission(ColumnCreate) }
func (c *ProjectChecker) CanEditColumns() (bool, error)    { return c.HasPermission(ColumnEdit) }
func (c *ProjectChecker) CanDeleteColumns() (bool, error)  { return c.HasPermission(ColumnDelete) }
func (c *ProjectChecker) CanReorderColumns() (bool, error) { return c.HasPermission(ColumnReorder) }

func (c *ProjectChecker) CanCreateCards() (bool, error) { return c.HasPermission(CardCreate) }
func (c *ProjectChecker) CanEditCards() (bool, error)   { return c.HasPermission(CardEdit) }
func (c *ProjectChecker) CanDeleteCards() (bool, error) { return c.HasPermission(CardDelete) }
func (c *ProjectChecker) CanAssignCards() (bool, error) { return c.HasPermission(CardAssign) }
func (c *ProjectChecker) CanMoveCards() (bool, error)   { return c.HasPermission(CardMove) }

func (c *ProjectChecker) CanCreateComments() (bool, error) { return c.HasPermission(CommentCreate) }

func (c *ProjectChecker) CanCreateLabels() (bool, error) { return c.HasPermission(LabelCreate) }
func (c *ProjectChecker) CanEditLabels() (bool, error)   { return c.HasPermission(LabelEdit) }
func (c *ProjectChecker) CanDeleteLabels() (bool, error) { return c.HasPermission(LabelDelete) }

func (c *ProjectChecker) CanUploadAttachments() (bool, error) { return c.HasPermission(AttachmentUpload) }
func (c *ProjectChecker) CanDeleteAttachments() (bool, error) { return c.HasPermission(AttachmentDelete) }

// TeamChecker answers permission queries for one (user, team) pair.
type TeamChecker struct {
	store  Store
	userID uint
	teamID uint
	tctx   *TeamContext
}

func NewTeamChecker(store Store, userID, teamID uint) *TeamChecker {
	return &TeamChecker{
		store:  store,
		userID: userID,
		teamID: teamID,
	}
}

func (c *TeamChecker) Load(ctx context.Context) error {
	tctx, err := LoadTeamContext(ctx, c.store, c.userID, c.teamID)
	if err != nil {
		return err
	}
	c.tctx = tctx
	return nil
}

func (c *TeamChecker) Context() *TeamContext {
	return c.tctx
}

func (c *TeamChecker) HasPermission(p Permission) (bool, error) {
	if c.tctx == nil {
		return false, ErrContextNotLoaded
	}
	if !InCatalog(p) {
		return false, fmt.Errorf("%w: %s", ErrUnknownPermission, p)
	}
	return c.tctx.Allows(p), nil
}

func (c *TeamChecker) CanViewTeam() (bool, error)      { return c.HasPermission(TeamView) }
func (c *TeamChecker) CanEditTeam() (bool, error)      { return c.HasPermission(TeamEdit) }
func (c *TeamChecker) CanDeleteTeam() (bool, error)    { return c.HasPermission(TeamDelete) }
func (c *TeamChecker) CanManageMembers() (bool, error) { return c.HasPermission(TeamManageMembers) }
func (c *TeamChecker) CanManageRoles() (bool, error)   { return c.HasPermission(TeamManageRoles) }
func (c *TeamChecker) CanInviteMembers() (bool, error) { return c.HasPermission(TeamInviteMembers) }
func (c *TeamChecker) CanRemoveMembers() (bool, error) { return c.HasPermission(TeamRemoveMembers) }
func (c *TeamChecker) CanLeaveTeam() (bool, error)     { return c.HasPermission(TeamLeave) }
